package doc

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leapfmt/pkg/input"
	"golang.org/x/text/width"
)

// MaxWidth is the default maximum line width.
const MaxWidth = 100

var infinity = math.Inf(1)

// TextWidth returns the display width of s: East Asian wide and fullwidth
// runes count two columns.
func TextWidth(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r < utf8.RuneSelf {
			n++
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// lastLineWidth returns the width of the text after the last newline.
func lastLineWidth(s string) int {
	if i := strings.LastIndexAny(s, "\r\n"); i >= 0 {
		return TextWidth(s[i+1:])
	}
	return TextWidth(s)
}

// state is the renderer position while breaks are computed.
type state struct {
	lastIndent int
	indent     int
	column     int
	mustBreak  bool
}

func newState(indent, column int) state {
	return state{lastIndent: indent, indent: indent, column: column}
}

func (s state) withColumn(column int) state {
	s.column = column
	return s
}

func (s state) withMustBreak(mustBreak bool) state {
	s.mustBreak = mustBreak
	return s
}

// tagTable records the outcome of each tagged break for one render.
type tagTable struct {
	taken []bool
}

func newTagTable(n int) *tagTable {
	return &tagTable{taken: make([]bool, n+1)}
}

func (t *tagTable) record(tag BreakTag, broken bool) {
	if tag > 0 && int(tag) < len(t.taken) {
		t.taken[tag] = broken
	}
}

func (t *tagTable) broken(tag BreakTag) bool {
	return tag > 0 && int(tag) < len(t.taken) && t.taken[tag]
}

// node is one element of the level tree.
type node interface {
	width(r *renderer) float64
	computeBreaks(r *renderer, s state) state
	write(r *renderer)
	writeFlat(r *renderer)
}

// level is a run of nodes that either fits on the current line or is split
// at its direct breaks.
type level struct {
	indent  Indent
	docs    []node
	w       float64
	wSet    bool
	oneLine bool

	splits [][]node
	breaks []*breakDoc
}

func (l *level) width(r *renderer) float64 {
	if !l.wSet {
		l.w = widthOf(r, l.docs)
		l.wSet = true
	}
	return l.w
}

func widthOf(r *renderer, docs []node) float64 {
	var w float64
	for _, d := range docs {
		w += d.width(r)
	}
	return w
}

func (l *level) computeBreaks(r *renderer, s state) state {
	w := l.width(r)
	if float64(s.column)+w <= float64(r.maxWidth) {
		l.oneLine = true
		return s.withColumn(s.column + int(w))
	}
	l.oneLine = false
	indent := s.indent + l.indent.eval(r.tags)
	broken := l.computeBroken(r, newState(indent, s.column))
	return s.withColumn(broken.column)
}

func (l *level) split() {
	if l.splits != nil {
		return
	}
	cur := []node{}
	for _, d := range l.docs {
		if b, ok := d.(*breakDoc); ok {
			l.splits = append(l.splits, cur)
			l.breaks = append(l.breaks, b)
			cur = []node{}
			continue
		}
		cur = append(cur, d)
	}
	l.splits = append(l.splits, cur)
}

func (l *level) computeBroken(r *renderer, s state) state {
	l.split()
	s = computeBreakAndSplit(r, s, nil, l.splits[0])
	for i, b := range l.breaks {
		s = computeBreakAndSplit(r, s, b, l.splits[i+1])
	}
	return s
}

func computeBreakAndSplit(r *renderer, s state, b *breakDoc, split []node) state {
	var breakWidth float64
	if b != nil {
		breakWidth = b.width(r)
	}
	splitWidth := widthOf(r, split)
	shouldBreak := (b != nil && b.fill == Unified) ||
		s.mustBreak ||
		float64(s.column)+breakWidth+splitWidth > float64(r.maxWidth)
	if b != nil {
		s = b.computeBreaks0(r, s, shouldBreak)
	}
	enoughRoom := float64(s.column)+splitWidth <= float64(r.maxWidth)
	s = s.withMustBreak(false)
	for _, d := range split {
		s = d.computeBreaks(r, s)
	}
	if !enoughRoom {
		s = s.withMustBreak(true)
	}
	return s
}

func (l *level) write(r *renderer) {
	if l.oneLine {
		l.writeFlat(r)
		return
	}
	for _, d := range l.docs {
		d.write(r)
	}
}

func (l *level) writeFlat(r *renderer) {
	for _, d := range l.docs {
		d.writeFlat(r)
	}
}

type tokenDoc struct {
	index int
	text  string
}

func (t *tokenDoc) width(*renderer) float64 {
	if strings.ContainsAny(t.text, "\r\n") {
		return infinity
	}
	return float64(TextWidth(t.text))
}

func (t *tokenDoc) computeBreaks(_ *renderer, s state) state {
	if strings.ContainsAny(t.text, "\r\n") {
		return s.withColumn(lastLineWidth(t.text))
	}
	return s.withColumn(s.column + TextWidth(t.text))
}

func (t *tokenDoc) write(r *renderer)     { r.out.appendToken(t.index, t.text) }
func (t *tokenDoc) writeFlat(r *renderer) { r.out.appendToken(t.index, t.text) }

type spaceDoc struct{}

func (spaceDoc) width(*renderer) float64                  { return 1 }
func (spaceDoc) computeBreaks(_ *renderer, s state) state { return s.withColumn(s.column + 1) }
func (spaceDoc) write(r *renderer)                        { r.out.appendText(" ") }
func (spaceDoc) writeFlat(r *renderer)                    { r.out.appendText(" ") }

type breakDoc struct {
	fill      FillMode
	flat      string
	indent    Indent
	tag       BreakTag
	broken    bool
	newIndent int
}

func (b *breakDoc) width(*renderer) float64 {
	if b.fill == Forced {
		return infinity
	}
	return float64(TextWidth(b.flat))
}

// computeBreaks is only reached for breaks that are direct children of a
// level being split; the level decides through computeBreaks0.
func (b *breakDoc) computeBreaks(_ *renderer, s state) state { return s }

func (b *breakDoc) computeBreaks0(r *renderer, s state, broken bool) state {
	r.tags.record(b.tag, broken)
	b.broken = broken
	if broken {
		b.newIndent = max(s.lastIndent+b.indent.eval(r.tags), 0)
		return s.withColumn(b.newIndent)
	}
	return s.withColumn(s.column + TextWidth(b.flat))
}

func (b *breakDoc) write(r *renderer) {
	if b.broken {
		r.out.newline(b.newIndent)
		return
	}
	r.out.appendText(b.flat)
}

func (b *breakDoc) writeFlat(r *renderer) { r.out.appendText(b.flat) }

type commentDoc struct {
	index int
	tok   *input.Tok
	text  string // rewritten at the column where breaks placed it
	set   bool
}

func (c *commentDoc) width(*renderer) float64 {
	text := c.tok.Text
	if i := strings.IndexAny(text, "\r\n"); i > 0 {
		return float64(TextWidth(text[:i]))
	}
	if c.tok.IsSlashSlashComment() && !strings.HasPrefix(text, "// ") {
		return float64(TextWidth(text) + 1)
	}
	return float64(TextWidth(text))
}

func (c *commentDoc) computeBreaks(r *renderer, s state) state {
	c.text = r.rewrite(c.tok, s.column)
	c.set = true
	if strings.ContainsAny(c.text, "\n") {
		return s.withColumn(lastLineWidth(c.text))
	}
	return s.withColumn(s.column + TextWidth(c.text))
}

func (c *commentDoc) write(r *renderer) {
	if !c.set {
		c.writeFlat(r)
		return
	}
	r.out.appendComment(c.index, c.tok, c.text)
}

func (c *commentDoc) writeFlat(r *renderer) {
	r.out.appendComment(c.index, c.tok, r.rewrite(c.tok, r.out.column()))
}
