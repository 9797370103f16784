package doc

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/input"
)

// RenderOptions configures one render.
type RenderOptions struct {
	MaxWidth int
	// FormatJavadoc, when set, reflows doc comments. It receives the comment
	// text and the column the comment starts at.
	FormatJavadoc func(text string, column int) string
}

type renderer struct {
	maxWidth int
	tags     *tagTable
	out      *output
	javadoc  func(string, int) string
}

func (r *renderer) rewrite(tok *input.Tok, column int) string {
	return RewriteComment(tok.Text, r.maxWidth, column, r.javadoc)
}

// Render lays the document out and returns the formatted text together
// with the token-to-line map needed for partial replacements.
func (d *Document) Render(opts RenderOptions) *Result {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = MaxWidth
	}
	r := &renderer{
		maxWidth: opts.MaxWidth,
		tags:     newTagTable(d.ntags),
		javadoc:  opts.FormatJavadoc,
	}
	r.out = newOutput(d, r.tags)
	d.root.computeBreaks(r, newState(0, 0))
	d.root.write(r)
	return &Result{Text: r.out.finish(), doc: d, out: r.out}
}

// output accumulates rendered lines. Spaces and newlines are held back
// until the next visible character, which trims trailing whitespace and
// drops leading blank lines.
type output struct {
	doc  *Document
	tags *tagTable

	lines           []string
	line            strings.Builder
	newlinesPending int
	spacesPending   int

	lastEnd     int // source offset past the last emitted item
	started     bool
	prevJavadoc bool

	firstLine []int // per token, output line of its first item; -1 if none
	lastLine  []int
}

func newOutput(d *Document, tags *tagTable) *output {
	n := len(d.in.Tokens)
	o := &output{
		doc:       d,
		tags:      tags,
		firstLine: make([]int, n),
		lastLine:  make([]int, n),
	}
	for i := range o.firstLine {
		o.firstLine[i] = -1
		o.lastLine[i] = -1
	}
	return o
}

// column returns the column the next character would be written at.
func (o *output) column() int {
	if o.newlinesPending > 0 {
		return o.spacesPending
	}
	return TextWidth(o.line.String()) + o.spacesPending
}

func (o *output) newline(indent int) {
	o.newlinesPending = max(o.newlinesPending, 1)
	o.spacesPending = indent
}

func (o *output) appendText(text string) {
	o.write(text, -1)
}

func (o *output) appendToken(index int, text string) {
	tok := o.doc.in.Tokens[index]
	first := true
	for _, x := range tok.Before {
		if x.IsComment() {
			first = false
			break
		}
	}
	o.item(index, tok.Tok, first)
	o.write(text, index)
}

func (o *output) appendComment(index int, tok *input.Tok, text string) {
	first := false
	for _, x := range o.doc.in.Tokens[index].Before {
		if x.IsComment() {
			first = x == tok
			break
		}
	}
	o.item(index, tok, first)
	o.write(text, index)
}

// item applies the blank-line decision before a token or comment. The
// first item of a token's group follows the planner's request; later
// comments keep a source blank line, and a token after its comments keeps
// one unless the comment was a doc comment.
func (o *output) item(index int, tok *input.Tok, first bool) {
	gap := false
	if o.started {
		gap = strings.Count(o.doc.in.Text[o.lastEnd:tok.Offset], "\n") >= 2
	}
	var blank bool
	switch {
	case tok.IsComment():
		w := No
		if first {
			w = o.doc.blanks[index]
		}
		b, _ := w.wanted(o.tags)
		blank = b || gap
	case first:
		b, decided := o.doc.blanks[index].wanted(o.tags)
		blank = b || (!decided && gap)
	default:
		blank = gap && !o.prevJavadoc
	}
	if blank {
		o.newlinesPending++
	}
	o.started = true
	o.lastEnd = tok.End()
	o.prevJavadoc = tok.IsJavadocComment()
}

func (o *output) write(text string, index int) {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case ' ':
			o.spacesPending++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			fallthrough
		case '\n':
			o.spacesPending = 0
			o.newlinesPending++
		default:
			for o.newlinesPending > 0 {
				if len(o.lines) > 0 || o.line.Len() > 0 {
					o.lines = append(o.lines, o.line.String())
				}
				o.line.Reset()
				o.newlinesPending--
			}
			for o.spacesPending > 0 {
				o.line.WriteByte(' ')
				o.spacesPending--
			}
			o.spacesPending = 0
			o.line.WriteByte(c)
			if index >= 0 {
				n := len(o.lines)
				if o.firstLine[index] < 0 {
					o.firstLine[index] = n
				}
				o.lastLine[index] = n
			}
		}
	}
}

func (o *output) finish() string {
	if o.line.Len() > 0 {
		o.lines = append(o.lines, o.line.String())
		o.line.Reset()
	}
	if len(o.lines) == 0 {
		return ""
	}
	return strings.Join(o.lines, "\n") + "\n"
}

// Result is the rendered text of a document.
type Result struct {
	Text string
	doc  *Document
	out  *output
}

// Lines returns the rendered lines without terminators.
func (r *Result) Lines() []string { return r.out.lines }

// Replacement replaces the input bytes [From, To) with Text.
type Replacement struct {
	From, To int
	Text     string
}

// Replacements returns the edits that reformat the given token ranges and
// leave everything else untouched. Each range is widened to whole
// partial-format chunks and whole lines of both the input and the output.
// The result is sorted and non-overlapping.
func (r *Result) Replacements(ranges []TokenRange) []Replacement {
	chunks := r.doc.Chunks()
	var expanded []TokenRange
	for _, want := range ranges {
		if tr, ok := r.expand(chunks, want); ok {
			expanded = append(expanded, tr)
		}
	}
	sort.Slice(expanded, func(i, j int) bool { return expanded[i].First < expanded[j].First })
	var merged []TokenRange
	for _, tr := range expanded {
		if n := len(merged); n > 0 && tr.First <= merged[n-1].Last+1 {
			merged[n-1].Last = max(merged[n-1].Last, tr.Last)
			continue
		}
		merged = append(merged, tr)
	}
	out := make([]Replacement, 0, len(merged))
	for _, tr := range merged {
		out = append(out, r.replacement(tr))
	}
	return out
}

func chunkRange(chunks []TokenRange, tr TokenRange) TokenRange {
	out := tr
	for _, c := range chunks {
		if c.Last < tr.First || c.First > tr.Last {
			continue
		}
		out.First = min(out.First, c.First)
		out.Last = max(out.Last, c.Last)
	}
	return out
}

// expand widens tr until it starts and ends on line boundaries in both
// the input and the output.
func (r *Result) expand(chunks []TokenRange, tr TokenRange) (TokenRange, bool) {
	in := r.doc.in
	eof := len(in.Tokens) - 1
	if tr.First > tr.Last || tr.First > eof {
		return tr, false
	}
	tr.Last = min(tr.Last, eof)
	for {
		tr = chunkRange(chunks, tr)
		prev := tr
		if tr.First > 0 {
			start := in.Tokens[tr.First].Start()
			before := in.Tokens[tr.First-1]
			if in.LineOf(before.End()) == in.LineOf(start) && !endsWithNewline(before) ||
				r.out.lastLine[tr.First-1] >= 0 && r.out.lastLine[tr.First-1] == r.firstOutputLine(tr.First) {
				tr.First--
			}
		}
		if tr.Last < eof {
			after := in.Tokens[tr.Last+1]
			if !endsWithNewline(in.Tokens[tr.Last]) && in.LineOf(in.Tokens[tr.Last].End()) == in.LineOf(after.Start()) ||
				r.out.lastLine[tr.Last] >= 0 && r.out.lastLine[tr.Last] == r.firstOutputLine(tr.Last+1) {
				tr.Last++
			}
		}
		if tr.Last == eof-1 {
			tr.Last = eof
		}
		if tr == prev {
			return tr, true
		}
	}
}

func endsWithNewline(t *input.Token) bool {
	return len(t.After) > 0 && t.After[len(t.After)-1].IsNewline()
}

func (r *Result) firstOutputLine(i int) int {
	if l := r.out.firstLine[i]; l >= 0 {
		return l
	}
	return -2
}

func (r *Result) replacement(tr TokenRange) Replacement {
	in := r.doc.in
	text := in.Text
	eof := len(in.Tokens) - 1

	from := in.Tokens[tr.First].Start()
	for from > 0 && isSpace(text[from-1]) {
		from--
	}
	to := in.Tokens[tr.Last].End()
	if tr.Last == eof {
		to = len(text)
	} else if !endsWithNewline(in.Tokens[tr.Last]) {
		for to < len(text) && (text[to] == ' ' || text[to] == '\t') {
			to++
		}
		if to < len(text) && text[to] == '\r' {
			to++
		}
		if to < len(text) && text[to] == '\n' {
			to++
		}
	}

	first, last := -1, -1
	for i := tr.First; i <= tr.Last; i++ {
		if l := r.out.firstLine[i]; l >= 0 && (first < 0 || l < first) {
			first = l
		}
		if l := r.out.lastLine[i]; l > last {
			last = l
		}
	}

	var sb strings.Builder
	if from > 0 {
		sb.WriteByte('\n')
		if first > 0 && r.out.lines[first-1] == "" {
			sb.WriteByte('\n')
		}
	}
	if first >= 0 {
		for _, line := range r.out.lines[first : last+1] {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return Replacement{From: from, To: to, Text: sb.String()}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// Apply applies sorted, non-overlapping replacements to text.
func Apply(text string, reps []Replacement) string {
	var sb strings.Builder
	pos := 0
	for _, rep := range reps {
		sb.WriteString(text[pos:rep.From])
		sb.WriteString(rep.Text)
		pos = rep.To
	}
	sb.WriteString(text[pos:])
	return sb.String()
}
