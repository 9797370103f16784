package doc

import (
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/input"
)

// Document is a built op stream: the level tree with comments spliced in,
// the blank-line table keyed by token index and the partial-format
// boundaries.
type Document struct {
	in     *input.Input
	ops    []Op
	root   *level
	blanks map[int]BlankLineWanted
	marks  []int
	ntags  int
}

// Build finishes the stream. Every input token must have been emitted and
// every level closed. Leading comments are spliced before the opens that
// precede their token and trailing comments after the closes that follow
// it, so that they break with the enclosing level.
func (b *Builder) Build() (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()

	if !b.cur.AtEOF() {
		b.fault("did not generate token %q", b.cur.Peek())
	}
	b.CheckClosed(0)
	b.MarkForPartialFormat()
	// The end-of-input token carries the comments after the last token.
	b.add(Token{Index: b.cur.Index()})

	d := &Document{
		in:     b.in,
		blanks: make(map[int]BlankLineWanted),
		ntags:  int(b.nextTag),
	}
	var layout []Op
	for _, op := range b.ops {
		switch op := op.(type) {
		case BlankLine:
			if prev, ok := d.blanks[op.Index]; ok {
				d.blanks[op.Index] = prev.merge(op.Wanted)
			} else {
				d.blanks[op.Index] = op.Wanted
			}
		case PartialFormatMark:
			d.marks = append(d.marks, op.Index)
		default:
			layout = append(layout, op)
		}
	}
	if err := checkTags(layout); err != nil {
		return nil, err
	}
	d.ops = splice(b.in, layout)
	d.root = buildTree(d.ops)
	return d, nil
}

// checkTags rejects a conditional indent whose tag has no earlier break.
func checkTags(ops []Op) error {
	seen := make(map[BreakTag]bool)
	check := func(in Indent) error {
		for _, t := range in.tags() {
			if !seen[t] {
				return &Fault{Message: fmt.Sprintf("indent refers to tag t%d before its break", t)}
			}
		}
		return nil
	}
	for _, op := range ops {
		switch op := op.(type) {
		case Open:
			if err := check(op.Indent); err != nil {
				return err
			}
		case Break:
			if err := check(op.Indent); err != nil {
				return err
			}
			if op.Tag != 0 {
				seen[op.Tag] = true
			}
		}
	}
	return nil
}

func makeComment(index int, tok *input.Tok) []Op {
	if tok.IsSlashStarComment() {
		return []Op{comment{Index: index, Tok: tok}}
	}
	return []Op{comment{Index: index, Tok: tok}, Break{Fill: Forced}}
}

// splice inserts the comments attached to each token.
func splice(in *input.Input, ops []Op) []Op {
	n := len(ops)
	inserts := make(map[int][]Op)
	put := func(at int, op ...Op) { inserts[at] = append(inserts[at], op...) }

	for i, op := range ops {
		t, ok := op.(Token)
		if !ok {
			continue
		}
		tok := in.Tokens[t.Index]
		j := i
		for j > 0 {
			if _, ok := ops[j-1].(Open); !ok {
				break
			}
			j--
		}
		k := i
		for k+1 < n {
			if _, ok := ops[k+1].(Close); !ok {
				break
			}
			k++
		}

		newlines := 0
		space := false
		lastWasComment := false
		for _, x := range tok.Before {
			switch {
			case x.IsNewline():
				newlines++
			case x.IsComment():
				fill := Unified
				if x.IsSlashSlashComment() {
					fill = Forced
				}
				put(j, Break{Fill: fill, Indent: t.CommentsBefore})
				put(j, makeComment(t.Index, x)...)
				space = x.IsSlashStarComment()
				newlines = 0
				lastWasComment = true
				if x.IsJavadocComment() {
					put(j, Break{Fill: Forced})
				}
			}
		}
		if lastWasComment && newlines > 0 {
			put(j, Break{Fill: Forced})
		} else if space {
			put(j, Space{})
		}

		for _, x := range tok.After {
			if !x.IsComment() {
				continue
			}
			breakAfter := x.IsJavadocComment() || (x.IsSlashStarComment() && t.TrailingComment != nil)
			if breakAfter {
				indent := Zero
				if t.TrailingComment != nil {
					indent = *t.TrailingComment
				}
				put(k+1, Break{Fill: Forced, Indent: indent})
			} else {
				put(k+1, Space{})
			}
			put(k+1, makeComment(t.Index, x)...)
			if breakAfter {
				put(k+1, Break{Fill: Forced})
			}
		}
	}

	// Spaces and plain " " breaks directly after a forced break are
	// dropped.
	out := make([]Op, 0, n+len(inserts))
	afterForced := false
	emit := func(ops []Op) {
		for _, op := range ops {
			if afterForced {
				if _, ok := op.(Space); ok {
					continue
				}
			}
			out = append(out, op)
			afterForced = isForcedBreak(op)
		}
	}
	for i, op := range ops {
		emit(inserts[i])
		if afterForced && isSuppressible(op) {
			continue
		}
		out = append(out, op)
		if _, ok := op.(Open); !ok {
			afterForced = isForcedBreak(op)
		}
	}
	emit(inserts[n])
	return out
}

func isSuppressible(op Op) bool {
	switch op := op.(type) {
	case Space:
		return true
	case Break:
		return op.Indent.IsConst() && op.Indent.Const() == 0 && op.Flat == " "
	}
	return false
}

func buildTree(ops []Op) *level {
	root := &level{}
	stack := []*level{root}
	for _, op := range ops {
		top := stack[len(stack)-1]
		switch op := op.(type) {
		case Open:
			l := &level{indent: op.Indent}
			top.docs = append(top.docs, l)
			stack = append(stack, l)
		case Close:
			stack = stack[:len(stack)-1]
		case Token:
			top.docs = append(top.docs, &tokenDoc{index: op.Index, text: op.Text})
		case comment:
			top.docs = append(top.docs, &commentDoc{index: op.Index, tok: op.Tok})
		case Break:
			top.docs = append(top.docs, &breakDoc{fill: op.Fill, flat: op.Flat, indent: op.Indent, tag: op.Tag})
		case Space:
			top.docs = append(top.docs, spaceDoc{})
		}
	}
	return root
}

// Ops returns the spliced layout stream, comments included.
func (d *Document) Ops() []Op { return d.ops }

// Input returns the token table the document was built from.
func (d *Document) Input() *input.Input { return d.in }

// Chunks returns the partial-format regions as inclusive token index
// ranges, in order. Together they cover every token.
func (d *Document) Chunks() []TokenRange {
	var out []TokenRange
	prev := 0
	for _, m := range d.marks {
		if m <= prev {
			continue
		}
		out = append(out, TokenRange{First: prev, Last: m - 1})
		prev = m
	}
	last := len(d.in.Tokens) - 1
	if prev <= last {
		out = append(out, TokenRange{First: prev, Last: last})
	}
	return out
}

// TokenRange is an inclusive range of token indices.
type TokenRange struct {
	First, Last int
}
