package doc

import (
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/input"
)

// Fault is raised by the Builder when the op stream disagrees with the
// token table. The Builder panics with a *Fault; callers recover it at the
// top of a formatting run.
type Fault struct {
	Offset  int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("inconsistent op stream at offset %d: %s", f.Offset, f.Message)
}

// Builder accumulates the op stream for one compilation unit. It owns the
// cursor into the token table: every emitted token must be the next input
// token.
type Builder struct {
	in      *input.Input
	cur     *input.Cursor
	ops     []Op
	depth   int
	nextTag BreakTag
	emitted map[BreakTag]bool
	// synced is the furthest source offset passed to Sync.
	synced   int
	lastMark int
}

// NewBuilder returns a builder positioned at the first token of in.
func NewBuilder(in *input.Input) *Builder {
	return &Builder{
		in:       in,
		cur:      input.NewCursor(in),
		emitted:  make(map[BreakTag]bool),
		lastMark: -1,
	}
}

// Input returns the token table the builder reads.
func (b *Builder) Input() *input.Input { return b.in }

// Ops returns the ops emitted so far.
func (b *Builder) Ops() []Op { return b.ops }

func (b *Builder) add(op Op) { b.ops = append(b.ops, op) }

func (b *Builder) fault(format string, args ...any) {
	panic(&Fault{Offset: b.cur.Offset(), Message: fmt.Sprintf(format, args...)})
}

// Open starts a level.
func (b *Builder) Open(indent Indent) {
	b.depth++
	b.add(Open{Indent: indent})
}

// Close ends the innermost level.
func (b *Builder) Close() {
	if b.depth == 0 {
		b.fault("close without matching open")
	}
	b.depth--
	b.add(Close{})
}

// Depth returns the number of open levels.
func (b *Builder) Depth() int { return b.depth }

// CheckClosed faults unless the depth is back to previous.
func (b *Builder) CheckClosed(previous int) {
	if b.depth != previous {
		b.fault("saw %d unclosed ops, expected %d", b.depth, previous)
	}
}

// Token emits the next input token, which must be text.
func (b *Builder) Token(text string) {
	b.token(text, true, Zero, nil)
}

// TokenCommentIndent emits text and indents any comments spliced before it
// by commentsBefore.
func (b *Builder) TokenCommentIndent(text string, commentsBefore Indent) {
	b.token(text, true, commentsBefore, nil)
}

// TokenBreakTrailingComment emits text and moves a trailing block comment
// onto its own line, indented by trailing.
func (b *Builder) TokenBreakTrailingComment(text string, commentsBefore, trailing Indent) {
	b.token(text, true, commentsBefore, &trailing)
}

// GuessToken emits text only if it is the next input token. It is used for
// optional punctuation such as a trailing comma.
func (b *Builder) GuessToken(text string) {
	b.token(text, false, Zero, nil)
}

func (b *Builder) token(text string, real bool, commentsBefore Indent, trailing *Indent) {
	if !b.cur.AtEOF() && text == b.cur.Peek() {
		b.add(Token{
			Index:           b.cur.Index(),
			Text:            text,
			CommentsBefore:  commentsBefore,
			TrailingComment: trailing,
		})
		b.cur.Advance()
		return
	}
	if real {
		b.fault("expected token %q; generated %q instead", b.cur.Peek(), text)
	}
}

// Op emits a multi-character operator, one token per character.
func (b *Builder) Op(text string) {
	for i := 0; i < len(text); i++ {
		b.Token(text[i : i+1])
	}
}

// Space emits an unbreakable space.
func (b *Builder) Space() { b.add(Space{}) }

// Break emits a break with every field explicit.
func (b *Builder) Break(fill FillMode, flat string, indent Indent, tag BreakTag) {
	if tag != 0 {
		b.emitted[tag] = true
	}
	b.add(Break{Fill: fill, Flat: flat, Indent: indent, Tag: tag})
}

// BreakOp emits a unified break that renders as flat when not taken.
func (b *Builder) BreakOp(flat string) { b.Break(Unified, flat, Zero, 0) }

// BreakToFill emits an independent break.
func (b *Builder) BreakToFill(flat string) { b.Break(Independent, flat, Zero, 0) }

// ForcedBreak emits a break that is always taken.
func (b *Builder) ForcedBreak() { b.Break(Forced, "", Zero, 0) }

// NewTag allocates a break tag.
func (b *Builder) NewTag() BreakTag {
	b.nextTag++
	return b.nextTag
}

// IfBroke returns an indent conditional on tag. When no break carrying tag
// has been emitted yet the else-branch is returned, so the stream never
// refers to a tag ahead of its break.
func (b *Builder) IfBroke(tag BreakTag, then, els Indent) Indent {
	if !b.emitted[tag] {
		return els
	}
	return IfTagBroke(tag, then, els)
}

// TagEmitted reports whether a break carrying tag has been emitted.
func (b *Builder) TagEmitted(tag BreakTag) bool { return b.emitted[tag] }

// BlankLineWanted requests a blank-line decision before the next token.
func (b *Builder) BlankLineWanted(w BlankLineWanted) {
	b.add(BlankLine{Index: b.cur.Index(), Wanted: w})
}

// MarkForPartialFormat records the next token as a partial-format
// boundary.
func (b *Builder) MarkForPartialFormat() {
	i := b.cur.Index()
	if i == b.lastMark {
		return
	}
	b.lastMark = i
	b.add(PartialFormatMark{Index: i})
}

// Sync checks that no input token before offset was skipped.
func (b *Builder) Sync(offset int) {
	if offset <= b.synced {
		return
	}
	b.synced = offset
	if !b.cur.AtEOF() && offset > b.cur.Offset() {
		b.fault("did not generate token %q", b.cur.Peek())
	}
}

// Peek returns the next unconsumed token text, "" at end of input.
func (b *Builder) Peek() string { return b.cur.Peek() }

// PeekAt returns the token text k places after the next one.
func (b *Builder) PeekAt(k int) string { return b.cur.PeekAt(k) }

// PeekTokens returns the run of tokens starting at offset, which must be
// the cursor position, for which pred holds.
func (b *Builder) PeekTokens(offset int, pred func(*input.Tok) bool) []*input.Tok {
	if b.cur.Offset() != offset {
		b.fault("token lookahead at offset %d, cursor at %d", offset, b.cur.Offset())
	}
	var out []*input.Tok
	for i := b.cur.Index(); i < len(b.in.Tokens)-1; i++ {
		tok := b.in.Tokens[i].Tok
		if !pred(tok) {
			break
		}
		out = append(out, tok)
	}
	return out
}

// Offset returns the source offset of the next unconsumed token.
func (b *Builder) Offset() int { return b.cur.Offset() }

// ActualSize returns the source width of [offset, offset+length) widened
// to attached comments.
func (b *Builder) ActualSize(offset, length int) int {
	return b.in.ActualSize(offset, length)
}

// ActualStartColumn returns the source column of the token at offset,
// moved left over comments on the same line.
func (b *Builder) ActualStartColumn(offset int) int {
	return b.in.ActualStartColumn(offset)
}
