// Package doc is the document algebra shared by the formatting planner and
// the renderer.
//
// The planner appends Ops to a Builder in source order. Build splices the
// comments recorded in the token table into the op stream and assembles a
// tree of Levels. Render resolves every Break against the maximum width and
// writes the result through an Output, which applies the blank-line table
// and tracks where each input token landed so that a restricted range can
// be replaced without touching the rest of the file.
package doc

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/input"
)

// FillMode controls how the breaks of one level are taken.
type FillMode int

// Fill modes.
const (
	// Unified breaks all break together or not at all.
	Unified FillMode = iota
	// Independent breaks are taken one at a time, only when the next
	// segment would not fit.
	Independent
	// Forced breaks always break.
	Forced
)

// String returns the lower-case name of the mode.
func (m FillMode) String() string {
	switch m {
	case Unified:
		return "unified"
	case Independent:
		return "independent"
	case Forced:
		return "forced"
	default:
		return fmt.Sprintf("FillMode(%d)", int(m))
	}
}

// BreakTag is a handle to the outcome of one Break. Tags are allocated by
// Builder.NewTag starting at 1; the zero tag means "untagged".
type BreakTag int

// Indent is a signed number of columns, either constant or chosen by the
// outcome of an earlier tagged break.
type Indent struct {
	units int
	cond  *condIndent
}

type condIndent struct {
	tag       BreakTag
	then, els Indent
}

// Zero is the empty indent.
var Zero = Indent{}

// Units returns a constant indent of n columns. The planner multiplies the
// style's indent unit in before calling Units.
func Units(n int) Indent { return Indent{units: n} }

// IfTagBroke returns an indent that evaluates to then when tag's break was
// taken and to els otherwise. Prefer Builder.IfBroke, which checks that the
// tag has been emitted.
func IfTagBroke(tag BreakTag, then, els Indent) Indent {
	return Indent{cond: &condIndent{tag: tag, then: then, els: els}}
}

// IsConst reports whether the indent does not depend on a tag.
func (in Indent) IsConst() bool { return in.cond == nil }

// Const returns the value of a constant indent; conditional indents
// return their else-branch.
func (in Indent) Const() int {
	if in.cond != nil {
		return in.cond.els.Const()
	}
	return in.units
}

func (in Indent) eval(tags *tagTable) int {
	if in.cond == nil {
		return in.units
	}
	if tags.broken(in.cond.tag) {
		return in.cond.then.eval(tags)
	}
	return in.cond.els.eval(tags)
}

// tags returns every tag the indent refers to.
func (in Indent) tags() []BreakTag {
	if in.cond == nil {
		return nil
	}
	out := []BreakTag{in.cond.tag}
	out = append(out, in.cond.then.tags()...)
	return append(out, in.cond.els.tags()...)
}

// String renders the indent for op dumps.
func (in Indent) String() string {
	if in.cond == nil {
		return fmt.Sprintf("%+d", in.units)
	}
	return fmt.Sprintf("if(t%d,%s,%s)", in.cond.tag, in.cond.then, in.cond.els)
}

// BlankKind is the kind of a blank-line request.
type BlankKind int

// Blank-line kinds.
const (
	BlankNo BlankKind = iota
	BlankYes
	BlankPreserve
	BlankConditional
)

// String returns the request kind name.
func (k BlankKind) String() string {
	switch k {
	case BlankNo:
		return "no"
	case BlankYes:
		return "yes"
	case BlankPreserve:
		return "preserve"
	case BlankConditional:
		return "conditional"
	default:
		return fmt.Sprintf("BlankKind(%d)", int(k))
	}
}

// BlankLineWanted is a blank-line request for the position before a token.
type BlankLineWanted struct {
	Kind BlankKind
	Tags []BreakTag // for BlankConditional
}

// Simple blank-line requests.
var (
	Yes      = BlankLineWanted{Kind: BlankYes}
	No       = BlankLineWanted{Kind: BlankNo}
	Preserve = BlankLineWanted{Kind: BlankPreserve}
)

// Conditional returns a request that is Yes when tag's break was taken and
// Preserve otherwise.
func Conditional(tag BreakTag) BlankLineWanted {
	return BlankLineWanted{Kind: BlankConditional, Tags: []BreakTag{tag}}
}

// merge combines an existing request with a later one for the same
// position. A simple request always wins over a conditional one; two
// conditionals watch the union of their tags.
func (w BlankLineWanted) merge(other BlankLineWanted) BlankLineWanted {
	if w.Kind != BlankConditional {
		return w
	}
	if other.Kind != BlankConditional {
		return other
	}
	tags := make([]BreakTag, 0, len(w.Tags)+len(other.Tags))
	tags = append(tags, w.Tags...)
	tags = append(tags, other.Tags...)
	return BlankLineWanted{Kind: BlankConditional, Tags: tags}
}

// wanted resolves the request: the second result is false when the source
// gap decides.
func (w BlankLineWanted) wanted(tags *tagTable) (blank, decided bool) {
	switch w.Kind {
	case BlankYes:
		return true, true
	case BlankNo:
		return false, true
	case BlankConditional:
		for _, t := range w.Tags {
			if tags.broken(t) {
				return true, true
			}
		}
	}
	return false, false
}

func (w BlankLineWanted) String() string {
	if w.Kind != BlankConditional {
		return w.Kind.String()
	}
	parts := make([]string, len(w.Tags))
	for i, t := range w.Tags {
		parts[i] = fmt.Sprintf("t%d", t)
	}
	return "conditional(" + strings.Join(parts, ",") + ")"
}

// Op is one element of the planner's output stream.
type Op interface {
	op()
	String() string
}

// Token emits one input token.
type Token struct {
	Index int // index into the token table
	Text  string
	// CommentsBefore is added to the indent of comments spliced before the
	// token.
	CommentsBefore Indent
	// TrailingComment, when set, puts a trailing block comment on its own
	// line at this indent.
	TrailingComment *Indent
}

// Open starts a level indented by Indent relative to the enclosing one.
type Open struct {
	Indent Indent
}

// Close ends the innermost open level.
type Close struct{}

// Break is a candidate line break. Flat is emitted when the break is not
// taken; Indent is added to the level indent when it is.
type Break struct {
	Fill   FillMode
	Flat   string
	Indent Indent
	Tag    BreakTag
}

// Space is an unbreakable single space.
type Space struct{}

// BlankLine requests a blank-line decision before the token at Index.
type BlankLine struct {
	Index  int
	Wanted BlankLineWanted
}

// PartialFormatMark records that a restricted format may start or end
// before the token at Index.
type PartialFormatMark struct {
	Index int
}

// comment is a spliced comment tok; it never appears in a planner stream.
type comment struct {
	Index int // index of the token it is attached to
	Tok   *input.Tok
}

func (Token) op() {}
func (Open) op() {}
func (Close) op() {}
func (Break) op() {}
func (Space) op() {}
func (BlankLine) op() {}
func (PartialFormatMark) op() {}
func (comment) op() {}

func (o Token) String() string { return fmt.Sprintf("token %q", o.Text) }
func (o Open) String() string { return "open " + o.Indent.String() }
func (Close) String() string { return "close" }
func (o Break) String() string {
	s := fmt.Sprintf("break %s %q %s", o.Fill, o.Flat, o.Indent)
	if o.Tag != 0 {
		s += fmt.Sprintf(" t%d", o.Tag)
	}
	return s
}

func (Space) String() string { return "space" }
func (o BlankLine) String() string { return fmt.Sprintf("blank %s @%d", o.Wanted, o.Index) }
func (o PartialFormatMark) String() string { return fmt.Sprintf("mark @%d", o.Index) }
func (o comment) String() string { return fmt.Sprintf("comment %q", o.Tok.Text) }

func isForcedBreak(op Op) bool {
	b, ok := op.(Break)
	return ok && b.Fill == Forced
}
