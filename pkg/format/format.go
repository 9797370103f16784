package format

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/input"
	"github.com/leapstack-labs/leapfmt/pkg/javadoc"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// byteOrderMark is kept at the start of the output when the input has one.
const byteOrderMark = "\ufeff"

func splitBOM(src string) (mark, rest string) {
	if rest, ok := strings.CutPrefix(src, byteOrderMark); ok {
		return byteOrderMark, rest
	}
	return "", src
}

// Source formats a whole compilation unit.
func Source(src string, opts style.Options) (string, error) {
	mark, src := splitBOM(src)
	d, err := Plan(src, opts)
	if err != nil {
		return "", err
	}
	return mark + d.Render(renderOptions(opts)).Text, nil
}

// Plan parses src and returns the op stream the planner produced for it,
// after modifier reordering when the profile enables it.
func Plan(src string, opts style.Options) (*doc.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	_, src = splitBOM(src)
	if opts.ReorderModifiers {
		src = reorderModifiers(src, nil)
	}
	return plan(src, opts)
}

// LineRange is an inclusive range of 1-based lines.
type LineRange struct {
	First, Last int
}

func (r LineRange) String() string { return fmt.Sprintf("%d:%d", r.First, r.Last) }

func (r LineRange) contains(line int) bool { return line >= r.First && line <= r.Last }

// ParseLineRange parses "a:b" or a single line number "a".
func ParseLineRange(s string) (LineRange, error) {
	first, last, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		last = first
	}
	a, err := strconv.Atoi(first)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid line range %q: %w", s, err)
	}
	b, err := strconv.Atoi(last)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid line range %q: %w", s, err)
	}
	if a < 1 || b < a {
		return LineRange{}, fmt.Errorf("invalid line range %q: need 1 <= first <= last", s)
	}
	return LineRange{First: a, Last: b}, nil
}

// OffsetRange returns the lines touched by the length bytes of src starting
// at offset. A zero length selects the line holding offset.
func OffsetRange(src string, offset, length int) (LineRange, error) {
	if offset < 0 || length < 0 || offset+length > len(src) {
		return LineRange{}, fmt.Errorf("offset range %d+%d out of bounds for %d bytes", offset, length, len(src))
	}
	lines := token.NewLineIndex(src)
	end := offset + max(length-1, 0)
	return LineRange{First: lines.Position(offset).Line, Last: lines.Position(end).Line}, nil
}

// Ranges formats only the given lines, widened to whole declarations or
// statements, and leaves the rest of src byte for byte. Lines past the end
// of input are ignored.
func Ranges(src string, opts style.Options, ranges []LineRange) (string, error) {
	if len(ranges) == 0 {
		return src, nil
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	mark, src := splitBOM(src)
	if opts.ReorderModifiers {
		src = reorderModifiers(src, func(line int) bool {
			for _, r := range ranges {
				if r.contains(line) {
					return true
				}
			}
			return false
		})
	}
	d, err := plan(src, opts)
	if err != nil {
		return "", err
	}
	in := d.Input()
	var trs []doc.TokenRange
	for _, r := range ranges {
		if tr, ok := lineTokens(in, r); ok {
			trs = append(trs, tr)
		}
	}
	if len(trs) == 0 {
		return mark + src, nil
	}
	res := d.Render(renderOptions(opts))
	return mark + doc.Apply(src, res.Replacements(trs)), nil
}

// lineTokens returns the tokens that overlap the lines of r.
func lineTokens(in *input.Input, r LineRange) (doc.TokenRange, bool) {
	if r.First > in.Lines.LineCount() {
		return doc.TokenRange{}, false
	}
	start := in.LineStart(r.First)
	end := len(in.Text)
	if r.Last < in.Lines.LineCount() {
		end = in.LineStart(r.Last + 1)
	}
	first := sort.Search(len(in.Tokens), func(i int) bool { return in.Tokens[i].Tok.End() > start })
	last := sort.Search(len(in.Tokens), func(i int) bool { return in.Tokens[i].Tok.Offset >= end }) - 1
	// The end-of-input token is empty and never overlaps a line.
	last = min(last, len(in.Tokens)-2)
	if first > last {
		return doc.TokenRange{}, false
	}
	return doc.TokenRange{First: first, Last: last}, true
}

func renderOptions(opts style.Options) doc.RenderOptions {
	ro := doc.RenderOptions{MaxWidth: opts.MaxWidth}
	if opts.FormatJavadoc {
		width := opts.MaxWidth
		ro.FormatJavadoc = func(text string, column int) string {
			return javadoc.Format(text, column, width)
		}
	}
	return ro
}

func plan(src string, opts style.Options) (*doc.Document, error) {
	file, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	in := input.New(src, file.Tokens, file.Comments)
	p := newPlanner(in, opts)
	if err := p.run(file.Unit); err != nil {
		return nil, err
	}
	d, err := p.b.Build()
	if err != nil {
		var f *doc.Fault
		if errors.As(err, &f) {
			return nil, consistencyFault(in, f)
		}
		return nil, err
	}
	return d, nil
}

// run plans unit, turning any panic below into a fault.
func (p *planner) run(unit *ast.CompilationUnit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFault(p.in, r, unit.Pos())
		}
	}()
	p.scan(unit)
	return nil
}
