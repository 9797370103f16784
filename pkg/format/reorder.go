package format

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// modifierOrder is the JLS order of modifier keywords.
var modifierOrder = map[string]int{
	"public":       0,
	"protected":    1,
	"private":      2,
	"abstract":     3,
	"default":      4,
	"static":       5,
	"sealed":       6,
	"non-sealed":   7,
	"final":        8,
	"transient":    9,
	"volatile":     10,
	"synchronized": 11,
	"native":       12,
	"strictfp":     13,
}

// slot is one modifier keyword in the source.
type slot struct {
	from, to int
	text     string
	line     int
}

// reorderModifiers rewrites each run of adjacent modifier keywords into
// modifier order. A run is broken by anything that is not a modifier, so
// annotations stay where they are. Keywords move between the existing
// slots, which leaves the line structure of src unchanged. When inRange is
// set only runs starting on a line it accepts are rewritten. Source that
// does not lex is returned as is.
func reorderModifiers(src string, inRange func(line int) bool) string {
	lx := parser.NewLexer(src)
	toks := lx.Tokenize()
	if len(lx.Errors) > 0 {
		return src
	}

	var edits []slot
	var run []slot
	flush := func() {
		if len(run) > 1 && (inRange == nil || inRange(run[0].line)) {
			sorted := slices.Clone(run)
			slices.SortStableFunc(sorted, func(a, b slot) int {
				return modifierOrder[a.text] - modifierOrder[b.text]
			})
			for i := range run {
				if run[i].text != sorted[i].text {
					edits = append(edits, slot{from: run[i].from, to: run[i].to, text: sorted[i].text})
				}
			}
		}
		run = run[:0]
	}

	for i := 0; i < len(toks); i++ {
		s, n, ok := modifierAt(toks, i)
		if !ok {
			flush()
			continue
		}
		run = append(run, s)
		i += n - 1
	}
	flush()

	if len(edits) == 0 {
		return src
	}
	var sb strings.Builder
	pos := 0
	for _, e := range edits {
		sb.WriteString(src[pos:e.from])
		sb.WriteString(e.text)
		pos = e.to
	}
	sb.WriteString(src[pos:])
	return sb.String()
}

// modifierAt reports whether a modifier starts at toks[i], returning its
// slot and the number of tokens it spans. The contextual sealed and
// non-sealed count only when another modifier or a type keyword follows.
func modifierAt(toks []token.Token, i int) (slot, int, bool) {
	t := toks[i]
	s := slot{from: t.Pos.Offset, to: t.End(), text: t.Literal, line: t.Pos.Line}
	if token.IsModifier(t.Type) {
		// default in a switch label is followed by ':' or '->'.
		if t.Type == token.DEFAULT && i+1 < len(toks) && !startsDeclaration(toks, i+1) {
			return s, 0, false
		}
		return s, 1, true
	}
	if t.Is("sealed") && i+1 < len(toks) && startsDeclaration(toks, i+1) {
		return s, 1, true
	}
	if t.Is("non") && i+3 < len(toks) &&
		toks[i+1].Type == token.MINUS && toks[i+1].Pos.Offset == t.End() &&
		toks[i+2].Is("sealed") && toks[i+2].Pos.Offset == toks[i+1].End() &&
		startsDeclaration(toks, i+3) {
		s.to = toks[i+2].End()
		s.text = "non-sealed"
		return s, 3, true
	}
	return s, 0, false
}

func startsDeclaration(toks []token.Token, i int) bool {
	t := toks[i]
	switch {
	case token.IsModifier(t.Type):
		return t.Type != token.DEFAULT || i+1 < len(toks) && startsDeclaration(toks, i+1)
	case t.Type == token.CLASS, t.Type == token.INTERFACE, t.Type == token.ENUM, t.Type == token.VOID:
		return true
	case t.Is("sealed"), t.Is("non"), t.Is("record"):
		return true
	}
	return t.Type == token.IDENT || token.IsPrimitive(t.Type) || t.Type == token.LT || t.Type == token.AT
}
