package format

import (
	"sort"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

// modifier is one modifier keyword or declaration annotation, in source
// order.
type modifier struct {
	pos     int
	keyword string
	ann     *ast.Annotation
}

// splitModifiers is the result of separating a declaration's modifiers
// from the trailing run of type-use annotations.
type splitModifiers struct {
	decl      []modifier
	typeAnnos []*ast.Annotation
}

func (s splitModifiers) hasDeclarationAnnotation() bool {
	for _, m := range s.decl {
		if m.ann != nil {
			return true
		}
	}
	return false
}

// split orders the keywords and annotations by position and peels off the
// trailing type-use annotations, which belong next to the type.
func (p *planner) split(mods *ast.Modifiers, annos []*ast.Annotation) splitModifiers {
	if mods == nil || (len(annos) == 0 && len(mods.Keywords) == 0) {
		return splitModifiers{}
	}
	all := make([]modifier, 0, len(mods.Keywords)+len(annos))
	for _, k := range mods.Keywords {
		all = append(all, modifier{pos: k.Pos.Offset, keyword: k.Literal})
	}
	for _, a := range annos {
		all = append(all, modifier{pos: a.Pos(), ann: a})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	i := len(all)
	for i > 0 && all[i-1].ann != nil && p.isTypeAnnotation(all[i-1].ann) {
		i--
	}
	out := splitModifiers{decl: all[:i]}
	for _, m := range all[i:] {
		out.typeAnnos = append(out.typeAnnos, m.ann)
	}
	return out
}

func (p *planner) isTypeAnnotation(a *ast.Annotation) bool {
	id, ok := a.Name.(*ast.Identifier)
	return ok && p.types.IsTypeUse(id.Name)
}

// visitModifiers emits the declaration modifiers and returns the type-use
// annotations left for the caller to place. Leading annotations are
// separated by tag-carrying breaks, forced when dir is vertical.
func (p *planner) visitModifiers(s splitModifiers, dir direction, tag doc.BreakTag) []*ast.Annotation {
	if len(s.decl) == 0 {
		return s.typeAnnos
	}
	annotationBreak := func() {
		if dir == vertical {
			p.b.Break(doc.Forced, "", doc.Zero, tag)
		} else {
			p.b.Break(doc.Unified, " ", doc.Zero, tag)
		}
	}
	rest := s.decl
	p.b.Open(doc.Zero)
	for i := 0; len(rest) > 0 && rest[0].ann != nil; i++ {
		if i > 0 {
			annotationBreak()
		}
		p.scan(rest[0].ann)
		rest = rest[1:]
	}
	lastWasAnnotation := len(rest) < len(s.decl)
	p.b.Close()
	if len(rest) == 0 {
		annotationBreak()
		return s.typeAnnos
	}
	if lastWasAnnotation {
		annotationBreak()
	}

	p.b.Open(doc.Zero)
	for i, m := range rest {
		if i > 0 {
			p.breakFill()
		}
		p.modifier(m)
	}
	p.b.Close()
	p.breakFill()
	return s.typeAnnos
}

func (p *planner) breakFill() {
	p.b.Open(doc.Zero)
	p.b.Break(doc.Independent, " ", doc.Zero, 0)
	p.b.Close()
}

func (p *planner) modifier(m modifier) {
	switch {
	case m.ann != nil:
		p.scan(m.ann)
	case m.keyword == "non-sealed":
		p.b.Token("non")
		p.b.Token("-")
		p.b.Token("sealed")
	default:
		p.b.Token(m.keyword)
	}
}

func annotationsOf(mods *ast.Modifiers) []*ast.Annotation {
	if mods == nil {
		return nil
	}
	return mods.Annotations
}

// typeDeclarationModifiers puts every annotation of a type declaration on
// its own line.
func (p *planner) typeDeclarationModifiers(mods *ast.Modifiers) {
	typeAnnos := p.visitModifiers(p.split(mods, annotationsOf(mods)), vertical, 0)
	p.verticalAnnotations(typeAnnos)
}

// visitAndBreakModifiers emits the modifiers followed by any type-use
// annotations and a break before the type.
func (p *planner) visitAndBreakModifiers(mods *ast.Modifiers, dir direction, tag doc.BreakTag) {
	typeAnnos := p.visitModifiers(p.split(mods, annotationsOf(mods)), dir, tag)
	p.visitAnnotations(typeAnnos, false, true)
}

// visitAnnotations emits annotations separated by fill breaks, with
// optional breaks before and after the run.
func (p *planner) visitAnnotations(annos []*ast.Annotation, breakBefore, breakAfter bool) {
	if len(annos) == 0 {
		return
	}
	if breakBefore {
		p.breakToFill()
	}
	for i, a := range annos {
		if i > 0 {
			p.breakToFill()
		}
		p.scan(a)
	}
	if breakAfter {
		p.breakToFill()
	}
}

func (p *planner) verticalAnnotations(annos []*ast.Annotation) {
	for _, a := range annos {
		p.forcedBreak()
		p.scan(a)
		p.forcedBreak()
	}
}

// localDirection keeps a local's annotations inline only when there is at
// most one and it takes no arguments.
func localDirection(mods *ast.Modifiers) direction {
	annos := annotationsOf(mods)
	parameterless := 0
	for _, a := range annos {
		if len(a.Args) == 0 {
			parameterless++
		}
	}
	if parameterless <= 1 && parameterless == len(annos) {
		return horizontal
	}
	return vertical
}
