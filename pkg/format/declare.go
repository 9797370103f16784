package format

import (
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

// dimQueue holds the dimensions still to be written for a type: one
// annotation group per bracket pair, outermost first, and the dimension
// expressions of an array creation.
type dimQueue struct {
	annos [][]*ast.Annotation
	exprs []ast.Expr
}

func (q *dimQueue) len() int {
	if q == nil {
		return 0
	}
	return len(q.annos)
}

// extractDims splits the array dimensions off t. The returned base is the
// innermost non-array type.
func extractDims(t ast.Expr) (ast.Expr, *dimQueue) {
	q := &dimQueue{}
	for {
		at, ok := t.(*ast.ArrayType)
		if !ok {
			return t, q
		}
		q.annos = append(q.annos, at.Annotations)
		t = at.Elem
	}
}

// dropDims returns q without its first n dimensions.
func dropDims(q *dimQueue, n int) *dimQueue {
	n = min(n, len(q.annos))
	return &dimQueue{annos: q.annos[n:], exprs: q.exprs}
}

// maybeAddDims writes the dimensions that follow the cursor, taking their
// annotations and expressions from q, and returns how many bracket pairs
// it wrote. The source may split dimensions between the type and the
// declarator name, so it stops at the first token that is not part of one.
func (p *planner) maybeAddDims(q *dimQueue) int {
	if q == nil {
		return 0
	}
	written := 0
	lastWasAnnotation := false
	dimBreak := func() {
		if lastWasAnnotation {
			p.b.BreakToFill(" ")
		} else {
			p.b.BreakToFill("")
		}
	}
	for {
		switch p.b.Peek() {
		case "@":
			if len(q.annos) == 0 || len(q.annos[0]) == 0 {
				return written
			}
			p.breakToFill()
			p.visitAnnotations(q.annos[0], false, false)
			q.annos[0] = nil
			lastWasAnnotation = true
		case "[":
			if len(q.annos) == 0 {
				return written
			}
			q.annos = q.annos[1:]
			dimBreak()
			p.b.Token("[")
			if p.b.Peek() != "]" && len(q.exprs) > 0 {
				p.scan(q.exprs[0])
				q.exprs = q.exprs[1:]
			}
			p.b.Token("]")
			written++
			lastWasAnnotation = false
		case ".":
			if len(q.annos) == 0 || p.b.PeekAt(1) != "." || p.b.PeekAt(2) != "." {
				return written
			}
			q.annos = q.annos[1:]
			dimBreak()
			p.b.Op("...")
			written++
			lastWasAnnotation = false
		default:
			return written
		}
	}
}

// declaration describes one variable or variable-like declarator.
type declaration struct {
	kind declKind
	dir  direction
	mods *ast.Modifiers
	// typ is scanned whole unless base is set, in which case base is
	// scanned and dims supplies its dimensions.
	typ      ast.Expr
	base     ast.Expr
	dims     *dimQueue
	name     string
	equals   string
	init     ast.Expr
	trailing string
}

func (d declaration) hasType() bool { return d.typ != nil || d.base != nil }

// withDims splits the dimensions off t for a declaration.
func (d declaration) withDims(t ast.Expr) declaration {
	if t == nil {
		return d
	}
	d.base, d.dims = extractDims(t)
	return d
}

// declareOne lays out a single declarator and returns the number of
// dimensions written between the type and the name.
func (p *planner) declareOne(d declaration) int {
	typeBreak := p.b.NewTag()
	annotationBreak := p.b.NewTag()

	isField := d.kind == declField
	if isField {
		p.b.BlankLineWanted(doc.Conditional(annotationBreak))
	}

	s := p.split(d.mods, annotationsOf(d.mods))
	outer := doc.Zero
	if d.kind == declParameter && s.hasDeclarationAnnotation() {
		outer = p.plusFour
	}
	baseDims := 0
	p.b.Open(outer)
	{
		typeAnnos := p.visitModifiers(s, d.dir, annotationBreak)
		hasType := d.hasType()
		typeIndent := doc.Zero
		if hasType {
			typeIndent = p.plusFour
		}
		p.b.Open(typeIndent)
		{
			p.b.Open(doc.Zero)
			{
				p.b.Open(doc.Zero)
				p.visitAnnotations(typeAnnos, false, true)
				if d.base != nil {
					p.scan(d.base)
					p.b.Open(p.plusFour)
					baseDims = p.maybeAddDims(d.dims)
					p.b.Close()
				} else {
					p.scan(d.typ)
				}
				p.b.Close()

				if hasType {
					p.b.Break(doc.Independent, " ", doc.Zero, typeBreak)
				}
				// The name and initializer move right when the type wraps.
				p.b.Open(p.b.IfBroke(typeBreak, p.plusFour, doc.Zero))
				p.variableName(d.name)
			}
			p.maybeAddDims(d.dims)
			p.b.Close()
		}
		p.b.Close()

		if d.init != nil {
			p.b.Space()
			p.b.Token(d.equals)
			if arr, ok := d.init.(*ast.NewArray); ok && arr.Type == nil {
				p.b.Open(p.minusFour)
				p.b.Space()
				p.scan(d.init)
				p.b.Close()
			} else {
				p.b.Open(p.b.IfBroke(typeBreak, p.plusFour, doc.Zero))
				p.breakToFill()
				p.scan(d.init)
				p.b.Close()
			}
		}
		if d.trailing != "" && p.b.Peek() == d.trailing {
			p.b.GuessToken(d.trailing)
		}
		p.b.Close()
	}
	p.b.Close()

	if isField {
		p.b.BlankLineWanted(doc.Conditional(annotationBreak))
	}
	return baseDims
}

// variableName writes a declarator name; a receiver named Outer.this is
// three tokens.
func (p *planner) variableName(name string) {
	for i, part := range strings.Split(name, ".") {
		if i > 0 {
			p.b.Token(".")
		}
		p.b.Token(part)
	}
}

// declareMany lays out `int a = 1, b[] = {2};` keeping the shared type
// once and each declarator's own dimensions next to its name.
func (p *planner) declareMany(fragments []*ast.VariableDecl, dir direction) {
	first := fragments[0]
	p.b.Open(doc.Zero)
	p.visitAndBreakModifiers(first.Modifiers, dir, 0)
	p.b.Open(p.plusFour)
	p.b.Open(doc.Zero)
	base, q := extractDims(first.Type)
	p.scan(base)
	baseDims := p.maybeAddDims(q)
	for i, f := range fragments {
		own := q
		if i > 0 {
			p.b.Token(",")
			_, all := extractDims(f.Type)
			own = dropDims(all, baseDims)
		}
		p.b.BreakOp(" ")
		p.b.Open(doc.Zero)
		p.maybeAddDims(own)
		p.variableName(f.Name)
		p.maybeAddDims(own)
		if f.Init != nil {
			p.b.Space()
			p.b.Token("=")
			p.b.Open(p.plusFour)
			p.b.BreakOp(" ")
			p.scan(f.Init)
			p.b.Close()
		}
		p.b.Close()
		if i == 0 {
			p.b.Close()
		}
	}
	p.b.Close()
	p.b.Token(";")
	p.b.Close()
}

// visitVariables declares one or more fragments of the same declaration.
func (p *planner) visitVariables(fragments []*ast.VariableDecl, kind declKind, dir direction) {
	if len(fragments) > 1 {
		p.declareMany(fragments, dir)
		return
	}
	f := fragments[0]
	p.declareOne(declaration{
		kind:     kind,
		dir:      dir,
		mods:     f.Modifiers,
		name:     f.Name,
		equals:   "=",
		init:     f.Init,
		trailing: ";",
	}.withDims(f.Type))
}

// variableFragments returns the run of declarations starting at
// nodes[i] that came from one source declaration. Fragments share their
// start position.
func variableFragments[N ast.Node](nodes []N, i int) []*ast.VariableDecl {
	first, ok := any(nodes[i]).(*ast.VariableDecl)
	if !ok {
		return nil
	}
	out := []*ast.VariableDecl{first}
	for _, n := range nodes[i+1:] {
		v, ok := any(n).(*ast.VariableDecl)
		if !ok || v.Pos() != first.Pos() {
			break
		}
		out = append(out, v)
	}
	return out
}

// visitFormals lays out a parameter list, receiver parameter first.
func (p *planner) visitFormals(receiver *ast.VariableDecl, params []*ast.VariableDecl) {
	if receiver == nil && len(params) == 0 {
		return
	}
	p.b.Open(doc.Zero)
	after := false
	if receiver != nil {
		trailing := ""
		if len(params) > 0 {
			trailing = ","
		}
		p.declareOne(declaration{
			kind:     declParameter,
			dir:      horizontal,
			mods:     receiver.Modifiers,
			typ:      receiver.Type,
			name:     receiver.Name,
			trailing: trailing,
		})
		after = true
	}
	for i, param := range params {
		if after {
			p.b.BreakOp(" ")
		}
		trailing := ""
		if i < len(params)-1 {
			trailing = ","
		}
		p.b.Sync(param.Pos())
		p.declareOne(declaration{
			kind:     declParameter,
			dir:      horizontal,
			mods:     param.Modifiers,
			name:     param.Name,
			equals:   "=",
			trailing: trailing,
		}.withDims(param.Type))
		after = true
	}
	p.b.Close()
}
