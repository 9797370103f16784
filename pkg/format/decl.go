package format

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

func (p *planner) visitCompilationUnit(u *ast.CompilationUnit) {
	afterFirst := false
	if u.Package != nil {
		p.markForPartialFormat()
		p.visitPackage(u.Package)
		p.forcedBreak()
		afterFirst = true
	}
	p.dropEmptyDeclarations()
	if len(u.Imports) > 0 {
		if afterFirst {
			p.b.BlankLineWanted(doc.Yes)
		}
		for _, imp := range u.Imports {
			p.markForPartialFormat()
			p.b.BlankLineWanted(doc.Preserve)
			p.scan(imp)
			p.forcedBreak()
		}
		afterFirst = true
	}
	p.dropEmptyDeclarations()
	for _, t := range u.Types {
		if afterFirst {
			p.b.BlankLineWanted(doc.Yes)
		}
		p.markForPartialFormat()
		p.scan(t)
		p.forcedBreak()
		afterFirst = true
		p.dropEmptyDeclarations()
	}
	if u.Module != nil {
		if afterFirst {
			p.b.BlankLineWanted(doc.Yes)
		}
		p.markForPartialFormat()
		p.visitModule(u.Module)
		p.forcedBreak()
	}
	// A mark at end of input lets a range reach the last line.
	p.markForPartialFormat()
}

func (p *planner) visitPackage(n *ast.PackageDecl) {
	if len(n.Annotations) > 0 {
		for _, a := range n.Annotations {
			p.forcedBreak()
			p.scan(a)
		}
		p.forcedBreak()
	}
	p.b.Open(p.plusFour)
	p.b.Token("package")
	p.b.Space()
	p.visitName(n.Name)
	p.b.Close()
	p.b.Token(";")
}

func (p *planner) visitImport(n *ast.ImportDecl) {
	if !n.Static {
		p.types.Import(nameOf(n.Name))
	}
	p.b.Token("import")
	p.b.Space()
	if n.Static {
		p.b.Token("static")
		p.b.Space()
	}
	p.visitName(n.Name)
	p.b.Token(";")
	p.dropEmptyDeclarations()
}

func (p *planner) visitClass(n *ast.ClassDecl) {
	switch n.DeclKind {
	case ast.DeclAnnotation:
		p.visitAnnotationType(n)
	case ast.DeclEnum:
		p.visitEnum(n)
	case ast.DeclRecord:
		p.visitRecord(n)
	default:
		p.visitClassDeclaration(n)
	}
}

func (p *planner) visitAnnotationType(n *ast.ClassDecl) {
	p.b.Open(doc.Zero)
	p.typeDeclarationModifiers(n.Modifiers)
	p.b.Open(doc.Zero)
	p.b.Token("@")
	p.b.Token("interface")
	p.breakOp()
	p.b.Token(n.Name)
	p.b.Close()
	p.b.Close()
	p.addBodyDeclarations(n.Members, true, true)
	p.b.GuessToken(";")
}

func (p *planner) visitClassDeclaration(n *ast.ClassDecl) {
	p.typeDeclarationModifiers(n.Modifiers)
	if n.DeclKind == ast.DeclInterface {
		p.b.Token("interface")
	} else {
		p.b.Token("class")
	}
	p.b.Space()
	p.b.Token(n.Name)
	if len(n.TypeParams) > 0 {
		p.b.Token("<")
	}
	p.b.Open(p.plusFour)
	{
		if len(n.TypeParams) > 0 {
			indent := doc.Zero
			if n.Extends != nil || len(n.Implements) > 0 || len(n.Permits) > 0 {
				indent = p.plusFour
			}
			p.typeParametersRest(n.TypeParams, indent)
		}
		if n.Extends != nil {
			p.breakToFill()
			p.b.Token("extends")
			p.b.Space()
			p.scan(n.Extends)
		}
		if n.DeclKind == ast.DeclInterface {
			p.typeList("extends", n.Implements)
		} else {
			p.typeList("implements", n.Implements)
		}
		p.typeList("permits", n.Permits)
	}
	p.b.Close()
	p.addBodyDeclarations(n.Members, true, true)
	p.dropEmptyDeclarations()
}

// typeList writes an implements, extends or permits clause.
func (p *planner) typeList(keyword string, types []ast.Expr) {
	if len(types) == 0 {
		return
	}
	p.breakToFill()
	indent := doc.Zero
	if len(types) > 1 {
		indent = p.plusFour
	}
	p.b.Open(indent)
	p.b.Token(keyword)
	p.b.Space()
	for i, t := range types {
		if i > 0 {
			p.b.Token(",")
			p.breakOp()
		}
		p.scan(t)
	}
	p.b.Close()
}

func (p *planner) visitEnum(n *ast.ClassDecl) {
	p.b.Open(doc.Zero)
	p.typeDeclarationModifiers(n.Modifiers)
	p.b.Open(p.plusFour)
	p.b.Token("enum")
	p.breakOp()
	p.b.Token(n.Name)
	p.b.Close()
	p.b.Close()
	if len(n.Implements) > 0 {
		p.b.Open(p.plusFour)
		p.breakOp()
		p.b.Open(p.plusFour)
		p.b.Token("implements")
		p.breakOp()
		p.b.Open(doc.Zero)
		for i, t := range n.Implements {
			if i > 0 {
				p.b.Token(",")
				p.breakToFill()
			}
			p.scan(t)
		}
		p.b.Close()
		p.b.Close()
		p.b.Close()
	}
	p.b.Space()
	p.openBrace()

	if len(n.EnumConstants) == 0 && len(n.Members) == 0 {
		if p.b.Peek() == ";" {
			p.b.Open(p.plusTwo)
			p.forcedBreak()
			p.b.Token(";")
			p.forcedBreak()
			p.dropEmptyDeclarations()
			p.b.Close()
			p.b.Open(doc.Zero)
			p.forcedBreak()
			p.b.BlankLineWanted(doc.No)
			p.closeBrace()
			p.b.Close()
		} else {
			p.b.Open(doc.Zero)
			p.b.BlankLineWanted(doc.No)
			p.b.Token("}")
			p.b.Close()
		}
		p.b.GuessToken(";")
		return
	}

	p.b.Open(p.plusTwo)
	p.b.BlankLineWanted(doc.No)
	p.forcedBreak()
	p.b.Open(doc.Zero)
	for i, c := range n.EnumConstants {
		if i > 0 {
			p.b.Token(",")
			p.forcedBreak()
			p.b.BlankLineWanted(doc.Preserve)
		}
		p.markForPartialFormat()
		p.visitEnumConstant(c)
	}
	if p.b.Peek() == "," {
		p.b.Token(",")
		// The semicolon goes on its own line.
		p.forcedBreak()
	}
	p.b.Close()
	p.b.Close()
	if p.b.Peek() == ";" {
		p.b.Open(p.plusTwo)
		p.b.Token(";")
		p.forcedBreak()
		p.dropEmptyDeclarations()
		p.b.Close()
	}
	p.b.Open(doc.Zero)
	p.addBodyDeclarations(n.Members, false, false)
	p.forcedBreak()
	p.b.BlankLineWanted(doc.No)
	p.closeBrace()
	p.b.Close()
	p.b.GuessToken(";")
}

func (p *planner) visitEnumConstant(c *ast.EnumConstant) {
	p.b.Sync(c.Pos())
	for _, a := range annotationsOf(c.Modifiers) {
		p.scan(a)
		p.forcedBreak()
	}
	p.b.Token(c.Name)
	if len(c.Args) == 0 {
		p.b.GuessToken("(")
		p.b.GuessToken(")")
	} else {
		p.addArguments(c.Args, p.plusFour)
	}
	if c.Body != nil {
		p.addBodyDeclarations(c.Body.Members, true, true)
	}
}

func (p *planner) visitRecord(n *ast.ClassDecl) {
	p.typeDeclarationModifiers(n.Modifiers)
	p.b.Token("record")
	p.b.Space()
	p.b.Token(n.Name)
	if len(n.TypeParams) > 0 {
		p.b.Token("<")
	}
	p.b.Open(p.plusFour)
	{
		if len(n.TypeParams) > 0 {
			indent := doc.Zero
			if len(n.Implements) > 0 {
				indent = p.plusFour
			}
			p.typeParametersRest(n.TypeParams, indent)
		}
		p.b.Token("(")
		if len(n.RecordComponents) > 0 {
			p.b.BreakToFill("")
		}
		p.visitFormals(nil, n.RecordComponents)
		p.b.Token(")")
		if len(n.Implements) > 0 {
			p.breakToFill()
			indent := doc.Zero
			if len(n.Implements) > 1 {
				indent = p.plusFour
			}
			p.b.Open(indent)
			p.b.Token("implements")
			p.b.Space()
			for i, t := range n.Implements {
				if i > 0 {
					p.b.Token(",")
					p.breakOp()
				}
				p.scan(t)
			}
			p.b.Close()
		}
	}
	p.b.Close()
	p.addBodyDeclarations(n.Members, true, true)
	p.dropEmptyDeclarations()
}

// typeParametersRest writes the type parameters after the opening "<",
// which stays with the declaration name.
func (p *planner) typeParametersRest(params []*ast.TypeParameter, indent doc.Indent) {
	p.b.Open(indent)
	p.b.BreakOp("")
	p.b.Open(doc.Zero)
	for i, tp := range params {
		if i > 0 {
			p.b.Token(",")
			p.breakOp()
		}
		p.scan(tp)
	}
	p.b.Token(">")
	p.b.Close()
	p.b.Close()
}

func (p *planner) visitTypeParameter(n *ast.TypeParameter) {
	p.b.Open(doc.Zero)
	p.visitAnnotations(n.Annotations, false, true)
	p.b.Token(n.Name)
	if len(n.Bounds) > 0 {
		p.b.Space()
		p.b.Token("extends")
		p.b.Open(p.plusFour)
		p.breakOp()
		p.b.Open(p.plusFour)
		for i, bound := range n.Bounds {
			if i > 0 {
				p.breakToFill()
				p.b.Token("&")
				p.b.Space()
			}
			p.scan(bound)
		}
		p.b.Close()
		p.b.Close()
	}
	p.b.Close()
}

// addBodyDeclarations lays out class members one per line. A member
// other than a field, or one with a doc comment, gets a blank line before
// it, and so does the member after it.
func (p *planner) addBodyDeclarations(members []ast.Node, braces, firstPreserves bool) {
	if len(members) == 0 {
		if braces {
			p.b.Space()
			p.openBrace()
			p.b.BlankLineWanted(doc.No)
			p.b.Open(doc.Zero)
			if p.b.Peek() == ";" {
				p.b.Open(p.plusTwo)
				p.dropEmptyDeclarations()
				p.b.Close()
				p.forcedBreak()
			}
			p.closeBrace()
			p.b.Close()
		}
		return
	}
	if braces {
		p.b.Space()
		p.openBrace()
		p.b.Open(doc.Zero)
	}
	p.b.Open(p.plusTwo)
	first := firstPreserves
	lastGotBlank := false
	for i := 0; i < len(members); i++ {
		m := members[i]
		p.dropEmptyDeclarations()
		p.forcedBreak()
		_, isField := m.(*ast.VariableDecl)
		getsBlank := !isField || p.hasJavadoc(m)
		if first {
			p.b.BlankLineWanted(doc.Preserve)
		} else if getsBlank || lastGotBlank {
			p.b.BlankLineWanted(doc.Yes)
		}
		p.markForPartialFormat()
		if isField {
			fragments := variableFragments(members, i)
			i += len(fragments) - 1
			p.b.Sync(m.Pos())
			p.visitVariables(fragments, declField, vertical)
		} else {
			p.scan(m)
		}
		first = false
		lastGotBlank = getsBlank
	}
	p.dropEmptyDeclarations()
	p.forcedBreak()
	p.b.Close()
	p.forcedBreak()
	p.markForPartialFormat()
	if braces {
		p.b.BlankLineWanted(doc.No)
		p.closeBrace()
		p.b.Close()
	}
}

// hasJavadoc reports whether a doc comment precedes the member.
func (p *planner) hasJavadoc(n ast.Node) bool {
	i := p.in.TokenIndexAt(n.Pos())
	if i >= len(p.in.Tokens) || p.in.Tokens[i].Tok.Offset != n.Pos() {
		return false
	}
	for _, tok := range p.in.Tokens[i].Before {
		if tok.IsJavadocComment() {
			return true
		}
	}
	return false
}

func (p *planner) visitMethod(n *ast.MethodDecl) {
	annos := annotationsOf(n.Modifiers)
	var returnAnnos []*ast.Annotation
	ret := n.ReturnType
	if len(n.TypeParams) > 0 {
		// Annotations written after the type parameters belong to the
		// return type.
		if at, ok := ret.(*ast.AnnotatedType); ok && isPlainAnnotatedType(at) {
			returnAnnos = at.Annotations
			ret = at.Underlying
		}
	}
	typeAnnos := p.visitModifiers(p.split(n.Modifiers, annos), vertical, 0)
	if len(n.TypeParams) == 0 && ret != nil {
		returnAnnos = typeAnnos
		typeAnnos = nil
	}

	var base ast.Expr
	var dims *dimQueue
	if ret != nil {
		base, dims = extractDims(ret)
	} else {
		p.verticalAnnotations(typeAnnos)
		typeAnnos = nil
	}

	p.b.Open(p.plusFour)
	nameBreak := p.b.NewTag()
	typeBreak := p.b.NewTag()
	p.b.Open(doc.Zero)
	{
		afterFirst := false
		if len(typeAnnos) > 0 {
			p.visitAnnotations(typeAnnos, false, false)
			afterFirst = true
		}
		if len(n.TypeParams) > 0 {
			if afterFirst {
				p.breakToFill()
			}
			p.b.Token("<")
			p.typeParametersRest(n.TypeParams, p.plusFour)
			afterFirst = true
		}
		opened := false
		if base != nil {
			if afterFirst {
				p.b.Break(doc.Independent, " ", doc.Zero, typeBreak)
			} else {
				afterFirst = true
			}
			p.b.Open(p.b.IfBroke(typeBreak, p.plusFour, doc.Zero))
			opened = true
			p.b.Open(doc.Zero)
			if len(returnAnnos) > 0 {
				p.visitAnnotations(returnAnnos, false, false)
				p.breakOp()
			}
			p.scan(base)
			p.maybeAddDims(dims)
			p.b.Close()
		}
		if afterFirst {
			p.b.Break(doc.Independent, " ", doc.Zero, nameBreak)
		}
		if !opened {
			p.b.Open(doc.Zero)
		}
		p.b.Token(n.Name)
		if !n.Compact {
			p.b.Token("(")
		}
		p.b.Close()
	}
	p.b.Close()

	p.b.Open(p.b.IfBroke(nameBreak, p.plusFour, doc.Zero))
	p.b.Open(p.b.IfBroke(typeBreak, p.plusFour, doc.Zero))
	p.b.Open(doc.Zero)
	{
		if !n.Compact {
			if len(n.Params) > 0 || n.ReceiverParam != nil {
				p.b.BreakToFill("")
				p.visitFormals(n.ReceiverParam, n.Params)
			}
			p.b.Token(")")
		}
		p.maybeAddDims(dims)
		if len(n.Throws) > 0 {
			p.breakToFill()
			p.b.Open(p.plusFour)
			p.b.Token("throws")
			p.breakToFill()
			for i, t := range n.Throws {
				if i > 0 {
					p.b.Token(",")
					p.breakOp()
				}
				p.scan(t)
			}
			p.b.Close()
		}
		if n.DefaultValue != nil {
			p.b.Space()
			p.b.Token("default")
			if _, ok := n.DefaultValue.(*ast.NewArray); ok {
				p.b.Open(p.minusFour)
				p.b.Space()
				p.scan(n.DefaultValue)
				p.b.Close()
			} else {
				p.b.Open(doc.Zero)
				p.breakToFill()
				p.scan(n.DefaultValue)
				p.b.Close()
			}
		}
	}
	p.b.Close()
	p.b.Close()
	p.b.Close()
	if n.Body == nil {
		p.b.Token(";")
	} else {
		p.b.Space()
		p.b.TokenBreakTrailingComment("{", p.plusTwo, p.plusTwo)
	}
	p.b.Close()

	if n.Body != nil {
		p.methodBody(n.Body)
	}
}

func (p *planner) methodBody(body *ast.Block) {
	if len(body.Stmts) == 0 {
		p.b.BlankLineWanted(doc.No)
	} else {
		p.b.Open(p.plusTwo)
		p.forcedBreak()
		p.b.BlankLineWanted(doc.Preserve)
		p.visitStatements(body.Stmts)
		p.b.Close()
		p.forcedBreak()
		p.b.BlankLineWanted(doc.No)
		p.markForPartialFormat()
	}
	p.closeBrace()
}

// isPlainAnnotatedType reports whether the annotations of at precede the
// whole type rather than a qualified segment or a dimension.
func isPlainAnnotatedType(at *ast.AnnotatedType) bool {
	switch at.Underlying.(type) {
	case *ast.MemberSelect, *ast.ArrayType:
		return false
	}
	return true
}

func (p *planner) visitModule(n *ast.ModuleDecl) {
	for _, a := range n.Annotations {
		p.scan(a)
		p.forcedBreak()
	}
	if n.Open {
		p.b.Token("open")
		p.b.Space()
	}
	p.b.Token("module")
	p.b.Space()
	p.scan(n.Name)
	p.b.Space()
	if len(n.Directives) == 0 {
		p.openBrace()
		p.b.BlankLineWanted(doc.No)
		p.closeBrace()
		return
	}
	p.b.Open(p.plusTwo)
	p.b.Token("{")
	p.forcedBreak()
	var prev ast.Kind
	for i, d := range n.Directives {
		p.markForPartialFormat()
		if i > 0 && d.Kind() != prev {
			p.b.BlankLineWanted(doc.Yes)
		} else {
			p.b.BlankLineWanted(doc.No)
		}
		p.forcedBreak()
		p.scan(d)
		prev = d.Kind()
	}
	p.b.Close()
	p.forcedBreak()
	p.b.Token("}")
}

// visitDirective writes exports, opens and provides directives. Targets
// go one per line.
func (p *planner) visitDirective(keyword, separator string, name ast.Expr, items []ast.Expr) {
	p.b.Token(keyword)
	p.b.Space()
	p.scan(name)
	if len(items) == 0 {
		p.b.Token(";")
		return
	}
	p.b.Open(p.plusFour)
	p.b.Space()
	p.b.Token(separator)
	p.forcedBreak()
	for i, item := range items {
		if i > 0 {
			p.b.Token(",")
			p.forcedBreak()
		}
		p.scan(item)
	}
	p.b.Token(";")
	p.b.Close()
}

func (p *planner) visitRequires(n *ast.RequiresDirective) {
	p.b.Token("requires")
	p.b.Space()
	for {
		if next := p.b.Peek(); next == "static" || next == "transitive" {
			p.b.Token(next)
			p.b.Space()
			continue
		}
		break
	}
	p.scan(n.Module)
	p.b.Token(";")
}

func (p *planner) visitUses(n *ast.UsesDirective) {
	p.b.Token("uses")
	p.b.Space()
	p.scan(n.Service)
	p.b.Token(";")
}
