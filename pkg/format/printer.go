// Package format plans the layout of Java compilation units.
//
// The planner walks the syntax tree once and emits a flat op stream to a
// doc.Builder: tokens, breaks, opens and closes, blank-line requests and
// partial-format marks. Every input token is emitted exactly once and in
// order; the builder faults when the plan drifts from the token table.
package format

import (
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/input"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/leapstack-labs/leapfmt/pkg/typeuse"
)

// direction is the layout of a declaration's annotations.
type direction int

const (
	horizontal direction = iota
	vertical
)

// declKind selects the annotation handling of declareOne.
type declKind int

const (
	declNone declKind = iota
	declField
	declParameter
)

// planner holds the state of one formatting run. It is not safe for
// concurrent use; each file gets its own.
type planner struct {
	b     *doc.Builder
	in    *input.Input
	opts  style.Options
	types *typeuse.Classifier

	// inExpr records, per open node, whether the node or an ancestor is an
	// expression. Partial-format marks are never placed inside one.
	inExpr []bool
	// kinds is the stack of nodes being visited, innermost last.
	kinds []ast.Kind

	plusTwo   doc.Indent
	plusFour  doc.Indent
	minusTwo  doc.Indent
	minusFour doc.Indent
}

func newPlanner(in *input.Input, opts style.Options) *planner {
	return &planner{
		b:         doc.NewBuilder(in),
		in:        in,
		opts:      opts,
		types:     typeuse.New(),
		plusTwo:   doc.Units(opts.Indent(2)),
		plusFour:  doc.Units(opts.Indent(4)),
		minusTwo:  doc.Units(opts.Indent(-2)),
		minusFour: doc.Units(opts.Indent(-4)),
	}
}

func (p *planner) inExpression() bool {
	return len(p.inExpr) > 0 && p.inExpr[len(p.inExpr)-1]
}

// scan visits n, checking that the builder's depth is unchanged when it
// returns. Anything other than a fault raised below is wrapped into a
// FormattingFault at n's position.
func (p *planner) scan(n ast.Node) {
	if n == nil {
		return
	}
	p.inExpr = append(p.inExpr, n.Kind().IsExpression() || p.inExpression())
	p.kinds = append(p.kinds, n.Kind())
	depth := p.b.Depth()
	p.guard(n, func() {
		p.b.Sync(n.Pos())
		p.visit(n)
	})
	p.inExpr = p.inExpr[:len(p.inExpr)-1]
	p.kinds = p.kinds[:len(p.kinds)-1]
	p.b.CheckClosed(depth)
}

func (p *planner) guard(n ast.Node, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case *doc.Fault, *FormattingFault, *ConsistencyFault:
			panic(r)
		}
		panic(formattingFault(p.in, n.Pos(), r))
	}()
	fn()
}

func (p *planner) visit(n ast.Node) {
	switch n := n.(type) {
	// declarations
	case *ast.CompilationUnit:
		p.visitCompilationUnit(n)
	case *ast.ImportDecl:
		p.visitImport(n)
	case *ast.ClassDecl:
		p.visitClass(n)
	case *ast.MethodDecl:
		p.visitMethod(n)
	case *ast.VariableDecl:
		p.visitVariables([]*ast.VariableDecl{n}, declNone, vertical)
	case *ast.Annotation:
		p.visitAnnotation(n)
	case *ast.TypeParameter:
		p.visitTypeParameter(n)
	case *ast.ModuleDecl:
		p.visitModule(n)
	case *ast.RequiresDirective:
		p.visitRequires(n)
	case *ast.ExportsDirective:
		p.visitDirective("exports", "to", n.Package, n.To)
	case *ast.OpensDirective:
		p.visitDirective("opens", "to", n.Package, n.To)
	case *ast.ProvidesDirective:
		p.visitDirective("provides", "with", n.Service, n.With)
	case *ast.UsesDirective:
		p.visitUses(n)

	// statements
	case *ast.Block:
		p.visitBlock(n, false, false, false)
	case *ast.EmptyStmt:
		p.dropEmptyDeclarations()
	case *ast.ExprStmt:
		p.scan(n.X)
		p.b.Token(";")
	case *ast.IfStmt:
		p.visitIf(n)
	case *ast.WhileStmt:
		p.visitWhile(n)
	case *ast.DoWhileStmt:
		p.visitDoWhile(n)
	case *ast.ForStmt:
		p.visitFor(n)
	case *ast.ForEachStmt:
		p.visitForEach(n)
	case *ast.LabeledStmt:
		p.visitLabeled(n)
	case *ast.SwitchStmt:
		p.visitSwitch(n.Selector, n.Cases)
	case *ast.Case:
		p.visitCase(n)
	case *ast.TryStmt:
		p.visitTry(n)
	case *ast.SynchronizedStmt:
		p.visitSynchronized(n)
	case *ast.ReturnStmt:
		p.visitReturn(n)
	case *ast.ThrowStmt:
		p.b.Token("throw")
		p.b.Space()
		p.scan(n.X)
		p.b.Token(";")
	case *ast.BreakStmt:
		p.visitBreak(n)
	case *ast.ContinueStmt:
		p.visitContinue(n)
	case *ast.YieldStmt:
		p.b.Token("yield")
		p.b.Space()
		p.scan(n.X)
		p.b.Token(";")
	case *ast.AssertStmt:
		p.visitAssert(n)

	// expressions
	case *ast.Identifier:
		p.b.Token(n.Name)
	case *ast.MemberSelect:
		p.visitDot(n)
	case *ast.MethodInvocation:
		p.visitMethodInvocation(n)
	case *ast.ArrayAccess:
		p.visitDot(n)
	case *ast.NewClass:
		p.visitNewClass(n)
	case *ast.NewArray:
		p.visitNewArray(n)
	case *ast.Parens:
		p.b.Token("(")
		p.scan(n.X)
		p.b.Token(")")
	case *ast.TypeCast:
		p.visitTypeCast(n)
	case *ast.InstanceOf:
		p.visitInstanceOf(n)
	case *ast.BindingPattern:
		p.declareOne(declaration{
			kind: declParameter, dir: horizontal,
			mods: n.Var.Modifiers, typ: n.Var.Type, name: n.Var.Name,
		})
	case *ast.DefaultLabel:
		p.b.Token("default")
	case *ast.Conditional:
		p.visitConditional(n)
	case *ast.Lambda:
		p.visitLambda(n)
	case *ast.MemberReference:
		p.visitMemberReference(n)
	case *ast.SwitchExpr:
		p.visitSwitch(n.Selector, n.Cases)
	case *ast.Assignment:
		p.visitAssignment(n)
	case *ast.CompoundAssignment:
		p.visitCompoundAssignment(n)
	case *ast.Unary:
		p.visitUnary(n)
	case *ast.Binary:
		p.visitBinary(n)
	case *ast.Literal:
		p.visitLiteral(n)

	// types
	case *ast.PrimitiveType:
		p.b.Token(n.Name)
	case *ast.ArrayType:
		p.visitArrayType(n)
	case *ast.ParameterizedType:
		p.visitParameterizedType(n)
	case *ast.Wildcard:
		p.visitWildcard(n)
	case *ast.UnionType:
		p.visitUnionType(n, nil)
	case *ast.IntersectionType:
		p.visitIntersection(n)
	case *ast.AnnotatedType:
		p.visitAnnotatedType(n)

	default:
		panic(unsupportedNode{n})
	}
}

type unsupportedNode struct{ n ast.Node }

func (u unsupportedNode) Error() string {
	return fmt.Sprintf("no layout for %T", u.n)
}

// parentKind returns the kind of the node enclosing the current one.
func (p *planner) parentKind() ast.Kind {
	if len(p.kinds) < 2 {
		return ast.KindInvalid
	}
	return p.kinds[len(p.kinds)-2]
}

func (p *planner) markForPartialFormat() {
	if !p.inExpression() {
		p.b.MarkForPartialFormat()
	}
}

// dropEmptyDeclarations emits stray semicolons each on its own line.
func (p *planner) dropEmptyDeclarations() {
	for p.b.Peek() == ";" {
		p.b.ForcedBreak()
		p.markForPartialFormat()
		p.b.Token(";")
	}
}

func (p *planner) breakOp()     { p.b.BreakOp(" ") }
func (p *planner) breakToFill() { p.b.BreakToFill(" ") }
func (p *planner) forcedBreak() { p.b.ForcedBreak() }

// openBrace emits "{" and moves a trailing block comment onto its own line.
func (p *planner) openBrace() {
	p.b.TokenBreakTrailingComment("{", doc.Zero, p.plusTwo)
}

// closeBrace emits "}" with the comments before it indented into the body.
func (p *planner) closeBrace() {
	p.b.TokenCommentIndent("}", p.plusTwo)
}

// visitName emits a dotted name token by token.
func (p *planner) visitName(n ast.Expr) {
	var parts []string
	for {
		sel, ok := n.(*ast.MemberSelect)
		if !ok {
			break
		}
		parts = append(parts, sel.Name)
		n = sel.X
	}
	if id, ok := n.(*ast.Identifier); ok {
		parts = append(parts, id.Name)
	} else {
		p.scan(n)
	}
	for i := len(parts) - 1; i >= 0; i-- {
		if i < len(parts)-1 || n.Kind() != ast.KindIdentifier {
			p.b.Token(".")
		}
		p.b.Token(parts[i])
	}
}

// nameOf flattens an Identifier or MemberSelect chain to "a.b.c". Other
// nodes yield "".
func nameOf(n ast.Expr) string {
	switch n := n.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberSelect:
		x := nameOf(n.X)
		if x == "" {
			return ""
		}
		return x + "." + n.Name
	}
	return ""
}

// size returns the source width of n including attached comments.
func (p *planner) size(n ast.Node) int {
	return p.b.ActualSize(n.Pos(), n.End()-n.Pos())
}
