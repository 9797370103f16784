package format

import (
	"math"
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

// maxItemLengthForFilling is the source width under which list items and
// operands may share lines independently.
const maxItemLengthForFilling = 10

func (p *planner) visitNewClass(n *ast.NewClass) {
	p.b.Open(doc.Zero)
	if n.Outer != nil {
		p.scan(n.Outer)
		p.b.BreakOp("")
		p.b.Token(".")
	}
	p.b.Token("new")
	p.b.Space()
	p.addTypeArguments(n.TypeArgs, p.plusFour)
	p.scan(n.Type)
	p.addArguments(n.Args, p.plusFour)
	p.b.Close()
	if n.Body != nil {
		p.addBodyDeclarations(n.Body.Members, true, true)
	}
}

func (p *planner) visitNewArray(n *ast.NewArray) {
	if n.Type != nil {
		p.b.Open(p.plusFour)
		p.b.Token("new")
		p.b.Space()
		base, q := extractDims(n.Type)
		dims := &dimQueue{exprs: append([]ast.Expr(nil), n.Dims...)}
		if n.HasInit {
			dims.annos = append(dims.annos, n.Annotations)
		} else {
			dims.annos = append(dims.annos, n.DimAnnotations...)
		}
		dims.annos = append(dims.annos, q.annos...)
		p.scan(base)
		p.b.Open(doc.Zero)
		p.maybeAddDims(dims)
		p.b.Close()
		p.b.Close()
	}
	if n.HasInit {
		if n.Type != nil {
			p.b.Space()
		}
		p.visitArrayInitializer(n.Init)
	}
}

// visitArrayInitializer lays out `{...}`: empty, as a grid when the source
// is tabular, or filled. Initializers directly inside an annotation with
// long items put each item on its own line.
func (p *planner) visitArrayInitializer(items []ast.Expr) {
	if len(items) == 0 {
		p.openBrace()
		if p.b.Peek() == "," {
			p.b.Token(",")
		}
		p.closeBrace()
		return
	}
	if cols := p.argumentsAreTabular(items); cols != -1 {
		p.b.Open(p.plusTwo)
		p.b.Token("{")
		p.forcedBreak()
		for start := 0; start < len(items); start += cols {
			row := items[start:min(start+cols, len(items))]
			if start > 0 {
				p.forcedBreak()
			}
			indent := p.plusFour
			if row[0].Kind() == ast.KindNewArray || cols == 1 {
				indent = doc.Zero
			}
			p.b.Open(indent)
			for i, item := range row {
				if i > 0 {
					p.b.Token(",")
					p.breakToFill()
				}
				p.scan(item)
			}
			p.b.GuessToken(",")
			p.b.Close()
		}
		p.b.Break(doc.Unified, "", p.minusTwo, 0)
		p.b.Close()
		p.closeBrace()
		return
	}

	inAnnotation := p.parentKind() == ast.KindAnnotation
	short := p.hasOnlyShortItems(items)
	filled := short || !inAnnotation

	p.b.Open(p.plusTwo)
	p.openBrace()
	if p.hasTrailingToken(items, ",") {
		p.b.Break(doc.Forced, "", doc.Zero, 0)
	} else {
		p.b.Break(doc.Unified, "", doc.Zero, 0)
	}
	if filled {
		p.b.Open(doc.Zero)
	}
	fill := doc.Unified
	if short {
		fill = doc.Independent
	}
	for i, item := range items {
		if i > 0 {
			p.b.Token(",")
			p.b.Break(fill, " ", doc.Zero, 0)
		}
		p.scan(item)
	}
	p.b.GuessToken(",")
	if filled {
		p.b.Close()
	}
	p.b.Break(doc.Unified, "", p.minusTwo, 0)
	p.b.Close()
	p.closeBrace()
}

func (p *planner) hasOnlyShortItems(items []ast.Expr) bool {
	for _, item := range items {
		if p.size(item) >= maxItemLengthForFilling {
			return false
		}
	}
	return true
}

// hasTrailingToken reports whether the token after the last node is tok.
func (p *planner) hasTrailingToken(nodes []ast.Expr, tok string) bool {
	if len(nodes) == 0 {
		return false
	}
	i := p.in.TokenIndexAt(nodes[len(nodes)-1].End())
	return i < len(p.in.Tokens) && p.in.Tokens[i].Tok.Text == tok
}

func (p *planner) visitArrayType(n *ast.ArrayType) {
	base, q := extractDims(n)
	p.b.Open(p.plusFour)
	p.scan(base)
	p.maybeAddDims(q)
	p.b.Close()
}

func (p *planner) visitTypeCast(n *ast.TypeCast) {
	p.b.Open(p.plusFour)
	p.b.Token("(")
	p.scan(n.Type)
	p.b.Token(")")
	p.breakOp()
	p.scan(n.X)
	p.b.Close()
}

func (p *planner) visitInstanceOf(n *ast.InstanceOf) {
	p.b.Open(p.plusFour)
	p.scan(n.X)
	p.breakOp()
	p.b.Open(doc.Zero)
	p.b.Token("instanceof")
	p.breakOp()
	if n.Pattern != nil {
		p.scan(n.Pattern)
	} else {
		p.scan(n.Type)
	}
	p.b.Close()
	p.b.Close()
}

// visitConditional breaks before both `?` and `:` together.
func (p *planner) visitConditional(n *ast.Conditional) {
	p.b.Open(p.plusFour)
	p.scan(n.Cond)
	p.breakOp()
	p.b.Token("?")
	p.b.Space()
	p.scan(n.Then)
	p.breakOp()
	p.b.Token(":")
	p.b.Space()
	p.scan(n.Else)
	p.b.Close()
}

func (p *planner) visitLambda(n *ast.Lambda) {
	blockBody := !n.HasExpressionBody()
	parens := p.b.Peek() == "("
	indent := doc.Zero
	if parens {
		indent = p.plusFour
	}
	p.b.Open(indent)
	if parens {
		p.b.Token("(")
	}
	for i, param := range n.Params {
		if i > 0 {
			p.b.Token(",")
			p.breakOp()
		}
		p.b.Sync(param.Pos())
		p.visitVariables([]*ast.VariableDecl{param}, declNone, vertical)
	}
	if parens {
		p.b.Token(")")
	}
	p.b.Close()
	p.b.Space()
	p.b.Op("->")
	if blockBody {
		p.b.Open(doc.Zero)
		p.b.Space()
		p.visitBlock(n.Body.(*ast.Block), true, false, false)
	} else {
		p.b.Open(p.plusFour)
		p.breakOp()
		p.scan(n.Body)
	}
	p.b.Close()
}

func (p *planner) visitMemberReference(n *ast.MemberReference) {
	p.b.Open(p.plusFour)
	p.scan(n.X)
	p.b.BreakOp("")
	p.b.Op("::")
	p.addTypeArguments(n.TypeArgs, p.plusFour)
	p.b.Token(n.Name)
	p.b.Close()
}

// visitAssignment keeps the value on the line of the `=`; the value's own
// breaks wrap it when needed.
func (p *planner) visitAssignment(n *ast.Assignment) {
	p.b.Open(p.plusFour)
	p.scan(n.Var)
	p.b.Space()
	p.b.Token("=")
	p.b.Space()
	p.scan(n.Value)
	p.b.Close()
}

func (p *planner) visitCompoundAssignment(n *ast.CompoundAssignment) {
	p.b.Open(p.plusFour)
	p.scan(n.Var)
	p.b.Space()
	p.b.Op(n.Op)
	p.breakOp()
	p.scan(n.Value)
	p.b.Close()
}

func (p *planner) visitUnary(n *ast.Unary) {
	if n.Postfix {
		p.scan(n.X)
		p.b.Op(n.Op)
		return
	}
	p.b.Op(n.Op)
	if ambiguousUnary(n) {
		p.b.Space()
	}
	p.scan(n.X)
}

// ambiguousUnary reports whether writing n's operator next to its operand
// would lex differently: `- -x` and `+ ++x` need the space.
func ambiguousUnary(n *ast.Unary) bool {
	if n.Op != "-" && n.Op != "+" {
		return false
	}
	inner, ok := n.X.(*ast.Unary)
	if !ok || inner.Postfix {
		return false
	}
	return strings.HasPrefix(inner.Op, n.Op)
}

// visitBinary flattens a run of operators of one precedence into a single
// level so `a + b + c` indents once.
func (p *planner) visitBinary(n *ast.Binary) {
	var operands []ast.Expr
	var operators []string
	walkInfix(ast.Precedence(n.Kind()), n, &operands, &operators)
	fill := doc.Unified
	if p.hasOnlyShortItems(operands) {
		fill = doc.Independent
	}
	p.b.Open(p.plusFour)
	p.scan(operands[0])
	for i, op := range operators {
		p.b.Break(fill, " ", doc.Zero, 0)
		p.b.Op(op)
		p.b.Space()
		p.scan(operands[i+1])
	}
	p.b.Close()
}

func walkInfix(prec int, x ast.Expr, operands *[]ast.Expr, operators *[]string) {
	if bin, ok := x.(*ast.Binary); ok && ast.Precedence(bin.Kind()) == prec {
		walkInfix(prec, bin.X, operands, operators)
		*operators = append(*operators, bin.Op)
		walkInfix(prec, bin.Y, operands, operators)
		return
	}
	*operands = append(*operands, x)
}

// textBlockDeindent is a break indent large enough to pull a text block
// to column 0; the renderer clamps indents at zero.
var textBlockDeindent = doc.Units(math.MinInt32 / 2)

func (p *planner) visitLiteral(n *ast.Literal) {
	src := p.in.Text[n.Pos():n.End()]
	if n.IsTextBlock() {
		if textBlockAtColumnZero(src) {
			p.b.Break(doc.Unified, "", textBlockDeindent, 0)
		}
		p.b.Token(src)
		return
	}
	p.b.Token(src)
}

// textBlockAtColumnZero reports whether a text block's content has no
// incidental indentation: the shortest indent among its non-blank lines
// and its closing line is zero.
func textBlockAtColumnZero(src string) bool {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return false
	}
	lines = lines[1:]
	minIndent := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" && i != len(lines)-1 {
			continue
		}
		indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	return minIndent == 0
}

func (p *planner) visitParameterizedType(n *ast.ParameterizedType) {
	if len(n.Args) == 0 {
		p.scan(n.Type)
		p.b.Token("<")
		p.b.Token(">")
		return
	}
	p.b.Open(p.plusFour)
	p.scan(n.Type)
	p.b.Token("<")
	p.b.BreakOp("")
	p.b.Open(doc.Zero)
	for i, arg := range n.Args {
		if i > 0 {
			p.b.Token(",")
			p.breakOp()
		}
		p.scan(arg)
	}
	p.b.Close()
	p.b.Close()
	p.b.Token(">")
}

func (p *planner) visitWildcard(n *ast.Wildcard) {
	p.b.Open(doc.Zero)
	p.b.Token("?")
	if n.Bound != nil {
		p.b.Open(p.plusFour)
		p.b.Space()
		if n.BoundKind == ast.ExtendsBound {
			p.b.Token("extends")
		} else {
			p.b.Token("super")
		}
		p.breakOp()
		p.scan(n.Bound)
		p.b.Close()
	}
	p.b.Close()
}

func (p *planner) visitIntersection(n *ast.IntersectionType) {
	p.b.Open(p.plusFour)
	for i, t := range n.Bounds {
		if i > 0 {
			p.breakToFill()
			p.b.Token("&")
			p.b.Space()
		}
		p.scan(t)
	}
	p.b.Close()
}

func (p *planner) visitAnnotatedType(n *ast.AnnotatedType) {
	if sel, ok := n.Underlying.(*ast.MemberSelect); ok {
		p.scan(sel.X)
		p.b.Token(".")
		p.visitAnnotations(n.Annotations, false, false)
		p.breakToFill()
		p.b.Token(sel.Name)
		return
	}
	p.visitAnnotations(n.Annotations, false, false)
	p.breakToFill()
	p.scan(n.Underlying)
}

func (p *planner) visitAnnotation(n *ast.Annotation) {
	if p.singleMemberAnnotation(n) {
		return
	}
	p.b.Open(doc.Zero)
	p.b.Token("@")
	p.scan(n.Name)
	if len(n.Args) == 0 {
		if p.b.Peek() == "(" {
			p.b.Token("(")
			p.b.Token(")")
		}
		p.b.Close()
		return
	}
	p.b.Open(p.plusFour)
	p.b.Token("(")
	p.b.BreakOp("")
	// Pairs go one per line when any value is an array initializer.
	hasArray := false
	for _, arg := range n.Args {
		if isArrayValue(arg) {
			hasArray = true
		}
	}
	for i, arg := range n.Args {
		if i > 0 {
			p.b.Token(",")
			if hasArray {
				p.forcedBreak()
			} else {
				p.breakOp()
			}
		}
		if pair, ok := arg.(*ast.Assignment); ok {
			p.annotationArgument(pair)
		} else {
			p.scan(arg)
		}
	}
	p.b.Token(")")
	p.b.Close()
	p.b.Close()
}

func isArrayValue(arg ast.Expr) bool {
	pair, ok := arg.(*ast.Assignment)
	if !ok {
		return false
	}
	arr, ok := pair.Value.(*ast.NewArray)
	return ok && arr.Type == nil
}

func (p *planner) annotationArgument(n *ast.Assignment) {
	_, isArray := n.Value.(*ast.NewArray)
	p.b.Sync(n.Pos())
	indent := p.plusFour
	if isArray {
		indent = doc.Zero
	}
	p.b.Open(indent)
	p.scan(n.Var)
	p.b.Space()
	p.b.Token("=")
	if isArray {
		p.b.Space()
	} else {
		p.breakOp()
	}
	p.scan(n.Value)
	p.b.Close()
}

// singleMemberAnnotation lays out `@A(value)`, keeping an array value's
// brace next to the parenthesis.
func (p *planner) singleMemberAnnotation(n *ast.Annotation) bool {
	if len(n.Args) != 1 {
		return false
	}
	value := n.Args[0]
	if _, ok := value.(*ast.Assignment); ok {
		return false
	}
	_, isArray := value.(*ast.NewArray)
	indent := p.plusFour
	if isArray {
		indent = doc.Zero
	}
	p.b.Open(indent)
	p.b.Token("@")
	p.scan(n.Name)
	p.b.Token("(")
	if !isArray {
		p.b.BreakOp("")
	}
	p.scan(value)
	p.b.Close()
	p.b.Token(")")
	return true
}
