package format

import (
	"slices"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/doc"
)

// logMethods are the calls of a fluent logging statement that stay on one
// line with the logger.
var logMethods = map[string]bool{
	"at":             true,
	"atConfig":       true,
	"atDebug":        true,
	"atFine":         true,
	"atFiner":        true,
	"atFinest":       true,
	"atInfo":         true,
	"atMostEvery":    true,
	"atSevere":       true,
	"atWarning":      true,
	"every":          true,
	"log":            true,
	"logVarargs":     true,
	"perUnique":      true,
	"withCause":      true,
	"withStackTrace": true,
}

// streamMethods start a fluent pipeline; the chain breaks after them.
var streamMethods = map[string]bool{
	"stream":         true,
	"parallelStream": true,
	"toBuilder":      true,
}

func (p *planner) visitMethodInvocation(n *ast.MethodInvocation) {
	if p.logStatement(n) {
		return
	}
	p.visitDot(n)
}

// logStatement keeps `logger.atInfo().withCause(e).log(...)` together and
// lets only the arguments wrap.
func (p *planner) logStatement(n *ast.MethodInvocation) bool {
	if methodName(n) != "log" {
		return false
	}
	var parts []ast.Expr
	var cur ast.Expr = n
	for {
		inv, ok := cur.(*ast.MethodInvocation)
		if !ok {
			break
		}
		parts = append(parts, inv)
		if !logMethods[methodName(inv)] {
			return false
		}
		cur = methodReceiver(inv)
	}
	if _, ok := cur.(*ast.Identifier); !ok {
		return false
	}
	parts = append(parts, cur)
	slices.Reverse(parts)
	p.visitDotWithPrefix(parts, false, []int{len(parts) - 1}, doc.Independent)
	return true
}

func methodName(n *ast.MethodInvocation) string {
	switch m := n.Method.(type) {
	case *ast.Identifier:
		return m.Name
	case *ast.MemberSelect:
		return m.Name
	}
	return ""
}

// methodReceiver returns the expression before the dot of a qualified call,
// or nil.
func methodReceiver(n *ast.MethodInvocation) ast.Expr {
	if sel, ok := n.Method.(*ast.MemberSelect); ok {
		return sel.X
	}
	return nil
}

func arrayBase(x ast.Expr) ast.Expr {
	for {
		acc, ok := x.(*ast.ArrayAccess)
		if !ok {
			return x
		}
		x = acc.X
	}
}

// arrayIndices returns the index expressions of x in source order.
func arrayIndices(x ast.Expr) []ast.Expr {
	var out []ast.Expr
	for {
		acc, ok := x.(*ast.ArrayAccess)
		if !ok {
			break
		}
		out = append(out, acc.Index)
		x = acc.X
	}
	slices.Reverse(out)
	return out
}

// visitDot lays out a chain of member selects, calls and array accesses
// such as `ImmutableList.builder().add(1).build()`. The chain is
// flattened into items; a leading primary expression is written first and
// the rest indented under it.
func (p *planner) visitDot(n ast.Expr) {
	var stack []ast.Expr
	var primary ast.Expr
	node := n
loop:
	for node != nil {
		stack = append(stack, node)
		switch x := arrayBase(node).(type) {
		case *ast.MemberSelect:
			node = x.X
		case *ast.MethodInvocation:
			node = methodReceiver(x)
		case *ast.Identifier:
			break loop
		default:
			primary = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			break loop
		}
	}
	slices.Reverse(stack)
	items := stack

	needDot := false
	if primary != nil {
		if nc, ok := primary.(*ast.NewClass); ok && nc.Body != nil {
			// An anonymous class ends in a brace; the chain continues
			// right after it.
			p.b.Open(doc.Zero)
			p.scan(arrayBase(primary))
			p.b.Token(".")
		} else {
			p.b.Open(p.plusFour)
			p.scan(arrayBase(primary))
			p.b.BreakOp("")
			needDot = true
		}
		p.formatArrayIndices(arrayIndices(primary))
		if len(items) == 0 {
			p.b.Close()
			return
		}
	}

	// prefixes holds item indices in insertion order; each ends a run of
	// items that stays on one line.
	var prefixes []int
	addPrefix := func(i int) {
		if !slices.Contains(prefixes, i) {
			prefixes = append(prefixes, i)
		}
	}
	if i, ok := typePrefixLength(simpleNames(items)); ok {
		addPrefix(i)
	}

	invocations, firstInvocation := 0, -1
	for i, item := range items {
		if item.Kind() != ast.KindMethodInvocation {
			continue
		}
		if i > 0 || primary != nil {
			invocations++
		}
		if firstInvocation < 0 {
			firstInvocation = i
		}
	}
	// A single trailing call binds to its receiver: `myField.foo();`.
	if invocations == 1 && firstInvocation > 0 {
		addPrefix(firstInvocation)
	}

	if len(prefixes) == 0 {
		if id, ok := items[0].(*ast.Identifier); ok && (id.Name == "this" || id.Name == "super") {
			addPrefix(1)
		}
	}

	streams := streamPrefixes(items)
	for _, i := range streams {
		addPrefix(i)
	}
	if len(prefixes) > 0 {
		fill := doc.Independent
		if len(streams) > 0 {
			fill = doc.Unified
		}
		p.visitDotWithPrefix(items, needDot, prefixes, fill)
	} else {
		p.visitRegularDot(items, needDot)
	}

	if primary != nil {
		p.b.Close()
	}
}

func streamPrefixes(items []ast.Expr) []int {
	var out []int
	for i, item := range items {
		if inv, ok := item.(*ast.MethodInvocation); ok && streamMethods[methodName(inv)] {
			out = append(out, i)
		}
	}
	return out
}

// simpleNames returns the leading names of a chain, stopping after the
// first call or array access.
func simpleNames(items []ast.Expr) []string {
	var names []string
	for _, item := range items {
		_, isArray := item.(*ast.ArrayAccess)
		switch x := arrayBase(item).(type) {
		case *ast.MemberSelect:
			names = append(names, x.Name)
		case *ast.Identifier:
			names = append(names, x.Name)
		case *ast.MethodInvocation:
			return append(names, methodName(x))
		default:
			return names
		}
		if isArray {
			return names
		}
	}
	return names
}

// visitRegularDot breaks before every dot together. A short first item
// stays joined to the second.
func (p *planner) visitRegularDot(items []ast.Expr, needDot bool) {
	trailing := len(items) > 1
	needDot0 := needDot
	if !needDot0 {
		p.b.Open(p.plusFour)
	}
	minLength := p.opts.Indent(4)
	length := 0
	if needDot0 {
		length = minLength
	}
	for _, e := range items {
		if needDot {
			if length > minLength {
				p.b.Break(doc.Unified, "", doc.Zero, 0)
			}
			p.b.Token(".")
			length++
		}
		fillIndent := p.minusFour
		if trailing {
			fillIndent = doc.Zero
		}
		if !p.fillFirstArgument(e, items, fillIndent) {
			tyargTag := p.b.NewTag()
			p.dotExpressionUpToArgs(e, tyargTag)
			argsIndent := doc.Zero
			if trailing || needDot {
				argsIndent = p.plusFour
			}
			p.dotExpressionArgsAndParen(e, p.b.IfBroke(tyargTag, p.plusFour, doc.Zero), argsIndent)
		}
		length += e.End() - e.Pos()
		needDot = true
	}
	if !needDot0 {
		p.b.Close()
	}
}

// fillFirstArgument writes `when(x)` style calls so the argument fills
// after the parenthesis instead of wrapping onto its own line.
func (p *planner) fillFirstArgument(e ast.Expr, items []ast.Expr, indent doc.Indent) bool {
	if len(items) < 2 {
		return false
	}
	inv, ok := e.(*ast.MethodInvocation)
	if !ok {
		return false
	}
	id, ok := inv.Method.(*ast.Identifier)
	if !ok || len(id.Name) > 4 || len(inv.TypeArgs) > 0 || len(inv.Args) != 1 {
		return false
	}
	p.b.Open(doc.Zero)
	p.b.Open(indent)
	p.b.Token(id.Name)
	p.b.Token("(")
	p.scan(inv.Args[0])
	p.b.Close()
	p.b.Token(")")
	p.b.Close()
	return true
}

// visitDotWithPrefix writes a chain whose items up to each prefix index
// stay together; the dots after the last prefix break together.
func (p *planner) visitDotWithPrefix(items []ast.Expr, needDot bool, prefixes []int, prefixFill doc.FillMode) {
	trailing := len(prefixes) > 0 && prefixes[len(prefixes)-1] < len(items)-1

	p.b.Open(p.plusFour)
	for range prefixes {
		p.b.Open(doc.Zero)
	}
	unconsumed := slices.Clone(prefixes)
	slices.Sort(unconsumed)
	nameTag := p.b.NewTag()
	for i, e := range items {
		if needDot {
			fill := doc.Unified
			if len(unconsumed) > 0 && i <= unconsumed[0] {
				fill = prefixFill
			}
			p.b.Break(fill, "", doc.Zero, nameTag)
			p.b.Token(".")
		}
		tyargTag := p.b.NewTag()
		p.dotExpressionUpToArgs(e, tyargTag)
		if len(unconsumed) > 0 && i == unconsumed[0] {
			p.b.Close()
			unconsumed = unconsumed[1:]
		}
		argsElse := doc.Zero
		if trailing {
			argsElse = p.plusFour
		}
		p.dotExpressionArgsAndParen(e,
			p.b.IfBroke(tyargTag, p.plusFour, doc.Zero),
			p.b.IfBroke(nameTag, p.plusFour, argsElse))
		needDot = true
	}
	p.b.Close()
}

// dotExpressionUpToArgs writes one chain item up to its argument list:
// the name, with any explicit type arguments before it.
func (p *planner) dotExpressionUpToArgs(e ast.Expr, tyargTag doc.BreakTag) {
	switch x := arrayBase(e).(type) {
	case *ast.MemberSelect:
		p.b.Token(x.Name)
	case *ast.MethodInvocation:
		if len(x.TypeArgs) > 0 {
			p.b.Open(p.plusFour)
			p.addTypeArguments(x.TypeArgs, doc.Zero)
			p.b.Break(doc.Unified, "", doc.Zero, tyargTag)
			p.b.Close()
		}
		p.b.Token(methodName(x))
	case *ast.Identifier:
		p.b.Token(x.Name)
	default:
		p.scan(x)
	}
}

func (p *planner) dotExpressionArgsAndParen(e ast.Expr, tyargIndent, indent doc.Indent) {
	if inv, ok := arrayBase(e).(*ast.MethodInvocation); ok {
		p.b.Open(tyargIndent)
		p.addArguments(inv.Args, indent)
		p.b.Close()
	}
	p.formatArrayIndices(arrayIndices(e))
}

func (p *planner) formatArrayIndices(indices []ast.Expr) {
	if len(indices) == 0 {
		return
	}
	p.b.Open(doc.Zero)
	for _, index := range indices {
		p.b.Token("[")
		p.b.BreakToFill("")
		p.scan(index)
		p.b.Token("]")
	}
	p.b.Close()
}
