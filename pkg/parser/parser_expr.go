package parser

// Expressions grammar (precedence climbing):
//
//	expr        → lambda | ternary [assign_op expr]
//	ternary     → binary ['?' expr ':' (lambda | ternary)]
//	binary      → unary {binop unary | INSTANCEOF (type [IDENT] | pattern)}
//	unary       → ('++'|'--'|'+'|'-'|'!'|'~') unary | '(' type ')' unary | postfix
//	postfix     → primary {selector} {'++'|'--'}
//	selector    → '.' IDENT [args] | '.' type_args IDENT args | '.' NEW creator
//	            | '.' (CLASS|THIS|SUPER) | '[' expr ']' | '::' [type_args] (IDENT|NEW)

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// parseExpression parses a full expression including assignments and
// lambdas.
func (p *Parser) parseExpression() ast.Expr {
	if p.isLambda() {
		return p.parseLambda()
	}
	x := p.parseTernary()
	if op, n := p.assignOp(); n > 0 {
		for i := 0; i < n; i++ {
			p.next()
		}
		value := p.parseExpression()
		if op == "=" {
			return &ast.Assignment{Extent: ast.Span(x.Pos(), value.End()), Var: x, Value: value}
		}
		return &ast.CompoundAssignment{Extent: ast.Span(x.Pos(), value.End()), Op: op, Var: x, Value: value}
	}
	return x
}

// assignOp returns the assignment operator at the current position and
// the number of tokens it spans. '>>=' and '>>>=' arrive as separate '>'
// tokens followed by '>='.
func (p *Parser) assignOp() (string, int) {
	tok := p.cur()
	switch tok.Type {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN, token.PERCENT_ASSIGN, token.SHL_ASSIGN:
		return tok.Literal, 1
	case token.GT:
		if p.checkPeek(1, token.GE) && p.adjacent(0) {
			return ">>=", 2
		}
		if p.checkPeek(1, token.GT) && p.checkPeek(2, token.GE) && p.adjacent(0) && p.adjacent(1) {
			return ">>>=", 3
		}
	}
	return "", 0
}

// binaryOp returns the binary operator at the current position, the
// number of tokens it spans and its precedence. A zero count means no
// binary operator.
func (p *Parser) binaryOp() (string, int, int) {
	tok := p.cur()
	op, n := tok.Literal, 1
	switch tok.Type {
	case token.INSTANCEOF:
		return "instanceof", 1, ast.Precedence(ast.KindInstanceOf)
	case token.GT:
		if p.checkPeek(1, token.GT) && p.adjacent(0) {
			op, n = ">>", 2
			if p.checkPeek(2, token.GT) && p.adjacent(1) {
				op, n = ">>>", 3
			}
			// A following '>=' makes this a compound assignment.
			if p.checkPeek(n, token.GE) && p.adjacent(n-1) {
				return "", 0, 0
			}
		} else if p.checkPeek(1, token.GE) && p.adjacent(0) {
			return "", 0, 0
		}
	}
	kind, ok := ast.BinaryKind(op)
	if !ok {
		return "", 0, 0
	}
	return op, n, ast.Precedence(kind)
}

// parseTernary parses a conditional expression without assignment.
func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseBinary(1)
	if !p.match(token.QUESTION) {
		return cond
	}
	then := p.parseExpression()
	p.expect(token.COLON)
	var els ast.Expr
	if p.isLambda() {
		els = p.parseLambda()
	} else {
		els = p.parseTernary()
	}
	return &ast.Conditional{Extent: ast.Span(cond.Pos(), els.End()), Cond: cond, Then: then, Else: els}
}

// parseBinary implements precedence climbing over binary operators.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		op, n, prec := p.binaryOp()
		if n == 0 || prec < minPrec {
			return left
		}
		if op == "instanceof" {
			p.next()
			left = p.parseInstanceOfRest(left)
			continue
		}
		for i := 0; i < n; i++ {
			p.next()
		}
		right := p.parseBinary(prec + 1)
		left = &ast.Binary{Extent: ast.Span(left.Pos(), right.End()), Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseInstanceOfRest(x ast.Expr) ast.Expr {
	inst := &ast.InstanceOf{X: x}
	if p.check(token.FINAL) || p.check(token.AT) || p.isTypePattern() {
		pattern := p.parseBindingPattern()
		inst.Type = pattern.Var.Type
		inst.Pattern = pattern
	} else {
		inst.Type = p.parseType()
	}
	inst.Extent = ast.Span(x.Pos(), p.lastEnd)
	return inst
}

// parseUnary parses prefix operators and casts.
func (p *Parser) parseUnary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case token.INC, token.DEC, token.PLUS, token.MINUS, token.BANG, token.TILDE:
		p.next()
		x := p.parseUnary()
		return &ast.Unary{Extent: ast.Span(tok.Pos.Offset, x.End()), Op: tok.Literal, X: x}
	case token.LPAREN:
		if cast := p.tryCast(); cast != nil {
			return cast
		}
	}
	return p.parsePostfix()
}

// tryCast parses `(Type) operand` when the parenthesized tokens form a
// cast, or returns nil.
func (p *Parser) tryCast() ast.Expr {
	start := p.start()
	var typ ast.Expr
	primitive := false
	ok := p.speculate(func() {
		p.expect(token.LPAREN)
		primitive = token.IsPrimitive(p.cur().Type)
		typ = p.parseType()
		if p.check(token.AMP) {
			inter := &ast.IntersectionType{Bounds: []ast.Expr{typ}}
			for p.match(token.AMP) {
				inter.Bounds = append(inter.Bounds, p.parseType())
			}
			inter.Extent = ast.Span(typ.Pos(), p.lastEnd)
			typ = inter
		}
		p.expect(token.RPAREN)
		_, isArray := typ.(*ast.ArrayType)
		if primitive && !isArray {
			if !p.startsCastOperand() && !p.startsSignedOperand() {
				p.errorf(ErrExpectedExpression, p.cur().Literal)
			}
		} else if !p.startsCastOperand() {
			p.errorf(ErrExpectedExpression, p.cur().Literal)
		}
	})
	if !ok {
		return nil
	}
	var x ast.Expr
	if p.isLambda() {
		x = p.parseLambda()
	} else {
		x = p.parseUnary()
	}
	return &ast.TypeCast{Extent: ast.Span(start, x.End()), Type: typ, X: x}
}

// startsCastOperand reports whether the current token can begin the
// operand of a reference type cast: anything but an arithmetic sign.
func (p *Parser) startsCastOperand() bool {
	tok := p.cur()
	switch tok.Type {
	case token.IDENT, token.LPAREN, token.BANG, token.TILDE, token.THIS, token.SUPER, token.NEW,
		token.SWITCH, token.VOID:
		return true
	}
	return token.IsLiteral(tok.Type) || token.IsPrimitive(tok.Type)
}

func (p *Parser) startsSignedOperand() bool {
	switch p.cur().Type {
	case token.PLUS, token.MINUS, token.INC, token.DEC:
		return true
	}
	return false
}

// ---------- Lambdas ----------

// isLambda reports whether a lambda expression starts here.
func (p *Parser) isLambda() bool {
	if p.check(token.IDENT) {
		return p.checkPeek(1, token.ARROW)
	}
	if !p.check(token.LPAREN) {
		return false
	}
	depth := 0
	for k := 0; ; k++ {
		switch p.peekN(k).Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return p.checkPeek(k+1, token.ARROW)
			}
		case token.EOF, token.SEMI, token.LBRACE, token.RBRACE:
			return false
		}
	}
}

// parseLambda parses params '->' body.
func (p *Parser) parseLambda() ast.Expr {
	lambda := &ast.Lambda{}
	lambda.From = p.start()
	if p.check(token.IDENT) {
		tok := p.next()
		lambda.Params = []*ast.VariableDecl{{
			Extent:    ast.Span(tok.Pos.Offset, tok.End()),
			Modifiers: &ast.Modifiers{Extent: ast.Span(tok.Pos.Offset, tok.Pos.Offset)},
			Name:      tok.Literal,
			NamePos:   tok.Pos.Offset,
		}}
	} else {
		lambda.Parenthesized = true
		p.expect(token.LPAREN)
		implicit := p.check(token.IDENT) && (p.checkPeek(1, token.COMMA) || p.checkPeek(1, token.RPAREN))
		for !p.check(token.RPAREN) {
			if implicit {
				tok := p.expectIdent()
				lambda.Params = append(lambda.Params, &ast.VariableDecl{
					Extent:    ast.Span(tok.Pos.Offset, tok.End()),
					Modifiers: &ast.Modifiers{Extent: ast.Span(tok.Pos.Offset, tok.Pos.Offset)},
					Name:      tok.Literal,
					NamePos:   tok.Pos.Offset,
				})
			} else {
				lambda.Params = append(lambda.Params, p.parseFormalParam())
			}
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	p.expect(token.ARROW)
	if p.check(token.LBRACE) {
		lambda.Body = p.parseBlock()
	} else {
		lambda.Body = p.parseExpression()
	}
	lambda.To = p.lastEnd
	return lambda
}

// ---------- Postfix and Primary ----------

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parseSelectors(p.parsePrimary())
	for p.check(token.INC) || p.check(token.DEC) {
		op := p.next()
		x = &ast.Unary{Extent: ast.Span(x.Pos(), op.End()), Op: op.Literal, Postfix: true, X: x}
	}
	return x
}

// parsePrimary parses literals, names, parenthesized expressions,
// creations, switch expressions and class literals.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	start := tok.Pos.Offset
	switch tok.Type {
	case token.INT_LIT, token.LONG_LIT, token.FLOAT_LIT, token.DOUBLE_LIT, token.CHAR_LIT,
		token.STRING_LIT, token.TEXT_BLOCK, token.TRUE, token.FALSE, token.NULL:
		p.next()
		return &ast.Literal{Extent: ast.Span(start, tok.End()), LitKind: literalKind(tok.Type), Value: tok.Literal}
	case token.LPAREN:
		p.next()
		x := p.parseExpression()
		p.expect(token.RPAREN)
		return &ast.Parens{Extent: ast.Span(start, p.lastEnd), X: x}
	case token.THIS, token.SUPER:
		p.next()
		var x ast.Expr = &ast.Identifier{Extent: ast.Span(start, tok.End()), Name: tok.Literal}
		if p.check(token.LPAREN) {
			args := p.parseArguments()
			x = &ast.MethodInvocation{Extent: ast.Span(start, p.lastEnd), Method: x, Args: args}
		}
		return x
	case token.NEW:
		return p.parseCreator(nil)
	case token.SWITCH:
		p.next()
		sel := p.parseParenCond()
		cases := p.parseSwitchBody()
		return &ast.SwitchExpr{Extent: ast.Span(start, p.lastEnd), Selector: sel, Cases: cases}
	case token.IDENT:
		if p.checkPeek(1, token.LT) {
			if ref := p.tryGenericTypeRef(); ref != nil {
				return ref
			}
		}
		p.next()
		var x ast.Expr = &ast.Identifier{Extent: ast.Span(start, tok.End()), Name: tok.Literal}
		if p.check(token.LPAREN) {
			args := p.parseArguments()
			x = &ast.MethodInvocation{Extent: ast.Span(start, p.lastEnd), Method: x, Args: args}
		}
		return x
	}
	if token.IsPrimitive(tok.Type) || tok.Type == token.VOID {
		typ := p.parseType()
		if p.check(token.COLONCOLON) {
			return typ
		}
		p.expect(token.DOT)
		cls := p.expect(token.CLASS)
		return &ast.MemberSelect{Extent: ast.Span(start, cls.End()), X: typ, Name: "class", NamePos: cls.Pos.Offset}
	}
	p.errorf(ErrExpectedExpression, tok.Literal)
	return nil
}

// tryGenericTypeRef parses a parameterized type used as the qualifier of
// a method reference, such as `List<String>::size`.
func (p *Parser) tryGenericTypeRef() ast.Expr {
	var typ ast.Expr
	ok := p.speculate(func() {
		typ = p.parseType()
		if !p.check(token.COLONCOLON) {
			p.errorf(ErrUnexpectedToken, p.cur().Literal, "::")
		}
	})
	if !ok {
		return nil
	}
	return typ
}

func literalKind(t token.TokenType) ast.Kind {
	switch t {
	case token.INT_LIT:
		return ast.KindIntLiteral
	case token.LONG_LIT:
		return ast.KindLongLiteral
	case token.FLOAT_LIT:
		return ast.KindFloatLiteral
	case token.DOUBLE_LIT:
		return ast.KindDoubleLiteral
	case token.CHAR_LIT:
		return ast.KindCharLiteral
	case token.TRUE, token.FALSE:
		return ast.KindBooleanLiteral
	case token.NULL:
		return ast.KindNullLiteral
	}
	return ast.KindStringLiteral
}

// parseSelectors parses the member selects, invocations, array accesses
// and method references following a primary.
func (p *Parser) parseSelectors(x ast.Expr) ast.Expr {
	for {
		switch p.cur().Type {
		case token.DOT:
			p.next()
			x = p.parseDotSelector(x)
		case token.LBRACKET:
			if p.checkPeek(1, token.RBRACKET) {
				// Array type: Foo[].class or Foo[]::new.
				x = p.wrapDims(x, p.parseDims(false))
				if p.check(token.COLONCOLON) {
					continue
				}
				p.expect(token.DOT)
				cls := p.expect(token.CLASS)
				x = &ast.MemberSelect{Extent: ast.Span(x.Pos(), cls.End()), X: x, Name: "class", NamePos: cls.Pos.Offset}
				continue
			}
			p.next()
			index := p.parseExpression()
			p.expect(token.RBRACKET)
			x = &ast.ArrayAccess{Extent: ast.Span(x.Pos(), p.lastEnd), X: x, Index: index}
		case token.COLONCOLON:
			p.next()
			ref := &ast.MemberReference{X: x}
			if p.check(token.LT) {
				ref.TypeArgs = p.parseTypeArgs()
			}
			if p.check(token.NEW) {
				ref.Name = p.next().Literal
			} else {
				ref.Name = p.expectIdent().Literal
			}
			ref.Extent = ast.Span(x.Pos(), p.lastEnd)
			x = ref
		case token.LT:
			// Qualified generic type before a method reference:
			// java.util.List<String>::size.
			if !p.isGenericRefQualifier() {
				return x
			}
			args := p.parseTypeArgs()
			x = &ast.ParameterizedType{Extent: ast.Span(x.Pos(), p.lastEnd), Type: x, Args: args}
		default:
			return x
		}
	}
}

func (p *Parser) isGenericRefQualifier() bool {
	return p.lookahead(func() bool {
		p.parseTypeArgs()
		p.parseDims(false)
		return p.check(token.COLONCOLON)
	})
}

func (p *Parser) parseDotSelector(x ast.Expr) ast.Expr {
	switch {
	case p.check(token.NEW):
		return p.parseCreator(x)
	case p.check(token.LT):
		typeArgs := p.parseTypeArgs()
		name := p.cur()
		if name.Type != token.IDENT && name.Type != token.SUPER && name.Type != token.THIS {
			p.errorf(ErrUnexpectedToken, name.Literal, "method name")
		}
		p.next()
		method := &ast.MemberSelect{Extent: ast.Span(x.Pos(), name.End()), X: x, Name: name.Literal, NamePos: name.Pos.Offset}
		args := p.parseArguments()
		return &ast.MethodInvocation{Extent: ast.Span(x.Pos(), p.lastEnd), Method: method, TypeArgs: typeArgs, Args: args}
	case p.check(token.CLASS), p.check(token.THIS), p.check(token.SUPER), p.check(token.IDENT):
		name := p.next()
		var sel ast.Expr = &ast.MemberSelect{Extent: ast.Span(x.Pos(), name.End()), X: x, Name: name.Literal, NamePos: name.Pos.Offset}
		if name.Type != token.CLASS && p.check(token.LPAREN) {
			args := p.parseArguments()
			sel = &ast.MethodInvocation{Extent: ast.Span(x.Pos(), p.lastEnd), Method: sel, Args: args}
		}
		return sel
	}
	p.errorf(ErrUnexpectedToken, p.cur().Literal, "identifier")
	return nil
}

// parseArguments parses '(' [expr {',' expr}] ')'.
func (p *Parser) parseArguments() []ast.Expr {
	p.expect(token.LPAREN)
	args := []ast.Expr{}
	for !p.check(token.RPAREN) {
		args = append(args, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

// ---------- Creators ----------

// parseCreator parses `new` and what follows; outer is the qualifying
// expression of an inner class creation.
func (p *Parser) parseCreator(outer ast.Expr) ast.Expr {
	start := p.start()
	if outer != nil {
		start = outer.Pos()
	}
	p.expect(token.NEW)
	var typeArgs []ast.Expr
	if p.check(token.LT) {
		typeArgs = p.parseTypeArgs()
	}
	typ := p.parseNonArrayType()

	if p.check(token.LBRACKET) || p.check(token.AT) {
		return p.parseArrayCreatorRest(start, typ)
	}

	nc := &ast.NewClass{Outer: outer, TypeArgs: typeArgs, Type: typ}
	nc.Args = p.parseArguments()
	if p.check(token.LBRACE) {
		nc.Body = p.parseAnonymousBody()
	}
	nc.Extent = ast.Span(start, p.lastEnd)
	return nc
}

func (p *Parser) parseArrayCreatorRest(start int, elem ast.Expr) ast.Expr {
	arr := &ast.NewArray{}
	for {
		if !p.check(token.AT) && !p.check(token.LBRACKET) {
			break
		}
		if p.annotationsThen(token.LBRACKET) {
			break // empty dimensions follow
		}
		var annotations []*ast.Annotation
		for p.check(token.AT) {
			annotations = append(annotations, p.parseAnnotation())
		}
		p.expect(token.LBRACKET)
		arr.Dims = append(arr.Dims, p.parseExpression())
		arr.DimAnnotations = append(arr.DimAnnotations, annotations)
		p.expect(token.RBRACKET)
	}
	arr.Type = p.wrapDims(elem, p.parseDims(false))
	if len(arr.Dims) == 0 {
		if !p.check(token.LBRACE) {
			p.errorf(ErrUnexpectedToken, p.cur().Literal, "array initializer")
		}
		init := p.parseArrayInit(start, arr.Type)
		return init
	}
	arr.Extent = ast.Span(start, p.lastEnd)
	return arr
}

// parseArrayInit parses '{' [init {',' init}] [','] '}'. typ is the
// declared array type, or nil for a bare initializer.
func (p *Parser) parseArrayInit(start int, typ ast.Expr) *ast.NewArray {
	arr := &ast.NewArray{HasInit: true, Init: []ast.Expr{}}
	if at, ok := typ.(*ast.ArrayType); ok {
		// NewArray.Type is the element type, with the outermost
		// dimension belonging to the creation itself.
		arr.Type = at.Elem
		arr.Annotations = at.Annotations
	} else {
		arr.Type = typ
	}
	p.expect(token.LBRACE)
	for !p.check(token.RBRACE) {
		if p.check(token.LBRACE) {
			arr.Init = append(arr.Init, p.parseArrayInit(p.start(), nil))
		} else {
			arr.Init = append(arr.Init, p.parseExpression())
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	arr.Extent = ast.Span(start, p.lastEnd)
	return arr
}
