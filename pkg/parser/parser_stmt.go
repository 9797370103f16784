package parser

// Statements grammar:
//
//	block          → '{' {block_stmt} '}'
//	block_stmt     → local_var_decl ';' | local_type_decl | statement
//	statement      → block | ';' | if | while | do | for | try | switch
//	               | synchronized | return | throw | break | continue
//	               | yield | assert | IDENT ':' statement | expr ';'
//	switch_body    → '{' {case} '}'
//	case           → (CASE label {',' label} [when expr] | DEFAULT) (':' {block_stmt} | '->' body)

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// parseBlock parses '{' statements '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{}
	block.From = p.start()
	p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		block.Stmts = append(block.Stmts, p.parseBlockStatement()...)
	}
	p.expect(token.RBRACE)
	block.To = p.lastEnd
	return block
}

// parseBlockStatement parses a statement that may also be a local
// variable or class declaration.
func (p *Parser) parseBlockStatement() []ast.Stmt {
	start := p.start()
	if p.isLocalTypeDecl() {
		mods := p.parseModifiers(false)
		return []ast.Stmt{p.parseTypeDecl(start, mods)}
	}
	if p.isLocalVarDecl() {
		mods := p.parseModifiers(false)
		typ := p.parseType()
		vars := p.parseVariableDeclarators(start, mods, typ)
		p.expect(token.SEMI)
		// Only the last fragment spans the semicolon.
		vars[len(vars)-1].To = p.lastEnd
		stmts := make([]ast.Stmt, len(vars))
		for i, v := range vars {
			stmts[i] = v
		}
		return stmts
	}
	return []ast.Stmt{p.parseStatement()}
}

func (p *Parser) isLocalTypeDecl() bool {
	switch p.cur().Type {
	case token.CLASS, token.INTERFACE, token.ENUM, token.ABSTRACT, token.FINAL, token.STATIC, token.STRICTFP, token.AT:
	default:
		if !p.checkIdent("record") && !p.checkIdent("sealed") && !p.checkIdent("non") {
			return false
		}
	}
	return p.lookahead(func() bool {
		p.parseModifiers(false)
		return p.isTypeDeclStart()
	})
}

// isLocalVarDecl reports whether a local variable declaration starts at
// the current token: modifiers, a type, then a name followed by one of
// '=' ';' ',' '[' ':'.
func (p *Parser) isLocalVarDecl() bool {
	if !p.isTypeStart() && !p.check(token.FINAL) {
		return false
	}
	// yield is never a type name.
	if p.checkIdent("yield") {
		return false
	}
	return p.lookahead(func() bool {
		p.parseModifiers(false)
		p.parseType()
		if !p.check(token.IDENT) {
			return false
		}
		switch p.peekN(1).Type {
		case token.ASSIGN, token.SEMI, token.COMMA, token.LBRACKET, token.COLON:
			return true
		}
		return false
	})
}

// parseStatement parses a single statement.
func (p *Parser) parseStatement() ast.Stmt {
	start := p.start()
	tok := p.cur()
	switch tok.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.SEMI:
		p.next()
		return &ast.EmptyStmt{Extent: ast.Span(start, p.lastEnd)}
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		p.next()
		cond := p.parseParenCond()
		body := p.parseStatement()
		return &ast.WhileStmt{Extent: ast.Span(start, p.lastEnd), Cond: cond, Body: body}
	case token.DO:
		p.next()
		body := p.parseStatement()
		p.expect(token.WHILE)
		cond := p.parseParenCond()
		p.expect(token.SEMI)
		return &ast.DoWhileStmt{Extent: ast.Span(start, p.lastEnd), Body: body, Cond: cond}
	case token.FOR:
		return p.parseFor()
	case token.TRY:
		return p.parseTry()
	case token.SWITCH:
		p.next()
		sel := p.parseParenCond()
		cases := p.parseSwitchBody()
		return &ast.SwitchStmt{Extent: ast.Span(start, p.lastEnd), Selector: sel, Cases: cases}
	case token.SYNCHRONIZED:
		p.next()
		lock := p.parseParenCond()
		body := p.parseBlock()
		return &ast.SynchronizedStmt{Extent: ast.Span(start, p.lastEnd), Lock: lock, Body: body}
	case token.RETURN:
		p.next()
		var x ast.Expr
		if !p.check(token.SEMI) {
			x = p.parseExpression()
		}
		p.expect(token.SEMI)
		return &ast.ReturnStmt{Extent: ast.Span(start, p.lastEnd), X: x}
	case token.THROW:
		p.next()
		x := p.parseExpression()
		p.expect(token.SEMI)
		return &ast.ThrowStmt{Extent: ast.Span(start, p.lastEnd), X: x}
	case token.BREAK, token.CONTINUE:
		p.next()
		label := ""
		if p.check(token.IDENT) {
			label = p.next().Literal
		}
		p.expect(token.SEMI)
		if tok.Type == token.BREAK {
			return &ast.BreakStmt{Extent: ast.Span(start, p.lastEnd), Label: label}
		}
		return &ast.ContinueStmt{Extent: ast.Span(start, p.lastEnd), Label: label}
	case token.ASSERT:
		p.next()
		s := &ast.AssertStmt{Cond: p.parseExpression()}
		if p.match(token.COLON) {
			s.Detail = p.parseExpression()
		}
		p.expect(token.SEMI)
		s.Extent = ast.Span(start, p.lastEnd)
		return s
	case token.IDENT:
		if p.checkPeek(1, token.COLON) {
			label := p.next().Literal
			p.next()
			body := p.parseStatement()
			return &ast.LabeledStmt{Extent: ast.Span(start, p.lastEnd), Label: label, Body: body}
		}
		if p.isYield() {
			p.next()
			x := p.parseExpression()
			p.expect(token.SEMI)
			return &ast.YieldStmt{Extent: ast.Span(start, p.lastEnd), X: x}
		}
	}
	x := p.parseExpression()
	p.expect(token.SEMI)
	return &ast.ExprStmt{Extent: ast.Span(start, p.lastEnd), X: x}
}

// isYield reports whether the current `yield` starts a yield statement
// rather than an expression using a name spelled yield.
func (p *Parser) isYield() bool {
	if !p.checkIdent("yield") {
		return false
	}
	switch p.peekN(1).Type {
	case token.ASSIGN, token.DOT, token.LBRACKET, token.SEMI, token.COLONCOLON, token.ARROW,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN, token.PERCENT_ASSIGN, token.SHL_ASSIGN:
		return false
	case token.INC, token.DEC:
		// `yield ++x;` yields; `yield++;` increments.
		return p.checkPeek(2, token.IDENT) || p.checkPeek(2, token.LPAREN)
	}
	return true
}

// parseParenCond parses '(' expr ')' and returns the inner expression.
func (p *Parser) parseParenCond() ast.Expr {
	p.expect(token.LPAREN)
	x := p.parseExpression()
	p.expect(token.RPAREN)
	return x
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.start()
	p.expect(token.IF)
	s := &ast.IfStmt{}
	s.Cond = p.parseParenCond()
	s.Then = p.parseStatement()
	if p.match(token.ELSE) {
		s.Else = p.parseStatement()
	}
	s.Extent = ast.Span(start, p.lastEnd)
	return s
}

// parseFor parses both the classic and the enhanced for loop.
func (p *Parser) parseFor() ast.Stmt {
	start := p.start()
	p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init []ast.Stmt
	if p.isLocalVarDecl() {
		declStart := p.start()
		mods := p.parseModifiers(false)
		typ := p.parseType()
		if p.check(token.IDENT) && p.checkPeek(1, token.COLON) {
			name := p.next()
			v := &ast.VariableDecl{Modifiers: mods, Type: typ, Name: name.Literal, NamePos: name.Pos.Offset}
			v.Extent = ast.Span(declStart, p.lastEnd)
			p.expect(token.COLON)
			x := p.parseExpression()
			p.expect(token.RPAREN)
			body := p.parseStatement()
			return &ast.ForEachStmt{Extent: ast.Span(start, p.lastEnd), Var: v, X: x, Body: body}
		}
		for _, v := range p.parseVariableDeclarators(declStart, mods, typ) {
			init = append(init, v)
		}
	} else if !p.check(token.SEMI) {
		for _, es := range p.parseExprStmtList() {
			init = append(init, es)
		}
	}
	p.expect(token.SEMI)

	s := &ast.ForStmt{Init: init}
	if !p.check(token.SEMI) {
		s.Cond = p.parseExpression()
	}
	p.expect(token.SEMI)
	if !p.check(token.RPAREN) {
		s.Update = p.parseExprStmtList()
	}
	p.expect(token.RPAREN)
	s.Body = p.parseStatement()
	s.Extent = ast.Span(start, p.lastEnd)
	return s
}

func (p *Parser) parseExprStmtList() []*ast.ExprStmt {
	var list []*ast.ExprStmt
	for {
		x := p.parseExpression()
		list = append(list, &ast.ExprStmt{Extent: ast.Span(x.Pos(), x.End()), X: x})
		if !p.match(token.COMMA) {
			return list
		}
	}
}

// parseTry parses try [resources] block {catch} [finally].
func (p *Parser) parseTry() ast.Stmt {
	start := p.start()
	p.expect(token.TRY)
	s := &ast.TryStmt{}
	if p.match(token.LPAREN) {
		for !p.check(token.RPAREN) {
			s.Resources = append(s.Resources, p.parseResource())
			if !p.match(token.SEMI) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	s.Body = p.parseBlock()
	for p.check(token.CATCH) {
		c := &ast.Catch{}
		c.From = p.start()
		p.next()
		p.expect(token.LPAREN)
		param := &ast.VariableDecl{}
		param.From = p.start()
		param.Modifiers = p.parseModifiers(false)
		typ := p.parseType()
		if p.check(token.PIPE) {
			union := &ast.UnionType{Alternatives: []ast.Expr{typ}}
			for p.match(token.PIPE) {
				union.Alternatives = append(union.Alternatives, p.parseType())
			}
			union.Extent = ast.Span(typ.Pos(), p.lastEnd)
			typ = union
		}
		param.Type = typ
		name := p.expectIdent()
		param.Name = name.Literal
		param.NamePos = name.Pos.Offset
		param.To = p.lastEnd
		c.Param = param
		p.expect(token.RPAREN)
		c.Body = p.parseBlock()
		c.To = p.lastEnd
		s.Catches = append(s.Catches, c)
	}
	if p.match(token.FINALLY) {
		s.Finally = p.parseBlock()
	}
	if len(s.Resources) == 0 && len(s.Catches) == 0 && s.Finally == nil {
		p.errorf(ErrUnexpectedToken, p.cur().Literal, "catch or finally")
	}
	s.Extent = ast.Span(start, p.lastEnd)
	return s
}

func (p *Parser) parseResource() ast.Node {
	if p.isLocalVarDecl() {
		start := p.start()
		mods := p.parseModifiers(false)
		typ := p.parseType()
		name := p.expectIdent()
		v := &ast.VariableDecl{Modifiers: mods, Type: typ, Name: name.Literal, NamePos: name.Pos.Offset}
		p.expect(token.ASSIGN)
		v.Init = p.parseExpression()
		v.Extent = ast.Span(start, p.lastEnd)
		return v
	}
	return p.parseExpression()
}

// parseSwitchBody parses '{' cases '}' for statements and expressions.
func (p *Parser) parseSwitchBody() []*ast.Case {
	p.expect(token.LBRACE)
	var cases []*ast.Case
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		cases = append(cases, p.parseCase())
	}
	p.expect(token.RBRACE)
	return cases
}

func (p *Parser) parseCase() *ast.Case {
	c := &ast.Case{}
	c.From = p.start()
	switch {
	case p.match(token.DEFAULT):
		c.IsDefault = true
	case p.match(token.CASE):
		for {
			c.Labels = append(c.Labels, p.parseCaseLabel())
			if !p.match(token.COMMA) {
				break
			}
		}
		if p.checkIdent("when") {
			p.next()
			c.Guard = p.parseExpression()
		}
	default:
		p.errorf(ErrUnexpectedToken, p.cur().Literal, "case or default")
	}

	if p.match(token.ARROW) {
		c.Arrow = true
		switch {
		case p.check(token.LBRACE):
			c.Body = p.parseBlock()
		case p.check(token.THROW):
			c.Body = p.parseStatement()
		default:
			c.Body = p.parseExpression()
			p.expect(token.SEMI)
		}
		c.To = p.lastEnd
		return c
	}
	p.expect(token.COLON)
	for !p.check(token.CASE) && !p.check(token.DEFAULT) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		c.Stmts = append(c.Stmts, p.parseBlockStatement()...)
	}
	c.To = p.lastEnd
	return c
}

// parseCaseLabel parses a constant, `null`, `default` or a type pattern.
func (p *Parser) parseCaseLabel() ast.Expr {
	if p.check(token.DEFAULT) {
		tok := p.next()
		return &ast.DefaultLabel{Extent: ast.Span(tok.Pos.Offset, tok.End())}
	}
	if p.isTypePattern() {
		return p.parseBindingPattern()
	}
	return p.parseTernary()
}

func (p *Parser) isTypePattern() bool {
	if !p.isTypeStart() && !p.check(token.FINAL) {
		return false
	}
	return p.lookahead(func() bool {
		p.parseModifiers(false)
		p.parseType()
		return p.check(token.IDENT) && !p.checkIdent("when")
	})
}

// parseBindingPattern parses modifiers type name.
func (p *Parser) parseBindingPattern() *ast.BindingPattern {
	start := p.start()
	v := &ast.VariableDecl{}
	v.From = start
	v.Modifiers = p.parseModifiers(false)
	v.Type = p.parseType()
	name := p.expectIdent()
	v.Name = name.Literal
	v.NamePos = name.Pos.Offset
	v.To = p.lastEnd
	return &ast.BindingPattern{Extent: ast.Span(start, p.lastEnd), Var: v}
}
