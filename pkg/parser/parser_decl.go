package parser

// Declarations grammar:
//
//	modifiers     → {annotation | modifier_keyword | sealed | non-sealed}
//	annotation    → '@' qualified_name ['(' [element_value | pair {',' pair}] ')']
//	class_decl    → CLASS IDENT [type_params] [EXTENDS type] [IMPLEMENTS types] [permits types] class_body
//	interface     → INTERFACE IDENT [type_params] [EXTENDS types] [permits types] class_body
//	enum_decl     → ENUM IDENT [IMPLEMENTS types] '{' [constants] [';' {member}] '}'
//	record_decl   → record IDENT [type_params] '(' [components] ')' [IMPLEMENTS types] class_body
//	annotation_t  → '@' INTERFACE IDENT class_body
//	member        → ';' | [STATIC] block | modifiers (type_decl | method | constructor | field)

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// ---------- Modifiers and Annotations ----------

// parseModifiers parses modifier keywords and annotations. Within a
// statement context, `default` is never a modifier.
func (p *Parser) parseModifiers(inBody bool) *ast.Modifiers {
	mods := &ast.Modifiers{}
	mods.From = p.start()
	mods.To = mods.From
	for {
		tok := p.cur()
		switch {
		case tok.Type == token.AT && !p.checkPeek(1, token.INTERFACE):
			mods.Annotations = append(mods.Annotations, p.parseAnnotation())
		case token.IsModifier(tok.Type) && (tok.Type != token.DEFAULT || inBody):
			if tok.Type == token.DEFAULT && (p.checkPeek(1, token.COLON) || p.checkPeek(1, token.ARROW)) {
				return mods
			}
			mods.Keywords = append(mods.Keywords, p.next())
		case p.isSealedModifier():
			mods.Keywords = append(mods.Keywords, p.next())
		case p.isNonSealedModifier():
			first := p.next()
			p.next()
			last := p.next()
			mods.Keywords = append(mods.Keywords, token.Token{
				Type:    token.IDENT,
				Literal: p.src[first.Pos.Offset:last.End()],
				Pos:     first.Pos,
			})
		default:
			return mods
		}
		mods.To = p.lastEnd
	}
}

// isSealedModifier reports whether the current `sealed` identifier is the
// contextual modifier rather than a name.
func (p *Parser) isSealedModifier() bool {
	if !p.checkIdent("sealed") {
		return false
	}
	return p.startsTypeDeclAfterModifier(1)
}

func (p *Parser) isNonSealedModifier() bool {
	return p.checkIdent("non") && p.checkPeek(1, token.MINUS) && p.peekN(2).Is("sealed") &&
		p.adjacent(0) && p.adjacent(1) && p.startsTypeDeclAfterModifier(3)
}

func (p *Parser) startsTypeDeclAfterModifier(k int) bool {
	next := p.peekN(k)
	switch {
	case next.Type == token.CLASS, next.Type == token.INTERFACE, next.Type == token.AT:
		return true
	case token.IsModifier(next.Type):
		return true
	case next.Is("sealed"), next.Is("non"), next.Is("record"):
		return true
	}
	return false
}

// parseAnnotation parses '@' name ['(' args ')'].
func (p *Parser) parseAnnotation() *ast.Annotation {
	ann := &ast.Annotation{}
	ann.From = p.start()
	p.expect(token.AT)
	ann.Name = p.parseQualifiedName()
	if p.match(token.LPAREN) {
		ann.HasParens = true
		if !p.check(token.RPAREN) {
			for {
				ann.Args = append(ann.Args, p.parseAnnotationArg())
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.expect(token.RPAREN)
	}
	ann.To = p.lastEnd
	return ann
}

func (p *Parser) parseAnnotationArg() ast.Expr {
	if p.check(token.IDENT) && p.checkPeek(1, token.ASSIGN) {
		tok := p.next()
		p.next()
		key := &ast.Identifier{Extent: ast.Span(tok.Pos.Offset, tok.End()), Name: tok.Literal}
		value := p.parseElementValue()
		return &ast.Assignment{Extent: ast.Span(tok.Pos.Offset, value.End()), Var: key, Value: value}
	}
	return p.parseElementValue()
}

// parseElementValue parses an annotation element value.
func (p *Parser) parseElementValue() ast.Expr {
	switch {
	case p.check(token.AT):
		return p.parseAnnotation()
	case p.check(token.LBRACE):
		start := p.start()
		p.next()
		arr := &ast.NewArray{HasInit: true}
		for !p.check(token.RBRACE) {
			arr.Init = append(arr.Init, p.parseElementValue())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACE)
		arr.Extent = ast.Span(start, p.lastEnd)
		return arr
	}
	return p.parseTernary()
}

// ---------- Type Declarations ----------

// isTypeDeclStart reports whether the tokens after modifiers begin a type
// declaration.
func (p *Parser) isTypeDeclStart() bool {
	switch {
	case p.check(token.CLASS), p.check(token.INTERFACE), p.check(token.ENUM):
		return true
	case p.check(token.AT) && p.checkPeek(1, token.INTERFACE):
		return true
	case p.checkIdent("record") && p.checkPeek(1, token.IDENT):
		return p.checkPeek(2, token.LPAREN) || p.checkPeek(2, token.LT)
	}
	return false
}

// parseTypeDecl parses a class, interface, enum, record or annotation type
// after its modifiers.
func (p *Parser) parseTypeDecl(start int, mods *ast.Modifiers) *ast.ClassDecl {
	decl := &ast.ClassDecl{Modifiers: mods}
	decl.From = start
	switch {
	case p.match(token.CLASS):
		decl.DeclKind = ast.DeclClass
	case p.match(token.INTERFACE):
		decl.DeclKind = ast.DeclInterface
	case p.match(token.ENUM):
		decl.DeclKind = ast.DeclEnum
	case p.check(token.AT) && p.checkPeek(1, token.INTERFACE):
		p.next()
		p.next()
		decl.DeclKind = ast.DeclAnnotation
	case p.checkIdent("record"):
		p.next()
		decl.DeclKind = ast.DeclRecord
	default:
		p.errorf(ErrExpectedDeclaration, p.cur().Literal)
	}
	decl.Name = p.expectIdent().Literal
	if p.check(token.LT) {
		decl.TypeParams = p.parseTypeParams()
	}
	if decl.DeclKind == ast.DeclRecord {
		decl.RecordComponents = p.parseRecordComponents()
	}
	for {
		switch {
		case p.match(token.EXTENDS):
			if decl.DeclKind == ast.DeclInterface {
				decl.Implements = p.parseTypeList()
			} else {
				decl.Extends = p.parseType()
			}
			continue
		case p.match(token.IMPLEMENTS):
			decl.Implements = p.parseTypeList()
			continue
		case p.checkIdent("permits"):
			p.next()
			decl.Permits = p.parseTypeList()
			continue
		}
		break
	}
	p.parseClassBody(decl)
	decl.To = p.lastEnd
	return decl
}

func (p *Parser) parseRecordComponents() []*ast.VariableDecl {
	p.expect(token.LPAREN)
	var comps []*ast.VariableDecl
	for !p.check(token.RPAREN) {
		comps = append(comps, p.parseFormalParam())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return comps
}

// parseClassBody parses '{' members '}' into decl.
func (p *Parser) parseClassBody(decl *ast.ClassDecl) {
	p.expect(token.LBRACE)
	if decl.DeclKind == ast.DeclEnum {
		p.parseEnumConstants(decl)
	}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if p.match(token.SEMI) {
			continue
		}
		decl.Members = append(decl.Members, p.parseMember(decl)...)
	}
	p.expect(token.RBRACE)
}

// parseAnonymousBody parses the class body of an anonymous class or enum
// constant.
func (p *Parser) parseAnonymousBody() *ast.ClassDecl {
	decl := &ast.ClassDecl{Modifiers: &ast.Modifiers{}}
	decl.From = p.start()
	decl.Modifiers.From, decl.Modifiers.To = decl.From, decl.From
	p.parseClassBody(decl)
	decl.To = p.lastEnd
	return decl
}

func (p *Parser) parseEnumConstants(decl *ast.ClassDecl) {
	for !p.check(token.SEMI) && !p.check(token.RBRACE) {
		c := &ast.EnumConstant{}
		c.From = p.start()
		c.Modifiers = p.parseModifiers(false)
		c.Name = p.expectIdent().Literal
		if p.check(token.LPAREN) {
			c.HasArgs = true
			c.Args = p.parseArguments()
		}
		if p.check(token.LBRACE) {
			c.Body = p.parseAnonymousBody()
		}
		c.To = p.lastEnd
		decl.EnumConstants = append(decl.EnumConstants, c)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.match(token.SEMI)
}

// parseMember parses one class body member. Fields declaring several
// variables yield one node per variable.
func (p *Parser) parseMember(owner *ast.ClassDecl) []ast.Node {
	start := p.start()
	if p.check(token.LBRACE) {
		return []ast.Node{p.parseBlock()}
	}
	if p.check(token.STATIC) && p.checkPeek(1, token.LBRACE) {
		p.next()
		block := p.parseBlock()
		block.Static = true
		block.From = start
		return []ast.Node{block}
	}

	mods := p.parseModifiers(true)
	if p.isTypeDeclStart() {
		return []ast.Node{p.parseTypeDecl(start, mods)}
	}

	var typeParams []*ast.TypeParameter
	if p.check(token.LT) {
		typeParams = p.parseTypeParams()
	}

	// Constructor: Name '(' ; compact record constructor: Name '{'.
	if p.check(token.IDENT) && p.checkPeek(1, token.LPAREN) {
		return []ast.Node{p.parseMethodRest(start, mods, typeParams, nil)}
	}
	if owner.DeclKind == ast.DeclRecord && p.check(token.IDENT) && p.checkPeek(1, token.LBRACE) {
		m := &ast.MethodDecl{Modifiers: mods, TypeParams: typeParams, Compact: true}
		m.From = start
		m.Name = p.next().Literal
		m.Body = p.parseBlock()
		m.To = p.lastEnd
		return []ast.Node{m}
	}

	typ := p.parseType()
	if p.check(token.IDENT) && p.checkPeek(1, token.LPAREN) {
		return []ast.Node{p.parseMethodRest(start, mods, typeParams, typ)}
	}
	if len(typeParams) > 0 {
		p.errorf(ErrUnexpectedToken, p.cur().Literal, "method name")
	}
	vars := p.parseVariableDeclarators(start, mods, typ)
	p.expect(token.SEMI)
	vars[len(vars)-1].To = p.lastEnd
	nodes := make([]ast.Node, len(vars))
	for i, v := range vars {
		nodes[i] = v
	}
	return nodes
}

// parseMethodRest parses a method or constructor from its name onwards.
func (p *Parser) parseMethodRest(start int, mods *ast.Modifiers, typeParams []*ast.TypeParameter, ret ast.Expr) *ast.MethodDecl {
	m := &ast.MethodDecl{Modifiers: mods, TypeParams: typeParams, ReturnType: ret}
	m.From = start
	m.Name = p.expectIdent().Literal
	p.parseFormalParams(m)
	if ret != nil {
		m.ReturnType = p.appendDims(ret, p.parseDims(false))
	}
	if p.match(token.THROWS) {
		m.Throws = p.parseTypeList()
	}
	if p.match(token.DEFAULT) {
		m.DefaultValue = p.parseElementValue()
	}
	if p.check(token.LBRACE) {
		m.Body = p.parseBlock()
	} else {
		p.expect(token.SEMI)
	}
	m.To = p.lastEnd
	return m
}

// parseFormalParams parses '(' [receiver | param {',' param}] ')'.
func (p *Parser) parseFormalParams(m *ast.MethodDecl) {
	p.expect(token.LPAREN)
	first := true
	for !p.check(token.RPAREN) {
		if first && p.isReceiverParam() {
			m.ReceiverParam = p.parseReceiverParam()
		} else {
			m.Params = append(m.Params, p.parseFormalParam())
		}
		first = false
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
}

func (p *Parser) isReceiverParam() bool {
	return p.lookahead(func() bool {
		p.parseModifiers(false)
		p.parseType()
		if p.check(token.IDENT) && p.checkPeek(1, token.DOT) {
			p.next()
			p.next()
		}
		return p.check(token.THIS)
	})
}

func (p *Parser) parseReceiverParam() *ast.VariableDecl {
	v := &ast.VariableDecl{}
	v.From = p.start()
	v.Modifiers = p.parseModifiers(false)
	v.Type = p.parseType()
	name := ""
	if p.check(token.IDENT) {
		name = p.next().Literal + "."
		p.expect(token.DOT)
	}
	this := p.expect(token.THIS)
	v.Name = name + "this"
	v.NamePos = this.Pos.Offset
	v.To = p.lastEnd
	return v
}

// parseFormalParam parses modifiers type ['...'] name {dims}.
func (p *Parser) parseFormalParam() *ast.VariableDecl {
	v := &ast.VariableDecl{}
	v.From = p.start()
	v.Modifiers = p.parseModifiers(false)
	base := p.parseNonArrayType()
	v.Type = p.wrapDims(base, p.parseDims(true))
	name := p.expectIdent()
	v.Name = name.Literal
	v.NamePos = name.Pos.Offset
	v.Type = p.appendDims(v.Type, p.parseDims(false))
	v.To = p.lastEnd
	return v
}

// parseVariableDeclarators parses name {dims} ['=' init] {',' ...}. The
// declarators share mods and start.
func (p *Parser) parseVariableDeclarators(start int, mods *ast.Modifiers, typ ast.Expr) []*ast.VariableDecl {
	var vars []*ast.VariableDecl
	for {
		v := &ast.VariableDecl{Modifiers: mods}
		v.From = start
		name := p.expectIdent()
		v.Name = name.Literal
		v.NamePos = name.Pos.Offset
		v.Type = p.appendDims(typ, p.parseDims(false))
		if p.match(token.ASSIGN) {
			v.Init = p.parseVariableInit()
		}
		v.To = p.lastEnd
		vars = append(vars, v)
		if !p.match(token.COMMA) {
			return vars
		}
	}
}

// parseVariableInit parses an expression or an array initializer.
func (p *Parser) parseVariableInit() ast.Expr {
	if p.check(token.LBRACE) {
		return p.parseArrayInit(p.start(), nil)
	}
	return p.parseExpression()
}
