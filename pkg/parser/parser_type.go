package parser

// Types grammar:
//
//	type          → {annotation} (primitive | class_type) {dims}
//	class_type    → segment {'.' {annotation} segment}
//	segment       → IDENT [type_args]
//	type_args     → '<' [type_arg {',' type_arg}] '>'
//	type_arg      → {annotation} ('?' [(EXTENDS|SUPER) type] | type)
//	dims          → {annotation} '[' ']'

import (
	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// dim is one bracket pair collected while parsing a type.
type dim struct {
	annotations []*ast.Annotation
	end         int
	varargs     bool
}

// parseType parses a type including array dimensions.
func (p *Parser) parseType() ast.Expr {
	base := p.parseNonArrayType()
	return p.wrapDims(base, p.parseDims(false))
}

// parseNonArrayType parses a type without trailing dimensions.
func (p *Parser) parseNonArrayType() ast.Expr {
	start := p.start()
	var annotations []*ast.Annotation
	for p.check(token.AT) && !p.checkPeek(1, token.INTERFACE) {
		annotations = append(annotations, p.parseAnnotation())
	}
	var base ast.Expr
	if tok := p.cur(); token.IsPrimitive(tok.Type) || tok.Type == token.VOID {
		p.next()
		base = &ast.PrimitiveType{Extent: ast.Span(tok.Pos.Offset, tok.End()), Name: tok.Literal}
	} else {
		base = p.parseClassType()
	}
	if len(annotations) > 0 {
		base = &ast.AnnotatedType{Extent: ast.Span(start, base.End()), Annotations: annotations, Underlying: base}
	}
	return base
}

// parseClassType parses a possibly qualified, possibly parameterized
// class type.
func (p *Parser) parseClassType() ast.Expr {
	if !p.check(token.IDENT) {
		p.errorf(ErrExpectedType, p.cur().Literal)
	}
	tok := p.next()
	var typ ast.Expr = &ast.Identifier{Extent: ast.Span(tok.Pos.Offset, tok.End()), Name: tok.Literal}
	typ = p.maybeTypeArgs(typ)
	for p.check(token.DOT) && (p.checkPeek(1, token.IDENT) || p.checkPeek(1, token.AT)) {
		p.next()
		var annotations []*ast.Annotation
		for p.check(token.AT) {
			annotations = append(annotations, p.parseAnnotation())
		}
		id := p.expectIdent()
		typ = &ast.MemberSelect{Extent: ast.Span(typ.Pos(), id.End()), X: typ, Name: id.Literal, NamePos: id.Pos.Offset}
		if len(annotations) > 0 {
			// The annotations sit inside the qualified name, so the node
			// starts where the name does.
			typ = &ast.AnnotatedType{Extent: ast.Span(typ.Pos(), id.End()), Annotations: annotations, Underlying: typ}
		}
		typ = p.maybeTypeArgs(typ)
	}
	return typ
}

func (p *Parser) maybeTypeArgs(typ ast.Expr) ast.Expr {
	if !p.check(token.LT) {
		return typ
	}
	args := p.parseTypeArgs()
	return &ast.ParameterizedType{Extent: ast.Span(typ.Pos(), p.lastEnd), Type: typ, Args: args}
}

// parseTypeArgs parses '<' ... '>'. The diamond yields an empty slice.
func (p *Parser) parseTypeArgs() []ast.Expr {
	p.expect(token.LT)
	var args []ast.Expr
	if p.match(token.GT) {
		return args
	}
	for {
		args = append(args, p.parseTypeArg())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.GT)
	return args
}

func (p *Parser) parseTypeArg() ast.Expr {
	start := p.start()
	var annotations []*ast.Annotation
	for p.check(token.AT) {
		annotations = append(annotations, p.parseAnnotation())
	}
	var arg ast.Expr
	if p.check(token.QUESTION) {
		q := p.next()
		w := &ast.Wildcard{Extent: ast.Span(q.Pos.Offset, q.End())}
		switch {
		case p.match(token.EXTENDS):
			w.BoundKind = ast.ExtendsBound
			w.Bound = p.parseType()
		case p.match(token.SUPER):
			w.BoundKind = ast.SuperBound
			w.Bound = p.parseType()
		}
		w.To = p.lastEnd
		arg = w
	} else {
		arg = p.parseType()
	}
	if len(annotations) > 0 {
		arg = &ast.AnnotatedType{Extent: ast.Span(start, arg.End()), Annotations: annotations, Underlying: arg}
	}
	return arg
}

// parseDims parses bracket pairs, each optionally preceded by type
// annotations. With varargs set, a trailing '...' is accepted as the last
// dimension.
func (p *Parser) parseDims(varargs bool) []dim {
	var dims []dim
	for {
		if !p.annotationsThen(token.LBRACKET) && !(varargs && p.annotationsThen(token.ELLIPSIS)) {
			return dims
		}
		var d dim
		for p.check(token.AT) {
			d.annotations = append(d.annotations, p.parseAnnotation())
		}
		if p.match(token.ELLIPSIS) {
			d.varargs = true
			d.end = p.lastEnd
			return append(dims, d)
		}
		p.expect(token.LBRACKET)
		p.expect(token.RBRACKET)
		d.end = p.lastEnd
		dims = append(dims, d)
	}
}

// annotationsThen reports whether the current position holds zero or
// more annotations followed by a token of type t. For LBRACKET the
// bracket must be empty.
func (p *Parser) annotationsThen(t token.TokenType) bool {
	if !p.check(token.AT) {
		return p.check(t) && (t != token.LBRACKET || p.checkPeek(1, token.RBRACKET))
	}
	return p.lookahead(func() bool {
		for p.check(token.AT) {
			p.parseAnnotation()
		}
		return p.check(t) && (t != token.LBRACKET || p.checkPeek(1, token.RBRACKET))
	})
}

// wrapDims nests dims around base so that the first bracket pair written
// is the outermost ArrayType.
func (p *Parser) wrapDims(base ast.Expr, dims []dim) ast.Expr {
	if len(dims) == 0 {
		return base
	}
	end := dims[len(dims)-1].end
	typ := base
	for i := len(dims) - 1; i >= 0; i-- {
		typ = &ast.ArrayType{
			Extent:      ast.Span(base.Pos(), end),
			Elem:        typ,
			Annotations: dims[i].annotations,
			Varargs:     dims[i].varargs,
		}
	}
	return typ
}

// appendDims adds dims written after a declarator name to typ, keeping
// source order: the new dimensions become the innermost ones.
func (p *Parser) appendDims(typ ast.Expr, dims []dim) ast.Expr {
	if len(dims) == 0 {
		return typ
	}
	var outer []dim
	base := typ
	for {
		at, ok := base.(*ast.ArrayType)
		if !ok {
			break
		}
		outer = append(outer, dim{annotations: at.Annotations, varargs: at.Varargs, end: at.End()})
		base = at.Elem
	}
	return p.wrapDims(base, append(outer, dims...))
}

// isTypeStart reports whether the current token can begin a type.
func (p *Parser) isTypeStart() bool {
	tok := p.cur()
	return tok.Type == token.IDENT || tok.Type == token.AT || tok.Type == token.VOID || token.IsPrimitive(tok.Type)
}

// parseTypeParams parses '<' type_param {',' type_param} '>'.
func (p *Parser) parseTypeParams() []*ast.TypeParameter {
	p.expect(token.LT)
	var params []*ast.TypeParameter
	for {
		tp := &ast.TypeParameter{}
		tp.From = p.start()
		for p.check(token.AT) {
			tp.Annotations = append(tp.Annotations, p.parseAnnotation())
		}
		tp.Name = p.expectIdent().Literal
		if p.match(token.EXTENDS) {
			tp.Bounds = append(tp.Bounds, p.parseType())
			for p.match(token.AMP) {
				tp.Bounds = append(tp.Bounds, p.parseType())
			}
		}
		tp.To = p.lastEnd
		params = append(params, tp)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.GT)
	return params
}

// parseTypeList parses type {',' type}.
func (p *Parser) parseTypeList() []ast.Expr {
	types := []ast.Expr{p.parseType()}
	for p.match(token.COMMA) {
		types = append(types, p.parseType())
	}
	return types
}
