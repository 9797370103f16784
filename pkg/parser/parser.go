// Package parser provides Java parsing for the formatter.
//
// # Usage
//
//	file, err := parser.Parse(src)
//	if err != nil {
//	    // handle *parser.ParseError or *parser.LexError
//	}
//
// The parser implements a recursive descent parser over the token slice
// produced by the Lexer. Ambiguous constructs (casts, lambdas, local
// variable declarations, generic method references) are resolved by
// speculative parsing with backtracking.
//
//	compilation_unit → [package_decl] {import_decl} {type_decl} | module_decl
//	type_decl        → modifiers (class | interface | enum | record | @interface)
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/ast"
	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// File is a parsed compilation unit together with its lexical detail.
type File struct {
	Unit     *ast.CompilationUnit
	Tokens   []token.Token // significant tokens, ending in EOF
	Comments []*token.Comment
	Lines    *token.LineIndex
}

// Parser parses Java source into an AST.
type Parser struct {
	src     string
	toks    []token.Token
	pos     int // index of the current token
	lastEnd int // end offset of the last consumed token
	lines   *token.LineIndex

	spec   int // speculation depth; errors are not recorded while > 0
	errors []error
}

// bailout unwinds the parser after an error.
type bailout struct{}

// NewParser creates a parser for src.
func NewParser(src string) (*Parser, *Lexer) {
	lx := NewLexer(src)
	toks := lx.Tokenize()
	return &Parser{src: src, toks: toks, lines: lx.lines}, lx
}

// Parse parses a Java compilation unit.
func Parse(src string) (file *File, err error) {
	p, lx := NewParser(src)
	if len(lx.Errors) > 0 {
		return nil, lx.Errors[0]
	}
	unit := p.parseUnit()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return &File{Unit: unit, Tokens: p.toks, Comments: lx.Comments, Lines: p.lines}, nil
}

// ---------- Token Helpers ----------

// cur returns the current token.
func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

// peekN returns the token k places after the current one.
func (p *Parser) peekN(k int) token.Token {
	i := p.pos + k
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// checkPeek returns true if the token k places ahead is of the given type.
func (p *Parser) checkPeek(k int, t token.TokenType) bool {
	return p.peekN(k).Type == t
}

// checkIdent returns true if the current token is the identifier name.
func (p *Parser) checkIdent(name string) bool {
	return p.cur().Is(name)
}

// next consumes the current token and returns it.
func (p *Parser) next() token.Token {
	tok := p.cur()
	if tok.Type != token.EOF {
		p.pos++
		p.lastEnd = tok.End()
	}
	return tok
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.next()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise fails.
func (p *Parser) expect(t token.TokenType) token.Token {
	if !p.check(t) {
		p.errorf(ErrUnexpectedToken, p.cur().Literal, t.String())
	}
	return p.next()
}

// expectIdent consumes an identifier, including contextual keywords.
func (p *Parser) expectIdent() token.Token {
	return p.expect(token.IDENT)
}

// adjacent reports whether the tokens at k and k+1 touch.
func (p *Parser) adjacent(k int) bool {
	return p.peekN(k).End() == p.peekN(k+1).Pos.Offset
}

// start returns the offset of the current token.
func (p *Parser) start() int {
	return p.cur().Pos.Offset
}

// errorf records an error at the current token and unwinds.
func (p *Parser) errorf(format string, args ...any) {
	if p.spec == 0 {
		p.errors = append(p.errors, &ParseError{
			Pos:     p.cur().Pos,
			Message: fmt.Sprintf(format, args...),
		})
	}
	panic(bailout{})
}

// speculate runs fn and keeps its progress when it succeeds. On failure
// the parser is rewound and false is returned.
func (p *Parser) speculate(fn func()) (ok bool) {
	savePos, saveEnd := p.pos, p.lastEnd
	p.spec++
	defer func() {
		p.spec--
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.pos, p.lastEnd = savePos, saveEnd
			ok = false
		}
	}()
	fn()
	return true
}

// lookahead runs fn speculatively and always rewinds.
func (p *Parser) lookahead(fn func() bool) bool {
	savePos, saveEnd := p.pos, p.lastEnd
	result := false
	if p.speculate(func() { result = fn() }) {
		p.pos, p.lastEnd = savePos, saveEnd
	}
	return result
}

// ---------- Compilation Unit ----------

func (p *Parser) parseUnit() (unit *ast.CompilationUnit) {
	unit = &ast.CompilationUnit{Extent: ast.Span(0, len(p.src))}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
	}()

	p.skipSemis()
	if p.isPackageDecl() {
		unit.Package = p.parsePackage()
	}
	p.skipSemis()
	for p.check(token.IMPORT) {
		unit.Imports = append(unit.Imports, p.parseImport())
		p.skipSemis()
	}
	for !p.check(token.EOF) {
		start := p.start()
		mods := p.parseModifiers(false)
		if p.isModuleDecl() {
			unit.Module = p.parseModule(start, mods)
			p.skipSemis()
			continue
		}
		unit.Types = append(unit.Types, p.parseTypeDecl(start, mods))
		p.skipSemis()
	}
	return unit
}

func (p *Parser) skipSemis() {
	for p.match(token.SEMI) {
	}
}

func (p *Parser) isPackageDecl() bool {
	return p.lookahead(func() bool {
		for p.check(token.AT) {
			p.parseAnnotation()
		}
		return p.check(token.PACKAGE)
	})
}

// package_decl → {annotation} PACKAGE qualified_name ';'
func (p *Parser) parsePackage() *ast.PackageDecl {
	decl := &ast.PackageDecl{}
	decl.From = p.start()
	for p.check(token.AT) {
		decl.Annotations = append(decl.Annotations, p.parseAnnotation())
	}
	p.expect(token.PACKAGE)
	decl.Name = p.parseQualifiedName()
	p.expect(token.SEMI)
	decl.To = p.lastEnd
	return decl
}

// import_decl → IMPORT [STATIC] qualified_name ['.' '*'] ';'
func (p *Parser) parseImport() *ast.ImportDecl {
	decl := &ast.ImportDecl{}
	decl.From = p.start()
	p.expect(token.IMPORT)
	decl.Static = p.match(token.STATIC)
	tok := p.expectIdent()
	var name ast.Expr = &ast.Identifier{Extent: ast.Span(tok.Pos.Offset, tok.End()), Name: tok.Literal}
	for p.match(token.DOT) {
		if p.check(token.STAR) {
			star := p.next()
			name = &ast.MemberSelect{Extent: ast.Span(name.Pos(), star.End()), X: name, Name: "*", NamePos: star.Pos.Offset}
			break
		}
		id := p.expectIdent()
		name = &ast.MemberSelect{Extent: ast.Span(name.Pos(), id.End()), X: name, Name: id.Literal, NamePos: id.Pos.Offset}
	}
	p.expect(token.SEMI)
	decl.Name = name
	decl.To = p.lastEnd
	return decl
}

// parseQualifiedName parses a dotted name.
func (p *Parser) parseQualifiedName() ast.Expr {
	tok := p.expectIdent()
	var name ast.Expr = &ast.Identifier{Extent: ast.Span(tok.Pos.Offset, tok.End()), Name: tok.Literal}
	for p.check(token.DOT) && p.checkPeek(1, token.IDENT) {
		p.next()
		id := p.next()
		name = &ast.MemberSelect{Extent: ast.Span(name.Pos(), id.End()), X: name, Name: id.Literal, NamePos: id.Pos.Offset}
	}
	return name
}

// ---------- Modules ----------

func (p *Parser) isModuleDecl() bool {
	if p.checkIdent("module") {
		return p.checkPeek(1, token.IDENT)
	}
	return p.checkIdent("open") && p.peekN(1).Is("module")
}

// module_decl → {annotation} [open] module qualified_name '{' {directive} '}'
func (p *Parser) parseModule(start int, mods *ast.Modifiers) *ast.ModuleDecl {
	decl := &ast.ModuleDecl{Annotations: mods.Annotations}
	decl.From = start
	if len(mods.Keywords) > 0 {
		p.errorf(ErrUnexpectedToken, mods.Keywords[0].Literal, "module")
	}
	if p.checkIdent("open") {
		p.next()
		decl.Open = true
	}
	p.next() // module
	decl.Name = p.parseQualifiedName()
	p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if p.match(token.SEMI) {
			continue
		}
		decl.Directives = append(decl.Directives, p.parseDirective())
	}
	p.expect(token.RBRACE)
	decl.To = p.lastEnd
	return decl
}

func (p *Parser) parseDirective() ast.Node {
	start := p.start()
	tok := p.expectIdent()
	switch tok.Literal {
	case "requires":
		d := &ast.RequiresDirective{}
		for {
			// `requires transitive;` names a module called transitive.
			if p.checkIdent("transitive") && !p.checkPeek(1, token.SEMI) && !p.checkPeek(1, token.DOT) {
				p.next()
				d.Transitive = true
				continue
			}
			if p.check(token.STATIC) {
				p.next()
				d.Static = true
				continue
			}
			break
		}
		d.Module = p.parseQualifiedName()
		p.expect(token.SEMI)
		d.Extent = ast.Span(start, p.lastEnd)
		return d
	case "exports", "opens":
		pkg := p.parseQualifiedName()
		var to []ast.Expr
		if p.checkIdent("to") {
			p.next()
			to = p.parseNameList()
		}
		p.expect(token.SEMI)
		if tok.Literal == "exports" {
			return &ast.ExportsDirective{Extent: ast.Span(start, p.lastEnd), Package: pkg, To: to}
		}
		return &ast.OpensDirective{Extent: ast.Span(start, p.lastEnd), Package: pkg, To: to}
	case "uses":
		svc := p.parseQualifiedName()
		p.expect(token.SEMI)
		return &ast.UsesDirective{Extent: ast.Span(start, p.lastEnd), Service: svc}
	case "provides":
		svc := p.parseQualifiedName()
		if !p.checkIdent("with") {
			p.errorf(ErrUnexpectedToken, p.cur().Literal, "with")
		}
		p.next()
		with := p.parseNameList()
		p.expect(token.SEMI)
		return &ast.ProvidesDirective{Extent: ast.Span(start, p.lastEnd), Service: svc, With: with}
	}
	p.pos--
	p.errorf(ErrExpectedDeclaration, tok.Literal)
	return nil
}

func (p *Parser) parseNameList() []ast.Expr {
	names := []ast.Expr{p.parseQualifiedName()}
	for p.match(token.COMMA) {
		names = append(names, p.parseQualifiedName())
	}
	return names
}
