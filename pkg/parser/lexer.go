package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// Lexer tokenizes Java input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	lines   *token.LineIndex

	// Comments collected during lexing (for the formatter)
	Comments []*token.Comment
	// Errors collected during lexing
	Errors []*LexError
}

const byteOrderMark = "\ufeff"

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		lines: token.NewLineIndex(input),
	}
	// A leading byte order mark is not part of the source.
	if strings.HasPrefix(input, byteOrderMark) {
		l.readPos = len(byteOrderMark)
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

// peekAt returns the character k places after the next one.
func (l *Lexer) peekAt(k int) byte {
	if l.readPos+k >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+k]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position(offset int) token.Position {
	return l.lines.Position(offset)
}

func (l *Lexer) errorf(offset int, msg string) {
	l.Errors = append(l.Errors, &LexError{Pos: l.position(offset), Message: msg})
}

// Tokenize lexes the whole input. The returned slice always ends in EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// NextToken returns the next significant token, recording comments on the
// way.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	start := l.pos
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: l.position(len(l.input))}
	}

	switch {
	case isIdentStart(l.input, l.pos):
		return l.readIdentifier()
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber()
	case l.ch == '"':
		if l.peekChar() == '"' && l.peekAt(1) == '"' {
			return l.readTextBlock()
		}
		return l.readQuoted('"', token.STRING_LIT, ErrUnterminatedString)
	case l.ch == '\'':
		return l.readQuoted('\'', token.CHAR_LIT, ErrUnterminatedChar)
	}

	if t, n := l.matchOperator(); n > 0 {
		for i := 0; i < n; i++ {
			l.readChar()
		}
		return l.newToken(t, start)
	}

	l.errorf(start, ErrIllegalChar)
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	for i := 0; i < size; i++ {
		l.readChar()
	}
	return l.newToken(token.ILLEGAL, start)
}

func (l *Lexer) newToken(t token.TokenType, start int) token.Token {
	return token.Token{Type: t, Literal: l.input[start:l.pos], Pos: l.position(start)}
}

// operators lists multi-character operators longest first. '>' never
// combines with a following '>' here; see token.GT.
var operators = []struct {
	text string
	typ  token.TokenType
}{
	{"<<=", token.SHL_ASSIGN},
	{"...", token.ELLIPSIS},
	{"->", token.ARROW},
	{"::", token.COLONCOLON},
	{"==", token.EQ},
	{"<=", token.LE},
	{">=", token.GE},
	{"!=", token.NE},
	{"&&", token.ANDAND},
	{"||", token.OROR},
	{"++", token.INC},
	{"--", token.DEC},
	{"<<", token.SHL},
	{"+=", token.PLUS_ASSIGN},
	{"-=", token.MINUS_ASSIGN},
	{"*=", token.STAR_ASSIGN},
	{"/=", token.SLASH_ASSIGN},
	{"&=", token.AMP_ASSIGN},
	{"|=", token.PIPE_ASSIGN},
	{"^=", token.CARET_ASSIGN},
	{"%=", token.PERCENT_ASSIGN},
}

var singleOperators = map[byte]token.TokenType{
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	';': token.SEMI,
	',': token.COMMA,
	'.': token.DOT,
	'@': token.AT,
	'=': token.ASSIGN,
	'>': token.GT,
	'<': token.LT,
	'!': token.BANG,
	'~': token.TILDE,
	'?': token.QUESTION,
	':': token.COLON,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'&': token.AMP,
	'|': token.PIPE,
	'^': token.CARET,
	'%': token.PERCENT,
}

func (l *Lexer) matchOperator() (token.TokenType, int) {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if len(rest) >= len(op.text) && rest[:len(op.text)] == op.text {
			return op.typ, len(op.text)
		}
	}
	if t, ok := singleOperators[l.ch]; ok {
		return t, 1
	}
	return token.ILLEGAL, 0
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.readLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.readBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) readLineComment() {
	start := l.pos
	for !l.atEOF() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
	l.addComment(start)
}

func (l *Lexer) readBlockComment() {
	start := l.pos
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.atEOF() {
			l.errorf(start, ErrUnterminatedComment)
			break
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	l.addComment(start)
}

func (l *Lexer) addComment(start int) {
	text := l.input[start:l.pos]
	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.ClassifyComment(text),
		Text: text,
		Span: token.Span{Start: l.position(start), End: l.position(l.pos)},
	})
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for !l.atEOF() && isIdentPart(l.input, l.pos) {
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}
	tok := l.newToken(token.IDENT, start)
	tok.Type = token.LookupIdent(tok.Literal)
	return tok
}

// readNumber reads integer and floating-point literals in all their
// forms: hex, octal, binary, underscores, exponents and type suffixes.
func (l *Lexer) readNumber() token.Token {
	start := l.pos
	floating := false
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		l.readDigits(isHexDigit)
		if l.ch == '.' {
			floating = true
			l.readChar()
			l.readDigits(isHexDigit)
		}
		if l.ch == 'p' || l.ch == 'P' {
			floating = true
			l.readExponent()
		}
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		l.readDigits(isDigit)
	} else {
		l.readDigits(isDigit)
		if l.ch == '.' && isDigit(l.peekChar()) {
			floating = true
			l.readChar()
			l.readDigits(isDigit)
		} else if l.ch == '.' && !isIdentStart(l.input, l.readPos) && l.peekChar() != '.' {
			// 1. is a double literal; 1.foo is not.
			floating = true
			l.readChar()
		}
		if l.ch == 'e' || l.ch == 'E' {
			floating = true
			l.readExponent()
		}
	}

	typ := token.INT_LIT
	if floating {
		typ = token.DOUBLE_LIT
	}
	switch l.ch {
	case 'l', 'L':
		typ = token.LONG_LIT
		l.readChar()
	case 'f', 'F':
		typ = token.FLOAT_LIT
		l.readChar()
	case 'd', 'D':
		typ = token.DOUBLE_LIT
		l.readChar()
	}
	return l.newToken(typ, start)
}

func (l *Lexer) readDigits(accept func(byte) bool) {
	for accept(l.ch) || l.ch == '_' {
		l.readChar()
	}
}

func (l *Lexer) readExponent() {
	l.readChar()
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	l.readDigits(isDigit)
}

func (l *Lexer) readQuoted(quote byte, typ token.TokenType, unterminated string) token.Token {
	start := l.pos
	l.readChar()
	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			l.errorf(start, unterminated)
			return l.newToken(token.ILLEGAL, start)
		case l.ch == '\\':
			l.readChar()
			l.readChar()
		case l.ch == quote:
			l.readChar()
			return l.newToken(typ, start)
		default:
			l.readChar()
		}
	}
}

func (l *Lexer) readTextBlock() token.Token {
	start := l.pos
	l.readChar()
	l.readChar()
	l.readChar()
	for {
		switch {
		case l.atEOF():
			l.errorf(start, ErrUnterminatedString)
			return l.newToken(token.ILLEGAL, start)
		case l.ch == '\\':
			l.readChar()
			l.readChar()
		case l.ch == '"' && l.peekChar() == '"' && l.peekAt(1) == '"':
			l.readChar()
			l.readChar()
			l.readChar()
			return l.newToken(token.TEXT_BLOCK, start)
		default:
			l.readChar()
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	ch := s[i]
	if ch < utf8.RuneSelf {
		return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.Is(unicode.Sc, r) || unicode.Is(unicode.Pc, r)
}

func isIdentPart(s string, i int) bool {
	if isIdentStart(s, i) {
		return true
	}
	ch := s[i]
	if ch < utf8.RuneSelf {
		return isDigit(ch)
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
