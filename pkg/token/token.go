// Package token defines the lexical vocabulary of Java sources.
//
// Reserved keywords have their own token types. Contextual keywords such as
// var, record, sealed, permits, yield and the module directives lex as IDENT
// and are recognised by the parser from their text.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow the Java keyword spelling
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT
	INT_LIT    // 42, 0x2A, 0b101
	LONG_LIT   // 42L
	FLOAT_LIT  // 1.5f
	DOUBLE_LIT // 1.5, 1e10
	CHAR_LIT   // 'c'
	STRING_LIT // "s"
	TEXT_BLOCK // """ ... """

	// Separators
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	SEMI     // ;
	COMMA    // ,
	DOT      // .
	ELLIPSIS // ...
	AT       // @
	COLONCOLON

	// Operators. GT is always a single '>' so that nested type arguments
	// close cleanly; the parser joins adjacent '>' tokens into shifts.
	ASSIGN   // =
	GT       // >
	LT       // <
	BANG     // !
	TILDE    // ~
	QUESTION // ?
	COLON    // :
	ARROW    // ->
	EQ       // ==
	LE       // <=
	GE       // >=
	NE       // !=
	ANDAND   // &&
	OROR     // ||
	INC      // ++
	DEC      // --
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	AMP      // &
	PIPE     // |
	CARET    // ^
	PERCENT  // %
	SHL      // <<
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	PERCENT_ASSIGN
	SHL_ASSIGN

	// Keywords (alphabetical)
	ABSTRACT
	ASSERT
	BOOLEAN
	BREAK
	BYTE
	CASE
	CATCH
	CHAR
	CLASS
	CONST
	CONTINUE
	DEFAULT
	DO
	DOUBLE
	ELSE
	ENUM
	EXTENDS
	FALSE
	FINAL
	FINALLY
	FLOAT
	FOR
	GOTO
	IF
	IMPLEMENTS
	IMPORT
	INSTANCEOF
	INT
	INTERFACE
	LONG
	NATIVE
	NEW
	NULL
	PACKAGE
	PRIVATE
	PROTECTED
	PUBLIC
	RETURN
	SHORT
	STATIC
	STRICTFP
	SUPER
	SWITCH
	SYNCHRONIZED
	THIS
	THROW
	THROWS
	TRANSIENT
	TRUE
	TRY
	VOID
	VOLATILE
	WHILE
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:      "IDENT",
	INT_LIT:    "INT_LIT",
	LONG_LIT:   "LONG_LIT",
	FLOAT_LIT:  "FLOAT_LIT",
	DOUBLE_LIT: "DOUBLE_LIT",
	CHAR_LIT:   "CHAR_LIT",
	STRING_LIT: "STRING_LIT",
	TEXT_BLOCK: "TEXT_BLOCK",

	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	LBRACKET:   "[",
	RBRACKET:   "]",
	SEMI:       ";",
	COMMA:      ",",
	DOT:        ".",
	ELLIPSIS:   "...",
	AT:         "@",
	COLONCOLON: "::",

	ASSIGN:         "=",
	GT:             ">",
	LT:             "<",
	BANG:           "!",
	TILDE:          "~",
	QUESTION:       "?",
	COLON:          ":",
	ARROW:          "->",
	EQ:             "==",
	LE:             "<=",
	GE:             ">=",
	NE:             "!=",
	ANDAND:         "&&",
	OROR:           "||",
	INC:            "++",
	DEC:            "--",
	PLUS:           "+",
	MINUS:          "-",
	STAR:           "*",
	SLASH:          "/",
	AMP:            "&",
	PIPE:           "|",
	CARET:          "^",
	PERCENT:        "%",
	SHL:            "<<",
	PLUS_ASSIGN:    "+=",
	MINUS_ASSIGN:   "-=",
	STAR_ASSIGN:    "*=",
	SLASH_ASSIGN:   "/=",
	AMP_ASSIGN:     "&=",
	PIPE_ASSIGN:    "|=",
	CARET_ASSIGN:   "^=",
	PERCENT_ASSIGN: "%=",
	SHL_ASSIGN:     "<<=",
}

// keywords maps keyword spellings to their token types.
var keywords = map[string]TokenType{
	"abstract":     ABSTRACT,
	"assert":       ASSERT,
	"boolean":      BOOLEAN,
	"break":        BREAK,
	"byte":         BYTE,
	"case":         CASE,
	"catch":        CATCH,
	"char":         CHAR,
	"class":        CLASS,
	"const":        CONST,
	"continue":     CONTINUE,
	"default":      DEFAULT,
	"do":           DO,
	"double":       DOUBLE,
	"else":         ELSE,
	"enum":         ENUM,
	"extends":      EXTENDS,
	"false":        FALSE,
	"final":        FINAL,
	"finally":      FINALLY,
	"float":        FLOAT,
	"for":          FOR,
	"goto":         GOTO,
	"if":           IF,
	"implements":   IMPLEMENTS,
	"import":       IMPORT,
	"instanceof":   INSTANCEOF,
	"int":          INT,
	"interface":    INTERFACE,
	"long":         LONG,
	"native":       NATIVE,
	"new":          NEW,
	"null":         NULL,
	"package":      PACKAGE,
	"private":      PRIVATE,
	"protected":    PROTECTED,
	"public":       PUBLIC,
	"return":       RETURN,
	"short":        SHORT,
	"static":       STATIC,
	"strictfp":     STRICTFP,
	"super":        SUPER,
	"switch":       SWITCH,
	"synchronized": SYNCHRONIZED,
	"this":         THIS,
	"throw":        THROW,
	"throws":       THROWS,
	"transient":    TRANSIENT,
	"true":         TRUE,
	"try":          TRY,
	"void":         VOID,
	"volatile":     VOLATILE,
	"while":        WHILE,
}

func init() {
	for name, t := range keywords {
		tokenNames[t] = name
	}
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a reserved keyword.
func IsKeyword(t TokenType) bool {
	return t >= ABSTRACT && t <= WHILE
}

// IsOperator returns true if the token type is an operator or separator.
func IsOperator(t TokenType) bool {
	return t >= LPAREN && t <= SHL_ASSIGN
}

// IsLiteral returns true for literal token types, including true, false
// and null.
func IsLiteral(t TokenType) bool {
	return (t >= INT_LIT && t <= TEXT_BLOCK) || t == TRUE || t == FALSE || t == NULL
}

// IsPrimitive returns true for the primitive type keywords (not void).
func IsPrimitive(t TokenType) bool {
	switch t {
	case BOOLEAN, BYTE, CHAR, SHORT, INT, LONG, FLOAT, DOUBLE:
		return true
	}
	return false
}

// IsModifier returns true for modifier keywords.
func IsModifier(t TokenType) bool {
	switch t {
	case PUBLIC, PROTECTED, PRIVATE, ABSTRACT, STATIC, FINAL, TRANSIENT,
		VOLATILE, SYNCHRONIZED, NATIVE, STRICTFP, DEFAULT:
		return true
	}
	return false
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Literal)
}

// Is reports whether the token is an identifier spelled name.
func (t Token) Is(name string) bool {
	return t.Type == IDENT && t.Literal == name
}
