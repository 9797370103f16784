package parser

import (
	"testing"

	"github.com/leapstack-labs/leapfmt/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(toks []token.Token) []token.TokenType {
	types := make([]token.TokenType, 0, len(toks))
	for _, t := range toks {
		types = append(types, t.Type)
	}
	return types
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
	}{
		{
			name:  "keywords and identifiers",
			input: "public class Foo",
			want:  []token.TokenType{token.PUBLIC, token.CLASS, token.IDENT, token.EOF},
		},
		{
			name:  "shift splits into single greater-than",
			input: "a >> b >>> c",
			want: []token.TokenType{
				token.IDENT, token.GT, token.GT, token.IDENT,
				token.GT, token.GT, token.GT, token.IDENT, token.EOF,
			},
		},
		{
			name:  "shift assignment ends in greater-equal",
			input: "a >>= 1",
			want:  []token.TokenType{token.IDENT, token.GT, token.GE, token.INT_LIT, token.EOF},
		},
		{
			name:  "method reference and lambda arrow",
			input: "String::valueOf x -> x",
			want: []token.TokenType{
				token.IDENT, token.COLONCOLON, token.IDENT, token.IDENT, token.ARROW, token.IDENT, token.EOF,
			},
		},
		{
			name:  "varargs ellipsis",
			input: "String... args",
			want:  []token.TokenType{token.IDENT, token.ELLIPSIS, token.IDENT, token.EOF},
		},
		{
			name:  "non-sealed lexes as three tokens",
			input: "non-sealed",
			want:  []token.TokenType{token.IDENT, token.MINUS, token.IDENT, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)
			assert.Equal(t, tt.want, tokenTypes(l.Tokenize()))
			assert.Empty(t, l.Errors)
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		input string
		want  token.TokenType
	}{
		{"42", token.INT_LIT},
		{"0x2A", token.INT_LIT},
		{"0b1010_1010", token.INT_LIT},
		{"1_000_000L", token.LONG_LIT},
		{"1.5f", token.FLOAT_LIT},
		{"1.5", token.DOUBLE_LIT},
		{"1e10", token.DOUBLE_LIT},
		{".5", token.DOUBLE_LIT},
		{"1.", token.DOUBLE_LIT},
		{"0x1.8p1", token.DOUBLE_LIT},
		{"10d", token.DOUBLE_LIT},
		{`'\n'`, token.CHAR_LIT},
		{`"a \"quoted\" string"`, token.STRING_LIT},
		{"\"\"\"\n  text\n  block\"\"\"", token.TEXT_BLOCK},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewLexer(tt.input)
			toks := l.Tokenize()
			require.Len(t, toks, 2)
			assert.Equal(t, tt.want, toks[0].Type)
			assert.Equal(t, tt.input, toks[0].Literal)
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	input := "/** doc */\nint a; // trailing\n/* block */ int b;"
	l := NewLexer(input)
	toks := l.Tokenize()

	require.Len(t, l.Comments, 3)
	assert.Equal(t, token.DocComment, l.Comments[0].Kind)
	assert.Equal(t, token.LineComment, l.Comments[1].Kind)
	assert.Equal(t, "// trailing", l.Comments[1].Text)
	assert.Equal(t, token.BlockComment, l.Comments[2].Kind)
	assert.Equal(t, 3, l.Comments[2].Span.Start.Line)

	assert.Equal(t, []token.TokenType{
		token.INT, token.IDENT, token.SEMI, token.INT, token.IDENT, token.SEMI, token.EOF,
	}, tokenTypes(toks))
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated string", `"abc`, ErrUnterminatedString},
		{"unterminated char", `'a`, ErrUnterminatedChar},
		{"unterminated comment", "/* abc", ErrUnterminatedComment},
		{"illegal character", "#", ErrIllegalChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)
			l.Tokenize()
			require.NotEmpty(t, l.Errors)
			assert.Equal(t, tt.want, l.Errors[0].Message)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	l := NewLexer("class A {\n  int x;\n}")
	toks := l.Tokenize()
	require.GreaterOrEqual(t, len(toks), 5)

	intTok := toks[3]
	assert.Equal(t, token.INT, intTok.Type)
	assert.Equal(t, 2, intTok.Pos.Line)
	assert.Equal(t, 2, intTok.Pos.Column)
	assert.Equal(t, 12, intTok.Pos.Offset)
}

func TestLexer_ByteOrderMark(t *testing.T) {
	l := NewLexer("\ufeffclass A {}")
	toks := l.Tokenize()
	require.Empty(t, l.Errors)
	assert.Equal(t, []token.TokenType{
		token.CLASS, token.IDENT, token.LBRACE, token.RBRACE, token.EOF,
	}, tokenTypes(toks))
	assert.Equal(t, 3, toks[0].Pos.Offset)
}
