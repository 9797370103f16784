package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"class", CLASS},
		{"instanceof", INSTANCEOF},
		{"var", IDENT},
		{"record", IDENT},
		{"yield", IDENT},
		{"foo", IDENT},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "class", CLASS.String())
	assert.Equal(t, "->", ARROW.String())
	assert.Equal(t, "IDENT", IDENT.String())
}

func TestClassifyComment(t *testing.T) {
	assert.Equal(t, LineComment, ClassifyComment("// x"))
	assert.Equal(t, BlockComment, ClassifyComment("/* x */"))
	assert.Equal(t, DocComment, ClassifyComment("/** x */"))
	assert.Equal(t, BlockComment, ClassifyComment("/**/"))
}

func TestLineIndex(t *testing.T) {
	li := NewLineIndex("ab\ncd\n\nef")
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 1}, li.Position(1))
	assert.Equal(t, Position{Line: 2, Column: 0, Offset: 3}, li.Position(3))
	assert.Equal(t, Position{Line: 4, Column: 1, Offset: 8}, li.Position(8))
	assert.Equal(t, 4, li.LineCount())
	assert.Equal(t, 6, li.LineStart(3))
}
