package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column+1, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column+1, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %q, expected %s"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedChar    = "unterminated character literal"
	ErrUnterminatedComment = "unterminated comment"
	ErrIllegalChar         = "illegal character"
	ErrExpectedExpression  = "expected expression, found %q"
	ErrExpectedType        = "expected type, found %q"
	ErrExpectedDeclaration = "expected declaration, found %q"
)
