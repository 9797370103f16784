package token

import "strings"

// CommentKind distinguishes line, block and documentation comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // // comment
	BlockComment                    // /* comment */
	DocComment                      // /** comment */
)

// Comment represents a Java comment with position.
type Comment struct {
	Kind CommentKind
	Text string // includes delimiters (// or /* */)
	Span Span
}

// IsLineComment returns true if this is a line comment.
func (c *Comment) IsLineComment() bool {
	return c.Kind == LineComment
}

// IsBlockComment returns true for block and documentation comments.
func (c *Comment) IsBlockComment() bool {
	return c.Kind == BlockComment || c.Kind == DocComment
}

// IsDocComment returns true if this is a /** */ comment.
func (c *Comment) IsDocComment() bool {
	return c.Kind == DocComment
}

// ClassifyComment returns the kind of comment text.
func ClassifyComment(text string) CommentKind {
	switch {
	case strings.HasPrefix(text, "//"):
		return LineComment
	case strings.HasPrefix(text, "/**") && text != "/**/":
		return DocComment
	default:
		return BlockComment
	}
}
