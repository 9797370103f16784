package input

// Cursor is a read-only position in the token list. The op builder owns
// one and advances it as tokens are emitted.
type Cursor struct {
	in *Input
	i  int
}

// NewCursor returns a cursor at the first token.
func NewCursor(in *Input) *Cursor {
	return &Cursor{in: in}
}

// Index returns the index of the next unconsumed token.
func (c *Cursor) Index() int { return c.i }

// Token returns the next unconsumed token.
func (c *Cursor) Token() *Token { return c.in.Tokens[c.i] }

// Peek returns the text of the next unconsumed token; "" at EOF.
func (c *Cursor) Peek() string { return c.PeekAt(0) }

// PeekAt returns the text of the token k places after the next one.
func (c *Cursor) PeekAt(k int) string {
	if c.i+k >= len(c.in.Tokens) {
		return ""
	}
	return c.in.Tokens[c.i+k].Tok.Text
}

// AtEOF reports whether every real token has been consumed.
func (c *Cursor) AtEOF() bool { return c.i >= len(c.in.Tokens)-1 }

// Advance consumes the next token.
func (c *Cursor) Advance() {
	if c.i < len(c.in.Tokens)-1 {
		c.i++
	}
}

// Offset returns the source offset of the next unconsumed token.
func (c *Cursor) Offset() int { return c.in.Tokens[c.i].Tok.Offset }
