// Package input builds the position-indexed token table the planner and
// renderer work from.
//
// The table keeps every character of the source. Significant tokens are
// split so that each operator character is its own token; whitespace,
// newlines and comments are attached to a neighbouring token either as
// leading ("before") or trailing ("after") material.
package input

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/token"
)

// TokKind classifies a Tok.
type TokKind int

// Tok kinds.
const (
	TokToken TokKind = iota
	TokSpace
	TokNewline
	TokComment
)

// Tok is one lexical item of the input.
type Tok struct {
	Index  int // token index for TokToken, -1 otherwise
	Kind   TokKind
	Text   string
	Offset int
	Column int
	Line   int // 1-based
}

// End returns the offset just past the tok.
func (t *Tok) End() int { return t.Offset + len(t.Text) }

// IsToken reports whether the tok is a significant token.
func (t *Tok) IsToken() bool { return t.Kind == TokToken }

// IsNewline reports whether the tok is a line terminator.
func (t *Tok) IsNewline() bool { return t.Kind == TokNewline }

// IsComment reports whether the tok is a comment.
func (t *Tok) IsComment() bool { return t.Kind == TokComment }

// IsSlashSlashComment reports whether the tok is a // comment.
func (t *Tok) IsSlashSlashComment() bool {
	return t.Kind == TokComment && strings.HasPrefix(t.Text, "//")
}

// IsSlashStarComment reports whether the tok is a /* */ comment,
// including doc comments.
func (t *Tok) IsSlashStarComment() bool {
	return t.Kind == TokComment && strings.HasPrefix(t.Text, "/*")
}

// IsJavadocComment reports whether the tok is a /** */ comment.
func (t *Tok) IsJavadocComment() bool {
	return t.Kind == TokComment && token.ClassifyComment(t.Text) == token.DocComment
}

// Token is a significant token and its attached non-token material.
type Token struct {
	Tok    *Tok
	Before []*Tok
	After  []*Tok
}

// Text returns the token text.
func (t *Token) Text() string { return t.Tok.Text }

// Start returns the offset of the first tok attached to the token.
func (t *Token) Start() int {
	if len(t.Before) > 0 {
		return t.Before[0].Offset
	}
	return t.Tok.Offset
}

// End returns the offset just past the last tok attached to the token.
func (t *Token) End() int {
	if len(t.After) > 0 {
		return t.After[len(t.After)-1].End()
	}
	return t.Tok.End()
}

// Input is the token table of one compilation unit.
type Input struct {
	Text   string
	Lines  *token.LineIndex
	Toks   []*Tok
	Tokens []*Token // the last token is EOF with empty text
}

// New builds the token table for src from the lexer's significant tokens
// and comments. Both slices must be in source order; tokens must end with
// EOF.
func New(src string, tokens []token.Token, comments []*token.Comment) *Input {
	in := &Input{Text: src, Lines: token.NewLineIndex(src)}
	in.Toks = in.buildToks(tokens, comments)
	in.Tokens = buildTokens(in.Toks)
	return in
}

func (in *Input) newTok(kind TokKind, offset, end int) *Tok {
	pos := in.Lines.Position(offset)
	return &Tok{Index: -1, Kind: kind, Text: in.Text[offset:end], Offset: offset, Column: pos.Column, Line: pos.Line}
}

// buildToks interleaves tokens, comments and whitespace. Operator tokens
// become one tok per character.
func (in *Input) buildToks(tokens []token.Token, comments []*token.Comment) []*Tok {
	var toks []*Tok
	pos, ci, index := 0, 0, 0

	gap := func(end int) {
		for pos < end {
			switch c := in.Text[pos]; {
			case c == '\n':
				toks = append(toks, in.newTok(TokNewline, pos, pos+1))
				pos++
			case c == '\r':
				n := 1
				if pos+1 < len(in.Text) && in.Text[pos+1] == '\n' {
					n = 2
				}
				toks = append(toks, in.newTok(TokNewline, pos, pos+n))
				pos += n
			default:
				start := pos
				for pos < end && in.Text[pos] != '\n' && in.Text[pos] != '\r' {
					pos++
				}
				toks = append(toks, in.newTok(TokSpace, start, pos))
			}
		}
	}

	for _, t := range tokens {
		start := t.Pos.Offset
		for ci < len(comments) && comments[ci].Span.Start.Offset < start {
			c := comments[ci]
			gap(c.Span.Start.Offset)
			toks = append(toks, in.newTok(TokComment, c.Span.Start.Offset, c.Span.End.Offset))
			pos = c.Span.End.Offset
			ci++
		}
		gap(start)
		if t.Type == token.EOF {
			eof := in.newTok(TokToken, len(in.Text), len(in.Text))
			eof.Index = index
			toks = append(toks, eof)
			break
		}
		if token.IsOperator(t.Type) {
			for i := 0; i < len(t.Literal); i++ {
				tok := in.newTok(TokToken, start+i, start+i+1)
				tok.Index = index
				index++
				toks = append(toks, tok)
			}
		} else {
			tok := in.newTok(TokToken, start, t.End())
			tok.Index = index
			index++
			toks = append(toks, tok)
		}
		pos = t.End()
	}
	return toks
}

// buildTokens attaches non-tokens to tokens. A token's trailing toks are
// those on its own line, up to and including the newline, except that a
// block comment directly after '(', '<' or '.' and a doc comment after ';'
// lead the next token instead.
func buildTokens(toks []*Tok) []*Token {
	var tokens []*Token
	var before []*Tok
	for k := 0; k < len(toks); k++ {
		tok := toks[k]
		if !tok.IsToken() {
			before = append(before, tok)
			continue
		}
		t := &Token{Tok: tok, Before: before}
		before = nil
		if tok.Text != "" {
			for k+1 < len(toks) {
				next := toks[k+1]
				if next.IsToken() {
					break
				}
				if next.IsSlashStarComment() && !next.IsJavadocComment() &&
					(tok.Text == "(" || tok.Text == "<" || tok.Text == ".") {
					break
				}
				if next.IsJavadocComment() && tok.Text == ";" {
					break
				}
				t.After = append(t.After, next)
				k++
				if next.IsNewline() || (next.IsComment() && strings.ContainsAny(next.Text, "\r\n")) {
					break
				}
			}
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// TokenAt returns the index of the token whose attached range contains
// offset. Offsets past the end map to EOF.
func (in *Input) TokenAt(offset int) int {
	i := sort.Search(len(in.Tokens), func(i int) bool {
		return in.Tokens[i].End() > offset
	})
	if i >= len(in.Tokens) {
		return len(in.Tokens) - 1
	}
	return i
}

// LineStart returns the offset of the 1-based line.
func (in *Input) LineStart(line int) int {
	return in.Lines.LineStart(line)
}

// LineOf returns the 1-based line of offset.
func (in *Input) LineOf(offset int) int {
	return in.Lines.Position(offset).Line
}

// ColumnOf returns the 0-based column of offset.
func (in *Input) ColumnOf(offset int) int {
	return in.Lines.Position(offset).Column
}

// TokenIndexAt returns the index of the first token starting at or after
// offset.
func (in *Input) TokenIndexAt(offset int) int {
	return sort.Search(len(in.Tokens), func(i int) bool {
		return in.Tokens[i].Tok.Offset >= offset
	})
}

// ActualSize returns the source width of [pos, pos+length) widened to
// the comments attached to its first and last tokens.
func (in *Input) ActualSize(pos, length int) int {
	if length <= 0 {
		return 0
	}
	startTok := in.Tokens[in.TokenAt(pos)]
	start := startTok.Tok.Offset
	for _, t := range startTok.Before {
		if t.IsComment() && t.Offset < start {
			start = t.Offset
		}
	}
	endTok := in.Tokens[in.TokenAt(pos+length-1)]
	end := endTok.Tok.End()
	for _, t := range endTok.After {
		if t.IsComment() && t.End() > end {
			end = t.End()
		}
	}
	return end - start
}

// ActualStartColumn returns the column at which the token at pos starts,
// moved left to any comment on the same line before it.
func (in *Input) ActualStartColumn(pos int) int {
	startTok := in.Tokens[in.TokenAt(pos)]
	start := startTok.Tok.Offset
	line := startTok.Tok.Line
	for i := len(startTok.Before) - 1; i >= 0; i-- {
		t := startTok.Before[i]
		if t.Line != line {
			break
		}
		if t.IsComment() {
			start = t.Offset
		}
	}
	return in.ColumnOf(start)
}

// NewlinesBefore returns the number of line terminators between token i-1
// and token i, counting comments' embedded newlines as content.
func (in *Input) NewlinesBefore(i int) int {
	n := 0
	if i > 0 {
		for _, t := range in.Tokens[i-1].After {
			if t.IsNewline() {
				n++
			}
		}
	}
	for _, t := range in.Tokens[i].Before {
		if t.IsNewline() {
			n++
		}
	}
	return n
}
