package format

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/style"
)

// OpRecord is the serialisable form of one op of a built document.
type OpRecord struct {
	Kind   string `json:"kind" yaml:"kind"`
	Depth  int    `json:"depth" yaml:"depth"`
	Token  *int   `json:"token,omitempty" yaml:"token,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Fill   string `json:"fill,omitempty" yaml:"fill,omitempty"`
	Indent string `json:"indent,omitempty" yaml:"indent,omitempty"`
	Tag    int    `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// ChunkRecord is one partial-format region as inclusive token indices.
type ChunkRecord struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// OpDump describes how a file was planned: the op stream with comments
// spliced in and the regions a partial format may replace.
type OpDump struct {
	Style  style.Name    `json:"style" yaml:"style"`
	Tokens int           `json:"tokens" yaml:"tokens"`
	Ops    []OpRecord    `json:"ops" yaml:"ops"`
	Chunks []ChunkRecord `json:"chunks" yaml:"chunks"`
}

// Decorate converts a built document into records for display.
func Decorate(d *doc.Document, opts style.Options) *OpDump {
	out := &OpDump{
		Style:  opts.Style,
		Tokens: len(d.Input().Tokens),
		Ops:    make([]OpRecord, 0, len(d.Ops())),
	}
	depth := 0
	for _, op := range d.Ops() {
		rec := OpRecord{Depth: depth}
		switch op := op.(type) {
		case doc.Token:
			index := op.Index
			rec.Kind = "token"
			rec.Token = &index
			rec.Text = op.Text
		case doc.Open:
			rec.Kind = "open"
			rec.Indent = op.Indent.String()
			depth++
		case doc.Close:
			depth--
			rec.Kind = "close"
			rec.Depth = depth
		case doc.Break:
			rec.Kind = "break"
			rec.Fill = op.Fill.String()
			rec.Text = op.Flat
			rec.Indent = op.Indent.String()
			rec.Tag = int(op.Tag)
		case doc.Space:
			rec.Kind = "space"
		default:
			// Spliced comments render as `comment "<text>"`.
			kind, text, _ := strings.Cut(op.String(), " ")
			rec.Kind = kind
			if unq, err := strconv.Unquote(text); err == nil {
				text = unq
			}
			rec.Text = text
		}
		out.Ops = append(out.Ops, rec)
	}
	for _, c := range d.Chunks() {
		out.Chunks = append(out.Chunks, ChunkRecord{First: c.First, Last: c.Last})
	}
	return out
}
