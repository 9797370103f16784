package doc_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapfmt/pkg/doc"
	"github.com/leapstack-labs/leapfmt/pkg/input"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T, src string) *doc.Builder {
	t.Helper()
	lx := parser.NewLexer(src)
	toks := lx.Tokenize()
	require.Empty(t, lx.Errors)
	return doc.NewBuilder(input.New(src, toks, lx.Comments))
}

func render(t *testing.T, b *doc.Builder, width int) string {
	t.Helper()
	d, err := b.Build()
	require.NoError(t, err)
	return d.Render(doc.RenderOptions{MaxWidth: width}).Text
}

// decl emits "type name;".
func decl(b *doc.Builder, typ, name string) {
	b.Token(typ)
	b.Space()
	b.Token(name)
	b.Token(";")
}

func call(b *doc.Builder, fill doc.FillMode) {
	b.Token("foo")
	b.Token("(")
	b.Open(doc.Units(4))
	b.Break(fill, "", doc.Zero, 0)
	b.Token("bar")
	b.Token(",")
	b.Break(fill, " ", doc.Zero, 0)
	b.Token("baz")
	b.Close()
	b.Token(")")
	b.Token(";")
}

func TestRender_Breaks(t *testing.T) {
	tests := []struct {
		name  string
		fill  doc.FillMode
		width int
		want  string
	}{
		{"fits", doc.Unified, 100, "foo(bar, baz);\n"},
		{"unified breaks together", doc.Unified, 10, "foo(\n    bar,\n    baz);\n"},
		{"independent fills", doc.Independent, 10, "foo(bar,\n    baz);\n"},
		{"independent too narrow", doc.Independent, 6, "foo(\n    bar,\n    baz);\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, "foo(bar, baz);")
			call(b, tt.fill)
			assert.Equal(t, tt.want, render(t, b, tt.width))
		})
	}
}

func TestRender_Comments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "trailing line comment",
			src:  "int a; // c\nint b;",
			want: "int a; // c\nint b;\n",
		},
		{
			name: "leading comment keeps blank line",
			src:  "int a;\n\n// c\nint b;",
			want: "int a;\n\n// c\nint b;\n",
		},
		{
			name: "missing space added",
			src:  "int a;\n//c\nint b;",
			want: "int a;\n// c\nint b;\n",
		},
		{
			name: "block comment inline",
			src:  "int a; /* c */ int b;",
			want: "int a; /* c */\nint b;\n",
		},
		{
			name: "comment at end of input",
			src:  "int a;\nint b;\n\n// end\n",
			want: "int a;\nint b;\n\n// end\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, tt.src)
			decl(b, "int", "a")
			b.ForcedBreak()
			decl(b, "int", "b")
			assert.Equal(t, tt.want, render(t, b, 100))
		})
	}
}

func TestRender_BlankLines(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		wanted doc.BlankLineWanted
		want   string
	}{
		{"preserve one", "int a;\n\nint b;", doc.Preserve, "int a;\n\nint b;\n"},
		{"preserve collapses", "int a;\n\n\n\nint b;", doc.Preserve, "int a;\n\nint b;\n"},
		{"preserve none", "int a;\nint b;", doc.Preserve, "int a;\nint b;\n"},
		{"no removes", "int a;\n\nint b;", doc.No, "int a;\nint b;\n"},
		{"yes adds", "int a;\nint b;", doc.Yes, "int a;\n\nint b;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, tt.src)
			decl(b, "int", "a")
			b.ForcedBreak()
			b.BlankLineWanted(tt.wanted)
			decl(b, "int", "b")
			assert.Equal(t, tt.want, render(t, b, 100))
		})
	}
}

func TestRender_ConditionalBlankLine(t *testing.T) {
	build := func() *doc.Builder {
		b := newBuilder(t, "int a = 1;\nint b;")
		tag := b.NewTag()
		b.Open(doc.Zero)
		b.Token("int")
		b.Space()
		b.Token("a")
		b.Space()
		b.Token("=")
		b.Break(doc.Unified, " ", doc.Units(4), tag)
		b.Token("1")
		b.Token(";")
		b.Close()
		b.ForcedBreak()
		b.BlankLineWanted(doc.Conditional(tag))
		decl(b, "int", "b")
		return b
	}

	assert.Equal(t, "int a = 1;\nint b;\n", render(t, build(), 100))
	assert.Equal(t, "int a =\n    1;\n\nint b;\n", render(t, build(), 8))
}

func TestBuilder_IfBroke(t *testing.T) {
	b := newBuilder(t, "a;")
	tag := b.NewTag()

	in := b.IfBroke(tag, doc.Units(4), doc.Units(2))
	assert.True(t, in.IsConst())
	assert.Equal(t, 2, in.Const())

	b.Break(doc.Unified, "", doc.Zero, tag)
	assert.False(t, b.IfBroke(tag, doc.Units(4), doc.Units(2)).IsConst())
}

func TestBuild_ForwardTagReference(t *testing.T) {
	b := newBuilder(t, "a;")
	tag := b.NewTag()
	b.Open(doc.IfTagBroke(tag, doc.Units(4), doc.Zero))
	b.Token("a")
	b.Break(doc.Unified, "", doc.Zero, tag)
	b.Token(";")
	b.Close()

	_, err := b.Build()
	var f *doc.Fault
	require.True(t, errors.As(err, &f))
	assert.Contains(t, f.Message, "before its break")
}

func TestBuilder_Faults(t *testing.T) {
	t.Run("wrong token", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		assert.Panics(t, func() { b.Token("long") })
	})

	t.Run("guess token is optional", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		assert.NotPanics(t, func() { b.GuessToken(",") })
		assert.Empty(t, b.Ops())
	})

	t.Run("skipped token", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		assert.Panics(t, func() { b.Sync(4) })
	})

	t.Run("unbalanced close", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		assert.Panics(t, func() { b.Close() })
	})

	t.Run("missing tokens at build", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		b.Token("int")
		_, err := b.Build()
		var f *doc.Fault
		require.True(t, errors.As(err, &f))
		assert.Contains(t, f.Message, `did not generate token "a"`)
	})

	t.Run("unclosed level", func(t *testing.T) {
		b := newBuilder(t, "int a;")
		b.Open(doc.Zero)
		decl(b, "int", "a")
		_, err := b.Build()
		assert.Error(t, err)
	})
}

func TestBuilder_Op(t *testing.T) {
	b := newBuilder(t, "a -> b;")
	b.Token("a")
	b.Space()
	b.Op("->")
	b.Space()
	b.Token("b")
	b.Token(";")
	assert.Equal(t, "a -> b;\n", render(t, b, 100))
}

func TestBuilder_PeekTokens(t *testing.T) {
	b := newBuilder(t, "public static final int a;")
	mods := b.PeekTokens(0, func(tok *input.Tok) bool { return tok.Text != "int" })
	require.Len(t, mods, 3)
	assert.Equal(t, "final", mods[2].Text)
	assert.Equal(t, "public", b.Peek())
	assert.Equal(t, "int", b.PeekAt(3))
}

func TestBalancedStream(t *testing.T) {
	b := newBuilder(t, "foo(bar, baz);")
	call(b, doc.Unified)
	depth := 0
	for _, op := range b.Ops() {
		switch op.(type) {
		case doc.Open:
			depth++
		case doc.Close:
			depth--
		}
		require.GreaterOrEqual(t, depth, 0)
	}
	assert.Zero(t, depth)
}

func TestResult_Replacements(t *testing.T) {
	src := "int  a;\nint   b;\n"
	b := newBuilder(t, src)
	b.MarkForPartialFormat()
	decl(b, "int", "a")
	b.ForcedBreak()
	b.MarkForPartialFormat()
	decl(b, "int", "b")
	d, err := b.Build()
	require.NoError(t, err)
	res := d.Render(doc.RenderOptions{})
	assert.Equal(t, "int a;\nint b;\n", res.Text)

	reps := res.Replacements([]doc.TokenRange{{First: 3, Last: 3}})
	require.Len(t, reps, 1)
	assert.Equal(t, "int  a;\nint b;\n", doc.Apply(src, reps))

	chunks := d.Chunks()
	require.Len(t, chunks, 3)
	assert.Equal(t, doc.TokenRange{First: 0, Last: 2}, chunks[0])
}
