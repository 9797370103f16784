package javadoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "one line fits",
			input: "/**\n * Returns the answer.\n */",
			want:  "/** Returns the answer. */",
		},
		{
			name:  "empty",
			input: "/***/",
			want:  "/** */",
		},
		{
			name:  "tags get a blank line",
			input: "/** Adds.\n * @param a first\n * @return the sum */",
			want:  "/**\n * Adds.\n *\n * @param a first\n * @return the sum\n */",
		},
		{
			name:  "paragraphs",
			input: "/** One.\n *\n * <p>Two. */",
			want:  "/**\n * One.\n *\n * <p>Two.\n */",
		},
		{
			name:  "pre kept",
			input: "/**\n * Example:\n *\n * <pre>\n *   a  b\n * </pre>\n */",
			want:  "/**\n * Example:\n *\n * <pre>\n *   a  b\n * </pre>\n */",
		},
		{
			name:  "not a doc comment",
			input: "/* plain */",
			want:  "/* plain */",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input, 0, 100))
		})
	}
}

func TestFormat_Wraps(t *testing.T) {
	input := "/** " + strings.Repeat("lorem ipsum ", 20) + "*/"
	got := Format(input, 4, 60)
	lines := strings.Split(got, "\n")
	assert.Equal(t, "/**", lines[0])
	assert.Equal(t, " */", lines[len(lines)-1])
	for _, l := range lines[1 : len(lines)-1] {
		assert.True(t, strings.HasPrefix(l, " * "))
		assert.LessOrEqual(t, len(l)+4, 60)
	}
}

func TestFormat_TagContinuation(t *testing.T) {
	input := "/**\n * @param value " + strings.Repeat("text ", 20) + "\n */"
	got := Format(input, 0, 40)
	lines := strings.Split(got, "\n")
	assert.True(t, strings.HasPrefix(lines[1], " * @param value"))
	assert.True(t, strings.HasPrefix(lines[2], " *     text"))
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"/** Short. */",
		"/** " + strings.Repeat("lorem ipsum ", 20) + "\n * @param x " + strings.Repeat("y ", 40) + "\n * @throws E when */",
		"/**\n * <ul>\n *   <li>one\n *   <li>two " + strings.Repeat("z ", 50) + "\n * </ul>\n */",
		"/** Uses {@code a b c} and {@link Foo#bar(int, int)}. */",
	}
	for _, in := range inputs {
		once := Format(in, 2, 80)
		assert.Equal(t, once, Format(once, 2, 80))
	}
}

func TestWords_KeepsInlineTags(t *testing.T) {
	assert.Equal(t,
		[]string{"Uses", "{@code a b}", "and", `<a href="x y">`, "link."},
		words(`Uses {@code a b} and <a href="x y"> link.`))
}
