package doc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteComment(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column int
		want   string
	}{
		{"line comment gains space", "//foo", 0, "// foo"},
		{"noinspection kept", "//noinspection unchecked", 0, "//noinspection unchecked"},
		{"nls marker kept", "//$NON-NLS-1$", 0, "//$NON-NLS-1$"},
		{"divider kept", "/////", 0, "/////"},
		{"trailing spaces trimmed", "// foo   ", 0, "// foo"},
		{"parameter comment", "/*name=*/", 0, "/* name= */"},
		{
			name:   "javadoc-shaped realigned",
			text:   "/*\n      * a\n      * b\n      */",
			column: 2,
			want:   "/*\n   * a\n   * b\n   */",
		},
		{
			name:   "star added",
			text:   "/**\n foo\n */",
			column: 0,
			want:   "/**\n * foo\n */",
		},
		{
			name:   "block keeps relative indentation",
			text:   "/* a\n        b\n          c */",
			column: 4,
			want:   "/* a\n    b\n      c */",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteComment(tt.text, 100, tt.column, nil))
		})
	}
}

func TestRewriteComment_WrapsLineComments(t *testing.T) {
	text := "// " + strings.Repeat("word ", 30)
	got := RewriteComment(strings.TrimSpace(text), 40, 4, nil)
	lines := strings.Split(got, "\n")
	assert.Greater(t, len(lines), 1)
	for i, l := range lines {
		if i > 0 {
			assert.True(t, strings.HasPrefix(l, "    // "), l)
			l = l[4:]
		}
		assert.LessOrEqual(t, len(l)+4, 40)
	}
}

func TestRewriteComment_FormatsJavadoc(t *testing.T) {
	called := false
	got := RewriteComment("/** x */", 100, 0, func(s string, column int) string {
		called = true
		return "/** y */"
	})
	assert.True(t, called)
	assert.Equal(t, "/** y */", got)
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 3, TextWidth("abc"))
	assert.Equal(t, 4, TextWidth("日本"))
	assert.Equal(t, 2, TextWidth("é!"))
}
