package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeJSON, true, ModeJSON},
		{ModeMarkdown, true, ModeMarkdown},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestStyles_PlainWithoutTTY(t *testing.T) {
	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, ModeText)
	s := r.Styles()
	assert.Equal(t, "hello", s.Error.Render("hello"))
	assert.Equal(t, "✓", s.StatusSuccess.String())
	assert.Equal(t, "✗", s.StatusFailed.String())
}

func TestTable(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeMarkdown)
	r.Table([]string{"Name", "Indent"}, [][]string{{"google", "1"}, {"aosp", "2"}})

	got := out.String()
	assert.Contains(t, got, "| Name | Indent |")
	assert.Contains(t, got, "| google | 1 |")
	assert.Contains(t, got, "| aosp | 2 |")
}

func TestJSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"changed": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got["changed"])
}

func TestWarnf(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)
	r.Warnf("skipped %d files", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "skipped 3 files\n", errOut.String())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "## Summary", FormatHeader(2, "Summary"))
	assert.Equal(t, "- **Style**: google", FormatKeyValue("Style", "google"))
	assert.Equal(t, "Custom Google", Title("custom google"))
}

func TestContext(t *testing.T) {
	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, ModeJSON)
	got, ok := FromContext(WithRenderer(context.Background(), r))
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
