package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/internal/testutil"
	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	messy     = "class A{void f(){int x=1;}}"
	formatted = "class A {\n  void f() {\n    int x = 1;\n  }\n}\n"
)

func googleStyle(t *testing.T) style.Options {
	t.Helper()
	opts, err := style.Lookup(string(style.Google))
	require.NoError(t, err)
	return opts
}

func newTestEngine(t *testing.T, store *cache.Store, exclude ...string) *Engine {
	t.Helper()
	e, err := New(Config{
		Style:   googleStyle(t),
		Jobs:    2,
		Cache:   store,
		Version: "test",
		Exclude: exclude,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return e
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestNew_InvalidStyle(t *testing.T) {
	_, err := New(Config{Style: style.Options{Style: "broken"}})
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A.java":               messy,
		"pkg/B.java":           messy,
		"pkg/notes.txt":        "x",
		".git/C.java":          messy,
		"generated/D.java":     messy,
		"pkg/E_Generated.java": messy,
	})
	e := newTestEngine(t, nil, "generated", "*_Generated.java")

	files, err := e.Discover([]string{dir, filepath.Join(dir, "A.java")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "A.java"),
		filepath.Join(dir, "pkg", "B.java"),
	}, files)

	_, err = e.Discover([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestRun_IsolatesFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A.java":   messy,
		"B.java":   formatted,
		"Bad.java": "class Bad { void f( }",
	})
	e := newTestEngine(t, nil)
	files, err := e.Discover([]string{dir})
	require.NoError(t, err)

	s, err := e.Run(context.Background(), files, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 1, s.Changed)
	assert.Equal(t, 1, s.Failed)
	assert.True(t, s.HasErrors())

	var pe *parser.ParseError
	assert.ErrorAs(t, s.Err(), &pe)

	byName := map[string]*FileResult{}
	for _, r := range s.Results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.Equal(t, formatted, byName["A.java"].Formatted)
	assert.False(t, byName["B.java"].Changed)
	assert.Error(t, byName["Bad.java"].Err)

	require.NoError(t, e.Write(context.Background(), s))
	data, err := os.ReadFile(filepath.Join(dir, "A.java"))
	require.NoError(t, err)
	assert.Equal(t, formatted, string(data))
	data, err = os.ReadFile(filepath.Join(dir, "Bad.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Bad { void f( }", string(data))
}

func TestRun_Cancelled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"A.java": messy})
	e := newTestEngine(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := e.Run(ctx, []string{filepath.Join(dir, "A.java")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s)

	data, err := os.ReadFile(filepath.Join(dir, "A.java"))
	require.NoError(t, err)
	assert.Equal(t, messy, string(data))
}

func TestRun_UsesCache(t *testing.T) {
	ctx := context.Background()
	store := cache.New(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(ctx, filepath.Join(t.TempDir(), "cache.db")))
	t.Cleanup(func() { _ = store.Close() })

	dir := writeFiles(t, map[string]string{"A.java": messy})
	files := []string{filepath.Join(dir, "A.java")}
	e := newTestEngine(t, store)

	first, err := e.Run(ctx, files, nil)
	require.NoError(t, err)
	assert.Zero(t, first.Cached)
	assert.NotEqual(t, adhocRun, first.RunID)

	second, err := e.Run(ctx, files, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cached)
	assert.Equal(t, formatted, second.Results[0].Formatted)

	// The formatted text is cached too, so a rewritten file still hits.
	out, hit, err := e.Format(ctx, formatted, nil)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, formatted, out)

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Runs)
}

func TestFormat_Lines(t *testing.T) {
	e := newTestEngine(t, nil)
	src := "class A {\nint   x;\nint   y;\n}\n"
	out, hit, err := e.Format(context.Background(), src, []format.LineRange{{First: 3, Last: 3}})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "class A {\nint   x;\n  int y;\n}\n", out)
}
