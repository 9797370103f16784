package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leapfmt/internal/engine"
	"github.com/leapstack-labs/leapfmt/internal/testutil"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	messy     = "class A{void f(){int x=1;}}"
	formatted = "class A {\n  void f() {\n    int x = 1;\n  }\n}\n"
)

func newTestWatcher(t *testing.T, paths []string, exclude ...string) *Watcher {
	t.Helper()
	opts, err := style.Lookup(string(style.Google))
	require.NoError(t, err)
	logger := testutil.NewTestLogger(t)
	eng, err := engine.New(engine.Config{Style: opts, Exclude: exclude, Logger: logger})
	require.NoError(t, err)
	return New(Config{Engine: eng, Paths: paths, Debounce: 20 * time.Millisecond, Logger: logger})
}

// start runs w until the test ends and waits for it to be ready.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}
}

// waitFor returns the first event for path.
func waitFor(t *testing.T, ch chan Event, path string) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_ReformatsOnSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}\n"), 0o600))

	w := newTestWatcher(t, []string{dir})
	events := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(events)
	start(t, w)

	require.NoError(t, os.WriteFile(path, []byte(messy), 0o600))
	ev := waitFor(t, events, path)
	assert.True(t, ev.Changed)
	assert.NoError(t, ev.Err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(data))
}

func TestWatcher_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, []string{dir})
	events := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(events)
	start(t, w)

	path := filepath.Join(dir, "Bad.java")
	require.NoError(t, os.WriteFile(path, []byte("class Bad { void f( }"), 0o600))
	ev := waitFor(t, events, path)
	assert.Error(t, ev.Err)
	assert.False(t, ev.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class Bad { void f( }", string(data))
}

func TestWatcher_Wanted(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"src", "gen", ".git", "single"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o750))
	}
	named := filepath.Join(dir, "single", "Named.java")
	require.NoError(t, os.WriteFile(named, []byte(messy), 0o600))

	w := newTestWatcher(t, []string{filepath.Join(dir, "src"), filepath.Join(dir, "gen"), named}, "*_Generated.java")
	start(t, w)

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "src", "A.java"), true},
		{filepath.Join(dir, "src", "notes.txt"), false},
		{filepath.Join(dir, "src", "A_Generated.java"), false},
		{filepath.Join(dir, ".git", "A.java"), false},
		{named, true},
		{filepath.Join(dir, "single", "Other.java"), false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, w.wanted(tt.path))
		})
	}
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	a, b := n.Subscribe(), n.Subscribe()

	n.Broadcast(Event{Path: "A.java", Changed: true})
	assert.Equal(t, Event{Path: "A.java", Changed: true}, <-a)
	assert.Equal(t, Event{Path: "A.java", Changed: true}, <-b)

	n.Unsubscribe(b)
	_, open := <-b
	assert.False(t, open)

	// A full subscriber drops events instead of blocking.
	for range cap(a) + 3 {
		n.Broadcast(Event{Path: "B.java"})
	}
	assert.Len(t, a, cap(a))
	n.Unsubscribe(a)
}
