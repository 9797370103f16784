// Package watch reformats Java files as they are saved.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapfmt/internal/engine"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before formatting.
const DefaultDebounce = 100 * time.Millisecond

// Config holds watcher configuration.
type Config struct {
	Engine *engine.Engine
	// Paths are the directories and files to watch.
	Paths    []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher reformats changed files in place.
type Watcher struct {
	engine   *engine.Engine
	paths    []string
	debounce time.Duration
	notifier *Notifier
	logger   *slog.Logger
	ready    chan struct{}

	// roots maps each walked directory to the argument it was found under,
	// so exclude patterns match relative to the user's path.
	roots map[string]string
	// files holds explicitly named files. Their directories are watched
	// too, but only these files are formatted from them.
	files map[string]bool
}

// New creates a watcher.
func New(cfg Config) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		engine:   cfg.Engine,
		paths:    cfg.Paths,
		debounce: debounce,
		notifier: NewNotifier(),
		logger:   logger,
		ready:    make(chan struct{}),
		roots:    make(map[string]string),
		files:    make(map[string]bool),
	}
}

// Notifier returns the notifier that receives an event per formatted file.
func (w *Watcher) Notifier() *Notifier { return w.notifier }

// Ready is closed once every path is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range w.paths {
		if err := w.add(watcher, p); err != nil {
			return err
		}
	}
	w.logger.Info("watching", "paths", w.paths, "dirs", len(watcher.WatchList()))
	close(w.ready)

	pending := make(map[string]struct{})
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					root := w.roots[filepath.Dir(event.Name)]
					if err := w.addDir(watcher, root, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.wanted(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for p := range pending {
				files = append(files, p)
			}
			clear(pending)
			slices.Sort(files)
			w.format(ctx, files)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) add(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return w.addDir(watcher, path, path)
	}
	path = filepath.Clean(path)
	w.files[path] = true
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	return nil
}

// addDir watches dir and its subdirectories, skipping hidden and excluded
// ones.
func (w *Watcher) addDir(watcher *fsnotify.Watcher, root, dir string) error {
	if root == "" {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.engine.Excluded(root, path)) {
			return filepath.SkipDir
		}
		w.roots[path] = root
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// wanted reports whether a changed path should be formatted: a named file,
// or a Java file inside a walked directory that no pattern excludes.
func (w *Watcher) wanted(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	if filepath.Ext(path) != engine.JavaExt || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	root, ok := w.roots[filepath.Dir(path)]
	return ok && !w.engine.Excluded(root, path)
}

// format reformats files in place and reports each one. Formatting the
// result of a write is a no-op, so the watcher's own writes settle after
// one extra pass.
func (w *Watcher) format(ctx context.Context, files []string) {
	s, err := w.engine.Run(ctx, files, nil)
	if err != nil {
		w.logger.Debug("watch batch abandoned", "error", err)
		return
	}
	if err := w.engine.Write(ctx, s); err != nil {
		w.logger.Error("failed to write formatted files", "error", err)
	}
	for _, r := range s.Results {
		if r.Err != nil {
			w.logger.Warn("format failed", "path", r.Path, "error", r.Err)
		} else if r.Changed {
			w.logger.Info("formatted", "path", r.Path)
		}
		w.notifier.Broadcast(Event{Path: r.Path, Changed: r.Changed, Err: r.Err})
	}
}
