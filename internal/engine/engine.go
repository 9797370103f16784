// Package engine formats batches of Java files.
// Files are planned in parallel, each with its own planner; a file that
// fails is recorded in the summary and the rest of the batch carries on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"golang.org/x/sync/errgroup"
)

// adhocRun is the run id recorded for entries cached outside a batch.
const adhocRun = "adhoc"

// Engine formats sources under one style profile.
type Engine struct {
	style   style.Options
	jobs    int
	cache   *cache.Store
	version string
	exclude []string
	logger  *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Style is the profile every file is formatted with.
	Style style.Options
	// Jobs bounds the number of files formatted at once; 0 means one per CPU.
	Jobs int
	// Cache is optional; when nil every file is planned.
	Cache *cache.Store
	// Version is mixed into cache keys so a new build never reuses stale
	// output.
	Version string
	// Exclude holds glob patterns matched against paths found while walking
	// directories.
	Exclude []string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Style.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger.Debug("initializing engine", "style", cfg.Style.Style, "jobs", jobs, "cache", cfg.Cache != nil)
	return &Engine{
		style:   cfg.Style,
		jobs:    jobs,
		cache:   cfg.Cache,
		version: cfg.Version,
		exclude: cfg.Exclude,
		logger:  logger,
	}, nil
}

// Style returns the profile the engine formats with.
func (e *Engine) Style() style.Options { return e.style }

// FileResult is the outcome of formatting one file.
type FileResult struct {
	Path      string
	Original  string
	Formatted string
	Changed   bool
	Cached    bool
	Err       error
	Duration  time.Duration
}

// Summary is the outcome of a batch.
type Summary struct {
	RunID    string
	Results  []*FileResult
	Files    int
	Changed  int
	Cached   int
	Failed   int
	Duration time.Duration
}

// HasErrors reports whether any file failed.
func (s *Summary) HasErrors() bool { return s.Failed > 0 }

// Err joins the per-file errors, or returns nil.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return errors.Join(errs...)
}

// String returns a one-line summary.
func (s *Summary) String() string {
	return fmt.Sprintf("%d files (%d changed, %d cached, %d failed) in %s",
		s.Files, s.Changed, s.Cached, s.Failed, s.Duration.Round(time.Millisecond))
}

// Format formats one source. Only the given lines are formatted when
// lines is not empty. The boolean reports a cache hit.
func (e *Engine) Format(ctx context.Context, src string, lines []format.LineRange) (string, bool, error) {
	return e.format(ctx, src, lines, adhocRun)
}

func (e *Engine) format(ctx context.Context, src string, lines []format.LineRange, runID string) (string, bool, error) {
	if len(lines) > 0 {
		// Partial output depends on the ranges; it is not cached.
		out, err := format.Ranges(src, e.style, lines)
		return out, false, err
	}

	var key string
	if e.cache != nil {
		key = cache.Key(src, e.style, e.version)
		out, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("cache lookup failed", "error", err)
		} else if ok {
			return out, true, nil
		}
	}

	out, err := format.Source(src, e.style)
	if err != nil {
		return "", false, err
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, out, runID); err != nil {
			e.logger.Warn("cache store failed", "error", err)
		}
		// Formatted output maps to itself, so a rewritten file hits next time.
		if out != src {
			if err := e.cache.Put(ctx, cache.Key(out, e.style, e.version), out, runID); err != nil {
				e.logger.Warn("cache store failed", "error", err)
			}
		}
	}
	return out, false, nil
}

// Run formats files in parallel and returns their results in input order.
// Nothing is written. Cancelling ctx stops scheduling new files and
// discards the batch.
func (e *Engine) Run(ctx context.Context, files []string, lines []format.LineRange) (*Summary, error) {
	start := time.Now()
	s := &Summary{Results: make([]*FileResult, len(files)), Files: len(files)}

	runID := adhocRun
	var run *cache.Run
	if e.cache != nil {
		var err error
		run, err = e.cache.BeginRun(ctx, e.style.Style)
		if err != nil {
			e.logger.Warn("failed to record run", "error", err)
		} else {
			runID = run.ID
		}
	}
	s.RunID = runID
	e.logger.Info("formatting", "files", len(files), "run", runID, "jobs", e.jobs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.Results[i] = e.formatFile(gctx, path, lines, runID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range s.Results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Changed:
			s.Changed++
		}
		if r.Cached {
			s.Cached++
		}
	}
	s.Duration = time.Since(start)

	if run != nil {
		run.Files, run.Changed, run.Failed = s.Files, s.Changed, s.Failed
		if err := e.cache.FinishRun(ctx, run); err != nil {
			e.logger.Warn("failed to record run", "error", err)
		}
	}
	e.logger.Info("formatted", "summary", s.String())
	return s, nil
}

func (e *Engine) formatFile(ctx context.Context, path string, lines []format.LineRange, runID string) *FileResult {
	start := time.Now()
	r := &FileResult{Path: path}
	defer func() { r.Duration = time.Since(start) }()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's arguments
	if err != nil {
		r.Err = fmt.Errorf("failed to read file: %w", err)
		return r
	}
	r.Original = string(data)
	r.Formatted, r.Cached, r.Err = e.format(ctx, r.Original, lines, runID)
	if r.Err != nil {
		e.logger.Debug("format failed", "path", path, "error", r.Err)
		return r
	}
	r.Changed = r.Formatted != r.Original
	return r
}

// Write writes every changed result back to its file, keeping the file
// mode. It stops before the next write once ctx is cancelled.
func (e *Engine) Write(ctx context.Context, s *Summary) error {
	for _, r := range s.Results {
		if r.Err != nil || !r.Changed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(r.Path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", r.Path, err)
		}
		if err := os.WriteFile(r.Path, []byte(r.Formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", r.Path, err)
		}
		e.logger.Debug("wrote", "path", r.Path)
	}
	return nil
}
