// Package cache remembers formatted output keyed by source content and
// style, so unchanged files are not planned again. Entries live in a SQLite
// database whose schema is managed by embedded goose migrations.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotOpen is returned by operations on a store without a database.
var ErrNotOpen = errors.New("cache not opened")

// Store is a formatted-content cache.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Run is one batch recorded in the cache.
type Run struct {
	ID         string
	Style      style.Name
	StartedAt  time.Time
	FinishedAt *time.Time
	Files      int
	Changed    int
	Failed     int
}

// Stats summarises the cache contents.
type Stats struct {
	Path    string
	Entries int
	Runs    int
	LastRun *Run
}

// New returns a store that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// NewWithDB wraps an existing connection without migrating it.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Store {
	s := New(logger)
	s.db = db
	return s
}

// Open opens the database at path, creating its directory, and applies
// pending migrations. Use ":memory:" for a throwaway cache.
func (s *Store) Open(ctx context.Context, path string) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping cache database: %w", err)
	}
	s.db = db
	s.path = path
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	s.logger.Debug("cache opened", slog.String("path", path))
	return nil
}

// Migrate runs all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Key identifies the formatting of src under opts by a formatter build.
func Key(src string, opts style.Options, version string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d\x00%t\x00%t\x00",
		version, opts.Style, opts.IndentMultiplier, opts.MaxWidth, opts.FormatJavadoc, opts.ReorderModifiers)
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the formatted text stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, ErrNotOpen
	}
	var formatted string
	err := s.db.QueryRowContext(ctx, `SELECT formatted FROM entries WHERE key = ?`, key).Scan(&formatted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return formatted, true, nil
}

// Put stores formatted under key for the given run.
func (s *Store) Put(ctx context.Context, key, formatted, runID string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, formatted, run_id, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET formatted = excluded.formatted, run_id = excluded.run_id`,
		key, formatted, runID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// BeginRun records the start of a batch and returns it.
func (s *Store) BeginRun(ctx context.Context, name style.Name) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	run := &Run{ID: uuid.New().String(), Style: name, StartedAt: time.Now().UTC()}
	s.logger.Debug("starting run", slog.String("id", run.ID), slog.String("style", string(name)))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, style, started_at) VALUES (?, ?, ?)`,
		run.ID, string(run.Style), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// FinishRun records the counts of a finished batch.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return ErrNotOpen
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, changed = ?, failed = ? WHERE id = ?`,
		now, run.Files, run.Changed, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// Stats counts entries and runs and returns the most recent run.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	st := &Stats{Path: s.path}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.Entries); err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	run := &Run{}
	var styleName string
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, style, started_at, finished_at, files, changed, failed
		 FROM runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &styleName, &run.StartedAt, &finished, &run.Files, &run.Changed, &run.Failed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	run.Style = style.Name(styleName)
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	st.LastRun = run
	return st, nil
}

// Clear deletes every entry and run.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range []string{`DELETE FROM entries`, `DELETE FROM runs`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.logger.Info("cache cleared", slog.String("path", s.path))
	return nil
}
