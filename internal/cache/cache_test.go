package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapfmt/internal/testutil"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "cache", "leapfmt.db")))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run, err := s.BeginRun(ctx, style.Google)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	key := Key("class A {}", style.Options{Style: style.Google, IndentMultiplier: 1, MaxWidth: 100}, "dev")
	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, key, "class A {}\n", run.ID))
	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "class A {}\n", got)

	// Overwrite keeps a single entry.
	require.NoError(t, s.Put(ctx, key, "class A {}\n", run.ID))

	run.Files, run.Changed = 3, 1
	require.NoError(t, s.FinishRun(ctx, run))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 1, st.Runs)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, run.ID, st.LastRun.ID)
	assert.Equal(t, 3, st.LastRun.Files)
	assert.Equal(t, 1, st.LastRun.Changed)
	assert.NotNil(t, st.LastRun.FinishedAt)

	require.NoError(t, s.Clear(ctx))
	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Entries)
	assert.Nil(t, st.LastRun)
}

func TestStore_ReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leapfmt.db")

	s := New(nil)
	require.NoError(t, s.Open(ctx, path))
	require.NoError(t, s.Put(ctx, "k", "v", "run"))
	require.NoError(t, s.Close())

	s = New(nil)
	require.NoError(t, s.Open(ctx, path))
	defer func() { _ = s.Close() }()
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestKey(t *testing.T) {
	google := style.Options{Style: style.Google, IndentMultiplier: 1, MaxWidth: 100}
	aosp := style.Options{Style: style.AOSP, IndentMultiplier: 2, MaxWidth: 100}

	assert.Equal(t, Key("x", google, "1"), Key("x", google, "1"))
	assert.NotEqual(t, Key("x", google, "1"), Key("y", google, "1"))
	assert.NotEqual(t, Key("x", google, "1"), Key("x", aosp, "1"))
	assert.NotEqual(t, Key("x", google, "1"), Key("x", google, "2"))
	assert.Len(t, Key("x", google, "1"), 64)
}

func TestStore_NotOpen(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, s.Put(ctx, "k", "v", "r"), ErrNotOpen)
	_, err = s.BeginRun(ctx, style.Google)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, s.Clear(ctx), ErrNotOpen)
	assert.NoError(t, s.Close())
}

func TestStore_DatabaseErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *Store) error
		errMsg    string
	}{
		{
			name: "get",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT formatted FROM entries").WithArgs("k").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, _, err := s.Get(context.Background(), "k")
				return err
			},
			errMsg: "failed to read cache entry",
		},
		{
			name: "put",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO entries").WillReturnError(boom)
			},
			run: func(s *Store) error {
				return s.Put(context.Background(), "k", "v", "r")
			},
			errMsg: "failed to write cache entry",
		},
		{
			name: "begin run",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO runs").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, err := s.BeginRun(context.Background(), style.AOSP)
				return err
			},
			errMsg: "failed to create run",
		},
		{
			name: "stats",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, err := s.Stats(context.Background())
				return err
			},
			errMsg: "failed to count entries",
		},
		{
			name: "clear rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM entries").WillReturnError(boom)
				mock.ExpectRollback()
			},
			run: func(s *Store) error {
				return s.Clear(context.Background())
			},
			errMsg: "failed to clear cache",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			err = tt.run(NewWithDB(db, testutil.NewTestLogger(t)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, boom)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
