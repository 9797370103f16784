package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFlags mirrors the flags the CLI registers.
func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("style", "", "")
	fs.IntP("jobs", "j", 0, "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	fs.Bool("no-cache", false, "")
	fs.String("cache-path", "", "")
	fs.StringSlice("exclude", nil, "")
	fs.String("addr", "", "")
	fs.Duration("debounce", 0, "")
	fs.Bool("watch", false, "")
	fs.Bool("check", false, "")
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, string(style.Default), cfg.Style)
	assert.Zero(t, cfg.Jobs)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.True(t, cfg.Cache)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, DefaultAddr, cfg.Serve.Addr)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultCacheDir, DefaultCacheDB), cfg.CachePath)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
style: aosp
jobs: 2
output: markdown
exclude: [generated]
serve:
  addr: 127.0.0.1:9000
watch:
  debounce: 250ms
`)
	t.Chdir(dir)

	tests := []struct {
		name  string
		env   map[string]string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "file over defaults",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "aosp", cfg.Style)
				assert.Equal(t, 2, cfg.Jobs)
				assert.Equal(t, "markdown", cfg.OutputFormat)
				assert.Equal(t, []string{"generated"}, cfg.Exclude)
				assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
				assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
			},
		},
		{
			name: "env over file",
			env: map[string]string{
				"LEAPFMT_STYLE":       "google",
				"LEAPFMT_JOBS":        "6",
				"LEAPFMT_EXCLUDE":     "a, b,",
				"LEAPFMT_SERVE__ADDR": ":7000",
				"LEAPFMT_CACHE":       "false",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "google", cfg.Style)
				assert.Equal(t, 6, cfg.Jobs)
				assert.Equal(t, []string{"a", "b"}, cfg.Exclude)
				assert.Equal(t, ":7000", cfg.Serve.Addr)
				assert.False(t, cfg.Cache)
			},
		},
		{
			name: "flags over env",
			env:  map[string]string{"LEAPFMT_STYLE": "google", "LEAPFMT_JOBS": "6"},
			args: []string{"--style", "custom-google", "-j", "3", "--no-cache", "--addr", ":1234", "--debounce", "1s"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "custom-google", cfg.Style)
				assert.Equal(t, 3, cfg.Jobs)
				assert.False(t, cfg.Cache)
				assert.Equal(t, ":1234", cfg.Serve.Addr)
				assert.Equal(t, time.Second, cfg.Watch.Debounce)
			},
		},
		{
			name: "unset flags do not override",
			args: []string{"-v"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Verbose)
				assert.Equal(t, "aosp", cfg.Style)
				assert.True(t, cfg.Cache)
			},
		},
		{
			name: "command flags are ignored",
			args: []string{"--watch", "--check"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := testFlags()
			require.NoError(t, fs.Parse(tt.args))

			cfg, err := Load("", fs)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "style: google\ncache_path: tmp/c.db\n")
	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.Style)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, filepath.Join(root, "tmp", "c.db"), cfg.CachePath)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())

	path := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("style: aosp\n"), 0o600))
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "aosp", cfg.Style)

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Profiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
style: team
profiles:
  - name: team
    base: google
    max_width: 120
    reorder_modifiers: false
    description: Team style
`)
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	opts, err := cfg.StyleOptions()
	require.NoError(t, err)
	assert.Equal(t, style.Name("team"), opts.Style)
	assert.Equal(t, 1, opts.IndentMultiplier)
	assert.Equal(t, 120, opts.MaxWidth)
	assert.False(t, opts.ReorderModifiers)
	assert.True(t, opts.FormatJavadoc)
	assert.Equal(t, "Team style", opts.Description)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown style", "style: nope\n", "unknown style"},
		{"negative jobs", "jobs: -1\n", "jobs must not be negative"},
		{"bad output", "output: html\n", "unknown output format"},
		{"bad duration", "watch:\n  debounce: soon\n", "unable to decode"},
		{"unnamed profile", "profiles:\n  - base: google\n", "profile without a name"},
		{"profile base", "profiles:\n  - name: x\n    base: nope\n", "unknown style"},
		{"malformed yaml", "style: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			t.Chdir(dir)

			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx), "falls back to a discard logger")

	cfg := &Config{Style: "google"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
