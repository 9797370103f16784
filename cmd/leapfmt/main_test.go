package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapfmt/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args in a fresh working directory.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	root := cli.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapfmt "+cli.Version)

	out, err = run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapfmt v"+cli.Version)
}

func TestHelp(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"format", "ops", "profiles", "lsp", "serve", "cache", "completion"} {
		assert.Contains(t, out, sub)
	}
}

func TestFormatStdin(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default style", []string{"format", "-"}, "class A {\n    void f() {}\n}\n"},
		{"google", []string{"--style", "google", "fmt", "-"}, "class A {\n  void f() {}\n}\n"},
		{"aosp", []string{"--style", "aosp", "format", "-"}, "class A {\n    void f() {}\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "class A{void f(){}}", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "team.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("style: google\ncache: false\n"), 0o600))

	out, err := run(t, "class A{void f(){}}", "--config", cfg, "format", "-")
	require.NoError(t, err)
	assert.Equal(t, "class A {\n  void f() {}\n}\n", out)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{"unknown style", []string{"--style", "nope", "format", "-"}, "unknown style"},
		{"unknown output", []string{"-o", "html", "profiles"}, "unknown output format"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"bad completion shell", []string{"completion", "tcsh"}, "invalid argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapfmt")
}
