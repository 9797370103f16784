package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/leapstack-labs/leapfmt/internal/cli/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// execute runs cmd with args and stdin, returning everything it printed.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// project creates a test project and makes it the working directory.
func project(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCommandShape(t *testing.T) {
	tests := []struct {
		cmd     *cobra.Command
		use     string
		aliases []string
		flags   []string
	}{
		{NewFormatCommand(), "format [paths...]", []string{"fmt"},
			[]string{"check", "stdout", "lines", "offset", "length", "jobs", "no-cache", "cache-path", "exclude", "watch", "debounce"}},
		{NewOpsCommand(), "ops <file>", nil, []string{"format"}},
		{NewProfilesCommand(), "profiles", nil, []string{"export"}},
		{NewLSPCommand(), "lsp", nil, nil},
		{NewServeCommand(), "serve", nil, []string{"addr"}},
		{NewCacheCommand(), "cache", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.Equal(t, tt.aliases, tt.cmd.Aliases)
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}

	cacheCmd := NewCacheCommand()
	var subs []string
	for _, c := range cacheCmd.Commands() {
		subs = append(subs, c.Name())
	}
	assert.ElementsMatch(t, []string{"stats", "clear"}, subs)
}

func TestFormat_InPlace(t *testing.T) {
	dir := project(t)

	out, err := execute(t, NewFormatCommand(), "", "src")
	require.NoError(t, err)

	assert.Equal(t, testutil.FormattedSource, readFile(t, filepath.Join(dir, "src", "Messy.java")))
	assert.Equal(t, testutil.FormattedSource, readFile(t, filepath.Join(dir, "src", "Clean.java")))
	assert.Equal(t, testutil.MessySource, readFile(t, filepath.Join(dir, "src", "generated", "Gen.java")), "excluded by config")

	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, filepath.Join("src", "Messy.java"))
	assert.Contains(t, out, "reformatted")
	assert.NotContains(t, out, "Clean.java")
	assert.Contains(t, out, "2 files (1 changed, 0 cached, 0 failed)")

	_, err = os.Stat(filepath.Join(dir, ".leapfmt", "cache.db"))
	assert.NoError(t, err, "cache created inside the project")
}

func TestFormat_Check(t *testing.T) {
	dir := project(t)

	out, err := execute(t, NewFormatCommand(), "", "--check", "src")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnformatted)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Contains(t, out, "unformatted")
	assert.Equal(t, testutil.MessySource, readFile(t, filepath.Join(dir, "src", "Messy.java")), "check never writes")

	_, err = execute(t, NewFormatCommand(), "", "--check", filepath.Join("src", "Clean.java"))
	assert.NoError(t, err)
}

func TestFormat_SecondRunIsCached(t *testing.T) {
	project(t)
	t.Setenv("LEAPFMT_OUTPUT", "json")

	_, err := execute(t, NewFormatCommand(), "", "src")
	require.NoError(t, err)

	out, err := execute(t, NewFormatCommand(), "", "--check", "src")
	require.NoError(t, err)

	var report formatReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 0, report.Changed)
	assert.Equal(t, 2, report.Cached)
	assert.NotEmpty(t, report.RunID)
}

func TestFormat_NoCache(t *testing.T) {
	dir := project(t)

	_, err := execute(t, NewFormatCommand(), "", "--no-cache", "src")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".leapfmt", "cache.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestFormat_Stdout(t *testing.T) {
	dir := project(t)
	path := filepath.Join("src", "Messy.java")

	out, err := execute(t, NewFormatCommand(), "", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, testutil.FormattedSource, out)
	assert.Equal(t, testutil.MessySource, readFile(t, filepath.Join(dir, path)))
}

func TestFormat_Stdin(t *testing.T) {
	project(t)
	partial := "class A {\nint   x;\nint   y;\n}\n"
	partialOut := "class A {\nint   x;\n  int y;\n}\n"

	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    string
		wantErr error
	}{
		{"whole source", testutil.MessySource, []string{"-"}, testutil.FormattedSource, nil},
		{"line range", partial, []string{"--lines", "3:3", "-"}, partialOut, nil},
		{"offset range", partial, []string{"--offset", "19", "--length", "1", "-"}, partialOut, nil},
		{"check unformatted", testutil.MessySource, []string{"--check", "-"}, "", ErrUnformatted},
		{"check formatted", testutil.FormattedSource, []string{"--check", "-"}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewFormatCommand(), tt.stdin, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	dir := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Bad.java"), []byte(testutil.BrokenSource), 0o600))

	tests := []struct {
		name      string
		stdin     string
		args      []string
		errSubstr string
	}{
		{"broken file", "", []string{"src"}, "Bad.java"},
		{"broken stdin", testutil.BrokenSource, []string{"-"}, "<stdin>"},
		{"bad line range", "", []string{"--lines", "5:2", "src"}, "invalid line range"},
		{"offset with many files", "", []string{"--offset", "1", "--length", "1", "src/Messy.java", "src/Clean.java"}, "exactly one file"},
		{"offset out of bounds", "", []string{"--offset", "1000", "--length", "1", "src/Messy.java"}, "out of bounds"},
		{"missing path", "", []string{"nope"}, "nope"},
		{"check and stdout", "", []string{"--check", "--stdout", "src"}, "check"},
		{"no paths", "", nil, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewFormatCommand(), tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	// The broken file is reported but the others are still written.
	assert.Equal(t, testutil.FormattedSource, readFile(t, filepath.Join(dir, "src", "Messy.java")))
	assert.Equal(t, testutil.BrokenSource, readFile(t, filepath.Join(dir, "src", "Bad.java")))
}

func TestFormat_JSONReport(t *testing.T) {
	dir := project(t)
	t.Setenv("LEAPFMT_OUTPUT", "json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Bad.java"), []byte(testutil.BrokenSource), 0o600))

	out, err := execute(t, NewFormatCommand(), "", "--check", "src")
	require.Error(t, err)

	var report formatReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 1, report.Failed)

	statuses := map[string]string{}
	for _, r := range report.Results {
		statuses[filepath.Base(r.Path)] = r.Status
	}
	assert.Equal(t, map[string]string{
		"Bad.java":   "failed",
		"Clean.java": "unchanged",
		"Messy.java": "unformatted",
	}, statuses)
}

func TestParseLines(t *testing.T) {
	got, err := parseLines([]string{"1:2, 5:9", "12:12", ""})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1:2", got[0].String())
	assert.Equal(t, "5:9", got[1].String())
	assert.Equal(t, "12:12", got[2].String())

	_, err = parseLines([]string{"x"})
	assert.Error(t, err)
}

func TestOps(t *testing.T) {
	project(t)
	path := filepath.Join("src", "Clean.java")

	out, err := execute(t, NewOpsCommand(), "", path)
	require.NoError(t, err)
	var dump struct {
		Style  string           `yaml:"style"`
		Tokens int              `yaml:"tokens"`
		Ops    []map[string]any `yaml:"ops"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &dump))
	assert.Equal(t, "google", dump.Style)
	assert.Positive(t, dump.Tokens)
	assert.NotEmpty(t, dump.Ops)

	out, err = execute(t, NewOpsCommand(), "", "--format", "json", path)
	require.NoError(t, err)
	var jsonDump map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &jsonDump))
	assert.Equal(t, "google", jsonDump["style"])

	out, err = execute(t, NewOpsCommand(), testutil.MessySource, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: token")

	_, err = execute(t, NewOpsCommand(), "", "--format", "xml", path)
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, NewOpsCommand(), testutil.BrokenSource, "-")
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	project(t)

	out, err := execute(t, NewProfilesCommand(), "")
	require.NoError(t, err)
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "## Style Profiles")
	assert.Contains(t, out, "google *", "configured profile is marked")
	assert.Contains(t, out, "aosp")
	assert.Contains(t, out, "custom-google")

	out, err = execute(t, NewProfilesCommand(), "", "--export")
	require.NoError(t, err)
	var exported struct {
		Profiles []exportedProfile `yaml:"profiles"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &exported))
	byName := map[string]exportedProfile{}
	for _, p := range exported.Profiles {
		byName[p.Name] = p
	}
	require.Contains(t, byName, "aosp")
	assert.Equal(t, 2, byName["aosp"].IndentMultiplier)
	assert.Equal(t, 100, byName["aosp"].MaxWidth)
}

func TestProfiles_JSON(t *testing.T) {
	project(t)
	t.Setenv("LEAPFMT_OUTPUT", "json")

	out, err := execute(t, NewProfilesCommand(), "")
	require.NoError(t, err)
	var got struct {
		Current  string           `json:"current"`
		Profiles []map[string]any `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "google", got.Current)
	assert.GreaterOrEqual(t, len(got.Profiles), 3)
}

func TestCache_StatsAndClear(t *testing.T) {
	project(t)
	t.Setenv("LEAPFMT_OUTPUT", "json")

	_, err := execute(t, NewFormatCommand(), "", "src")
	require.NoError(t, err)

	out, err := execute(t, NewCacheCommand(), "", "stats")
	require.NoError(t, err)
	var st cache.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Positive(t, st.Entries)
	assert.Equal(t, 1, st.Runs)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, 2, st.LastRun.Files)
	assert.Equal(t, 1, st.LastRun.Changed)

	_, err = execute(t, NewCacheCommand(), "", "clear")
	require.NoError(t, err)

	out, err = execute(t, NewCacheCommand(), "", "stats")
	require.NoError(t, err)
	st = cache.Stats{}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Zero(t, st.Entries)
	assert.Zero(t, st.Runs)
	assert.Nil(t, st.LastRun)
}

func TestCache_Markdown(t *testing.T) {
	project(t)

	out, err := execute(t, NewCacheCommand(), "", "stats")
	require.NoError(t, err)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "## Cache")
	assert.Contains(t, out, "- **Entries**: 0")
}

func TestCache_Disabled(t *testing.T) {
	project(t)
	t.Setenv("LEAPFMT_CACHE", "false")

	_, err := execute(t, NewCacheCommand(), "", "stats")
	assert.ErrorIs(t, err, errCacheDisabled)
}

func TestRenderSummary_Modes(t *testing.T) {
	project(t)
	cmd := NewFormatCommand()
	cmd.SetContext(t.Context())
	cc, cleanup, err := NewCommandContext(cmd)
	require.NoError(t, err)
	defer cleanup()

	summary, err := cc.Engine.Run(t.Context(), []string{filepath.Join("src", "Messy.java")}, nil)
	require.NoError(t, err)

	for _, mode := range []output.Mode{output.ModeText, output.ModeMarkdown, output.ModeJSON} {
		t.Run(string(mode), func(t *testing.T) {
			tr := testutil.NewTestRenderer(mode, false)
			require.NoError(t, renderSummary(tr.Renderer, summary, false))
			testutil.AssertOutputMode(t, tr, mode)
			assert.Contains(t, tr.Output(), "Messy.java")
		})
	}
}
