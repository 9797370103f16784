package commands

import (
	"errors"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/spf13/cobra"
)

// errCacheDisabled is returned by cache subcommands when caching is off.
var errCacheDisabled = errors.New("cache is disabled")

// NewCacheCommand creates the cache command.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the formatting cache",
		Long: `The formatting cache stores formatted output keyed by source, style
and formatter version, so unchanged files are not planned again.`,
	}
	cmd.AddCommand(newCacheStatsCommand(), newCacheClearCommand())
	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entries and the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheStats(cmd)
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry and run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd)
		},
	}
}

func openCache(cmd *cobra.Command) (*CommandContext, *cache.Store, error) {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cc.Cfg.Cache || cc.Cfg.CachePath == "" {
		return nil, nil, errCacheDisabled
	}
	store := cache.New(cc.Logger)
	if err := store.Open(cmd.Context(), cc.Cfg.CachePath); err != nil {
		return nil, nil, err
	}
	return cc, store, nil
}

func runCacheStats(cmd *cobra.Command) error {
	cc, store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	st, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	return renderCacheStats(cc.Renderer, st)
}

func renderCacheStats(r *output.Renderer, st *cache.Stats) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(st)
	}

	rows := [][]string{
		{"Path", st.Path},
		{"Entries", strconv.Itoa(st.Entries)},
		{"Runs", strconv.Itoa(st.Runs)},
	}
	if run := st.LastRun; run != nil {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows,
			[]string{"Last run", run.ID},
			[]string{"Started", run.StartedAt.Format(time.RFC3339)},
			[]string{"Duration", finished},
			[]string{"Style", string(run.Style)},
			[]string{"Files", strconv.Itoa(run.Files) + " (" + strconv.Itoa(run.Changed) + " changed, " + strconv.Itoa(run.Failed) + " failed)"},
		)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(2, "Cache"))
		r.Println()
		for _, row := range rows {
			r.Println(output.FormatKeyValue(row[0], row[1]))
		}
		return nil
	}
	r.Println(r.Styles().Header1.Render("Cache"))
	r.Table([]string{"Key", "Value"}, rows)
	return nil
}

func runCacheClear(cmd *cobra.Command) error {
	cc, store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	cc.Logger.Info("cache cleared", "path", cc.Cfg.CachePath)
	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(map[string]any{"cleared": true, "path": cc.Cfg.CachePath})
	}
	cc.Renderer.Println(cc.Renderer.Styles().StatusSuccess.String() + " cleared " + cc.Cfg.CachePath)
	return nil
}
