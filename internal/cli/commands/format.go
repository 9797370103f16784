package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/leapstack-labs/leapfmt/internal/engine"
	"github.com/leapstack-labs/leapfmt/internal/watch"
	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/spf13/cobra"
)

// ErrUnformatted is returned by format --check when a file would change.
var ErrUnformatted = errors.New("files are not formatted")

// stdinPath names standard input as a format argument.
const stdinPath = "-"

type formatOptions struct {
	check  bool
	stdout bool
	lines  []string
	offset int
	length int
	watch  bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &formatOptions{}
	cmd := &cobra.Command{
		Use:     "format [paths...]",
		Aliases: []string{"fmt"},
		Short:   "Format Java source files",
		Long: `Format Java source files in place.

Directories are searched recursively for .java files, skipping hidden
directories and paths matching an exclude pattern. A path of "-" reads
standard input and writes the result to standard output.

With --lines or --offset/--length only the selected lines are
reformatted, widened to the enclosing declarations.`,
		Example: `  # Format a source tree in place
  leapfmt format src/

  # Fail if anything would change (for CI)
  leapfmt format --check src/

  # Format lines 10 to 20 of one file and print the result
  leapfmt format --stdout --lines 10:20 Foo.java

  # Format standard input with the AOSP style
  leapfmt format --style aosp - < Foo.java

  # Reformat files whenever they are saved
  leapfmt format --watch src/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.check, "check", false, "List files that would change and exit non-zero")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print formatted output instead of writing files")
	cmd.Flags().StringArrayVar(&opts.lines, "lines", nil, "Line range first:last to format (repeatable, comma-separated)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Byte offset of the region to format")
	cmd.Flags().IntVar(&opts.length, "length", 0, "Byte length of the region to format")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reformat files when they change")
	cmd.Flags().IntP("jobs", "j", 0, "Files formatted in parallel (0 = one per CPU)")
	cmd.Flags().Bool("no-cache", false, "Do not read or write the formatting cache")
	cmd.Flags().String("cache-path", "", "Path to the cache database")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns of paths to skip")
	cmd.Flags().Duration("debounce", 0, "Delay before reformatting after a change (with --watch)")

	cmd.MarkFlagsMutuallyExclusive("check", "stdout")
	cmd.MarkFlagsMutuallyExclusive("watch", "check")
	cmd.MarkFlagsMutuallyExclusive("watch", "stdout")
	cmd.MarkFlagsRequiredTogether("offset", "length")

	return cmd
}

func runFormat(cmd *cobra.Command, args []string, opts *formatOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ranges, err := parseLines(opts.lines)
	if err != nil {
		return err
	}
	useOffset := cmd.Flags().Changed("offset")

	if len(args) == 1 && args[0] == stdinPath {
		if opts.watch {
			return fmt.Errorf("--watch cannot read standard input")
		}
		return formatStdin(cmd, cc, ranges, useOffset, opts)
	}
	if useOffset && len(args) != 1 {
		return fmt.Errorf("--offset and --length require exactly one file")
	}

	files, err := cc.Engine.Discover(args)
	if err != nil {
		return err
	}
	if useOffset {
		r, err := offsetRange(files[0], opts.offset, opts.length)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}

	ctx := cmd.Context()
	if opts.watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	summary, err := cc.Engine.Run(ctx, files, ranges)
	if err != nil {
		return err
	}

	switch {
	case opts.stdout:
		for _, r := range summary.Results {
			if r.Err == nil {
				_, _ = io.WriteString(cc.Renderer.Writer(), r.Formatted)
			}
		}
		return summary.Err()
	case opts.check:
		if err := renderSummary(cc.Renderer, summary, true); err != nil {
			return err
		}
		if err := summary.Err(); err != nil {
			return err
		}
		if summary.Changed > 0 {
			return fmt.Errorf("%w: %d of %d files would be reformatted", ErrUnformatted, summary.Changed, summary.Files)
		}
		return nil
	}

	if err := cc.Engine.Write(ctx, summary); err != nil {
		return err
	}
	if err := renderSummary(cc.Renderer, summary, false); err != nil {
		return err
	}
	if opts.watch {
		return watchFiles(ctx, cc, args)
	}
	return summary.Err()
}

// formatStdin formats standard input to standard output.
func formatStdin(cmd *cobra.Command, cc *CommandContext, ranges []format.LineRange, useOffset bool, opts *formatOptions) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read standard input: %w", err)
	}
	src := string(data)
	if useOffset {
		r, err := format.OffsetRange(src, opts.offset, opts.length)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}
	out, _, err := cc.Engine.Format(cmd.Context(), src, ranges)
	if err != nil {
		return fmt.Errorf("<stdin>: %w", err)
	}
	if opts.check {
		if out != src {
			return fmt.Errorf("%w: <stdin>", ErrUnformatted)
		}
		return nil
	}
	_, err = io.WriteString(cc.Renderer.Writer(), out)
	return err
}

// parseLines parses --lines values, each holding one or more
// comma-separated ranges.
func parseLines(values []string) ([]format.LineRange, error) {
	var ranges []format.LineRange
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			r, err := format.ParseLineRange(part)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, r)
		}
	}
	return ranges, nil
}

func offsetRange(path string, offset, length int) (format.LineRange, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied source file
	if err != nil {
		return format.LineRange{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	r, err := format.OffsetRange(string(data), offset, length)
	if err != nil {
		return format.LineRange{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// fileStatus is one row of the format summary.
type fileStatus struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Cached  bool   `json:"cached"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed"`
}

// formatReport is the JSON form of a batch.
type formatReport struct {
	RunID    string       `json:"run_id"`
	Files    int          `json:"files"`
	Changed  int          `json:"changed"`
	Cached   int          `json:"cached"`
	Failed   int          `json:"failed"`
	Duration string       `json:"duration"`
	Results  []fileStatus `json:"results"`
}

func statusOf(r *engine.FileResult, check bool) string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Changed && check:
		return "unformatted"
	case r.Changed:
		return "reformatted"
	default:
		return "unchanged"
	}
}

// renderSummary prints every changed or failed file and a totals line.
func renderSummary(r *output.Renderer, s *engine.Summary, check bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		report := formatReport{
			RunID:    s.RunID,
			Files:    s.Files,
			Changed:  s.Changed,
			Cached:   s.Cached,
			Failed:   s.Failed,
			Duration: s.Duration.Round(time.Millisecond).String(),
			Results:  make([]fileStatus, 0, len(s.Results)),
		}
		for _, res := range s.Results {
			st := fileStatus{
				Path:    res.Path,
				Status:  statusOf(res, check),
				Cached:  res.Cached,
				Elapsed: res.Duration.Round(time.Microsecond).String(),
			}
			if res.Err != nil {
				st.Error = res.Err.Error()
			}
			report.Results = append(report.Results, st)
		}
		return r.JSON(report)
	}

	styles := r.Styles()
	if r.EffectiveMode() == output.ModeMarkdown {
		var rows [][]string
		for _, res := range s.Results {
			if res.Err == nil && !res.Changed {
				continue
			}
			detail := ""
			if res.Err != nil {
				detail = res.Err.Error()
			}
			rows = append(rows, []string{res.Path, statusOf(res, check), detail})
		}
		if len(rows) > 0 {
			r.Table([]string{"File", "Status", "Detail"}, rows)
			r.Println()
		}
		r.Println(s.String())
		return nil
	}

	for _, res := range s.Results {
		switch {
		case res.Err != nil:
			r.Printf("%s %s %s\n", styles.StatusFailed.String(), styles.Path.Render(res.Path), styles.Error.Render(res.Err.Error()))
		case res.Changed:
			r.Printf("%s %s %s\n", styles.StatusChanged.String(), styles.Path.Render(res.Path), styles.Muted.Render(statusOf(res, check)))
		}
	}
	line := s.String()
	switch {
	case s.Failed > 0:
		line = styles.Error.Render(line)
	case s.Changed > 0 && check:
		line = styles.Warning.Render(line)
	default:
		line = styles.Success.Render(line)
	}
	r.Println(line)
	return nil
}

// watchFiles reformats paths on every change until ctx is cancelled.
func watchFiles(ctx context.Context, cc *CommandContext, paths []string) error {
	w := watch.New(watch.Config{
		Engine:   cc.Engine,
		Paths:    paths,
		Debounce: cc.Cfg.Watch.Debounce,
		Logger:   cc.Logger,
	})
	r := cc.Renderer
	events := w.Notifier().Subscribe()
	defer w.Notifier().Unsubscribe(events)

	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	styles := r.Styles()
	select {
	case <-w.Ready():
		r.Println(styles.Muted.Render("watching for changes, press Ctrl+C to stop"))
	case err := <-errc:
		return err
	}
	for {
		select {
		case err := <-errc:
			return err
		case ev := <-events:
			switch {
			case ev.Err != nil:
				r.Printf("%s %s %s\n", styles.StatusFailed.String(), styles.Path.Render(ev.Path), styles.Error.Render(ev.Err.Error()))
			case ev.Changed:
				r.Printf("%s %s\n", styles.StatusChanged.String(), styles.Path.Render(ev.Path))
			}
		}
	}
}
