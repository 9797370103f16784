package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapfmt/internal/cli/output"
	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Op dump encodings.
const (
	opsYAML = "yaml"
	opsJSON = "json"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "ops <file>",
		Short: "Dump the planned op stream of a file",
		Long: `Plan a Java file and print the resulting op stream: tokens, breaks,
level openings and closings with their indents, followed by the chunks
the renderer measures.

The output is YAML unless --format json or the json output mode is
selected.`,
		Example: `  # Inspect the plan of one file
  leapfmt ops Foo.java

  # Machine-readable dump with the AOSP style
  leapfmt ops --style aosp --format json Foo.java`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(cmd, args[0], encoding)
		},
	}

	cmd.Flags().StringVar(&encoding, "format", "", "Dump encoding (yaml|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{opsYAML, opsJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runOps(cmd *cobra.Command, path, encoding string) error {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	opts, err := cc.Cfg.StyleOptions()
	if err != nil {
		return err
	}

	var data []byte
	if path == stdinPath {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied source file
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	d, err := format.Plan(string(data), opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dump := format.Decorate(d, opts)
	cc.Logger.Debug("planned", "path", path, "ops", len(dump.Ops), "chunks", len(dump.Chunks))

	if encoding == "" {
		encoding = opsYAML
		if cc.Renderer.EffectiveMode() == output.ModeJSON {
			encoding = opsJSON
		}
	}
	switch encoding {
	case opsJSON:
		return cc.Renderer.JSON(dump)
	case opsYAML:
		enc := yaml.NewEncoder(cc.Renderer.Writer())
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("failed to encode ops: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", encoding, opsYAML, opsJSON)
	}
}
