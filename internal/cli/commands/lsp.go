package commands

import (
	"os"

	"github.com/leapstack-labs/leapfmt/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC. It provides
document and range formatting with the configured style, and publishes
parse errors and formatter faults as diagnostics.`,
		Example: `  # Start LSP server (usually called by an IDE)
  leapfmt lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	server := lsp.NewServerWithLogger(os.Stdin, os.Stdout, cc.Engine, cc.Logger)
	server.SetVersion(cmd.Root().Version)
	return server.Run(cmd.Context())
}
