package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapfmt/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve formatting over HTTP",
		Long: `Start an HTTP server that formats Java sources.

Endpoints:
  POST /v1/format    {"source": "...", "style": "aosp", "lines": ["3:7"]}
  GET  /v1/profiles  the registered style profiles
  GET  /healthz      liveness probe

Parse errors and formatter faults are answered with 422 and the
position of the fault.`,
		Example: `  leapfmt serve --addr 127.0.0.1:8787
  curl -s localhost:8787/v1/format -d '{"source": "class A{}"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	cmd.Flags().String("addr", "", "Address to listen on (default 127.0.0.1:8787)")
	return cmd
}

func runServe(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Engine:  cc.Engine,
		Cache:   cc.Cache,
		Addr:    cc.Cfg.Serve.Addr,
		Version: cmd.Root().Version,
		Logger:  cc.Logger,
	})
	cc.Renderer.Println(cc.Renderer.Styles().Success.Render("listening on http://" + cc.Cfg.Serve.Addr))
	return srv.Serve(ctx)
}
