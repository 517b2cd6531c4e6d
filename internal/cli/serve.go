package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/wikitree/internal/server"
	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the module over HTTP",
	Long: `Serve answers module requests over HTTP:
  POST /         module request in, JSON list of responses out
  GET  /healthz  liveness probe
  GET  /metrics  Prometheus metrics

Example:
  wikitree serve
  wikitree serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default: server.addr)")
	addClientFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, cfg, err := buildPipeline()
	if err != nil {
		return err
	}

	addr := listenAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "wikitree v%s listening on %s\n", Version, addr)

	if err := server.New(p, verbose).Run(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
