package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve summaries and scenarios over a read-only HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := flagAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	defaults := baseParams()
	if err := defaults.Validate(); err != nil {
		return err
	}

	engine, err := loadEngine(engineOptions())
	if err != nil {
		return err
	}
	// Warm the base table so the first request does not pay for it.
	if _, err := engine.Snapshot(defaults.NYBaselineUSD); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := server.New(server.Config{Addr: addr, Defaults: defaults}, engine, slog.Default())
	return svc.Run(ctx)
}
