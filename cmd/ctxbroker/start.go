package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/pkg/log"
	"github.com/sandevgo/ctxbroker/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Run the broker with the enabled chat transports",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting ctxbroker")

		services := NewServices(ctx, stop)

		srv.StartServices(ctx, stop, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("ctxbroker has been shut down gracefully")
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
