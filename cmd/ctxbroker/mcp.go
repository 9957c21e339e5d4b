package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/transport/mcpserver"
	"github.com/sandevgo/ctxbroker/pkg/log"
	"github.com/sandevgo/ctxbroker/pkg/srv"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the broker as MCP tools over stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries protocol frames
		var flushLog func()
		ctx, flushLog = log.NewContextWithWriter(ctx, os.Stderr, debug || config.IsDebug())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		mcpserver.Version = core.BrokerVersion
		server := mcpserver.New(a.facade, a.cfg.DefaultUserID)

		services := append(a.closers,
			srv.NewBackground(a.watchDirectory),
			// the client closing stdin ends the process
			srv.NewBackground(func(ctx context.Context) error {
				defer stop()
				return server.Start(ctx)
			}),
		)

		srv.StartServices(ctx, stop, services)
		srv.ShutdownServices(ctx, services)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
