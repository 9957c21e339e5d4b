package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/internal/service/ui"
)

var extractEnhance bool

var extractCmd = &cobra.Command{
	Use:          "extract <message>",
	Short:        "Show the context extracted from a message",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		info := a.facade.ExtractContext(ctx, strings.Join(args, " "), extractEnhance || a.cfg.EnhanceContext)
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderContextInfo(info))
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractEnhance, "enhance", false, "enhance the context with the default LLM")
	rootCmd.AddCommand(extractCmd)
}
