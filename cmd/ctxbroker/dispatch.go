package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/internal/service/facade"
	"github.com/sandevgo/ctxbroker/internal/service/ui"
)

var (
	dispatchUser    string
	dispatchContext string
	dispatchAware   bool
	dispatchEnhance bool
)

var dispatchCmd = &cobra.Command{
	Use:          "dispatch <message>",
	Short:        "Route a single message to an agent or LLM",
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

		req := facade.Request{
			UserID:  a.defaultUser(dispatchUser),
			Message: strings.Join(args, " "),
			Enhance: dispatchEnhance || a.cfg.EnhanceContext,
		}
		if cmd.Flags().Changed("context") {
			req.Context = &dispatchContext
		}

		route := a.facade.Dispatch
		if dispatchAware {
			route = a.facade.ContextAware
		}

		res, err := route(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.ContextStyle.Render(res.Context))
		fmt.Fprintln(out, ui.ReplyStyle.Render(res.Response))
		return nil
	},
}

func init() {
	dispatchCmd.Flags().StringVarP(&dispatchUser, "user", "u", "", "user id (defaults to DEFAULT_USER_ID)")
	dispatchCmd.Flags().StringVarP(&dispatchContext, "context", "c", "", "explicit context instead of extraction")
	dispatchCmd.Flags().BoolVar(&dispatchAware, "aware", false, "produce a context-aware response instead of capability routing")
	dispatchCmd.Flags().BoolVar(&dispatchEnhance, "enhance", false, "enhance the extracted context with the default LLM")
	rootCmd.AddCommand(dispatchCmd)
}
