package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/service/installer"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

var (
	initForce    bool
	initDefaults bool
)

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory and a .env with your settings",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := initEnv(ctx, runtimePath); err != nil {
			return err
		}

		appCfg, err := config.ParseAppConfig()
		if err != nil {
			return err
		}

		state := installer.NewInstallState(appCfg, config.NewRegistrationConfig(ctx), appCfg.GetEnvPath())
		state.Force = initForce
		if appCfg.EnableTelegram {
			if tg, err := config.ParseTelegramConfig(); err == nil {
				state.Telegram = *tg
			}
		}

		if err := installer.CheckEnv(state); err != nil {
			return err
		}

		if initDefaults || !isatty.IsTerminal(os.Stdin.Fd()) {
			// scripts: take the environment as is
			installer.Finalize(state)
			if err := installer.WriteEnv(state); err != nil {
				return err
			}
		} else if _, err := installer.RunWizard(state); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("You can now run 'ctxbroker start'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing .env")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "skip the wizard and write the current settings")
	rootCmd.AddCommand(initCmd)
}
