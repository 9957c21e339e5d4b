package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/providers/registration"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

var (
	regID           string
	regName         string
	regCapabilities []string
	regEndpoint     string
	regAPIKey       string
	regModelPath    string
	regInactive     bool
	regRemote       string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register agents and LLMs in the directory",
}

var registerAgentCmd = &cobra.Command{
	Use:          "agent",
	Short:        "Register an agent",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		rec := core.AgentRecord{
			ID:           regID,
			Name:         regName,
			Capabilities: regCapabilities,
			Active:       !regInactive,
			Mode:         core.AgentInternal,
			Endpoint:     regEndpoint,
			APIKey:       regAPIKey,
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Endpoint != "" {
			rec.Mode = core.AgentExternal
		}

		if regRemote != "" {
			client := registration.NewClient(config.NewRegistrationConfig(ctx))
			return printJSON(cmd, client.RegisterAgent(ctx, regRemote, rec))
		}

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		cfg, err := config.ParseAppConfig()
		if err != nil {
			return err
		}
		reg, err := openRegistry(ctx, cfg)
		if err != nil {
			return err
		}
		if err := reg.RegisterAgent(ctx, rec); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("agent_id", rec.ID).Str("path", cfg.GetDirectoryPath()).Msg("agent registered")
		fmt.Fprintln(cmd.OutOrStdout(), rec.String())
		return nil
	},
}

var registerLLMCmd = &cobra.Command{
	Use:          "llm",
	Short:        "Register an LLM",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		rec := core.LLMRecord{
			Name:      regName,
			APIKey:    regAPIKey,
			ModelPath: regModelPath,
			Active:    !regInactive,
		}

		if regRemote != "" {
			client := registration.NewClient(config.NewRegistrationConfig(ctx))
			return printJSON(cmd, client.RegisterLLM(ctx, regRemote, rec))
		}

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		cfg, err := config.ParseAppConfig()
		if err != nil {
			return err
		}
		reg, err := openRegistry(ctx, cfg)
		if err != nil {
			return err
		}
		if err := reg.RegisterLLM(ctx, rec); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("llm", rec.Name).Str("path", cfg.GetDirectoryPath()).Msg("llm registered")
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{registerAgentCmd, registerLLMCmd} {
		c.Flags().StringVarP(&regName, "name", "n", "", "display name")
		c.Flags().StringVar(&regAPIKey, "api-key", "", "api key")
		c.Flags().BoolVar(&regInactive, "inactive", false, "register as inactive")
		c.Flags().StringVar(&regRemote, "remote", "", "register at a remote registry endpoint instead of the local directory")
		registerCmd.AddCommand(c)
	}

	registerAgentCmd.Flags().StringVar(&regID, "id", "", "agent id (generated when empty)")
	registerAgentCmd.Flags().StringSliceVarP(&regCapabilities, "capability", "c", nil, "capability, repeatable (talk, think, learn)")
	registerAgentCmd.Flags().StringVar(&regEndpoint, "endpoint", "", "external agent URL, makes the agent external")
	_ = registerAgentCmd.MarkFlagRequired("name")

	registerLLMCmd.Flags().StringVar(&regModelPath, "model-path", "", "model path")
	_ = registerLLMCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(registerCmd)
}
