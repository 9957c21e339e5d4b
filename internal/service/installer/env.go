package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/ctxbroker/pkg/env"
)

var ErrEnvExists = errors.New(".env file already exists")

// WriteEnv saves the state as a .env file. The runtime path is left out
// because it is resolved before the file is read.
func WriteEnv(state *InstallState) error {
	if err := CheckEnv(state); err != nil {
		return err
	}

	app := *state.App
	app.RuntimePath = ""

	cfgs := []any{&app, state.Registration}
	if app.EnableTelegram {
		cfgs = append(cfgs, &state.Telegram)
	}

	content, err := env.MarshalEnv(cfgs...)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(state.EnvPath), 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.WriteFile(state.EnvPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env: %w", err)
	}
	return nil
}

// CheckEnv fails when saving would overwrite a .env without Force.
func CheckEnv(state *InstallState) error {
	if _, err := os.Stat(state.EnvPath); err == nil && !state.Force {
		return fmt.Errorf("%w at %s, use --force to overwrite", ErrEnvExists, state.EnvPath)
	}
	return nil
}
