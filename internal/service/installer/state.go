package installer

import (
	"github.com/sandevgo/ctxbroker/internal/config"
)

// InstallState is the configuration the wizard edits. It starts from the
// parsed environment so every answer defaults to the current value.
type InstallState struct {
	App          *config.AppConfig
	Registration *config.RegistrationConfig
	Telegram     config.TelegramConfig

	EnvPath string
	Force   bool
}

func NewInstallState(app *config.AppConfig, reg *config.RegistrationConfig, envPath string) *InstallState {
	return &InstallState{
		App:          app,
		Registration: reg,
		EnvPath:      envPath,
	}
}
