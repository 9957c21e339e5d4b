package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep fixes up answers that depend on each other
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return next
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	Finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

// Finalize keeps the saved settings startable: telegram is only enabled
// with a token, and with no transport left the terminal chat is used.
func Finalize(state *InstallState) {
	if state.Telegram.Token == "" {
		state.App.EnableTelegram = false
	}
	if !state.App.EnableTelegram {
		state.App.EnableCLI = true
	}
}

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return next
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}

	if err := WriteEnv(state); err != nil {
		return s, func() tea.Msg { return errMsg(err) }
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.saved {
		return fmt.Sprintf("Configuration saved to %s\n", state.EnvPath)
	}
	return "Saving configuration...\n"
}
