package installer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects one free-text answer. An empty answer keeps the
// current value when the step has one.
type InputStep struct {
	title string
	input textinput.Model
	apply func(state *InstallState, value string) error
	skip  func(state *InstallState) bool
	err   error
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// NewHistorySizeStep asks how many contexts each user keeps.
func NewHistorySizeStep(state *InstallState) Step {
	return &InputStep{
		title: "How many contexts should be kept per user?",
		input: newInput(strconv.Itoa(state.App.HistorySize), false),
		apply: func(s *InstallState, value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("history size must be a positive number, got %q", value)
			}
			s.App.HistorySize = n
			return nil
		},
	}
}

// NewTelegramTokenStep collects the Telegram bot token
func NewTelegramTokenStep() Step {
	return &InputStep{
		title: "Enter your Telegram Bot Token:",
		input: newInput("123456789:ABCDEF...", true),
		apply: func(s *InstallState, value string) error {
			if value == "" {
				return errors.New("telegram token is required")
			}
			s.Telegram.Token = value
			return nil
		},
		skip: telegramDisabled,
	}
}

// NewTelegramOwnerStep collects the Telegram owner ID
func NewTelegramOwnerStep() Step {
	return &InputStep{
		title: "Enter your Telegram User ID (Owner):",
		input: newInput("123456789", false),
		apply: func(s *InstallState, value string) error {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("owner id must be a number, got %q", value)
			}
			s.Telegram.OwnerID = id
			return nil
		},
		skip: telegramDisabled,
	}
}

func telegramDisabled(s *InstallState) bool {
	return !s.App.EnableTelegram
}

func (s *InputStep) Skip(state *InstallState) bool {
	return s.skip != nil && s.skip(state)
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if err := s.apply(state, strings.TrimSpace(s.input.Value())); err != nil {
			s.err = err
			return s, nil
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	view := s.title + "\n\n" + s.input.View() + "\n\n"
	if s.err != nil {
		view += errorStyle.Render(s.err.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
