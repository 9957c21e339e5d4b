package installer

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/ctxbroker/internal/config"
)

const (
	answerYes = "Yes"
	answerNo  = "No"

	channelCLI      = "Terminal chat"
	channelTelegram = "Telegram"
	channelBoth     = "Terminal chat and Telegram"
)

// ChoiceStep picks one of a fixed list of answers.
type ChoiceStep struct {
	title   string
	choices []string
	cursor  int
	apply   func(state *InstallState, choice string)
}

func newChoiceStep(title string, choices []string, current string, apply func(*InstallState, string)) *ChoiceStep {
	return &ChoiceStep{
		title:   title,
		choices: choices,
		cursor:  max(0, slices.Index(choices, current)),
		apply:   apply,
	}
}

// NewPersistenceStep selects where contexts are kept between runs.
func NewPersistenceStep(state *InstallState) Step {
	return newChoiceStep(
		"Where should conversation contexts be stored?",
		[]string{config.PersistenceJSON, config.PersistenceSQLite, config.PersistenceNone},
		state.App.Persistence,
		func(s *InstallState, choice string) { s.App.Persistence = choice },
	)
}

func NewEnhanceStep(state *InstallState) Step {
	current := answerNo
	if state.App.EnhanceContext {
		current = answerYes
	}
	return newChoiceStep(
		"Enhance extracted contexts with the \"default\" LLM?",
		[]string{answerNo, answerYes},
		current,
		func(s *InstallState, choice string) { s.App.EnhanceContext = choice == answerYes },
	)
}

// NewChannelStep selects the chat transports started by `ctxbroker start`.
func NewChannelStep(state *InstallState) Step {
	current := channelCLI
	switch {
	case state.App.EnableCLI && state.App.EnableTelegram:
		current = channelBoth
	case state.App.EnableTelegram:
		current = channelTelegram
	}
	return newChoiceStep(
		"Select your Chat Channel:",
		[]string{channelCLI, channelTelegram, channelBoth},
		current,
		func(s *InstallState, choice string) {
			s.App.EnableCLI = choice != channelTelegram
			s.App.EnableTelegram = choice != channelCLI
		},
	)
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor])
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", choice)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
