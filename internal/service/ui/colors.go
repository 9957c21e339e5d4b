package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandevgo/ctxbroker/internal/core"
)

var (
	// ANSI colours so output reads on both dark and light terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	LabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Width(14)
	ContextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	ReplyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// RenderContextInfo lays out an extraction result as aligned label/value rows.
func RenderContextInfo(info core.ContextInfo) string {
	orNone := func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	}

	rows := []struct{ label, value string }{
		{"Topic", orNone(info.Topic)},
		{"Intent", orNone(info.Intent)},
		{"Entities", orNone(strings.Join(info.Entities, ", "))},
		{"Keywords", orNone(strings.Join(info.Keywords, ", "))},
		{"Confidence", fmt.Sprintf("%.2f", info.Confidence)},
		{"Enhanced", fmt.Sprintf("%t", info.LLMEnhanced)},
		{"Summary", info.Summary()},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(r.label), r.value))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
