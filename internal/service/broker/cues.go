package broker

import (
	"strings"

	"github.com/sandevgo/ctxbroker/internal/core"
)

// capabilityCues is checked in order. Each row fires independently.
var capabilityCues = []struct {
	words      []string
	capability string
}{
	{[]string{"talk", "conversation", "chat"}, core.CapabilityTalk},
	{[]string{"think", "analyze", "reason"}, core.CapabilityThink},
	{[]string{"learn", "study", "adapt"}, core.CapabilityLearn},
}

// candidateCapabilities returns the capabilities whose cue words appear as
// substrings of the lowercased summary.
func candidateCapabilities(summary string) []string {
	lower := strings.ToLower(summary)

	var out []string
	for _, cue := range capabilityCues {
		for _, w := range cue.words {
			if strings.Contains(lower, w) {
				out = append(out, cue.capability)
				break
			}
		}
	}
	return out
}
