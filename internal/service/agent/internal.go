package agent

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ctxbroker/internal/core"
)

var abilityLines = []struct {
	capability string
	line       string
}{
	{core.CapabilityTalk, "I can talk and respond to your message."},
	{core.CapabilityThink, "I've analyzed your request and am processing it."},
	{core.CapabilityLearn, "I'm learning from this interaction to improve future responses."},
}

func respondInternal(rec core.AgentRecord, summary, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent %s received: %s (Context: %s)", rec.Name, message, summary)

	for _, al := range abilityLines {
		if rec.HasCapability(al.capability) {
			b.WriteString("\n")
			b.WriteString(al.line)
		}
	}
	return b.String()
}
