package command

import (
	"context"
	"fmt"
	"strings"
)

type AgentsCommand struct {
	dir       AgentDirectory
	formatter *ResponseFormatter
}

func NewAgentsCommand(dir AgentDirectory) *AgentsCommand {
	return &AgentsCommand{
		dir:       dir,
		formatter: NewResponseFormatter(),
	}
}

func (c *AgentsCommand) Name() string {
	return "agents"
}

func (c *AgentsCommand) Description() string {
	return "List agents and LLMs, or enable/disable an agent"
}

func (c *AgentsCommand) Execute(ctx context.Context, _ string, args []string) (string, error) {
	if len(args) == 0 {
		return c.list(), nil
	}

	if len(args) != 2 {
		return c.formatter.Combine(
			c.formatter.Usage("/agents [enable|disable <id>]"),
			c.formatter.Examples([]string{"/agents", "/agents disable helper-1"}),
		), nil
	}

	id := args[1]
	switch args[0] {
	case "enable":
		if err := c.dir.ActivateAgent(ctx, id); err != nil {
			return "", err
		}
		return c.formatter.Success(fmt.Sprintf("Agent %s enabled", id)), nil
	case "disable":
		if err := c.dir.DeactivateAgent(ctx, id); err != nil {
			return "", err
		}
		return c.formatter.Success(fmt.Sprintf("Agent %s disabled", id)), nil
	default:
		return "", fmt.Errorf("unknown action: %s", args[0])
	}
}

func (c *AgentsCommand) list() string {
	agents := c.dir.Agents()
	llms := c.dir.LLMs()

	agentLines := make([]string, 0, len(agents))
	for _, a := range agents {
		caps := strings.Join(a.Capabilities, ", ")
		if caps == "" {
			caps = "none"
		}
		agentLines = append(agentLines, fmt.Sprintf("%s `%s` %s (%s) [%s]", status(a.Active), a.ID, a.Name, a.Mode, caps))
	}

	llmLines := make([]string, 0, len(llms))
	for _, l := range llms {
		llmLines = append(llmLines, fmt.Sprintf("%s %s", status(l.Active), l.Name))
	}

	if len(agentLines) == 0 {
		agentLines = append(agentLines, "none registered")
	}
	if len(llmLines) == 0 {
		llmLines = append(llmLines, "none registered")
	}

	return c.formatter.Combine(
		c.formatter.Section("🤖", "Agents", c.formatter.List(agentLines)),
		c.formatter.Section("🧠", "LLMs", c.formatter.List(llmLines)),
	)
}

func status(active bool) string {
	if active {
		return "●"
	}
	return "○"
}
