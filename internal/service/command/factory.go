package command

import (
	"context"

	"github.com/sandevgo/ctxbroker/internal/core"
)

type ContextService interface {
	GetContext(ctx context.Context, userID string) (string, bool)
	SetContext(ctx context.Context, userID, text string) error
	ClearContext(ctx context.Context, userID string)
	GetContextHistory(ctx context.Context, userID string, limit int) []string
}

type AgentDirectory interface {
	Agents() []core.AgentRecord
	LLMs() []core.LLMRecord
	ActivateAgent(ctx context.Context, id string) error
	DeactivateAgent(ctx context.Context, id string) error
}

func NewCommands(contexts ContextService, dir AgentDirectory) []core.Command {
	return []core.Command{
		NewContextCommand(contexts),
		NewSetContextCommand(contexts),
		NewClearCommand(contexts),
		NewHistoryCommand(contexts),
		NewAgentsCommand(dir),
	}
}
