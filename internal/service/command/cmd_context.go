package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type ContextCommand struct {
	contexts  ContextService
	formatter *ResponseFormatter
}

func NewContextCommand(contexts ContextService) *ContextCommand {
	return &ContextCommand{
		contexts:  contexts,
		formatter: NewResponseFormatter(),
	}
}

func (c *ContextCommand) Name() string {
	return "context"
}

func (c *ContextCommand) Description() string {
	return "Show the active context"
}

func (c *ContextCommand) Execute(ctx context.Context, userID string, _ []string) (string, error) {
	summary, ok := c.contexts.GetContext(ctx, userID)
	if !ok {
		return c.formatter.Combine(
			c.formatter.Info("No active context"),
			c.formatter.Tip("send a message or use /setcontext <text>"),
		), nil
	}

	return c.formatter.Combine(
		c.formatter.Info("Active Context"),
		c.formatter.Label("Context", summary),
	), nil
}

type SetContextCommand struct {
	contexts  ContextService
	formatter *ResponseFormatter
}

func NewSetContextCommand(contexts ContextService) *SetContextCommand {
	return &SetContextCommand{
		contexts:  contexts,
		formatter: NewResponseFormatter(),
	}
}

func (c *SetContextCommand) Name() string {
	return "setcontext"
}

func (c *SetContextCommand) Description() string {
	return "Set the context manually"
}

func (c *SetContextCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	text := strings.Join(args, " ")
	if text == "" {
		return c.formatter.Combine(
			c.formatter.Usage("/setcontext <text>"),
			c.formatter.Examples([]string{"/setcontext planning the berlin trip"}),
		), nil
	}

	if err := c.contexts.SetContext(ctx, userID, text); err != nil {
		return "", fmt.Errorf("failed to set context: %w", err)
	}

	return c.formatter.Success("Context set"), nil
}

type ClearCommand struct {
	contexts  ContextService
	formatter *ResponseFormatter
}

func NewClearCommand(contexts ContextService) *ClearCommand {
	return &ClearCommand{
		contexts:  contexts,
		formatter: NewResponseFormatter(),
	}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Clear the active context (history is kept)"
}

func (c *ClearCommand) Execute(ctx context.Context, userID string, _ []string) (string, error) {
	c.contexts.ClearContext(ctx, userID)
	return c.formatter.Success("Context cleared"), nil
}

type HistoryCommand struct {
	contexts  ContextService
	formatter *ResponseFormatter
}

func NewHistoryCommand(contexts ContextService) *HistoryCommand {
	return &HistoryCommand{
		contexts:  contexts,
		formatter: NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show recent contexts, newest first"
}

func (c *HistoryCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return "", fmt.Errorf("limit must be a positive integer, got %q", args[0])
		}
		limit = n
	}

	history := c.contexts.GetContextHistory(ctx, userID, limit)
	if len(history) == 0 {
		return c.formatter.Info("No context history"), nil
	}

	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Context History (%d)", len(history))),
		c.formatter.List(history),
	), nil
}
