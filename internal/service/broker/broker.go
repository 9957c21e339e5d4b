// Package broker routes a message to an agent or LLM based on the user's
// active context.
package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const (
	noAgentContext = "No specific context available"
	noLLMContext   = "No specific context"

	ContextAwarePrefix = "Context-Aware Response: "
)

type ContextReader interface {
	ActiveContext(ctx context.Context, userID string) (string, bool)
}

type Broker struct {
	contexts  ContextReader
	directory core.Directory
	agents    core.AgentRunner
	models    core.ModelProvider
}

func New(contexts ContextReader, directory core.Directory, agents core.AgentRunner, models core.ModelProvider) *Broker {
	return &Broker{
		contexts:  contexts,
		directory: directory,
		agents:    agents,
		models:    models,
	}
}

// Dispatch picks the first agent matching a capability cue in the active
// context, then any active agent, then any active LLM. It always returns a
// reply.
func (b *Broker) Dispatch(ctx context.Context, message, userID string) string {
	userID = core.UserIDOrDefault(userID)
	ctx = withRequestLogger(ctx, userID)

	summary, hasContext := b.contexts.ActiveContext(ctx, userID)

	if hasContext {
		for _, capability := range candidateCapabilities(summary) {
			agents := b.directory.AgentsByCapability(capability)
			if len(agents) == 0 {
				continue
			}
			rec := agents[0]
			log.FromCtx(ctx).Debug().Str("capability", capability).Str("agent_id", rec.ID).Msg("routing by capability")
			return b.agents.Respond(ctx, rec, summary, message)
		}
	}

	if reply, ok := b.fallback(ctx, message, summary, hasContext); ok {
		return reply
	}
	return fmt.Sprintf("No agent or LLM available to process message: %s", message)
}

// ContextAware skips capability matching and prefixes the reply.
func (b *Broker) ContextAware(ctx context.Context, message, userID string) string {
	userID = core.UserIDOrDefault(userID)
	ctx = withRequestLogger(ctx, userID)

	summary, hasContext := b.contexts.ActiveContext(ctx, userID)

	if reply, ok := b.fallback(ctx, message, summary, hasContext); ok {
		return ContextAwarePrefix + reply
	}
	return fmt.Sprintf("No agent or LLM available to generate a context-aware response for: %s", message)
}

func (b *Broker) fallback(ctx context.Context, message, summary string, hasContext bool) (string, bool) {
	logger := log.FromCtx(ctx)

	if agents := b.directory.ActiveAgents(); len(agents) > 0 {
		rec := agents[0]
		agentContext := summary
		if !hasContext {
			agentContext = noAgentContext
		}
		logger.Debug().Str("agent_id", rec.ID).Msg("routing to first active agent")
		return b.agents.Respond(ctx, rec, agentContext, message), true
	}

	if llms := b.directory.ActiveLLMs(); len(llms) > 0 {
		rec := llms[0]
		llmContext := summary
		if !hasContext {
			llmContext = noLLMContext
		}
		logger.Debug().Str("llm", rec.Name).Msg("routing to first active llm")
		return b.models.Model(rec).Respond(ctx, llmContext, message), true
	}

	logger.Info().Msg("no agent or llm available")
	return "", false
}

func withRequestLogger(ctx context.Context, userID string) context.Context {
	logger := log.FromCtx(ctx).With().
		Str("request_id", uuid.NewString()).
		Str("user_id", userID).
		Logger()
	return logger.WithContext(ctx)
}
