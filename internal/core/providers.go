package core

import "context"

// Enhancer refines an extraction given a human-readable analysis prompt.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}

// LanguageModel is the stand-in for a registered LLM.
type LanguageModel interface {
	Name() string
	Respond(ctx context.Context, summary, message string) string
}

// ModelProvider turns a directory record into a usable model.
type ModelProvider interface {
	Model(rec LLMRecord) LanguageModel
}

// AgentRunner produces an agent's reply. It never returns an error: failures
// are rendered into the reply text.
type AgentRunner interface {
	Respond(ctx context.Context, rec AgentRecord, summary, message string) string
}
