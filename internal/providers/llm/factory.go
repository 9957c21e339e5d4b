package llm

import (
	"github.com/sandevgo/ctxbroker/internal/core"
)

// Provider builds language models from directory records.
type Provider struct{}

var _ core.ModelProvider = Provider{}

func NewProvider() Provider {
	return Provider{}
}

func (Provider) Model(rec core.LLMRecord) core.LanguageModel {
	return NewPlaceholder(rec)
}

// Enhancer returns the enhancer for the named LLM, or nil when the directory
// has no such record.
func Enhancer(lookup func(name string) (core.LLMRecord, bool), name string) core.Enhancer {
	rec, ok := lookup(name)
	if !ok {
		return nil
	}
	return NewPlaceholder(rec)
}
