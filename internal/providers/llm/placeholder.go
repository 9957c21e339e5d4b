package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/ctxbroker/internal/core"
)

const previewLength = 30

var ErrNoAPIKey = errors.New("llm has no api key")

// Placeholder is the templated LanguageModel used until a real model is
// wired behind the same interface. It never touches the network.
type Placeholder struct {
	rec core.LLMRecord
}

var (
	_ core.LanguageModel = (*Placeholder)(nil)
	_ core.Enhancer      = (*Placeholder)(nil)
)

func NewPlaceholder(rec core.LLMRecord) *Placeholder {
	return &Placeholder{rec: rec.Clone()}
}

func (p *Placeholder) Name() string {
	return p.rec.Name
}

func (p *Placeholder) Respond(_ context.Context, summary, message string) string {
	return fmt.Sprintf(
		"LLM %s response (Context: %s): I have processed your message: '%s' and generated this response based on the current context.",
		p.rec.Name, Preview(summary), message,
	)
}

// Enhance acknowledges the analysis prompt. It fails for records without an
// api key, which is how enhancement failures surface in practice.
func (p *Placeholder) Enhance(_ context.Context, prompt string) (string, error) {
	if p.rec.APIKey == "" {
		return "", fmt.Errorf("%s: %w", p.rec.Name, ErrNoAPIKey)
	}
	return fmt.Sprintf("LLM %s analyzed: %s", p.rec.Name, Preview(prompt)), nil
}

// Preview truncates s to 30 characters, appending "..." when it was longer.
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}
