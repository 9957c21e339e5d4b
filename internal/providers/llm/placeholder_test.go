package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/ctxbroker/internal/core"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "short"},
		{strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{strings.Repeat("é", 35), strings.Repeat("é", 30) + "..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Preview(tt.in))
	}
}

func TestPlaceholder_Respond(t *testing.T) {
	m := NewProvider().Model(core.LLMRecord{Name: "X", Active: true})

	got := m.Respond(context.Background(), "Topic: weather. Intent: question. Query: hi", "hi")
	assert.Equal(t,
		"LLM X response (Context: Topic: weather. Intent: questi...): I have processed your message: 'hi' and generated this response based on the current context.",
		got)
	assert.Equal(t, "X", m.Name())
}

func TestPlaceholder_Enhance(t *testing.T) {
	ctx := context.Background()

	_, err := NewPlaceholder(core.LLMRecord{Name: "keyless"}).Enhance(ctx, "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAPIKey))

	out, err := NewPlaceholder(core.LLMRecord{Name: "default", APIKey: "k"}).Enhance(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "LLM default analyzed: prompt", out)
}

func TestEnhancer(t *testing.T) {
	lookup := func(name string) (core.LLMRecord, bool) {
		if name == "default" {
			return core.LLMRecord{Name: "default", APIKey: "k"}, true
		}
		return core.LLMRecord{}, false
	}

	assert.NotNil(t, Enhancer(lookup, "default"))
	assert.Nil(t, Enhancer(lookup, "other"))
}
