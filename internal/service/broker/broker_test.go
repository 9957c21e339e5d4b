package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/providers/directory"
	"github.com/sandevgo/ctxbroker/internal/providers/llm"
	"github.com/sandevgo/ctxbroker/internal/service/agent"
)

type staticContexts map[string]string

func (s staticContexts) ActiveContext(_ context.Context, userID string) (string, bool) {
	v, ok := s[userID]
	return v, ok
}

type recordingRunner struct {
	calls []core.AgentRecord
	ctxs  []string
}

func (r *recordingRunner) Respond(_ context.Context, rec core.AgentRecord, summary, message string) string {
	r.calls = append(r.calls, rec)
	r.ctxs = append(r.ctxs, summary)
	return rec.ID + ":" + message
}

func newDirectory(t *testing.T, agents []core.AgentRecord, llms []core.LLMRecord) *directory.Registry {
	t.Helper()
	ctx := context.Background()
	r := directory.NewRegistry(nil)
	for _, a := range agents {
		require.NoError(t, r.RegisterAgent(ctx, a))
	}
	for _, l := range llms {
		require.NoError(t, r.RegisterLLM(ctx, l))
	}
	return r
}

func TestCandidateCapabilities(t *testing.T) {
	tests := []struct {
		summary string
		want    []string
	}{
		{"Query: hello", nil},
		{"Query: let's TALK", []string{"talk"}},
		{"Query: chat then study", []string{"talk", "learn"}},
		{"Query: analyze and adapt the conversation", []string{"talk", "think", "learn"}},
		{"Query: reasonable", []string{"think"}},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, candidateCapabilities(tt.summary))
		})
	}
}

func TestDispatch_CapabilityOrder(t *testing.T) {
	tests := []struct {
		name      string
		agents    []core.AgentRecord
		context   string
		wantAgent string
	}{
		{
			name: "first agent wins within capability",
			agents: []core.AgentRecord{
				{ID: "A", Capabilities: []string{"talk"}, Active: true},
				{ID: "B", Capabilities: []string{"talk", "think"}, Active: true},
			},
			context:   "Query: let's talk",
			wantAgent: "A",
		},
		{
			name: "cue order beats agent order",
			agents: []core.AgentRecord{
				{ID: "L", Capabilities: []string{"learn"}, Active: true},
				{ID: "T", Capabilities: []string{"think"}, Active: true},
			},
			context:   "Query: study and reason",
			wantAgent: "T",
		},
		{
			name: "later cue used when earlier has no agent",
			agents: []core.AgentRecord{
				{ID: "X", Capabilities: []string{"other"}, Active: true},
				{ID: "L", Capabilities: []string{"learn"}, Active: true},
			},
			context:   "Query: chat and learn",
			wantAgent: "L",
		},
		{
			name: "inactive agents skipped",
			agents: []core.AgentRecord{
				{ID: "A", Capabilities: []string{"talk"}, Active: false},
				{ID: "B", Capabilities: []string{"talk"}, Active: true},
			},
			context:   "Query: talk",
			wantAgent: "B",
		},
		{
			name: "no cue falls back to first active agent",
			agents: []core.AgentRecord{
				{ID: "A", Capabilities: []string{"talk"}, Active: false},
				{ID: "B", Capabilities: []string{"think"}, Active: true},
			},
			context:   "Query: hello",
			wantAgent: "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			b := New(staticContexts{"u": tt.context}, newDirectory(t, tt.agents, nil), runner, llm.NewProvider())

			out := b.Dispatch(context.Background(), "msg", "u")

			assert.Equal(t, tt.wantAgent+":msg", out)
			require.Len(t, runner.calls, 1)
			assert.Equal(t, tt.context, runner.ctxs[0])
		})
	}
}

func TestDispatch_AgentWithoutContext(t *testing.T) {
	runner := &recordingRunner{}
	dir := newDirectory(t, []core.AgentRecord{{ID: "A", Capabilities: []string{"talk"}, Active: true}}, nil)
	b := New(staticContexts{}, dir, runner, llm.NewProvider())

	assert.Equal(t, "A:hi", b.Dispatch(context.Background(), "hi", "u"))
	assert.Equal(t, []string{"No specific context available"}, runner.ctxs)
}

func TestDispatch_LLMFallback(t *testing.T) {
	dir := newDirectory(t, nil, []core.LLMRecord{
		{Name: "off", Active: false},
		{Name: "X", Active: true},
	})
	b := New(staticContexts{}, dir, agent.NewRunner(0), llm.NewProvider())

	out := b.Dispatch(context.Background(), "hi", "")
	assert.Equal(t,
		"LLM X response (Context: No specific context): I have processed your message: 'hi' and generated this response based on the current context.",
		out)
}

func TestDispatch_LLMFallbackTruncatesContext(t *testing.T) {
	dir := newDirectory(t, nil, []core.LLMRecord{{Name: "X", Active: true}})
	b := New(staticContexts{"u": "Topic: technology. Intent: question. Query: hi"}, dir, agent.NewRunner(0), llm.NewProvider())

	out := b.Dispatch(context.Background(), "hi", "u")
	assert.Contains(t, out, "(Context: Topic: technology. Intent: que...)")
}

func TestDispatch_NothingRegistered(t *testing.T) {
	b := New(staticContexts{"u": "Query: talk"}, newDirectory(t, nil, nil), agent.NewRunner(0), llm.NewProvider())

	assert.Equal(t, "No agent or LLM available to process message: are you there?",
		b.Dispatch(context.Background(), "are you there?", "u"))
}

func TestDispatch_InternalAgentEndToEnd(t *testing.T) {
	dir := newDirectory(t, []core.AgentRecord{
		{ID: "1", Name: "Chatty", Capabilities: []string{"talk", "learn"}, Active: true},
	}, nil)
	b := New(staticContexts{"u": "Query: let's chat"}, dir, agent.NewRunner(0), llm.NewProvider())

	out := b.Dispatch(context.Background(), "hello", "u")
	assert.Equal(t, "Agent Chatty received: hello (Context: Query: let's chat)"+
		"\nI can talk and respond to your message."+
		"\nI'm learning from this interaction to improve future responses.", out)
}

func TestContextAware(t *testing.T) {
	ctx := context.Background()

	t.Run("ignores capabilities", func(t *testing.T) {
		runner := &recordingRunner{}
		dir := newDirectory(t, []core.AgentRecord{
			{ID: "plain", Active: true},
			{ID: "talker", Capabilities: []string{"talk"}, Active: true},
		}, nil)
		b := New(staticContexts{"u": "Query: talk"}, dir, runner, llm.NewProvider())

		assert.Equal(t, "Context-Aware Response: plain:m", b.ContextAware(ctx, "m", "u"))
	})

	t.Run("llm", func(t *testing.T) {
		dir := newDirectory(t, nil, []core.LLMRecord{{Name: "X", Active: true}})
		b := New(staticContexts{}, dir, agent.NewRunner(0), llm.NewProvider())

		out := b.ContextAware(ctx, "m", "u")
		assert.Equal(t, "Context-Aware Response: LLM X response (Context: No specific context): I have processed your message: 'm' and generated this response based on the current context.", out)
	})

	t.Run("nothing registered", func(t *testing.T) {
		b := New(staticContexts{}, newDirectory(t, nil, nil), agent.NewRunner(0), llm.NewProvider())

		assert.Equal(t, "No agent or LLM available to generate a context-aware response for: m", b.ContextAware(ctx, "m", "u"))
	})
}
