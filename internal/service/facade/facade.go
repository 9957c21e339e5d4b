// Package facade is the entry point used by transports: it combines context
// extraction, the per-user store and the broker into request/response calls.
package facade

import (
	"context"
	"errors"
	"strings"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/providers/llm"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

// DefaultLLM names the LLM used as enhancer when enhancement is requested.
const DefaultLLM = "default"

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrEmptyContext = errors.New("context is required")
	ErrNoSteps      = errors.New("workflow steps are required")
)

type ContextStore interface {
	ActiveContext(ctx context.Context, userID string) (string, bool)
	ExtractAndUpdate(ctx context.Context, message, userID string, enhance bool, enhancer core.Enhancer) string
	SetManual(ctx context.Context, userID, text string)
	Clear(ctx context.Context, userID string)
	History(ctx context.Context, userID string, limit int) []string
}

type Router interface {
	Dispatch(ctx context.Context, message, userID string) string
	ContextAware(ctx context.Context, message, userID string) string
}

type Extractor interface {
	Extract(ctx context.Context, message string, enhance bool, enhancer core.Enhancer) core.ContextInfo
}

type Lookup interface {
	Agent(id string) (core.AgentRecord, bool)
	LLM(name string) (core.LLMRecord, bool)
}

// Request carries a message and an optional explicit context. A nil Context
// means "extract it from the message".
type Request struct {
	UserID  string  `json:"user_id"`
	Message string  `json:"message"`
	Context *string `json:"context,omitempty"`
	Enhance bool    `json:"use_llm"`
}

type Result struct {
	Response      string `json:"response"`
	Context       string `json:"context"`
	AutoExtracted bool   `json:"auto_extracted"`
}

type Facade struct {
	store     ContextStore
	router    Router
	extractor Extractor
	lookup    Lookup
	runner    core.AgentRunner
}

func New(store ContextStore, router Router, extractor Extractor, lookup Lookup, runner core.AgentRunner) *Facade {
	return &Facade{
		store:     store,
		router:    router,
		extractor: extractor,
		lookup:    lookup,
		runner:    runner,
	}
}

func (f *Facade) ExtractContext(ctx context.Context, message string, enhance bool) core.ContextInfo {
	return f.extractor.Extract(ctx, message, enhance, f.enhancer(enhance))
}

func (f *Facade) GetContext(ctx context.Context, userID string) (string, bool) {
	return f.store.ActiveContext(ctx, userID)
}

func (f *Facade) SetContext(ctx context.Context, userID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyContext
	}
	f.store.SetManual(ctx, userID, text)
	return nil
}

func (f *Facade) ClearContext(ctx context.Context, userID string) {
	f.store.Clear(ctx, userID)
}

func (f *Facade) GetContextHistory(ctx context.Context, userID string, limit int) []string {
	return f.store.History(ctx, userID, limit)
}

// Dispatch routes the message through the broker's capability matching.
func (f *Facade) Dispatch(ctx context.Context, req Request) (Result, error) {
	return f.run(ctx, req, f.router.Dispatch)
}

// ContextAware produces a context-decorated reply from the first available
// agent or LLM.
func (f *Facade) ContextAware(ctx context.Context, req Request) (Result, error) {
	return f.run(ctx, req, f.router.ContextAware)
}

func (f *Facade) run(ctx context.Context, req Request, route func(context.Context, string, string) string) (Result, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Result{}, ErrEmptyMessage
	}
	userID := core.UserIDOrDefault(req.UserID)

	f.prepareContext(ctx, userID, req)

	resp := route(ctx, req.Message, userID)
	current, ok := f.store.ActiveContext(ctx, userID)

	return Result{
		Response:      resp,
		Context:       current,
		AutoExtracted: req.Context == nil && ok,
	}, nil
}

// prepareContext extracts a context when none was supplied, otherwise it
// installs the supplied one.
func (f *Facade) prepareContext(ctx context.Context, userID string, req Request) {
	if req.Context == nil {
		summary := f.store.ExtractAndUpdate(ctx, req.Message, userID, req.Enhance, f.enhancer(req.Enhance))
		log.FromCtx(ctx).Debug().Str("user_id", userID).Str("context", summary).Msg("context extracted")
		return
	}

	f.store.SetManual(ctx, userID, *req.Context)
}

func (f *Facade) enhancer(enhance bool) core.Enhancer {
	if !enhance || f.lookup == nil {
		return nil
	}
	return llm.Enhancer(f.lookup.LLM, DefaultLLM)
}
