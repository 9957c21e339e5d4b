// Package agent renders agent replies for the two agent variants.
package agent

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/ctxbroker/internal/core"
)

const DefaultTimeout = 30 * time.Second

// Runner implements core.AgentRunner. Internal agents answer from a
// template; external agents are called over HTTP.
type Runner struct {
	client *http.Client
}

var _ core.AgentRunner = (*Runner)(nil)

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Runner) Respond(ctx context.Context, rec core.AgentRecord, summary, message string) string {
	// an external agent without an endpoint answers like an internal one
	if rec.IsExternal() && rec.Endpoint != "" {
		return r.respondExternal(ctx, rec, summary, message)
	}
	return respondInternal(rec, summary, message)
}
