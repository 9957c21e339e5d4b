package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/inbucket/html2text"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const maxResponseSize = 1 << 20

type externalRequest struct {
	AgentID string `json:"agent_id"`
	Context string `json:"context"`
	Message string `json:"message"`
}

// respondExternal makes a single attempt. Every failure is rendered into the
// reply. The caller's cancellation is not propagated; the client timeout
// bounds the call.
func (r *Runner) respondExternal(ctx context.Context, rec core.AgentRecord, summary, message string) string {
	logger := log.FromCtx(ctx).With().Str("agent_id", rec.ID).Logger()

	reply, ok, err := r.call(context.WithoutCancel(ctx), rec, summary, message)
	if err != nil {
		logger.Warn().Err(err).Str("endpoint", rec.Endpoint).Msg("external agent call failed")
		return fmt.Sprintf("Error communicating with external agent %s: %v", rec.Name, err)
	}
	if !ok {
		return fmt.Sprintf("External agent %s responded but provided no message", rec.Name)
	}
	return reply
}

func (r *Runner) call(ctx context.Context, rec core.AgentRecord, summary, message string) (string, bool, error) {
	data, err := json.Marshal(externalRequest{
		AgentID: rec.ID,
		Context: summary,
		Message: message,
	})
	if err != nil {
		return "", false, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rec.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", core.BrokerUserAgent)
	if rec.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+rec.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseSize)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/html" {
		text, err := html2text.FromReader(body, html2text.Options{OmitLinks: true})
		if err != nil {
			return "", false, fmt.Errorf("read body: %w", err)
		}
		return text, text != "", nil
	}

	var result map[string]any
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("decode: %w", err)
	}

	raw, ok := result["response"]
	if !ok || raw == nil {
		return "", false, nil
	}
	if s, isString := raw.(string); isString {
		return s, true, nil
	}
	return fmt.Sprint(raw), true, nil
}
