// Package registration announces agents and LLMs to a remote registry over
// HTTP.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
	"github.com/sandevgo/ctxbroker/pkg/retry"
)

const maxResponseSize = 1 << 20

func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   core.BrokerUserAgent,
	}
}

type Client struct {
	client   *http.Client
	retryCfg *retry.Config

	mu      sync.RWMutex
	headers map[string]string
}

func NewClient(cfg *config.RegistrationConfig) *Client {
	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = cfg.Retries

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryCfg: retryCfg,
		headers:  defaultHeaders(),
	}
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

func (c *Client) ClearHeaders() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = defaultHeaders()
}

// RegisterAgent posts payload to endpoint and returns the decoded reply. On
// failure the reply is {"error": ..., "success": false}.
func (c *Client) RegisterAgent(ctx context.Context, endpoint string, payload any) map[string]any {
	return c.register(ctx, "agent", endpoint, payload)
}

func (c *Client) RegisterLLM(ctx context.Context, endpoint string, payload any) map[string]any {
	return c.register(ctx, "LLM", endpoint, payload)
}

func (c *Client) register(ctx context.Context, kind, endpoint string, payload any) map[string]any {
	logger := log.FromCtx(ctx).With().Str("endpoint", endpoint).Str("kind", kind).Logger()

	result, err := c.post(ctx, endpoint, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("registration failed")
		return map[string]any{
			"error":   fmt.Sprintf("Error registering %s via HTTP: %v", kind, err),
			"success": false,
		}
	}

	logger.Debug().Msg("registered")
	return result
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	c.mu.RLock()
	headers := maps.Clone(c.headers)
	c.mu.RUnlock()

	var result map[string]any
	err = retry.NewRetrier(c.retryCfg).OnRetry(func(attempt int, err error) {
		log.FromCtx(ctx).Debug().Err(err).Int("attempt", attempt).Str("endpoint", endpoint).Msg("retrying registration")
	}).Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		case resp.StatusCode >= 400:
			return retry.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		}

		result = nil
		if err := json.Unmarshal(body, &result); err != nil {
			return retry.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
