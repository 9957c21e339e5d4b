package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/ctxbroker/internal/core"
)

func TestRespondInternal(t *testing.T) {
	tests := []struct {
		name string
		caps []string
		want string
	}{
		{
			name: "no abilities",
			want: "Agent Helper received: hi (Context: ctx)",
		},
		{
			name: "fixed order regardless of declaration order",
			caps: []string{"learn", "talk", "think"},
			want: "Agent Helper received: hi (Context: ctx)" +
				"\nI can talk and respond to your message." +
				"\nI've analyzed your request and am processing it." +
				"\nI'm learning from this interaction to improve future responses.",
		},
		{
			name: "unknown abilities ignored",
			caps: []string{"fly", "think"},
			want: "Agent Helper received: hi (Context: ctx)" +
				"\nI've analyzed your request and am processing it.",
		},
	}

	r := NewRunner(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := core.AgentRecord{ID: "1", Name: "Helper", Capabilities: tt.caps, Active: true}
			assert.Equal(t, tt.want, r.Respond(context.Background(), rec, "ctx", "hi"))
		})
	}
}

func externalAgent(endpoint, key string) core.AgentRecord {
	return core.AgentRecord{
		ID:       "ext-1",
		Name:     "Remote",
		Active:   true,
		Mode:     core.AgentExternal,
		Endpoint: endpoint,
		APIKey:   key,
	}
}

func TestRespondExternal_Success(t *testing.T) {
	var got externalRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"remote says hi"}`))
	}))
	defer srv.Close()

	out := NewRunner(time.Second).Respond(context.Background(), externalAgent(srv.URL, "secret"), "Topic: weather. Query: hi", "hi")

	assert.Equal(t, "remote says hi", out)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, externalRequest{AgentID: "ext-1", Context: "Topic: weather. Query: hi", Message: "hi"}, got)
}

func TestRespondExternal_NoAuthWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	assert.Equal(t, "ok", NewRunner(time.Second).Respond(context.Background(), externalAgent(srv.URL, ""), "", "m"))
}

func TestRespondExternal_MissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"done"}`))
	}))
	defer srv.Close()

	out := NewRunner(time.Second).Respond(context.Background(), externalAgent(srv.URL, ""), "", "m")
	assert.Equal(t, "External agent Remote responded but provided no message", out)
}

func TestRespondExternal_HTMLBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><p>Plain answer</p></body></html>`))
	}))
	defer srv.Close()

	out := NewRunner(time.Second).Respond(context.Background(), externalAgent(srv.URL, ""), "", "m")
	assert.Equal(t, "Plain answer", strings.TrimSpace(out))
}

func TestRespondExternal_Failures(t *testing.T) {
	status := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer status.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer garbage.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	defer close(release)

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name     string
		endpoint string
		contains string
	}{
		{"non-2xx", status.URL, "HTTP 500"},
		{"invalid json", garbage.URL, "decode"},
		{"timeout", slow.URL, "request"},
		{"connection refused", closedURL, "request"},
	}

	r := NewRunner(100 * time.Millisecond)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Respond(context.Background(), externalAgent(tt.endpoint, ""), "", "m")
			assert.True(t, strings.HasPrefix(out, "Error communicating with external agent Remote: "), out)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRespondExternal_NoEndpointAnswersInternally(t *testing.T) {
	rec := externalAgent("", "")
	rec.Capabilities = []string{core.CapabilityTalk}

	out := NewRunner(0).Respond(context.Background(), rec, "Topic: travel", "m")
	assert.Equal(t, "Agent Remote received: m (Context: Topic: travel)\nI can talk and respond to your message.", out)
}

func TestRespondExternal_IgnoresCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"still answered"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewRunner(time.Second).Respond(ctx, externalAgent(srv.URL, ""), "", "m")
	assert.Equal(t, "still answered", out)
}
