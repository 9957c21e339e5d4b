package core

import (
	"fmt"
	"slices"
)

type AgentMode string

const (
	AgentInternal AgentMode = "internal"
	AgentExternal AgentMode = "external"
)

// AgentRecord describes a registered agent.
type AgentRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Capabilities []string  `json:"abilities"`
	Active       bool      `json:"active"`
	Mode         AgentMode `json:"type"`
	Endpoint     string    `json:"external_endpoint,omitempty"`
	APIKey       string    `json:"api_key,omitempty"`
}

func (a AgentRecord) HasCapability(capability string) bool {
	return slices.Contains(a.Capabilities, capability)
}

func (a AgentRecord) IsExternal() bool {
	return a.Mode == AgentExternal
}

func (a AgentRecord) Clone() AgentRecord {
	out := a
	out.Capabilities = slices.Clone(a.Capabilities)
	return out
}

func (a AgentRecord) String() string {
	mode := a.Mode
	if mode == "" {
		mode = AgentInternal
	}
	return fmt.Sprintf("Agent(name=%s, id=%s, type=%s, abilities=%v)", a.Name, a.ID, mode, a.Capabilities)
}

// LLMRecord describes a registered language model stand-in.
type LLMRecord struct {
	Name      string         `json:"name"`
	APIKey    string         `json:"api_key"`
	ModelPath string         `json:"model_path,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
	Active    bool           `json:"active"`
}

func (l LLMRecord) Clone() LLMRecord {
	out := l
	if l.Config != nil {
		out.Config = make(map[string]any, len(l.Config))
		for k, v := range l.Config {
			out.Config[k] = v
		}
	}
	return out
}

// Directory is the read side of the agent/LLM registry consumed by the broker.
// Every method returns only active records, in registration order.
type Directory interface {
	AgentsByCapability(capability string) []AgentRecord
	ActiveAgents() []AgentRecord
	ActiveLLMs() []LLMRecord
}
