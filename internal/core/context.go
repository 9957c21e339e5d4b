package core

import (
	"slices"
	"strings"
	"time"
)

// ContextInfo is the structured interpretation of a single message.
// Values are treated as immutable once produced.
type ContextInfo struct {
	Topic         string   `json:"topic"`
	Entities      []string `json:"entities"`
	Keywords      []string `json:"keywords"`
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	OriginalQuery string   `json:"original_query"`
	LLMEnhanced   bool     `json:"llm_enhanced"`
}

// Summary renders the canonical single-line form handed to the broker.
// Empty fields are omitted.
func (c ContextInfo) Summary() string {
	var b strings.Builder
	if c.Topic != "" {
		b.WriteString("Topic: ")
		b.WriteString(c.Topic)
		b.WriteString(". ")
	}
	if len(c.Entities) > 0 {
		b.WriteString("Entities: ")
		b.WriteString(strings.Join(c.Entities, ", "))
		b.WriteString(". ")
	}
	if c.Intent != "" {
		b.WriteString("Intent: ")
		b.WriteString(c.Intent)
		b.WriteString(". ")
	}
	b.WriteString("Query: ")
	b.WriteString(c.OriginalQuery)
	return b.String()
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (c ContextInfo) Clone() ContextInfo {
	out := c
	out.Entities = slices.Clone(c.Entities)
	out.Keywords = slices.Clone(c.Keywords)
	return out
}

// ContextEntry is a ContextInfo stamped with its capture time.
type ContextEntry struct {
	ContextInfo
	Timestamp time.Time
}

func NewContextEntry(info ContextInfo, at time.Time) ContextEntry {
	return ContextEntry{ContextInfo: info.Clone(), Timestamp: at}
}
