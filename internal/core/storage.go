package core

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Snapshot is the durable form of the context store: per-user history
// (oldest first) and the active entry.
type Snapshot struct {
	History map[string][]ContextEntry `json:"history"`
	Active  map[string]ContextEntry   `json:"active"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		History: make(map[string][]ContextEntry),
		Active:  make(map[string]ContextEntry),
	}
}

type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// entryRecord is the on-disk shape of a ContextEntry. Timestamps are unix
// seconds with fractional part.
type entryRecord struct {
	Topic         string   `json:"topic"`
	Entities      []string `json:"entities"`
	Keywords      []string `json:"keywords"`
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	OriginalQuery string   `json:"original_query"`
	LLMEnhanced   bool     `json:"llm_enhanced"`
	Timestamp     float64  `json:"timestamp"`
}

func (e ContextEntry) MarshalJSON() ([]byte, error) {
	rec := entryRecord{
		Topic:         e.Topic,
		Entities:      e.Entities,
		Keywords:      e.Keywords,
		Intent:        e.Intent,
		Confidence:    e.Confidence,
		OriginalQuery: e.OriginalQuery,
		LLMEnhanced:   e.LLMEnhanced,
		Timestamp:     float64(e.Timestamp.UnixNano()) / float64(time.Second),
	}
	if rec.Entities == nil {
		rec.Entities = []string{}
	}
	if rec.Keywords == nil {
		rec.Keywords = []string{}
	}
	return json.Marshal(rec)
}

func (e *ContextEntry) UnmarshalJSON(data []byte) error {
	var rec entryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	sec, frac := math.Modf(rec.Timestamp)
	e.ContextInfo = ContextInfo{
		Topic:         rec.Topic,
		Entities:      rec.Entities,
		Keywords:      rec.Keywords,
		Intent:        rec.Intent,
		Confidence:    rec.Confidence,
		OriginalQuery: rec.OriginalQuery,
		LLMEnhanced:   rec.LLMEnhanced,
	}
	e.Timestamp = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	return nil
}
