package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/ctxbroker/internal/core"
)

func TestFileStore_MissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "context.json"))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.History)
	assert.NotNil(t, snap.Active)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "context.json")
	s := NewFileStore(path)

	at := time.Unix(1700000000, 0)
	entry := core.NewContextEntry(core.ContextInfo{
		Intent:        core.IntentManual,
		Confidence:    1,
		OriginalQuery: "hello",
	}, at)

	snap := core.NewSnapshot()
	snap.History["u1"] = []core.ContextEntry{entry}
	snap.Active["u1"] = entry
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.History["u1"], 1)
	assert.Equal(t, "Intent: manual. Query: hello", got.Active["u1"].Summary())
	assert.True(t, got.History["u1"][0].Timestamp.Equal(at))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_DocumentShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "context.json")
	s := NewFileStore(path)

	entry := core.NewContextEntry(core.ContextInfo{Topic: "food", Intent: core.IntentStatement, Confidence: 0.5, OriginalQuery: "pizza"}, time.Unix(10, 250_000_000))
	snap := core.NewSnapshot()
	snap.Active["u"] = entry
	require.NoError(t, s.Save(ctx, snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	active := doc["active"]["u"].(map[string]any)
	assert.Equal(t, "food", active["topic"])
	assert.Equal(t, 10.25, active["timestamp"])
	assert.Equal(t, []any{}, active["entities"])
	assert.Contains(t, doc, "history")
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
