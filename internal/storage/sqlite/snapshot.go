package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/ctxbroker/internal/core"
)

// SnapshotStore keeps the whole context snapshot as one JSON document in a
// single-row table.
type SnapshotStore struct {
	db *sql.DB
}

var _ core.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Load(ctx context.Context) (*core.Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM context_snapshots WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snap := core.NewSnapshot()
	if err := json.Unmarshal([]byte(doc), snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.History == nil {
		snap.History = make(map[string][]core.ContextEntry)
	}
	if snap.Active == nil {
		snap.Active = make(map[string]core.ContextEntry)
	}
	return snap, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap *core.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `INSERT INTO context_snapshots (id, document, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, string(doc)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
