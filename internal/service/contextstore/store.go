// Package contextstore keeps the active and historical context per user.
package contextstore

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const DefaultHistorySize = 10

type Extractor interface {
	Extract(ctx context.Context, message string, enhance bool, enhancer core.Enhancer) core.ContextInfo
}

type userState struct {
	active  *core.ContextEntry
	history []core.ContextEntry
	session map[string]any
}

// Store is safe for concurrent use. A single mutex guards all users, which
// keeps "replace active + append history" atomic per user.
type Store struct {
	extractor Extractor
	snapshots core.SnapshotStore
	capacity  int
	now       func() time.Time

	mu      sync.Mutex
	users   map[string]*userState
	version uint64

	persistMu    sync.Mutex
	savedVersion uint64
}

type Option func(*Store)

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithSnapshotStore enables best-effort durability.
func WithSnapshotStore(store core.SnapshotStore) Option {
	return func(s *Store) {
		s.snapshots = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Store and, when a snapshot store is configured, eagerly loads
// the last snapshot. A failed load is logged and the store starts empty.
func New(ctx context.Context, extractor Extractor, opts ...Option) *Store {
	s := &Store{
		extractor: extractor,
		capacity:  DefaultHistorySize,
		now:       time.Now,
		users:     make(map[string]*userState),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.snapshots != nil {
		s.restore(ctx)
	}
	return s
}

func (s *Store) restore(ctx context.Context) {
	logger := log.FromCtx(ctx)

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load persisted context")
		return
	}
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, entries := range snap.History {
		st := s.userLocked(userID)
		if len(entries) > s.capacity {
			entries = entries[len(entries)-s.capacity:]
		}
		st.history = make([]core.ContextEntry, len(entries))
		copy(st.history, entries)
	}
	for userID, entry := range snap.Active {
		e := entry
		s.userLocked(userID).active = &e
	}

	logger.Debug().Int("users", len(s.users)).Msg("restored persisted context")
}

// ActiveContext returns the summary of the user's active context.
func (s *Store) ActiveContext(ctx context.Context, userID string) (string, bool) {
	entry, ok := s.ActiveEntry(ctx, userID)
	if !ok {
		return "", false
	}
	return entry.Summary(), true
}

// ActiveEntry returns a copy of the user's active entry.
func (s *Store) ActiveEntry(_ context.Context, userID string) (core.ContextEntry, bool) {
	userID = core.UserIDOrDefault(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok || st.active == nil {
		return core.ContextEntry{}, false
	}
	return core.NewContextEntry(st.active.ContextInfo, st.active.Timestamp), true
}

// ExtractAndUpdate runs the extractor and makes the result the active context.
func (s *Store) ExtractAndUpdate(ctx context.Context, message, userID string, enhance bool, enhancer core.Enhancer) string {
	info := s.extractor.Extract(ctx, message, enhance, enhancer)
	s.apply(ctx, core.UserIDOrDefault(userID), info)
	return info.Summary()
}

// SetManual installs text as the user's context with full confidence.
func (s *Store) SetManual(ctx context.Context, userID, text string) {
	info := core.ContextInfo{
		Entities:      []string{},
		Keywords:      []string{},
		Intent:        core.IntentManual,
		Confidence:    1.0,
		OriginalQuery: text,
	}
	s.apply(ctx, core.UserIDOrDefault(userID), info)
}

// Clear drops the active context only. History is untouched.
func (s *Store) Clear(ctx context.Context, userID string) {
	userID = core.UserIDOrDefault(userID)

	s.mu.Lock()
	if st, ok := s.users[userID]; ok {
		st.active = nil
	}
	snap, version := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap, version)
}

// History returns summaries newest first. limit <= 0 returns everything retained.
func (s *Store) History(_ context.Context, userID string, limit int) []string {
	userID = core.UserIDOrDefault(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok {
		return []string{}
	}

	entries := st.history
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}

	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Summary())
	}
	return out
}

func (s *Store) StoreSessionData(_ context.Context, userID, key string, value any) {
	userID = core.UserIDOrDefault(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.userLocked(userID)
	if st.session == nil {
		st.session = make(map[string]any)
	}
	st.session[key] = value
}

func (s *Store) SessionData(_ context.Context, userID, key string, def any) any {
	userID = core.UserIDOrDefault(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.users[userID]
	if !ok || st.session == nil {
		return def
	}
	v, ok := st.session[key]
	if !ok {
		return def
	}
	return v
}

func (s *Store) apply(ctx context.Context, userID string, info core.ContextInfo) {
	entry := core.NewContextEntry(info, s.now())

	s.mu.Lock()
	st := s.userLocked(userID)
	st.history = append(st.history, entry)
	if over := len(st.history) - s.capacity; over > 0 {
		trimmed := make([]core.ContextEntry, s.capacity)
		copy(trimmed, st.history[over:])
		st.history = trimmed
	}
	active := entry
	st.active = &active
	snap, version := s.snapshotLocked()
	s.mu.Unlock()

	log.FromCtx(ctx).Debug().
		Str("user_id", userID).
		Str("intent", info.Intent).
		Float64("confidence", info.Confidence).
		Msg("context updated")

	s.persist(ctx, snap, version)
}

func (s *Store) userLocked(userID string) *userState {
	st, ok := s.users[userID]
	if !ok {
		st = &userState{}
		s.users[userID] = st
	}
	return st
}

// snapshotLocked copies the durable state. Returns nil when persistence is off.
func (s *Store) snapshotLocked() (*core.Snapshot, uint64) {
	s.version++
	if s.snapshots == nil {
		return nil, s.version
	}

	snap := core.NewSnapshot()
	for userID, st := range s.users {
		if len(st.history) > 0 {
			h := make([]core.ContextEntry, len(st.history))
			copy(h, st.history)
			snap.History[userID] = h
		}
		if st.active != nil {
			snap.Active[userID] = *st.active
		}
	}
	return snap, s.version
}

// persist writes snap unless a newer snapshot already made it to disk.
// Failures are logged and swallowed.
func (s *Store) persist(ctx context.Context, snap *core.Snapshot, version uint64) {
	if snap == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.savedVersion {
		return
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to persist context")
		return
	}
	s.savedVersion = version
}
