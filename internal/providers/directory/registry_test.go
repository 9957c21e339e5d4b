package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sandevgo/ctxbroker/internal/core"
)

type mockStorage struct {
	mu      sync.Mutex
	catalog *Catalog
	loadErr error
	saveErr error
	saves   int
	watch   chan Catalog
}

func newMockStorage() *mockStorage {
	return &mockStorage{catalog: &Catalog{}}
}

func (m *mockStorage) Load(context.Context) (*Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	cat := m.catalog.clone()
	return &cat, nil
}

func (m *mockStorage) Save(_ context.Context, cat *Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	c := cat.clone()
	m.catalog = &c
	return nil
}

func (m *mockStorage) Watch(context.Context) (<-chan Catalog, error) {
	if m.watch == nil {
		return nil, errors.New("not supported")
	}
	return m.watch, nil
}

func agent(id string, active bool, caps ...string) core.AgentRecord {
	return core.AgentRecord{ID: id, Name: "agent-" + id, Capabilities: caps, Active: active}
}

func ids(agents []core.AgentRecord) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRegistry_RegisterAgent(t *testing.T) {
	tests := []struct {
		name    string
		initial []core.AgentRecord
		add     core.AgentRecord
		saveErr error
		wantErr error
		wantIDs []string
	}{
		{
			name:    "add_to_empty",
			add:     agent("a", true, "talk"),
			wantIDs: []string{"a"},
		},
		{
			name:    "keeps_registration_order",
			initial: []core.AgentRecord{agent("z", true), agent("m", true)},
			add:     agent("a", true),
			wantIDs: []string{"z", "m", "a"},
		},
		{
			name:    "duplicate_id",
			initial: []core.AgentRecord{agent("a", true)},
			add:     agent("a", false),
			wantErr: ErrAgentExists,
			wantIDs: []string{"a"},
		},
		{
			name:    "save_error_keeps_state",
			add:     agent("a", true),
			saveErr: errors.New("disk full"),
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMockStorage()
			storage.catalog = &Catalog{Agents: tt.initial}

			r := NewRegistry(storage)
			ctx := context.Background()
			if err := r.Load(ctx); err != nil {
				t.Fatalf("load: %v", err)
			}
			storage.saveErr = tt.saveErr

			err := r.RegisterAgent(ctx, tt.add)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.saveErr != nil:
				if err == nil {
					t.Fatal("expected save error, got nil")
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}

			if got := ids(r.Agents()); !equal(got, tt.wantIDs) {
				t.Errorf("agents = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestRegistry_RegisterAgentDefaultsToInternal(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.RegisterAgent(context.Background(), agent("a", true)); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Agent("a")
	if !ok {
		t.Fatal("agent not found")
	}
	if got.Mode != core.AgentInternal {
		t.Errorf("mode = %q, want %q", got.Mode, core.AgentInternal)
	}
	if err := r.RegisterAgent(context.Background(), core.AgentRecord{}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRegistry_ActiveFiltering(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	for _, a := range []core.AgentRecord{
		agent("a", true, "talk"),
		agent("b", true, "talk", "think"),
		agent("c", false, "talk"),
		agent("d", true, "learn"),
	} {
		if err := r.RegisterAgent(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	if got := ids(r.AgentsByCapability("talk")); !equal(got, []string{"a", "b"}) {
		t.Errorf("talk = %v", got)
	}
	if got := ids(r.AgentsByCapability("think")); !equal(got, []string{"b"}) {
		t.Errorf("think = %v", got)
	}
	if got := ids(r.AgentsByCapability("fly")); len(got) != 0 {
		t.Errorf("fly = %v", got)
	}
	if got := ids(r.ActiveAgents()); !equal(got, []string{"a", "b", "d"}) {
		t.Errorf("active = %v", got)
	}

	if err := r.DeactivateAgent(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := r.ActivateAgent(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if got := ids(r.AgentsByCapability("talk")); !equal(got, []string{"b", "c"}) {
		t.Errorf("talk after toggle = %v", got)
	}

	if err := r.DeactivateAgent(ctx, "missing"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("err = %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_Capabilities(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)
	if err := r.RegisterAgent(ctx, agent("a", true, "talk")); err != nil {
		t.Fatal(err)
	}

	if err := r.AddCapability(ctx, "a", "think"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddCapability(ctx, "a", "think"); err != nil {
		t.Fatal(err)
	}
	if err := r.RemoveCapability(ctx, "a", "talk"); err != nil {
		t.Fatal(err)
	}

	got, _ := r.Agent("a")
	if !equal(got.Capabilities, []string{"think"}) {
		t.Errorf("capabilities = %v, want [think]", got.Capabilities)
	}
	if err := r.AddCapability(ctx, "nope", "talk"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("err = %v, want ErrAgentNotFound", err)
	}
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)
	if err := r.RegisterAgent(ctx, agent("a", true, "talk")); err != nil {
		t.Fatal(err)
	}

	list := r.ActiveAgents()
	list[0].Capabilities[0] = "mutated"
	list[0].Active = false

	got, _ := r.Agent("a")
	if got.Capabilities[0] != "talk" || !got.Active {
		t.Errorf("registry state leaked: %+v", got)
	}
}

func TestRegistry_LLMs(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	r := NewRegistry(storage)

	for _, l := range []core.LLMRecord{
		{Name: "default", APIKey: "k1", Active: true},
		{Name: "backup", Active: true},
	} {
		if err := r.RegisterLLM(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	// same name replaces in place
	if err := r.RegisterLLM(ctx, core.LLMRecord{Name: "default", APIKey: "k2", Active: true}); err != nil {
		t.Fatal(err)
	}

	llms := r.LLMs()
	if len(llms) != 2 || llms[0].Name != "default" || llms[0].APIKey != "k2" {
		t.Fatalf("llms = %+v", llms)
	}

	if err := r.DeactivateLLM(ctx, "default"); err != nil {
		t.Fatal(err)
	}
	active := r.ActiveLLMs()
	if len(active) != 1 || active[0].Name != "backup" {
		t.Errorf("active llms = %+v", active)
	}

	if err := r.ActivateLLM(ctx, "ghost"); !errors.Is(err, ErrLLMNotFound) {
		t.Errorf("err = %v, want ErrLLMNotFound", err)
	}
	if _, ok := r.LLM("ghost"); ok {
		t.Error("unexpected llm")
	}
	if storage.saves != 4 {
		t.Errorf("saves = %d, want 4", storage.saves)
	}
}

func TestRegistry_LoadError(t *testing.T) {
	storage := newMockStorage()
	storage.loadErr = errors.New("broken")

	if err := NewRegistry(storage).Load(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRegistry_WatchIgnoresStalePayload(t *testing.T) {
	s := newMockStorage()
	s.watch = make(chan Catalog)
	r := NewRegistry(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := r.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// read by the watcher before the registration below was saved
	stale := Catalog{}

	if err := r.RegisterAgent(ctx, agent("a", true, "talk")); err != nil {
		t.Fatalf("RegisterAgent() error = %v", err)
	}

	s.watch <- stale
	cat := <-updates

	if got := ids(cat.Agents); !equal(got, []string{"a"}) {
		t.Errorf("reloaded catalog agents = %v, want [a]", got)
	}
	if got := ids(r.ActiveAgents()); !equal(got, []string{"a"}) {
		t.Errorf("ActiveAgents() = %v, want [a]", got)
	}

	cancel()
	for range updates {
	}
}
