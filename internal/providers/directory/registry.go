package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

var (
	ErrAgentExists   = errors.New("agent already registered")
	ErrAgentNotFound = errors.New("agent not found")
	ErrLLMNotFound   = errors.New("llm not found")
)

type Storage interface {
	Load(ctx context.Context) (*Catalog, error)
	Save(ctx context.Context, catalog *Catalog) error
	Watch(ctx context.Context) (<-chan Catalog, error)
}

// Catalog is the persisted form of the registry.
type Catalog struct {
	Agents []core.AgentRecord `json:"agents"`
	LLMs   []core.LLMRecord   `json:"llms"`
}

func (c Catalog) clone() Catalog {
	out := Catalog{
		Agents: make([]core.AgentRecord, len(c.Agents)),
		LLMs:   make([]core.LLMRecord, len(c.LLMs)),
	}
	for i, a := range c.Agents {
		out.Agents[i] = a.Clone()
	}
	for i, l := range c.LLMs {
		out.LLMs[i] = l.Clone()
	}
	return out
}

// Registry is an ordered agent/LLM directory. Iteration order is
// registration order. A nil storage keeps everything in memory.
type Registry struct {
	storage Storage
	mu      sync.RWMutex
	catalog Catalog
}

var _ core.Directory = (*Registry)(nil)

func NewRegistry(storage Storage) *Registry {
	return &Registry{
		storage: storage,
	}
}

func (r *Registry) Load(ctx context.Context) error {
	if r.storage == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.storage.Load(ctx)
	if err != nil {
		return err
	}

	r.catalog = cat.clone()
	return nil
}

func (r *Registry) RegisterAgent(ctx context.Context, rec core.AgentRecord) error {
	if rec.ID == "" {
		return errors.New("agent id is required")
	}
	if rec.Mode == "" {
		rec.Mode = core.AgentInternal
	}

	return r.update(ctx, func(cat *Catalog) error {
		if slices.ContainsFunc(cat.Agents, func(a core.AgentRecord) bool { return a.ID == rec.ID }) {
			return fmt.Errorf("%w: %s", ErrAgentExists, rec.ID)
		}
		cat.Agents = append(cat.Agents, rec.Clone())
		return nil
	})
}

func (r *Registry) Agent(id string) (core.AgentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.catalog.Agents {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return core.AgentRecord{}, false
}

func (r *Registry) ActivateAgent(ctx context.Context, id string) error {
	return r.updateAgent(ctx, id, func(a *core.AgentRecord) { a.Active = true })
}

func (r *Registry) DeactivateAgent(ctx context.Context, id string) error {
	return r.updateAgent(ctx, id, func(a *core.AgentRecord) { a.Active = false })
}

func (r *Registry) AddCapability(ctx context.Context, id, capability string) error {
	return r.updateAgent(ctx, id, func(a *core.AgentRecord) {
		if !a.HasCapability(capability) {
			a.Capabilities = append(a.Capabilities, capability)
		}
	})
}

func (r *Registry) RemoveCapability(ctx context.Context, id, capability string) error {
	return r.updateAgent(ctx, id, func(a *core.AgentRecord) {
		a.Capabilities = slices.DeleteFunc(a.Capabilities, func(c string) bool { return c == capability })
	})
}

// RegisterLLM adds an LLM. A record with the same name is replaced in place.
func (r *Registry) RegisterLLM(ctx context.Context, rec core.LLMRecord) error {
	if rec.Name == "" {
		return errors.New("llm name is required")
	}

	return r.update(ctx, func(cat *Catalog) error {
		for i := range cat.LLMs {
			if cat.LLMs[i].Name == rec.Name {
				cat.LLMs[i] = rec.Clone()
				return nil
			}
		}
		cat.LLMs = append(cat.LLMs, rec.Clone())
		return nil
	})
}

func (r *Registry) LLM(name string) (core.LLMRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.catalog.LLMs {
		if l.Name == name {
			return l.Clone(), true
		}
	}
	return core.LLMRecord{}, false
}

func (r *Registry) ActivateLLM(ctx context.Context, name string) error {
	return r.updateLLM(ctx, name, true)
}

func (r *Registry) DeactivateLLM(ctx context.Context, name string) error {
	return r.updateLLM(ctx, name, false)
}

func (r *Registry) AgentsByCapability(capability string) []core.AgentRecord {
	return r.filterAgents(func(a core.AgentRecord) bool {
		return a.Active && a.HasCapability(capability)
	})
}

func (r *Registry) ActiveAgents() []core.AgentRecord {
	return r.filterAgents(func(a core.AgentRecord) bool { return a.Active })
}

// Agents returns every agent, active or not.
func (r *Registry) Agents() []core.AgentRecord {
	return r.filterAgents(func(core.AgentRecord) bool { return true })
}

func (r *Registry) ActiveLLMs() []core.LLMRecord {
	return r.filterLLMs(func(l core.LLMRecord) bool { return l.Active })
}

func (r *Registry) LLMs() []core.LLMRecord {
	return r.filterLLMs(func(core.LLMRecord) bool { return true })
}

// Watch reloads the registry whenever the storage reports an external change.
func (r *Registry) Watch(ctx context.Context) (<-chan Catalog, error) {
	if r.storage == nil {
		return nil, errors.New("registry has no storage to watch")
	}

	ch, err := r.storage.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Catalog)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}

				cat, err := r.reload(ctx)
				if err != nil {
					log.FromCtx(ctx).Error().Err(err).Msg("failed to reload directory")
					continue
				}

				select {
				case out <- cat:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// reload reads storage under the write lock. A change event may carry a
// catalog read before a concurrent update saved, so its payload only
// triggers the reload.
func (r *Registry) reload(ctx context.Context) (Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.storage.Load(ctx)
	if err != nil {
		return Catalog{}, err
	}

	r.catalog = cat.clone()
	return cat.clone(), nil
}

func (r *Registry) filterAgents(keep func(core.AgentRecord) bool) []core.AgentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.AgentRecord, 0, len(r.catalog.Agents))
	for _, a := range r.catalog.Agents {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (r *Registry) filterLLMs(keep func(core.LLMRecord) bool) []core.LLMRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.LLMRecord, 0, len(r.catalog.LLMs))
	for _, l := range r.catalog.LLMs {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (r *Registry) updateAgent(ctx context.Context, id string, mutate func(*core.AgentRecord)) error {
	return r.update(ctx, func(cat *Catalog) error {
		for i := range cat.Agents {
			if cat.Agents[i].ID == id {
				mutate(&cat.Agents[i])
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	})
}

func (r *Registry) updateLLM(ctx context.Context, name string, active bool) error {
	return r.update(ctx, func(cat *Catalog) error {
		for i := range cat.LLMs {
			if cat.LLMs[i].Name == name {
				cat.LLMs[i].Active = active
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrLLMNotFound, name)
	})
}

// update applies mutate to a copy, saves it, and only then swaps it in.
func (r *Registry) update(ctx context.Context, mutate func(*Catalog) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.catalog.clone()
	if err := mutate(&next); err != nil {
		return err
	}

	if r.storage != nil {
		if err := r.storage.Save(ctx, &next); err != nil {
			return err
		}
	}

	r.catalog = next
	return nil
}
