package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const defaultWatchInterval = time.Second

type FileStorage struct {
	path     string
	interval time.Duration
	mu       sync.RWMutex
}

func NewFileStorage(path string, interval time.Duration) *FileStorage {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &FileStorage{
		path:     path,
		interval: interval,
	}
}

// Load reads the catalog. A missing file is created empty.
func (s *FileStorage) Load(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read directory file: %w", err)
		}

		log.FromCtx(ctx).Info().Str("path", s.path).Msg("directory file not found, creating empty one")

		cat := &Catalog{}
		if err := s.Save(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to create directory file: %w", err)
		}
		return cat, nil
	}

	return decodeCatalog(data)
}

func (s *FileStorage) Save(_ context.Context, cat *Catalog) error {
	out := Catalog{Agents: cat.Agents, LLMs: cat.LLMs}
	if out.Agents == nil {
		out.Agents = []core.AgentRecord{}
	}
	if out.LLMs == nil {
		out.LLMs = []core.LLMRecord{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write directory file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace directory file: %w", err)
	}

	return nil
}

// Watch polls the file's mtime and emits the parsed catalog on change.
// Unparseable edits are logged and skipped.
func (s *FileStorage) Watch(ctx context.Context) (<-chan Catalog, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory file: %w", err)
	}
	lastMod := info.ModTime()

	updates := make(chan Catalog)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.RLock()
				info, err := os.Stat(s.path)
				var data []byte
				if err == nil {
					data, err = os.ReadFile(s.path)
				}
				s.mu.RUnlock()

				if err != nil {
					lastMod = time.Time{}
					continue
				}
				if !info.ModTime().After(lastMod) {
					continue
				}

				cat, err := decodeCatalog(data)
				if err != nil {
					log.FromCtx(ctx).Error().Err(err).Str("path", s.path).Msg("failed to parse directory file")
					continue
				}
				lastMod = info.ModTime()

				select {
				case updates <- *cat:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}

type activeField struct {
	Active *bool `json:"active"`
}

// activeFlags tells records that omit "active" apart from inactive ones.
type activeFlags struct {
	Agents []activeField `json:"agents"`
	LLMs   []activeField `json:"llms"`
}

// decodeCatalog fills defaults for hand-written files: a missing mode is
// internal and a missing active flag means active.
func decodeCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}
	var flags activeFlags
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}

	for i := range cat.Agents {
		if cat.Agents[i].Mode == "" {
			cat.Agents[i].Mode = core.AgentInternal
		}
		if flags.Agents[i].Active == nil {
			cat.Agents[i].Active = true
		}
	}
	for i := range cat.LLMs {
		if flags.LLMs[i].Active == nil {
			cat.LLMs[i].Active = true
		}
	}
	return &cat, nil
}
