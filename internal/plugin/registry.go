package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
)

// Registry owns plugin lifecycles.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
	started []string // initialized plugins, in init order
	hooks   *hooks.Manager
	log     *logging.Logger
}

// NewRegistry creates an empty registry bound to hm.
func NewRegistry(hm *hooks.Manager, log *logging.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		hooks:   hm,
		log:     log.Sub("plugins"),
	}
}

// Register adds p without initializing it.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.ID()]; exists {
		return fmt.Errorf("plugin already registered: %s", p.ID())
	}
	r.plugins[p.ID()] = p
	r.order = append(r.order, p.ID())
	r.log.Debug().Str("id", p.ID()).Str("name", p.Name()).Msg("plugin registered")
	return nil
}

// InitAll initializes plugins in registration order. If one fails, the
// ones already started are closed again before the error is returned.
func (r *Registry) InitAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		p := r.plugins[id]
		if err := p.Init(ctx, API{Hooks: r.hooks, Log: r.log.Sub(id)}); err != nil {
			r.closeStarted()
			return fmt.Errorf("init plugin %s: %w", id, err)
		}
		r.started = append(r.started, id)
		r.log.Info().Str("id", id).Msg("plugin started")
	}
	return nil
}

// CloseAll closes started plugins in reverse order.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeStarted()
}

func (r *Registry) closeStarted() {
	for i := len(r.started) - 1; i >= 0; i-- {
		id := r.started[i]
		if err := r.plugins[id].Close(); err != nil {
			r.log.Error().Err(err).Str("id", id).Msg("plugin close error")
		}
	}
	r.started = nil
}

// Get returns a plugin by ID, or nil.
func (r *Registry) Get(id string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[id]
}

// List returns plugin IDs in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
