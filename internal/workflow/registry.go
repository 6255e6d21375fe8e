package workflow

import (
	"fmt"
	"sync"
)

// Registry holds workflows in registration order.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
	order     []string
}

// NewRegistry creates a registry and registers ws in order.
func NewRegistry(ws ...Workflow) (*Registry, error) {
	r := &Registry{workflows: make(map[string]Workflow, len(ws))}
	for _, w := range ws {
		if err := r.Register(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds w. IDs must be non-empty and unique.
func (r *Registry) Register(w Workflow) error {
	if w == nil {
		return fmt.Errorf("nil workflow")
	}
	id := w.ID()
	if id == "" {
		return fmt.Errorf("workflow with empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workflows[id]; exists {
		return fmt.Errorf("workflow already registered: %s", id)
	}
	r.workflows[id] = w
	r.order = append(r.order, id)
	return nil
}

// Get returns the workflow with the given ID.
func (r *Registry) Get(id string) (Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[id]
	return w, ok
}

// IDs returns workflow IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Info describes a registered workflow.
type Info struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Info returns summaries in registration order.
func (r *Registry) Info() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		info := Info{ID: id}
		if d, ok := r.workflows[id].(Describer); ok {
			info.Description = d.Description()
		}
		out = append(out, info)
	}
	return out
}
