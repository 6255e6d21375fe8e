package agents

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/soyeahso/suite/internal/logging"
)

// Collision records a name supplied by more than one provider.
// The later provider's config is the one kept.
type Collision struct {
	Name     string `json:"name"`
	Replaced int    `json:"replaced"` // index of the overwritten provider
	Kept     int    `json:"kept"`     // index of the provider that won
}

// Registry is the name -> config mapping built once at startup.
type Registry struct {
	byName     map[string]Config
	origin     map[string]int
	collisions []Collision
	skipped    int
}

// NewRegistry folds providers in order. Providers without a config are
// skipped; on a duplicate name the last provider wins and the collision
// is logged and recorded.
func NewRegistry(log *logging.Logger, providers ...Provider) *Registry {
	log = log.Sub("agents")
	r := &Registry{
		byName: make(map[string]Config, len(providers)),
		origin: make(map[string]int, len(providers)),
	}

	for i, p := range providers {
		if p == nil {
			r.skipped++
			continue
		}
		cfg := p.AgentConfig()
		if cfg == nil {
			r.skipped++
			continue
		}
		if prev, dup := r.origin[cfg.Name]; dup {
			r.collisions = append(r.collisions, Collision{Name: cfg.Name, Replaced: prev, Kept: i})
			log.Warn().Str("agent", cfg.Name).Int("replaced", prev).Int("kept", i).Msg("duplicate agent name, last definition wins")
		}
		r.byName[cfg.Name] = *cfg
		r.origin[cfg.Name] = i
	}

	log.Debug().Int("agents", len(r.byName)).Int("skipped", r.skipped).Msg("agent registry built")
	return r
}

// Get returns the named config.
func (r *Registry) Get(name string) (Config, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns agent names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns all configs sorted by name.
func (r *Registry) List() []Config {
	out := make([]Config, 0, len(r.byName))
	for _, n := range r.Names() {
		out = append(out, r.byName[n])
	}
	return out
}

// Map returns a copy of the name -> config mapping.
func (r *Registry) Map() map[string]Config {
	out := make(map[string]Config, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}

func (r *Registry) Len() int { return len(r.byName) }

// Skipped is the number of providers that had no config.
func (r *Registry) Skipped() int { return r.skipped }

// Collisions lists duplicate names in the order they were found.
func (r *Registry) Collisions() []Collision {
	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// Suggest returns the registered name closest to name by edit distance.
// Names more than a third of their length away (minimum 2) don't count.
func (r *Registry) Suggest(name string) (string, bool) {
	name = strings.ToLower(name)
	best, bestDist := "", -1
	for _, n := range r.Names() {
		d := levenshtein.ComputeDistance(name, strings.ToLower(n))
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(best)/3) {
		return "", false
	}
	return best, true
}
