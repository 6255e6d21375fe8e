// Package agents aggregates agent configurations into a registry keyed by
// agent name. Every provider is listed explicitly in Builtin; nothing is
// discovered at runtime.
package agents

import (
	"slices"

	"github.com/soyeahso/suite/internal/domain"
)

// Config describes one assistant agent.
type Config struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Model        string              `json:"model,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Tools        []string            `json:"tools,omitempty"`
	Capabilities []domain.Capability `json:"-"`
}

// Requires returns the capabilities as strings for display.
func (c Config) Requires() []string {
	out := make([]string, len(c.Capabilities))
	for i, capability := range c.Capabilities {
		out[i] = capability.String()
	}
	return out
}

// Provider supplies an agent configuration. A nil result means the
// provider has no config to contribute and is skipped.
type Provider interface {
	AgentConfig() *Config
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() *Config

func (f ProviderFunc) AgentConfig() *Config { return f() }

// Static wraps a fixed config as a Provider. Each call returns a fresh
// copy, so callers may modify the result.
func Static(c Config) Provider {
	return ProviderFunc(func() *Config {
		cp := c
		cp.Tools = slices.Clone(c.Tools)
		cp.Capabilities = slices.Clone(c.Capabilities)
		return &cp
	})
}
