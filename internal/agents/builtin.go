package agents

import "github.com/soyeahso/suite/internal/config"

// Builtin lists every agent config compiled into the binary. Add new
// agents here; the registry sees nothing that is not listed.
func Builtin() []Provider {
	return []Provider{
		Sales,
		Purchasing,
		Production,
		Quality,
		Search,
	}
}

// FromConfig turns agents declared in the config file into providers.
// They are appended after Builtin, so a config entry reusing a builtin
// name replaces it.
func FromConfig(cfg config.AgentsConfig) []Provider {
	out := make([]Provider, 0, len(cfg.Extra))
	for _, e := range cfg.Extra {
		model := e.Model
		if model == "" {
			model = cfg.DefaultModel
		}
		out = append(out, Static(Config{
			Name:         e.Name,
			Description:  e.Description,
			Model:        model,
			Instructions: e.Instructions,
			Tools:        e.Tools,
		}))
	}
	return out
}

// WithDefaultModel fills in Model for providers that leave it empty.
func WithDefaultModel(p Provider, model string) Provider {
	return ProviderFunc(func() *Config {
		c := p.AgentConfig()
		if c == nil {
			return nil
		}
		cp := *c
		if cp.Model == "" {
			cp.Model = model
		}
		return &cp
	})
}

// Providers returns Builtin followed by the config-declared agents, with
// the configured default model applied.
func Providers(cfg config.AgentsConfig) []Provider {
	var out []Provider
	for _, p := range Builtin() {
		if cfg.DefaultModel != "" {
			p = WithDefaultModel(p, cfg.DefaultModel)
		}
		out = append(out, p)
	}
	return append(out, FromConfig(cfg)...)
}
