package config

// Config is the root configuration for the suite server.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Auth      AuthConfig      `yaml:"auth,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Workflows WorkflowsConfig `yaml:"workflows,omitempty"`
	Agents    AgentsConfig    `yaml:"agents,omitempty"`
	UI        UIConfig        `yaml:"ui,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port           int       `yaml:"port,omitempty"`
	Bind           string    `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string    `yaml:"customBindHost,omitempty"`
	TLS            ServerTLS `yaml:"tls,omitempty"`
	AllowedOrigins []string  `yaml:"allowedOrigins,omitempty"`
	Metrics        bool      `yaml:"metrics,omitempty"`
}

// ServerTLS configures TLS for the listener.
type ServerTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// AuthConfig lists API tokens and the roles they map to.
type AuthConfig struct {
	Tokens    []TokenEntry        `yaml:"tokens,omitempty"`
	Roles     map[string][]string `yaml:"roles,omitempty"` // role -> capabilities
	RateLimit RateLimitConfig     `yaml:"rateLimit,omitempty"`
}

// TokenEntry binds a bearer token to an employee of a company.
type TokenEntry struct {
	Token       string   `yaml:"token"`
	UserID      string   `yaml:"userId"`
	CompanyID   string   `yaml:"companyId"`
	Role        string   `yaml:"role,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// RateLimitConfig bounds failed authentication attempts per remote host.
type RateLimitConfig struct {
	PerMinute float64 `yaml:"perMinute,omitempty"`
	Burst     int     `yaml:"burst,omitempty"`
}

// StoreConfig selects the database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // sqlite file, or ":memory:"
}

// WorkflowsConfig configures the workflow serve endpoint.
type WorkflowsConfig struct {
	SigningKey string   `yaml:"signingKey,omitempty"`
	Disabled   []string `yaml:"disabled,omitempty"`
}

// AgentsConfig holds agent defaults and statically listed extra agents.
type AgentsConfig struct {
	DefaultModel string       `yaml:"defaultModel,omitempty"`
	Extra        []AgentEntry `yaml:"extra,omitempty"`
}

// AgentEntry describes an agent declared in the config file.
type AgentEntry struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Model        string   `yaml:"model,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Tools        []string `yaml:"tools,omitempty"`
}

// UIConfig controls per-session UI state containers.
type UIConfig struct {
	SessionCookie string `yaml:"sessionCookie,omitempty"`
	IdleMinutes   int    `yaml:"idleMinutes,omitempty"`
	MaxSessions   int    `yaml:"maxSessions,omitempty"` // least recently seen evicted beyond this
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
