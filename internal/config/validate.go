package config

import (
	"fmt"
	"slices"

	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/logging"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		add("server.port", "port must be 0-65535, got %d", cfg.Server.Port)
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		add("server.bind", "must be one of %v, got %q", validBinds, cfg.Server.Bind)
	}
	if cfg.Server.TLS.Enabled && (cfg.Server.TLS.CertPath == "" || cfg.Server.TLS.KeyPath == "") {
		add("server.tls", "certPath and keyPath are required when TLS is enabled")
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		add("logging.level", "must be one of %v, got %q", logging.Levels, cfg.Logging.Level)
	}
	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle)
	}

	for role, caps := range cfg.Auth.Roles {
		for _, c := range caps {
			if _, err := domain.ParseCapability(c); err != nil {
				add("auth.roles."+role, "%v", err)
			}
		}
	}

	seen := make(map[string]int)
	for i, tok := range cfg.Auth.Tokens {
		path := fmt.Sprintf("auth.tokens[%d]", i)
		if tok.Token == "" {
			add(path+".token", "token is required")
		} else if prev, dup := seen[tok.Token]; dup {
			add(path+".token", "duplicate of auth.tokens[%d]", prev)
		} else {
			seen[tok.Token] = i
		}
		if tok.UserID == "" {
			add(path+".userId", "userId is required")
		}
		if tok.CompanyID == "" {
			add(path+".companyId", "companyId is required")
		}
		if tok.Role != "" {
			if _, ok := cfg.Auth.Roles[tok.Role]; !ok {
				add(path+".role", "unknown role %q", tok.Role)
			}
		}
		for _, c := range tok.Permissions {
			if _, err := domain.ParseCapability(c); err != nil {
				add(path+".permissions", "%v", err)
			}
		}
	}

	if cfg.Auth.RateLimit.PerMinute < 0 {
		add("auth.rateLimit.perMinute", "must not be negative")
	}
	if cfg.Auth.RateLimit.Burst < 0 {
		add("auth.rateLimit.burst", "must not be negative")
	}

	for i, a := range cfg.Agents.Extra {
		if a.Name == "" {
			add(fmt.Sprintf("agents.extra[%d].name", i), "name is required")
		}
	}

	if cfg.UI.IdleMinutes < 0 {
		add("ui.idleMinutes", "must not be negative")
	}
	if cfg.UI.MaxSessions < 0 {
		add("ui.maxSessions", "must not be negative")
	}

	return issues
}
