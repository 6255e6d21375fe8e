// Package config loads and validates the suite configuration file.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort          = 18790
	DefaultSessionCookie = "suite_session"
	DefaultMaxUISessions = 10000
)

// Defaults returns a Config with defaults applied.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults fills zero-value fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = "loopback"
	}
	if cfg.Auth.RateLimit.PerMinute == 0 {
		cfg.Auth.RateLimit.PerMinute = 10
	}
	if cfg.Auth.RateLimit.Burst == 0 {
		cfg.Auth.RateLimit.Burst = 10
	}
	if cfg.UI.SessionCookie == "" {
		cfg.UI.SessionCookie = DefaultSessionCookie
	}
	if cfg.UI.IdleMinutes == 0 {
		cfg.UI.IdleMinutes = 60
	}
	if cfg.UI.MaxSessions == 0 {
		cfg.UI.MaxSessions = DefaultMaxUISessions
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}
