package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envRef matches ${NAME} and ${NAME:-fallback}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvVars substitutes environment references. An unset variable
// without a fallback is left as written so the mistake stays visible.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v, ok := os.LookupEnv(m[1]); ok {
			return v
		}
		if strings.Contains(ref, ":-") {
			return m[2]
		}
		return ref
	})
}

// expandSecrets resolves env references in credentials only.
func expandSecrets(cfg *Config) {
	for i := range cfg.Auth.Tokens {
		cfg.Auth.Tokens[i].Token = expandEnvVars(cfg.Auth.Tokens[i].Token)
	}
	cfg.Workflows.SigningKey = expandEnvVars(cfg.Workflows.SigningKey)
}

// envOverrides are the SUITE_* variables that beat the config file.
var envOverrides = []struct {
	name  string
	apply func(cfg *Config, v string) error
}{
	{"SUITE_PORT", func(cfg *Config, v string) error {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not a port number: %q", v)
		}
		cfg.Server.Port = port
		return nil
	}},
	{"SUITE_BIND", func(cfg *Config, v string) error { cfg.Server.Bind = v; return nil }},
	{"SUITE_LOG_LEVEL", func(cfg *Config, v string) error { cfg.Logging.Level = strings.ToLower(v); return nil }},
	{"SUITE_DB_PATH", func(cfg *Config, v string) error { cfg.Store.Path = v; return nil }},
	{"SUITE_WORKFLOW_SIGNING_KEY", func(cfg *Config, v string) error { cfg.Workflows.SigningKey = v; return nil }},
	{"SUITE_METRICS", func(cfg *Config, v string) error {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		cfg.Server.Metrics = on
		return nil
	}},
}

func applyEnvOverrides(cfg *Config) error {
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return &ConfigError{Message: o.name + ": " + err.Error()}
		}
	}
	return nil
}

// Load reads the config file, fills defaults, then applies SUITE_*
// overrides and secret expansion. A missing file yields defaults. Unknown
// keys are rejected so typos don't silently fall back to defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Defaults(), fmt.Errorf("read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Defaults(), &ConfigError{Message: "parse " + path + ": " + err.Error()}
		}
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return Defaults(), err
	}
	expandSecrets(&cfg)
	return cfg, nil
}

// LoadRaw reads the file as an untyped tree for KeyPath edits. A missing
// file is an empty tree.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "parse " + path + ": " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes the tree back through a temp file and rename, so a
// crash never leaves a truncated config behind.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
