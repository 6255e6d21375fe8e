package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".suite"

// Paths holds resolved filesystem paths for suite data.
type Paths struct {
	Base   string // ~/.suite
	Config string // ~/.suite/config.yaml
	Data   string // ~/.suite/data
	Logs   string // ~/.suite/logs
}

// ResolvePaths computes all standard paths from the home directory.
// SUITE_HOME overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("SUITE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// DBPath returns the database location: the configured path if set,
// otherwise suite.db under the data directory.
func (p Paths) DBPath(cfg StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return filepath.Join(p.Data, "suite.db")
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
