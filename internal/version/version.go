// Package version carries build metadata stamped in via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/soyeahso/suite/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/suite/internal/version.Commit=abc123
//	  -X github.com/soyeahso/suite/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the JSON shape served by the status endpoint.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Runtime string `json:"runtime"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("suite %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// Build returns the build metadata as a struct.
func Build() BuildInfo {
	return BuildInfo{
		Version: Version,
		Commit:  short(Commit),
		Date:    Date,
		Runtime: runtime.Version(),
	}
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
