// Package plugin runs optional server extensions that react to hook
// events. Extensions are registered explicitly at startup.
package plugin

import (
	"context"

	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
)

// Plugin is a server extension with a start/stop lifecycle.
type Plugin interface {
	// ID is unique within a registry, e.g. "audit".
	ID() string
	Name() string

	// Init subscribes to hooks and acquires resources.
	Init(ctx context.Context, api API) error

	// Close unsubscribes and releases resources.
	Close() error
}

// API is what a plugin receives at Init.
type API struct {
	Hooks *hooks.Manager
	Log   *logging.Logger
}
