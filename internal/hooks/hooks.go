// Package hooks dispatches suite lifecycle events to registered handlers.
package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/soyeahso/suite/internal/logging"
)

// Event names emitted by the suite.
const (
	EventServerStart       = "server_start"
	EventServerStop        = "server_stop"
	EventAccessDenied      = "access_denied"
	EventWorkflowTriggered = "workflow_triggered"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
	EventNotificationSent  = "notification_sent"
	EventUIStateChanged    = "ui_state_changed"
	EventTrainingCompleted = "training_completed"
)

// AllEvents lists every event name.
var AllEvents = []string{
	EventServerStart,
	EventServerStop,
	EventAccessDenied,
	EventWorkflowTriggered,
	EventWorkflowCompleted,
	EventWorkflowFailed,
	EventNotificationSent,
	EventUIStateChanged,
	EventTrainingCompleted,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one event. A returned error (or panic) is logged and
// the remaining handlers still run.
type Handler func(ctx context.Context, p Payload) error

// Emitter is the narrow interface components depend on.
type Emitter interface {
	Emit(ctx context.Context, event string, data map[string]any)
}

// Manager holds hook registrations. A nil *Manager accepts Emit calls
// and drops them.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
	wg       sync.WaitGroup
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers handler for event under name.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes every handler registered for event under name.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.handlers[event][:0:0]
	for _, h := range m.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(m.handlers, event)
		return
	}
	m.handlers[event] = kept
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hs := make([]namedHandler, len(m.handlers[event]))
	copy(hs, m.handlers[event])
	return hs
}

// Emit runs the handlers for event in registration order.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	if m == nil {
		return
	}
	p := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		m.call(ctx, h, p)
	}
}

// EmitAsync runs each handler for event on its own goroutine and returns
// immediately. Wait blocks until they finish.
func (m *Manager) EmitAsync(ctx context.Context, event string, data map[string]any) {
	if m == nil {
		return
	}
	p := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.call(ctx, h, p)
		}()
	}
}

// Wait blocks until all EmitAsync handlers have returned.
func (m *Manager) Wait() {
	if m != nil {
		m.wg.Wait()
	}
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("event", p.Event).Str("handler", h.name).
				Err(fmt.Errorf("panic: %v", r)).Msg("hook handler panicked")
		}
	}()
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().Err(err).Str("event", p.Event).Str("handler", h.name).Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the events with at least one handler, sorted.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event := range m.handlers {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}
