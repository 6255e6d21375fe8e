// Package notify fans notifications out to connected WebSocket subscribers
// and keeps a short per-user backlog.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
)

// ErrSubscriberClosed is returned when sending to a closed subscriber.
var ErrSubscriberClosed = errors.New("subscriber closed")

const (
	defaultBacklog = 50
	writeTimeout   = 10 * time.Second
)

// Frame is the JSON envelope written to sockets.
type Frame struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq"`
	Payload any    `json:"payload,omitempty"`
}

// Subscriber is one connected socket.
type Subscriber struct {
	ConnID      string
	UserID      string
	CompanyID   string
	ConnectedAt time.Time

	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func newSubscriber(conn *websocket.Conn, caller domain.Caller) *Subscriber {
	return &Subscriber{
		ConnID:      uuid.NewString(),
		UserID:      caller.UserID,
		CompanyID:   caller.CompanyID,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send writes a frame. Safe for concurrent use.
func (s *Subscriber) Send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSubscriberClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(f)
}

// Close closes the socket once.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *Subscriber) wants(n domain.Notification) bool {
	return s.UserID == n.UserID && (n.CompanyID == "" || s.CompanyID == n.CompanyID)
}

// Hub tracks subscribers and delivers notifications to them.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscriber
	backlog map[string][]domain.Notification // user -> newest last
	limit   int
	seq     atomic.Int64

	log     *logging.Logger
	hooks   hooks.Emitter
	metrics *metrics.Metrics
}

// Option configures a Hub.
type Option func(*Hub)

func WithHooks(e hooks.Emitter) Option     { return func(h *Hub) { h.hooks = e } }
func WithMetrics(m *metrics.Metrics) Option { return func(h *Hub) { h.metrics = m } }

// WithBacklog sets how many notifications are kept per user.
func WithBacklog(n int) Option { return func(h *Hub) { h.limit = n } }

// NewHub creates an empty hub.
func NewHub(log *logging.Logger, opts ...Option) *Hub {
	h := &Hub{
		subs:    make(map[string]*Subscriber),
		backlog: make(map[string][]domain.Notification),
		limit:   defaultBacklog,
		log:     log.Sub("notify"),
		hooks:   (*hooks.Manager)(nil),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Hub) add(s *Subscriber) {
	h.mu.Lock()
	h.subs[s.ConnID] = s
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetNotifySubscribers(n)
	h.log.Debug().Str("connId", s.ConnID).Str("user", s.UserID).Msg("subscriber connected")
}

func (h *Hub) remove(connID string) {
	h.mu.Lock()
	delete(h.subs, connID)
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetNotifySubscribers(n)
	h.log.Debug().Str("connId", connID).Msg("subscriber disconnected")
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify records n in the recipient's backlog and pushes it to each of
// their open sockets. Send failures are logged, not returned: the
// notification is already stored.
func (h *Hub) Notify(ctx context.Context, n domain.Notification) error {
	if n.UserID == "" {
		return errors.New("notification has no recipient")
	}

	h.mu.Lock()
	list := append(h.backlog[n.UserID], n)
	if len(list) > h.limit {
		list = list[len(list)-h.limit:]
	}
	h.backlog[n.UserID] = list
	targets := make([]*Subscriber, 0, 1)
	for _, s := range h.subs {
		if s.wants(n) {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	frame := Frame{Type: "notification", Seq: h.seq.Add(1), Payload: n}
	pushed := 0
	for _, s := range targets {
		if err := s.Send(frame); err != nil {
			h.log.Warn().Err(err).Str("connId", s.ConnID).Msg("notification send failed")
			continue
		}
		pushed++
	}

	h.metrics.NotificationSent()
	h.hooks.Emit(ctx, hooks.EventNotificationSent, map[string]any{
		"id":       n.ID,
		"workflow": n.WorkflowID,
		"user":     n.UserID,
		"company":  n.CompanyID,
		"sockets":  pushed,
	})
	return nil
}

// Recent returns the caller's backlog, newest first.
func (h *Hub) Recent(caller domain.Caller) []domain.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.backlog[caller.UserID]
	out := make([]domain.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		n := list[i]
		if n.CompanyID != "" && n.CompanyID != caller.CompanyID {
			continue
		}
		out = append(out, n)
	}
	return out
}

// CloseAll disconnects every subscriber.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]*Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	h.metrics.SetNotifySubscribers(0)
}
