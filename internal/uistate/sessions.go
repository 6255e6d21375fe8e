package uistate

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
)

type storeKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store injected by Sessions.Middleware.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions maps session cookies to stores. A request without a known
// cookie gets a new session and therefore a fresh, closed store.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]*session
	cookie string
	idle   time.Duration
	max    int
	secure bool
	now    func() time.Time

	log     *logging.Logger
	hooks   hooks.Emitter
	metrics *metrics.Metrics
}

// Option configures Sessions.
type Option func(*Sessions)

func WithHooks(e hooks.Emitter) Option     { return func(s *Sessions) { s.hooks = e } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Sessions) { s.metrics = m } }

// WithSecureCookie marks the session cookie Secure (TLS listeners).
func WithSecureCookie() Option { return func(s *Sessions) { s.secure = true } }

// NewSessions creates an empty container.
func NewSessions(cfg config.UIConfig, log *logging.Logger, opts ...Option) *Sessions {
	s := &Sessions{
		byID:   make(map[string]*session),
		cookie: cfg.SessionCookie,
		idle:   time.Duration(cfg.IdleMinutes) * time.Minute,
		max:    cfg.MaxSessions,
		now:    time.Now,
		log:    log.Sub("uistate"),
		hooks:  (*hooks.Manager)(nil),
	}
	if s.cookie == "" {
		s.cookie = config.DefaultSessionCookie
	}
	if s.max <= 0 {
		s.max = config.DefaultMaxUISessions
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Get returns the store for id and marks it used.
func (s *Sessions) Get(id string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.store, true
}

// Create starts a session with a fresh store. At capacity the least
// recently seen session is dropped first.
func (s *Sessions) Create() (string, *Store) {
	id := uuid.NewString()
	st := NewStore()
	st.Subscribe(func(state State) {
		s.hooks.Emit(context.Background(), hooks.EventUIStateChanged, map[string]any{
			"session":           id,
			"isSearchModalOpen": state.IsSearchModalOpen,
		})
	})

	s.mu.Lock()
	evicted := ""
	if len(s.byID) >= s.max {
		evicted = s.evictOldest()
	}
	s.byID[id] = &session{store: st, lastSeen: s.now()}
	n := len(s.byID)
	s.mu.Unlock()

	s.metrics.SetUISessions(n)
	if evicted != "" {
		s.log.Debug().Str("session", evicted).Int("max", s.max).Msg("ui session evicted")
	}
	s.log.Debug().Str("session", id).Msg("ui session created")
	return id, st
}

// evictOldest drops the least recently seen session. Callers hold s.mu.
func (s *Sessions) evictOldest() string {
	var (
		oldest     string
		oldestSeen time.Time
	)
	for id, sess := range s.byID {
		if oldest == "" || sess.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = id, sess.lastSeen
		}
	}
	delete(s.byID, oldest)
	return oldest
}

// Sweep drops sessions idle longer than the configured timeout and
// returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			removed++
		}
	}
	n := len(s.byID)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.SetUISessions(n)
		s.log.Debug().Int("removed", removed).Int("live", n).Msg("ui sessions expired")
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	if s.idle <= 0 {
		return
	}
	t := time.NewTicker(s.idle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Middleware resolves the session cookie, creating a session when needed,
// and injects its store into the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var st *Store
		if c, err := r.Cookie(s.cookie); err == nil {
			st, _ = s.Get(c.Value)
		}
		if st == nil {
			var id string
			id, st = s.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), st)))
	})
}
