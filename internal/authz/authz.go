// Package authz resolves the caller behind a request and checks that it
// holds the capabilities a route requires.
package authz

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/domain"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/soyeahso/suite/internal/metrics"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrRateLimited     = errors.New("too many failed authentication attempts")
)

// DeniedError is returned when a permission check fails.
type DeniedError struct {
	Err        error // ErrUnauthenticated, ErrForbidden or ErrRateLimited
	Capability domain.Capability
	Reason     string
	// Caller is set when the token was valid but lacked Capability.
	Caller domain.Caller
}

func (e *DeniedError) Error() string {
	if e.Capability != (domain.Capability{}) {
		return fmt.Sprintf("%v: missing %s", e.Err, e.Capability)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return e.Err.Error()
}

func (e *DeniedError) Unwrap() error { return e.Err }

// StatusCode maps a denial to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type principal struct {
	token  string
	caller domain.Caller
}

// Authorizer checks bearer tokens against the configured principals.
type Authorizer struct {
	principals []principal
	limiter    *failureLimiter
	metrics    *metrics.Metrics
	log        *logging.Logger
	now        func() time.Time
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithMetrics records each decision on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authorizer) { a.metrics = m }
}

// New builds an Authorizer from the auth section of the config.
// Role capabilities are merged with a token's explicit permissions.
func New(cfg config.AuthConfig, log *logging.Logger, opts ...Option) (*Authorizer, error) {
	roles := make(map[string]domain.CapabilitySet, len(cfg.Roles))
	for name, raw := range cfg.Roles {
		set, err := domain.ParseCapabilitySet(raw)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", name, err)
		}
		roles[name] = set
	}

	a := &Authorizer{
		limiter: newFailureLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		log:     log.Sub("authz"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	for i, t := range cfg.Tokens {
		if t.Token == "" {
			return nil, fmt.Errorf("auth.tokens[%d]: empty token", i)
		}
		perms, err := domain.ParseCapabilitySet(t.Permissions)
		if err != nil {
			return nil, fmt.Errorf("auth.tokens[%d]: %w", i, err)
		}
		if t.Role != "" {
			set, ok := roles[t.Role]
			if !ok {
				return nil, fmt.Errorf("auth.tokens[%d]: unknown role %q", i, t.Role)
			}
			for c := range set {
				perms[c] = struct{}{}
			}
		}
		a.principals = append(a.principals, principal{
			token: t.Token,
			caller: domain.Caller{
				UserID:      t.UserID,
				CompanyID:   t.CompanyID,
				Role:        t.Role,
				Permissions: perms,
			},
		})
	}

	return a, nil
}

// Authenticate resolves the caller from the request credentials.
func (a *Authorizer) Authenticate(r *http.Request) (domain.Caller, error) {
	now := a.now()
	if a.limiter.Blocked(r.RemoteAddr, now) {
		a.metrics.AuthDecision("rate_limited")
		return domain.Caller{}, &DeniedError{Err: ErrRateLimited}
	}

	token := tokenFromRequest(r)
	if token == "" {
		a.limiter.RecordFailure(r.RemoteAddr, now)
		a.metrics.AuthDecision("unauthenticated")
		return domain.Caller{}, &DeniedError{Err: ErrUnauthenticated, Reason: "no credentials provided"}
	}

	caller, ok := a.lookup(token)
	if !ok {
		a.limiter.RecordFailure(r.RemoteAddr, now)
		a.metrics.AuthDecision("unauthenticated")
		a.log.Info().Str("remote", r.RemoteAddr).Str("token", logging.Fingerprint(token)).Msg("unknown token")
		return domain.Caller{}, &DeniedError{Err: ErrUnauthenticated, Reason: "invalid token"}
	}
	return caller, nil
}

// RequirePermissions authenticates the request and verifies the caller holds
// every capability. On failure the returned error is a *DeniedError.
func (a *Authorizer) RequirePermissions(r *http.Request, caps ...domain.Capability) (domain.Caller, error) {
	caller, err := a.Authenticate(r)
	if err != nil {
		return domain.Caller{}, err
	}

	if missing, ok := caller.Permissions.Missing(caps...); ok {
		a.metrics.AuthDecision("forbidden")
		a.log.Info().
			Str("user", caller.UserID).
			Str("company", caller.CompanyID).
			Str("capability", missing.String()).
			Str("path", r.URL.Path).
			Msg("permission denied")
		return domain.Caller{}, &DeniedError{Err: ErrForbidden, Capability: missing, Caller: caller}
	}

	a.metrics.AuthDecision("allowed")
	return caller, nil
}

// lookup compares against every principal so timing does not reveal
// which token matched.
func (a *Authorizer) lookup(token string) (domain.Caller, bool) {
	var (
		found domain.Caller
		hit   bool
	)
	for _, p := range a.principals {
		if safeEqual(token, p.token) {
			found, hit = p.caller, true
		}
	}
	return found, hit
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-Api-Key"))
}

// safeEqual performs a constant-time string comparison.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}

type callerKey struct{}

// WithCaller stores the authorized caller on the context.
func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}
