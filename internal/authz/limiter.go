package authz

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// failureLimiter keeps one token bucket per remote host. Only failed
// authentications draw from the bucket; an empty bucket blocks the host.
type failureLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	byHost map[string]*hostEntry
	hits   uint64
}

type hostEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const maxTrackedHosts = 10000

// newFailureLimiter returns nil (no limiting) when perMinute or burst is zero.
func newFailureLimiter(perMinute float64, burst int) *failureLimiter {
	if perMinute <= 0 || burst <= 0 {
		return nil
	}
	return &failureLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		byHost:  make(map[string]*hostEntry),
	}
}

// Blocked reports whether the host has exhausted its failure budget.
func (l *failureLimiter) Blocked(remoteAddr string, now time.Time) bool {
	if l == nil {
		return false
	}
	host := hostOf(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byHost[host]
	if !ok {
		return false
	}
	return e.limiter.TokensAt(now) < 1
}

// RecordFailure draws one token for the host.
func (l *failureLimiter) RecordFailure(remoteAddr string, now time.Time) {
	if l == nil {
		return
	}
	host := hostOf(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byHost[host]
	if !ok {
		if len(l.byHost) >= maxTrackedHosts {
			l.evictOldest()
		}
		e = &hostEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byHost[host] = e
	}
	e.lastSeen = now
	e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byHost {
			if v.lastSeen.Before(cutoff) {
				delete(l.byHost, k)
			}
		}
	}
}

func (l *failureLimiter) evictOldest() {
	var (
		oldest     string
		oldestSeen time.Time
	)
	for host, e := range l.byHost {
		if oldest == "" || e.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = host, e.lastSeen
		}
	}
	delete(l.byHost, oldest)
}

func hostOf(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil || host == "" {
		return remoteAddr
	}
	return host
}
