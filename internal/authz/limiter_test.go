package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLimiter_Disabled(t *testing.T) {
	l := newFailureLimiter(0, 5)
	assert.Nil(t, l)
	l.RecordFailure("1.2.3.4:1", time.Now())
	assert.False(t, l.Blocked("1.2.3.4:1", time.Now()))
}

func TestFailureLimiter_BlocksAfterBurst(t *testing.T) {
	l := newFailureLimiter(6, 2)
	require.NotNil(t, l)
	now := time.Unix(1_700_000_000, 0)

	assert.False(t, l.Blocked("1.2.3.4:1", now))
	l.RecordFailure("1.2.3.4:1", now)
	assert.False(t, l.Blocked("1.2.3.4:2", now), "port does not matter")
	l.RecordFailure("1.2.3.4:3", now)
	assert.True(t, l.Blocked("1.2.3.4:4", now))

	// 6/min refills one token every 10s
	assert.True(t, l.Blocked("1.2.3.4:4", now.Add(5*time.Second)))
	assert.False(t, l.Blocked("1.2.3.4:4", now.Add(11*time.Second)))
}

func TestFailureLimiter_EvictsWhenFull(t *testing.T) {
	l := newFailureLimiter(60, 1)
	now := time.Unix(1_700_000_000, 0)

	l.byHost["old"] = &hostEntry{limiter: nil, lastSeen: now.Add(-time.Hour)}
	for i := 0; i < maxTrackedHosts-1; i++ {
		l.byHost[string(rune('a'+i%26))+time.Duration(i).String()] = &hostEntry{lastSeen: now}
	}
	require.Len(t, l.byHost, maxTrackedHosts)

	l.RecordFailure("9.9.9.9:1", now)
	assert.Len(t, l.byHost, maxTrackedHosts)
	_, stillThere := l.byHost["old"]
	assert.False(t, stillThere)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "10.0.0.1", hostOf("10.0.0.1:443"))
	assert.Equal(t, "::1", hostOf("[::1]:80"))
	assert.Equal(t, "pipe", hostOf("pipe"))
}
