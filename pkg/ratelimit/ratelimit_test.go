package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(s *Store, at *time.Time) {
	s.now = func() time.Time { return *at }
}

func TestStore_BurstThenDeny(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := PerSecond(1, 2)
	fixedClock(s, &now)

	assert.True(t, s.Allow("10.0.0.1"))
	assert.True(t, s.Allow("10.0.0.1"))
	assert.False(t, s.Allow("10.0.0.1"))
	assert.True(t, s.Allow("10.0.0.2"), "keys are independent")

	assert.Equal(t, time.Second, s.RetryAfter("10.0.0.1"))

	now = now.Add(time.Second)
	assert.True(t, s.Allow("10.0.0.1"))
}

func TestStore_PerMinute(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := PerMinute(3)
	fixedClock(s, &now)

	for i := 0; i < 3; i++ {
		assert.True(t, s.Allow("ip"))
	}
	assert.False(t, s.Allow("ip"))

	now = now.Add(20 * time.Second)
	assert.True(t, s.Allow("ip"))
}

func TestStore_PrunesIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := PerSecond(10, 10)
	fixedClock(s, &now)

	s.Allow("a")
	s.Allow("b")
	assert.Equal(t, 2, s.size())

	now = now.Add(2 * idleTTL)
	s.Allow("c")
	assert.Equal(t, 1, s.size())
}
