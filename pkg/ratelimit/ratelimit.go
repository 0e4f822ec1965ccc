package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused key keeps its limiter.
const idleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store hands out one token bucket per key (normally the client IP).
type Store struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	entries   map[string]*entry
	lastPrune time.Time
}

func NewStore(limit rate.Limit, burst int) *Store {
	if burst <= 0 {
		burst = 1
	}
	return &Store{
		limit:   limit,
		burst:   burst,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// PerSecond builds a store allowing rps sustained requests per key.
func PerSecond(rps float64, burst int) *Store {
	return NewStore(rate.Limit(rps), burst)
}

// PerMinute builds a store allowing n requests per minute per key, all of
// which may arrive at once.
func PerMinute(n int) *Store {
	return NewStore(rate.Every(time.Minute/time.Duration(max(n, 1))), n)
}

// Allow reports whether one more request for key fits the budget.
func (s *Store) Allow(key string) bool {
	return s.get(key).AllowN(s.now(), 1)
}

// RetryAfter estimates how long key must wait for the next token.
func (s *Store) RetryAfter(key string) time.Duration {
	now := s.now()
	r := s.get(key).ReserveN(now, 1)
	if !r.OK() {
		return time.Second
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}

func (s *Store) Limit() rate.Limit {
	return s.limit
}

func (s *Store) Burst() int {
	return s.burst
}

func (s *Store) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastPrune) > idleTTL {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(s.entries, k)
			}
		}
		s.lastPrune = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
