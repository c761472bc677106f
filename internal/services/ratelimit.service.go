package services

import (
	"sync"
	"time"
)

const (
	RATE_LIMIT_WINDOW = time.Minute
	RATE_LIMIT_MAX    = 10
)

// RateLimitService is a process-scoped sliding-window limiter keyed by
// actor. State lives in memory and resets on restart; this is abuse
// mitigation, not a security boundary.
type RateLimitService struct {
	window   time.Duration
	max      int
	requests map[string][]time.Time
	mu       sync.Mutex
	now      func() time.Time
}

func NewRateLimitService() *RateLimitService {
	return &RateLimitService{
		window:   RATE_LIMIT_WINDOW,
		max:      RATE_LIMIT_MAX,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records one operation for the actor and reports whether it fits in
// the current window. Stale timestamps are pruned lazily on each check.
func (s *RateLimitService) Allow(actorKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	timestamps := s.requests[actorKey]
	for len(timestamps) > 0 && !timestamps[0].After(cutoff) {
		timestamps = timestamps[1:]
	}

	if len(timestamps) >= s.max {
		s.requests[actorKey] = timestamps
		return false
	}

	s.requests[actorKey] = append(timestamps, now)
	return true
}
