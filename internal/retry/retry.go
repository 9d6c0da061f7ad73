// Package retry provides the shared backoff state for cycle admission.
package retry

import (
	"sync"
	"time"
)

// Scheduler tracks exponential backoff across consecutive cycle failures.
// State is process-wide, not per-asset: any successful cycle resets it.
type Scheduler struct {
	mu      sync.Mutex
	base    time.Duration
	cap     time.Duration
	current time.Duration
}

// New creates a Scheduler. base is the first delay after a failure, cap the
// upper bound the delay doubles toward.
func New(base, cap time.Duration) *Scheduler {
	if base <= 0 {
		base = time.Second
	}
	if cap < base {
		cap = base
	}
	return &Scheduler{base: base, cap: cap}
}

// Failure records a failed attempt and returns the delay to wait before the
// next scheduled attempt.
func (s *Scheduler) Failure() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == 0 {
		s.current = s.base
	} else {
		s.current *= 2
		if s.current > s.cap {
			s.current = s.cap
		}
	}
	return s.current
}

// Success resets the backoff.
func (s *Scheduler) Success() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
}

// Current returns the active delay, zero when healthy.
func (s *Scheduler) Current() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
