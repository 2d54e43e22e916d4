package providers

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimit is a point-in-time copy of the upstream quota headers.
type RateLimit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Known     bool
}

// RateLimitState tracks x-rate-limit-* headers across calls. It is safe for
// concurrent use by the goroutines of one acquisition run.
type RateLimitState struct {
	mu      sync.Mutex
	current RateLimit
	// Margin is added to reset-based waits.
	Margin time.Duration
	// DefaultWait is used for a 429 when the reset time is unknown.
	DefaultWait time.Duration
}

// NewRateLimitState returns a state with the usual safety margin.
func NewRateLimitState() *RateLimitState {
	return &RateLimitState{Margin: 1500 * time.Millisecond, DefaultWait: 60 * time.Second}
}

// Update records any quota headers present in h. Missing or malformed
// headers keep the previous values.
func (s *RateLimitState) Update(h http.Header) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := headerInt(h, "x-rate-limit-limit"); ok {
		s.current.Limit = n
		s.current.Known = true
	}
	if n, ok := headerInt(h, "x-rate-limit-remaining"); ok {
		s.current.Remaining = n
		s.current.Known = true
	}
	if n, ok := headerInt(h, "x-rate-limit-reset"); ok {
		s.current.ResetAt = time.Unix(int64(n), 0)
		s.current.Known = true
	}
}

// Snapshot returns the last recorded quota.
func (s *RateLimitState) Snapshot() RateLimit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cooldown is the time to wait before the next call: positive only when the
// quota is exhausted and its reset lies in the future.
func (s *RateLimitState) Cooldown(now time.Time) time.Duration {
	rl := s.Snapshot()
	if !rl.Known || rl.Remaining > 0 || rl.ResetAt.IsZero() || !rl.ResetAt.After(now) {
		return 0
	}
	return rl.ResetAt.Sub(now) + s.Margin
}

// RetryAfter is the wait after a 429: until the recorded reset plus margin,
// at least one second, or DefaultWait when no reset is known.
func (s *RateLimitState) RetryAfter(now time.Time) time.Duration {
	rl := s.Snapshot()
	if rl.ResetAt.IsZero() {
		return s.DefaultWait
	}
	if d := rl.ResetAt.Sub(now) + s.Margin; d > time.Second {
		return d
	}
	return time.Second
}

func headerInt(h http.Header, key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
