package providers

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func quotaHeaders(limit, remaining string, reset time.Time) http.Header {
	h := http.Header{}
	if limit != "" {
		h.Set("x-rate-limit-limit", limit)
	}
	if remaining != "" {
		h.Set("x-rate-limit-remaining", remaining)
	}
	if !reset.IsZero() {
		h.Set("x-rate-limit-reset", strconv.FormatInt(reset.Unix(), 10))
	}
	return h
}

func TestRateLimitState_UpdateKeepsPreviousOnMissing(t *testing.T) {
	s := NewRateLimitState()
	s.Update(nil)
	if s.Snapshot().Known {
		t.Fatalf("nil headers should not mark state known")
	}
	s.Update(quotaHeaders("180", "5", now.Add(time.Minute)))
	s.Update(quotaHeaders("", "bogus", time.Time{}))
	rl := s.Snapshot()
	if rl.Limit != 180 || rl.Remaining != 5 || !rl.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("state = %+v", rl)
	}
}

func TestRateLimitState_Cooldown(t *testing.T) {
	s := NewRateLimitState()
	if s.Cooldown(now) != 0 {
		t.Fatalf("unknown state should not cool down")
	}
	s.Update(quotaHeaders("180", "0", now.Add(30*time.Second)))
	if got := s.Cooldown(now); got != 30*time.Second+s.Margin {
		t.Fatalf("Cooldown = %v", got)
	}
	if got := s.Cooldown(now.Add(time.Minute)); got != 0 {
		t.Fatalf("past reset should not cool down, got %v", got)
	}
	s.Update(quotaHeaders("", "3", time.Time{}))
	if got := s.Cooldown(now); got != 0 {
		t.Fatalf("remaining quota should not cool down, got %v", got)
	}
}

func TestRateLimitState_RetryAfter(t *testing.T) {
	s := NewRateLimitState()
	if got := s.RetryAfter(now); got != 60*time.Second {
		t.Fatalf("unknown reset wait = %v", got)
	}
	s.Update(quotaHeaders("", "", now.Add(10*time.Second)))
	if got := s.RetryAfter(now); got != 10*time.Second+1500*time.Millisecond {
		t.Fatalf("reset wait = %v", got)
	}
	if got := s.RetryAfter(now.Add(time.Hour)); got != time.Second {
		t.Fatalf("elapsed reset should floor at 1s, got %v", got)
	}
}
