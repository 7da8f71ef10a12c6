package strava

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRateLimiter_UpdateFromHeaders(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Usage", "34,512")
	h.Set("X-RateLimit-Limit", "100,1000")
	r.UpdateFromHeaders(h)

	short, daily := r.Usage()
	if short != 34 || daily != 512 {
		t.Errorf("Usage() = (%d, %d), want (34, 512)", short, daily)
	}
	shortRem, dailyRem := r.Status()
	if shortRem != 66 || dailyRem != 488 {
		t.Errorf("Status() = (%d, %d), want (66, 488)", shortRem, dailyRem)
	}

	// malformed headers leave state alone
	bad := http.Header{}
	bad.Set("X-RateLimit-Usage", "oops")
	r.UpdateFromHeaders(bad)
	if s, d := r.Usage(); s != 34 || d != 512 {
		t.Errorf("Usage() after bad header = (%d, %d)", s, d)
	}
}

func TestRateLimiter_WaitCountsRequests(t *testing.T) {
	r := NewRateLimiter()
	r.minInterval = 0

	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if s, d := r.Usage(); s != 3 || d != 3 {
		t.Errorf("Usage() = (%d, %d), want (3, 3)", s, d)
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter()
	r.short.usage = r.short.limit
	r.short.resetsAt = time.Now().Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in           string
		short, daily int
		ok           bool
	}{
		{"100,1000", 100, 1000, true},
		{"34, 512", 34, 512, true},
		{"", 0, 0, false},
		{"100", 0, 0, false},
		{"a,b", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, d, ok := parsePair(tt.in)
			if s != tt.short || d != tt.daily || ok != tt.ok {
				t.Errorf("parsePair(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.in, s, d, ok, tt.short, tt.daily, tt.ok)
			}
		})
	}
}
