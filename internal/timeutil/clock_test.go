package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}
	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("Now() without a step moved to %v", got)
	}

	clock.Advance(time.Minute)
	if d := clock.Since(start); d != time.Minute {
		t.Errorf("Since() = %v, want 1m", d)
	}

	clock.Set(start)
	clock.SetStep(time.Second)
	first, second := clock.Now(), clock.Now()
	if second.Sub(first) != time.Second {
		t.Errorf("stepped Now() calls %v apart, want 1s", second.Sub(first))
	}
	if d := clock.Since(start); d != 2*time.Second {
		t.Errorf("Since() = %v after two steps, want 2s", d)
	}
}
