package model

import (
	"testing"
	"time"
)

func TestTurnTimer(t *testing.T) {
	timer := NewTurnTimer(time.Hour)
	if timer.Expired() {
		t.Error("unstarted timer reports expired")
	}
	if timer.Remaining() != 0 {
		t.Errorf("unstarted remaining = %v, want 0", timer.Remaining())
	}

	timer.Start()
	if timer.Expired() {
		t.Error("fresh timer reports expired")
	}
	if rem := timer.Remaining(); rem <= 0 || rem > time.Hour {
		t.Errorf("remaining = %v, want within (0, 1h]", rem)
	}

	timer.Stop()
	if timer.Expired() {
		t.Error("stopped timer reports expired")
	}
}

func TestTurnTimerExpiry(t *testing.T) {
	timer := NewTurnTimer(time.Nanosecond)
	timer.Start()
	time.Sleep(time.Millisecond)
	if !timer.Expired() {
		t.Error("past-deadline timer not expired")
	}
	if timer.Remaining() != 0 {
		t.Errorf("expired remaining = %v, want 0", timer.Remaining())
	}
}

func TestTurnTimerDefaultLimit(t *testing.T) {
	timer := NewTurnTimer(0)
	timer.Start()
	if rem := timer.Remaining(); rem < DefaultMoveLimit-time.Minute {
		t.Errorf("remaining = %v, want about %v", rem, DefaultMoveLimit)
	}
}
