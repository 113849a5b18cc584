package model

import (
	"sync"
	"time"
)

// DefaultMoveLimit is how long the player to move has before forfeiting.
// Correspondence pacing, not a chess clock.
const DefaultMoveLimit = 72 * time.Hour

// TurnTimer tracks the forfeit deadline for the player to move. It restarts
// whenever a move is played.
type TurnTimer struct {
	mu       sync.Mutex
	limit    time.Duration
	deadline time.Time
	running  bool
}

func NewTurnTimer(limit time.Duration) *TurnTimer {
	if limit <= 0 {
		limit = DefaultMoveLimit
	}
	return &TurnTimer{limit: limit}
}

// Start arms the timer for the next move.
func (t *TurnTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deadline = time.Now().Add(t.limit)
	t.running = true
}

// Stop disarms the timer, e.g. when the game ends.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
}

// Expired reports whether the player to move has run out of time.
func (t *TurnTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.running && time.Now().After(t.deadline)
}

// Remaining returns the time left for the player to move, zero if expired or
// not running.
func (t *TurnTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return 0
	}
	if rem := time.Until(t.deadline); rem > 0 {
		return rem
	}
	return 0
}
