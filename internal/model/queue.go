package model

import (
	"errors"
	"sync"
	"time"
)

// QueuedPlayer is a player waiting for a match.
type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// Queue is the matchmaking waiting room. Pairing favors the longest-waiting
// player and the closest rating available for them.
type Queue struct {
	mu      sync.Mutex
	players []QueuedPlayer
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Add(p Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, qp := range q.players {
		if qp.Player.ID == p.ID {
			return errors.New("player already in queue")
		}
	}
	q.players = append(q.players, QueuedPlayer{Player: p, JoinedAt: time.Now()})
	return nil
}

func (q *Queue) Remove(playerID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, qp := range q.players {
		if qp.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return
		}
	}
}

// NextPair removes and returns two players to be matched: the head of the
// queue paired with whoever has the nearest ELO. ok is false with fewer than
// two queued players.
func (q *Queue) NextPair() (Player, Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.players) < 2 {
		return Player{}, Player{}, false
	}

	first := q.players[0].Player
	best := 1
	bestDiff := eloDiff(first, q.players[1].Player)
	for i := 2; i < len(q.players); i++ {
		if d := eloDiff(first, q.players[i].Player); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	second := q.players[best].Player

	q.players = append(q.players[:best], q.players[best+1:]...)
	q.players = q.players[1:]
	return first, second, true
}

func eloDiff(a, b Player) int {
	d := a.Elo - b.Elo
	if d < 0 {
		return -d
	}
	return d
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
