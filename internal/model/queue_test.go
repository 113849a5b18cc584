package model

import "testing"

func TestQueueAddAndRemove(t *testing.T) {
	q := NewQueue()
	if err := q.Add(Player{ID: "a", Elo: 1200}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := q.Add(Player{ID: "a", Elo: 1200}); err == nil {
		t.Error("duplicate Add succeeded")
	}
	if q.Size() != 1 {
		t.Errorf("size = %d, want 1", q.Size())
	}
	q.Remove("a")
	if q.Size() != 0 {
		t.Errorf("size after remove = %d, want 0", q.Size())
	}
	// Removing an absent player is a no-op.
	q.Remove("ghost")
}

func TestNextPairNeedsTwo(t *testing.T) {
	q := NewQueue()
	if _, _, ok := q.NextPair(); ok {
		t.Error("empty queue produced a pair")
	}
	q.Add(Player{ID: "a"})
	if _, _, ok := q.NextPair(); ok {
		t.Error("single-player queue produced a pair")
	}
	if q.Size() != 1 {
		t.Errorf("failed pairing drained the queue, size = %d", q.Size())
	}
}

func TestNextPairPrefersClosestRating(t *testing.T) {
	q := NewQueue()
	q.Add(Player{ID: "a", Elo: 1200})
	q.Add(Player{ID: "b", Elo: 1800})
	q.Add(Player{ID: "c", Elo: 1250})
	q.Add(Player{ID: "d", Elo: 1795})

	p1, p2, ok := q.NextPair()
	if !ok {
		t.Fatal("NextPair found no pair")
	}
	if p1.ID != "a" || p2.ID != "c" {
		t.Errorf("pair = %s/%s, want a/c", p1.ID, p2.ID)
	}

	p1, p2, ok = q.NextPair()
	if !ok {
		t.Fatal("second NextPair found no pair")
	}
	if p1.ID != "b" || p2.ID != "d" {
		t.Errorf("pair = %s/%s, want b/d", p1.ID, p2.ID)
	}
	if q.Size() != 0 {
		t.Errorf("queue size = %d, want 0", q.Size())
	}
}
