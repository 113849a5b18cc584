package model

import (
	"fmt"
	"strings"
	"time"
)

// MoveRecord is one played move: the coordinate notation, the position after
// it, and when it was played. The FEN snapshot is what persistence stores and
// what resuming a game replays from.
type MoveRecord struct {
	Number   int       `json:"number"`
	Notation string    `json:"notation"`
	FENAfter string    `json:"fenAfter"`
	PlayedAt time.Time `json:"playedAt"`
}

// MoveListText renders the history as a numbered move list, e.g.
// "1. e2e4 e7e5 2. g1f3".
func MoveListText(moves []MoveRecord) string {
	var sb strings.Builder
	for i, m := range moves {
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(m.Notation)
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}
