package model

import "github.com/doorgames/chess-backend/internal/chess"

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func (c PlayerColor) Opposite() PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

func (c PlayerColor) BoardColor() chess.Color {
	if c == PlayerColorWhite {
		return chess.White
	}
	return chess.Black
}

func ColorOf(c chess.Color) PlayerColor {
	if c == chess.White {
		return PlayerColorWhite
	}
	return PlayerColorBlack
}

// Player identifies a participant and the rating they carried into a game.
type Player struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Elo    int    `json:"elo"`
}

// Seat is a player assignment within a game; an empty ID means the seat is
// open.
type Seat struct {
	Player
	Color PlayerColor `json:"color"`
}

func (s Seat) Occupied() bool {
	return s.ID != ""
}
