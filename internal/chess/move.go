package chess

import (
	"fmt"
	"strings"
)

// Move is a from/to square pair with an optional promotion piece. Promotion
// is only meaningful when the destination is the mover's back rank.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// ParseMove parses coordinate notation such as "e2e4" or "e7e8q". A fifth
// character selects the promotion piece; an unrecognized fifth character is
// ignored and the move parses as a plain non-promoting move.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}

	m := Move{From: from, To: to}
	if len(s) > 4 {
		switch s[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		}
	}
	return m, nil
}

// Algebraic renders the move in coordinate notation, with a promotion suffix
// when set.
func (m Move) Algebraic() string {
	s := m.From.Algebraic() + m.To.Algebraic()
	switch m.Promotion {
	case Queen:
		s += "q"
	case Rook:
		s += "r"
	case Bishop:
		s += "b"
	case Knight:
		s += "n"
	}
	return s
}

// MoveResult reports what a validated move did. Captured holds the piece that
// stood on the destination square; it is empty for en passant captures, where
// the captured pawn stood behind the destination.
type MoveResult struct {
	Capture   bool
	Check     bool
	Checkmate bool
	Stalemate bool
	Castling  bool
	EnPassant bool
	Promotion bool
	Captured  Piece
}
