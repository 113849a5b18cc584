package chess

import (
	"errors"
	"fmt"
)

// ErrInvalidNotation is returned when square or move text cannot be parsed.
var ErrInvalidNotation = errors.New("invalid notation")

// Square indexes a cell on the board, a1=0 through h8=63.
// NoSquare marks the absence of a square, e.g. no en passant target.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses two-character algebraic notation such as "e4".
// Files accept either case; anything else is rejected.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	var file int
	switch {
	case s[0] >= 'a' && s[0] <= 'h':
		file = int(s[0] - 'a')
	case s[0] >= 'A' && s[0] <= 'H':
		file = int(s[0] - 'A')
	default:
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	if s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	return NewSquare(file, int(s[1]-'1')), nil
}

func (s Square) File() int {
	return int(s) % 8
}

func (s Square) Rank() int {
	return int(s) / 8
}

// Offset returns the square displaced by (df files, dr ranks), or false if the
// result leaves the board.
func (s Square) Offset(df, dr int) (Square, bool) {
	file := s.File() + df
	rank := s.Rank() + dr
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return NewSquare(file, rank), true
}

// Algebraic renders the square in lowercase algebraic notation.
func (s Square) Algebraic() string {
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}
