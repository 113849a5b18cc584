package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is returned when a FEN string cannot be parsed.
var ErrInvalidFEN = errors.New("invalid FEN")

// FromFEN parses a FEN string. The halfmove clock and fullmove number fields
// are optional and default to 0 and 1. For any syntactically valid, reachable
// six-field FEN s, FromFEN(s).FEN() == s.
func FromFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}

	b := EmptyBoard()

	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}
	for i, row := range rows {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p, ok := pieceFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, string(ch))
			}
			if file > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			b.Set(NewSquare(file, rank), p)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				b.Castling.WhiteKingside = true
			case 'Q':
				b.Castling.WhiteQueenside = true
			case 'k':
				b.Castling.BlackKingside = true
			case 'q':
				b.Castling.BlackQueenside = true
			default:
				return nil, fmt.Errorf("%w: bad castling rights %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: bad en passant target %q", ErrInvalidFEN, fields[3])
		}
		b.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrInvalidFEN, fields[4])
		}
		b.HalfmoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: bad fullmove number %q", ErrInvalidFEN, fields[5])
		}
		b.FullmoveNumber = n
	}

	return b, nil
}

// FEN serializes the position as a six-field FEN string.
func (b *Board) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.At(NewSquare(file, rank))
			if p.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	castling := ""
	if b.Castling.WhiteKingside {
		castling += "K"
	}
	if b.Castling.WhiteQueenside {
		castling += "Q"
	}
	if b.Castling.BlackKingside {
		castling += "k"
	}
	if b.Castling.BlackQueenside {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	sb.WriteByte(' ')
	if b.EnPassant == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(b.EnPassant.Algebraic())
	}

	fmt.Fprintf(&sb, " %d %d", b.HalfmoveClock, b.FullmoveNumber)

	return sb.String()
}
