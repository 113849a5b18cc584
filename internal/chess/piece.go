package chess

// Color is the side a piece belongs to.
type Color int8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType enumerates the six piece kinds. The zero value NoPieceType marks
// an empty square, which keeps Piece usable as a dense array element.
type PieceType int8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceSymbols = [...]byte{NoPieceType: ' ', Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// Piece is a piece type plus color. The zero Piece is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

func NewPiece(t PieceType, c Color) Piece {
	return Piece{Type: t, Color: c}
}

func (p Piece) Empty() bool {
	return p.Type == NoPieceType
}

// Symbol returns the FEN character for the piece: uppercase for White,
// lowercase for Black.
func (p Piece) Symbol() byte {
	s := pieceSymbols[p.Type]
	if p.Color == White {
		s -= 'a' - 'A'
	}
	return s
}

func pieceFromSymbol(s byte) (Piece, bool) {
	color := Black
	if s >= 'A' && s <= 'Z' {
		color = White
		s += 'a' - 'A'
	}
	for t, sym := range pieceSymbols {
		if PieceType(t) != NoPieceType && sym == s {
			return Piece{Type: PieceType(t), Color: color}, true
		}
	}
	return Piece{}, false
}
