package chess

// CastlingRights tracks the four castling permissions. Flags only ever get
// cleared during a game; they are re-set only by starting a new board.
type CastlingRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

func allCastlingRights() CastlingRights {
	return CastlingRights{
		WhiteKingside:  true,
		WhiteQueenside: true,
		BlackKingside:  true,
		BlackQueenside: true,
	}
}

func (cr CastlingRights) CanCastle(c Color, kingside bool) bool {
	switch {
	case c == White && kingside:
		return cr.WhiteKingside
	case c == White:
		return cr.WhiteQueenside
	case kingside:
		return cr.BlackKingside
	default:
		return cr.BlackQueenside
	}
}

func (cr *CastlingRights) clearColor(c Color) {
	if c == White {
		cr.WhiteKingside = false
		cr.WhiteQueenside = false
	} else {
		cr.BlackKingside = false
		cr.BlackQueenside = false
	}
}

func (cr *CastlingRights) clearKingside(c Color) {
	if c == White {
		cr.WhiteKingside = false
	} else {
		cr.BlackKingside = false
	}
}

func (cr *CastlingRights) clearQueenside(c Color) {
	if c == White {
		cr.WhiteQueenside = false
	} else {
		cr.BlackQueenside = false
	}
}

// Board is a full position: piece placement plus the side to move, castling
// rights, en passant target and move counters. It is a plain value; cloning
// for lookahead is a single array copy.
type Board struct {
	squares        [64]Piece
	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square // NoSquare when no target is set
	HalfmoveClock  int
	FullmoveNumber int
}

var backRankOrder = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := EmptyBoard()
	b.Castling = allCastlingRights()
	for file, t := range backRankOrder {
		b.Set(NewSquare(file, 0), NewPiece(t, White))
		b.Set(NewSquare(file, 1), NewPiece(Pawn, White))
		b.Set(NewSquare(file, 6), NewPiece(Pawn, Black))
		b.Set(NewSquare(file, 7), NewPiece(t, Black))
	}
	return b
}

// EmptyBoard returns a board with no pieces and no castling rights.
func EmptyBoard() *Board {
	return &Board{
		SideToMove:     White,
		EnPassant:      NoSquare,
		FullmoveNumber: 1,
	}
}

func (b *Board) At(sq Square) Piece {
	return b.squares[sq]
}

func (b *Board) Set(sq Square, p Piece) {
	b.squares[sq] = p
}

// FindKing locates the king of the given color. A missing king only occurs on
// malformed external positions; callers treat it as "not in check".
func (b *Board) FindKing(c Color) (Square, bool) {
	for sq := Square(0); sq < 64; sq++ {
		p := b.squares[sq]
		if p.Type == King && p.Color == c {
			return sq, true
		}
	}
	return NoSquare, false
}

// Clone returns an independent copy of the position.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}
