package chess

var (
	knightOffsets = [8][2]int{
		{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
		{1, -2}, {1, 2}, {2, -1}, {2, 1},
	}
	kingOffsets = [8][2]int{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
	diagonalDirs   = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	orthogonalDirs = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}
)

// LegalMoves returns every legal move for the side to move. Each pseudo-legal
// candidate is applied to a clone and kept only if the mover's king is not in
// check afterward, which covers both escaping check and pins in one rule.
func (b *Board) LegalMoves() []Move {
	pseudo := b.pseudoLegalMoves(b.SideToMove)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		test := b.Clone()
		test.applyUnchecked(m)
		if !test.IsInCheck(b.SideToMove) {
			legal = append(legal, m)
		}
	}
	return legal
}

// IsLegal reports whether the move is in the current legal move set.
func (b *Board) IsLegal(m Move) bool {
	for _, lm := range b.LegalMoves() {
		if lm == m {
			return true
		}
	}
	return false
}

func (b *Board) pseudoLegalMoves(c Color) []Move {
	var moves []Move
	for sq := Square(0); sq < 64; sq++ {
		p := b.At(sq)
		if p.Empty() || p.Color != c {
			continue
		}
		switch p.Type {
		case Pawn:
			moves = b.pawnMoves(sq, c, moves)
		case Knight:
			moves = b.offsetMoves(sq, c, knightOffsets, moves)
		case Bishop:
			moves = b.slidingMoves(sq, c, diagonalDirs, moves)
		case Rook:
			moves = b.slidingMoves(sq, c, orthogonalDirs, moves)
		case Queen:
			moves = b.slidingMoves(sq, c, diagonalDirs, moves)
			moves = b.slidingMoves(sq, c, orthogonalDirs, moves)
		case King:
			moves = b.kingMoves(sq, c, moves)
		}
	}
	return moves
}

// appendPawnMove fans a move landing on the far rank out into the four
// promotion choices.
func appendPawnMove(moves []Move, from, to Square, promotionRank int) []Move {
	if to.Rank() == promotionRank {
		for _, t := range promotionTypes {
			moves = append(moves, Move{From: from, To: to, Promotion: t})
		}
		return moves
	}
	return append(moves, NewMove(from, to))
}

func (b *Board) pawnMoves(from Square, c Color, moves []Move) []Move {
	dir, startRank, promotionRank := 1, 1, 7
	if c == Black {
		dir, startRank, promotionRank = -1, 6, 0
	}

	if to, ok := from.Offset(0, dir); ok && b.At(to).Empty() {
		moves = appendPawnMove(moves, from, to, promotionRank)
		if from.Rank() == startRank {
			if to2, ok := from.Offset(0, 2*dir); ok && b.At(to2).Empty() {
				moves = append(moves, NewMove(from, to2))
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := from.Offset(df, dir)
		if !ok {
			continue
		}
		target := b.At(to)
		if (!target.Empty() && target.Color != c) || to == b.EnPassant {
			moves = appendPawnMove(moves, from, to, promotionRank)
		}
	}
	return moves
}

func (b *Board) offsetMoves(from Square, c Color, offsets [8][2]int, moves []Move) []Move {
	for _, off := range offsets {
		to, ok := from.Offset(off[0], off[1])
		if !ok {
			continue
		}
		if target := b.At(to); target.Empty() || target.Color != c {
			moves = append(moves, NewMove(from, to))
		}
	}
	return moves
}

func (b *Board) slidingMoves(from Square, c Color, dirs [4][2]int, moves []Move) []Move {
	for _, dir := range dirs {
		cur := from
		for {
			to, ok := cur.Offset(dir[0], dir[1])
			if !ok {
				break
			}
			target := b.At(to)
			if target.Empty() {
				moves = append(moves, NewMove(from, to))
				cur = to
				continue
			}
			if target.Color != c {
				moves = append(moves, NewMove(from, to))
			}
			break
		}
	}
	return moves
}

func (b *Board) kingMoves(from Square, c Color, moves []Move) []Move {
	moves = b.offsetMoves(from, c, kingOffsets, moves)

	// Castling. The destination square's safety falls out of the legality
	// filter; the origin and transit squares are tested here.
	if b.IsInCheck(c) {
		return moves
	}
	rank := 0
	if c == Black {
		rank = 7
	}

	if b.Castling.CanCastle(c, true) {
		f, g := NewSquare(5, rank), NewSquare(6, rank)
		if b.At(f).Empty() && b.At(g).Empty() && !b.kingTransitAttacked(from, f, c) {
			moves = append(moves, NewMove(from, g))
		}
	}

	if b.Castling.CanCastle(c, false) {
		bSq, cSq, d := NewSquare(1, rank), NewSquare(2, rank), NewSquare(3, rank)
		if b.At(bSq).Empty() && b.At(cSq).Empty() && b.At(d).Empty() && !b.kingTransitAttacked(from, d, c) {
			moves = append(moves, NewMove(from, cSq))
		}
	}
	return moves
}

// kingTransitAttacked places the king on the square it castles across and
// reports whether it would be in check there.
func (b *Board) kingTransitAttacked(from, transit Square, c Color) bool {
	test := b.Clone()
	test.Set(from, Piece{})
	test.Set(transit, NewPiece(King, c))
	return test.IsInCheck(c)
}

// IsInCheck reports whether the given color's king is attacked.
func (b *Board) IsInCheck(c Color) bool {
	king, ok := b.FindKing(c)
	if !ok {
		return false
	}
	return b.IsSquareAttacked(king, c.Opposite())
}

// IsSquareAttacked reports whether any piece of byColor attacks the square.
// It is a pure geometric query, independent of whose turn it is.
func (b *Board) IsSquareAttacked(sq Square, byColor Color) bool {
	// Pawn attacks come from the rank the attacker stands on, so probe in
	// the direction opposite the attacker's push.
	pawnDir := -1
	if byColor == Black {
		pawnDir = 1
	}
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(df, pawnDir); ok {
			if p := b.At(from); p.Type == Pawn && p.Color == byColor {
				return true
			}
		}
	}

	for _, off := range knightOffsets {
		if from, ok := sq.Offset(off[0], off[1]); ok {
			if p := b.At(from); p.Type == Knight && p.Color == byColor {
				return true
			}
		}
	}

	for _, off := range kingOffsets {
		if from, ok := sq.Offset(off[0], off[1]); ok {
			if p := b.At(from); p.Type == King && p.Color == byColor {
				return true
			}
		}
	}

	if b.rayAttacked(sq, byColor, diagonalDirs, Bishop) {
		return true
	}
	return b.rayAttacked(sq, byColor, orthogonalDirs, Rook)
}

func (b *Board) rayAttacked(sq Square, byColor Color, dirs [4][2]int, slider PieceType) bool {
	for _, dir := range dirs {
		cur := sq
		for {
			next, ok := cur.Offset(dir[0], dir[1])
			if !ok {
				break
			}
			p := b.At(next)
			if !p.Empty() {
				if p.Color == byColor && (p.Type == slider || p.Type == Queen) {
					return true
				}
				break
			}
			cur = next
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (b *Board) IsCheckmate() bool {
	return b.IsInCheck(b.SideToMove) && len(b.LegalMoves()) == 0
}

// IsStalemate reports whether the side to move is stalemated.
func (b *Board) IsStalemate() bool {
	return !b.IsInCheck(b.SideToMove) && len(b.LegalMoves()) == 0
}
