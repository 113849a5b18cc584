package chess

import "errors"

// ErrIllegalMove is returned by MakeMove when the move is not in the legal
// move set for the current position.
var ErrIllegalMove = errors.New("illegal move")

// applyUnchecked mutates the board with no legality checking. Callers must
// validate first. A move from an empty square is a no-op.
func (b *Board) applyUnchecked(m Move) {
	piece := b.At(m.From)
	if piece.Empty() {
		return
	}

	captured := b.At(m.To)
	isEnPassant := piece.Type == Pawn && m.To == b.EnPassant && b.EnPassant != NoSquare

	// En passant removes the pawn one rank behind the destination.
	if isEnPassant {
		behind := -1
		if piece.Color == Black {
			behind = 1
		}
		b.Set(NewSquare(m.To.File(), m.To.Rank()+behind), Piece{})
	}

	// A two-file king move is castling: relocate the rook as well.
	if piece.Type == King {
		if fileDiff := m.To.File() - m.From.File(); fileDiff == 2 || fileDiff == -2 {
			rank := m.From.Rank()
			if fileDiff > 0 {
				b.Set(NewSquare(5, rank), b.At(NewSquare(7, rank)))
				b.Set(NewSquare(7, rank), Piece{})
			} else {
				b.Set(NewSquare(3, rank), b.At(NewSquare(0, rank)))
				b.Set(NewSquare(0, rank), Piece{})
			}
		}
		b.Castling.clearColor(piece.Color)
	}

	// A rook leaving its home square forfeits that side's castling right.
	if piece.Type == Rook {
		homeRank := 0
		if piece.Color == Black {
			homeRank = 7
		}
		switch m.From {
		case NewSquare(0, homeRank):
			b.Castling.clearQueenside(piece.Color)
		case NewSquare(7, homeRank):
			b.Castling.clearKingside(piece.Color)
		}
	}

	// So does capturing a rook still on its home square.
	if captured.Type == Rook {
		homeRank := 0
		if captured.Color == Black {
			homeRank = 7
		}
		switch m.To {
		case NewSquare(0, homeRank):
			b.Castling.clearQueenside(captured.Color)
		case NewSquare(7, homeRank):
			b.Castling.clearKingside(captured.Color)
		}
	}

	b.EnPassant = NoSquare
	if piece.Type == Pawn {
		if rankDiff := m.To.Rank() - m.From.Rank(); rankDiff == 2 || rankDiff == -2 {
			b.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
		}
	}

	b.Set(m.From, Piece{})
	placed := piece
	if m.Promotion != NoPieceType {
		placed = NewPiece(m.Promotion, piece.Color)
	}
	b.Set(m.To, placed)

	if piece.Type == Pawn || !captured.Empty() || isEnPassant {
		b.HalfmoveClock = 0
	} else {
		b.HalfmoveClock++
	}
	if piece.Color == Black {
		b.FullmoveNumber++
	}
	b.SideToMove = piece.Color.Opposite()
}

// MakeMove validates the move against the legal move set, applies it, and
// reports what happened, including check, checkmate and stalemate for the new
// side to move. The board is unchanged when ErrIllegalMove is returned.
func (b *Board) MakeMove(m Move) (MoveResult, error) {
	if !b.IsLegal(m) {
		return MoveResult{}, ErrIllegalMove
	}

	piece := b.At(m.From)
	captured := b.At(m.To)
	isEnPassant := piece.Type == Pawn && m.To == b.EnPassant && b.EnPassant != NoSquare
	fileDiff := m.To.File() - m.From.File()
	isCastling := piece.Type == King && (fileDiff == 2 || fileDiff == -2)

	b.applyUnchecked(m)

	check := b.IsInCheck(b.SideToMove)
	noMoves := len(b.LegalMoves()) == 0

	return MoveResult{
		Capture:   !captured.Empty() || isEnPassant,
		Check:     check,
		Checkmate: check && noMoves,
		Stalemate: !check && noMoves,
		Castling:  isCastling,
		EnPassant: isEnPassant,
		Promotion: m.Promotion != NoPieceType,
		Captured:  captured,
	}, nil
}
