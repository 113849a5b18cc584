package chess

import "testing"

func mustBoard(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := FromFEN(fen)
	if err != nil {
		t.Fatalf("bad test FEN %q: %v", fen, err)
	}
	return b
}

func mustMove(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	if err != nil {
		t.Fatalf("bad test move %q: %v", s, err)
	}
	return m
}

func TestStartingPositionMoveCount(t *testing.T) {
	moves := NewBoard().LegalMoves()
	// 16 pawn moves plus 4 knight moves.
	if len(moves) != 20 {
		t.Errorf("expected 20 legal moves, got %d", len(moves))
	}
}

func TestKnightOnOpenBoard(t *testing.T) {
	b := mustBoard(t, "7k/8/8/4N3/8/8/8/K7 w - - 0 1")
	from, _ := ParseSquare("e5")

	count := 0
	for _, m := range b.LegalMoves() {
		if m.From == from {
			count++
		}
	}
	if count != 8 {
		t.Errorf("expected 8 knight moves from e5, got %d", count)
	}
}

func TestScholarsMateIsCheckmate(t *testing.T) {
	b := mustBoard(t, "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4")

	if !b.IsInCheck(Black) {
		t.Error("expected black to be in check")
	}
	if got := b.LegalMoves(); len(got) != 0 {
		t.Errorf("expected no legal moves, got %d", len(got))
	}
	if !b.IsCheckmate() {
		t.Error("expected checkmate")
	}
	if b.IsStalemate() {
		t.Error("checkmate misreported as stalemate")
	}
}

func TestCornerStalemate(t *testing.T) {
	b := mustBoard(t, "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1")

	if b.IsInCheck(Black) {
		t.Error("expected black not to be in check")
	}
	if got := b.LegalMoves(); len(got) != 0 {
		t.Errorf("expected no legal moves, got %d", len(got))
	}
	if !b.IsStalemate() {
		t.Error("expected stalemate")
	}
	if b.IsCheckmate() {
		t.Error("stalemate misreported as checkmate")
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// The e-file knight shields the white king from the black rook.
	b := mustBoard(t, "4r2k/8/8/8/4N3/8/8/4K3 w - - 0 1")
	from, _ := ParseSquare("e4")

	for _, m := range b.LegalMoves() {
		if m.From == from {
			t.Errorf("pinned knight should have no moves, got %s", m.Algebraic())
		}
	}
}

func TestMustEscapeCheck(t *testing.T) {
	// White king on e1 is checked by the rook on e8; only king steps off the
	// e-file are legal.
	b := mustBoard(t, "4r2k/8/8/8/8/8/8/3NK3 w - - 0 1")

	for _, m := range b.LegalMoves() {
		test := b.Clone()
		test.applyUnchecked(m)
		if test.IsInCheck(White) {
			t.Errorf("move %s leaves white in check", m.Algebraic())
		}
	}
}

func TestCastlingGeneration(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want bool
	}{
		{
			name: "kingside with open file",
			fen:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1",
			move: "e1g1",
			want: true,
		},
		{
			name: "queenside with open file",
			fen:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1",
			move: "e1c1",
			want: true,
		},
		{
			name: "transit square attacked",
			fen:  "r3k2r/pppppppp/8/8/2b5/8/PPPP1PPP/R3K2R w KQkq - 0 1",
			move: "e1g1",
			want: false,
		},
		{
			name: "king in check",
			fen:  "r3k2r/pppp1ppp/8/8/8/8/PPPP1PPP/4R1K1 b kq - 0 1",
			move: "e8g8",
			want: false,
		},
		{
			name: "no kingside right",
			fen:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w Qkq - 0 1",
			move: "e1g1",
			want: false,
		},
		{
			name: "intervening piece",
			fen:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3KB1R w KQkq - 0 1",
			move: "e1g1",
			want: false,
		},
		{
			name: "queenside rook path occupied",
			fen:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/RN2K2R w KQkq - 0 1",
			move: "e1c1",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.fen)
			if got := b.IsLegal(mustMove(t, tt.move)); got != tt.want {
				t.Errorf("IsLegal(%s)=%v, want %v", tt.move, got, tt.want)
			}
		})
	}
}

func TestIsSquareAttacked(t *testing.T) {
	b := mustBoard(t, "r3k2r/pppppppp/8/8/2b5/8/PPPP1PPP/R3K2R w KQkq - 0 1")

	f1, _ := ParseSquare("f1")
	if !b.IsSquareAttacked(f1, Black) {
		t.Error("f1 should be attacked by the bishop on c4")
	}
	a3, _ := ParseSquare("a3")
	if !b.IsSquareAttacked(a3, White) {
		t.Error("a3 should be attacked by the b2 pawn")
	}
	h5, _ := ParseSquare("h5")
	if b.IsSquareAttacked(h5, White) {
		t.Error("h5 should not be attacked by white")
	}
}

func TestPromotionMoveSet(t *testing.T) {
	b := mustBoard(t, "8/P7/8/8/8/8/8/4K2k w - - 0 1")
	from, _ := ParseSquare("a7")

	var promos []PieceType
	for _, m := range b.LegalMoves() {
		if m.From == from {
			promos = append(promos, m.Promotion)
		}
	}
	if len(promos) != 4 {
		t.Fatalf("expected 4 promotion moves, got %d", len(promos))
	}
	seen := map[PieceType]bool{}
	for _, p := range promos {
		seen[p] = true
	}
	for _, want := range []PieceType{Queen, Rook, Bishop, Knight} {
		if !seen[want] {
			t.Errorf("missing promotion to piece type %d", want)
		}
	}
}

func TestEnPassantGenerated(t *testing.T) {
	b := mustBoard(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if !b.IsLegal(mustMove(t, "e5d6")) {
		t.Error("en passant capture e5d6 should be legal")
	}
}
