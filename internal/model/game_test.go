package model

import (
	"errors"
	"testing"

	"github.com/doorgames/chess-backend/internal/chess"
)

func newStartedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", Matchmaking{Mode: MatchOpen})
	if _, err := g.AddPlayer(Player{ID: "w", Handle: "white", Elo: 1200}); err != nil {
		t.Fatalf("seat white: %v", err)
	}
	if _, err := g.AddPlayer(Player{ID: "b", Handle: "black", Elo: 1200}); err != nil {
		t.Fatalf("seat black: %v", err)
	}
	return g
}

func move(t *testing.T, g *Game, playerID, notation string) chess.MoveResult {
	t.Helper()
	mv, err := chess.ParseMove(notation)
	if err != nil {
		t.Fatalf("parse %q: %v", notation, err)
	}
	result, err := g.MakeMove(playerID, mv)
	if err != nil {
		t.Fatalf("move %s by %s: %v", notation, playerID, err)
	}
	return result
}

func TestAddPlayerSeating(t *testing.T) {
	g := NewGame("g1", Matchmaking{Mode: MatchOpen})

	color, err := g.AddPlayer(Player{ID: "w"})
	if err != nil {
		t.Fatalf("first AddPlayer: %v", err)
	}
	if color != PlayerColorWhite {
		t.Errorf("first seat = %s, want white", color)
	}
	if status, _ := g.Status(); status != StatusWaiting {
		t.Errorf("status = %s, want waiting", status)
	}

	if _, err := g.AddPlayer(Player{ID: "w"}); !errors.Is(err, ErrJoinNotAllowed) {
		t.Errorf("self-join err = %v, want ErrJoinNotAllowed", err)
	}

	color, err = g.AddPlayer(Player{ID: "b"})
	if err != nil {
		t.Fatalf("second AddPlayer: %v", err)
	}
	if color != PlayerColorBlack {
		t.Errorf("second seat = %s, want black", color)
	}
	if status, _ := g.Status(); status != StatusInProgress {
		t.Errorf("status = %s, want in_progress", status)
	}

	if _, err := g.AddPlayer(Player{ID: "c"}); !errors.Is(err, ErrGameFull) {
		t.Errorf("third AddPlayer err = %v, want ErrGameFull", err)
	}
}

func TestAddPlayerEloBand(t *testing.T) {
	g := NewGame("g1", Matchmaking{Mode: MatchElo, MinElo: 1400, MaxElo: 1600})
	if _, err := g.AddPlayer(Player{ID: "w", Elo: 1500}); err != nil {
		t.Fatalf("seat white: %v", err)
	}
	if _, err := g.AddPlayer(Player{ID: "b", Elo: 1200}); !errors.Is(err, ErrJoinNotAllowed) {
		t.Errorf("out-of-band join err = %v, want ErrJoinNotAllowed", err)
	}
	if _, err := g.AddPlayer(Player{ID: "b", Elo: 1550}); err != nil {
		t.Errorf("in-band join err = %v, want nil", err)
	}
}

func TestMakeMoveTurnOrder(t *testing.T) {
	g := newStartedGame(t)

	mv, _ := chess.ParseMove("e7e5")
	if _, err := g.MakeMove("b", mv); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("black moving first err = %v, want ErrNotYourTurn", err)
	}
	mv, _ = chess.ParseMove("e2e4")
	if _, err := g.MakeMove("stranger", mv); !errors.Is(err, ErrNotInGame) {
		t.Errorf("stranger move err = %v, want ErrNotInGame", err)
	}

	move(t, g, "w", "e2e4")
	move(t, g, "b", "e7e5")

	moves := g.Moves()
	if len(moves) != 2 || moves[0].Notation != "e2e4" || moves[1].Notation != "e7e5" {
		t.Errorf("history = %+v, want e2e4 then e7e5", moves)
	}
	if moves[1].Number != 2 {
		t.Errorf("second move number = %d, want 2", moves[1].Number)
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	g := newStartedGame(t)
	move(t, g, "w", "f2f3")
	move(t, g, "b", "e7e5")
	move(t, g, "w", "g2g4")
	result := move(t, g, "b", "d8h4")

	if !result.Checkmate {
		t.Fatal("mating move not flagged as checkmate")
	}
	status, winner := g.Status()
	if status != StatusCheckmate {
		t.Errorf("status = %s, want checkmate", status)
	}
	if winner == nil || *winner != PlayerColorBlack {
		t.Errorf("winner = %v, want black", winner)
	}

	mv, _ := chess.ParseMove("e2e4")
	if _, err := g.MakeMove("w", mv); !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("move after mate err = %v, want ErrGameNotInProgress", err)
	}
}

func TestResign(t *testing.T) {
	g := newStartedGame(t)
	if err := g.Resign("stranger"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("stranger resign err = %v, want ErrNotInGame", err)
	}
	if err := g.Resign("b"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	status, winner := g.Status()
	if status != StatusResigned || winner == nil || *winner != PlayerColorWhite {
		t.Errorf("after resign: %s/%v, want resigned won by white", status, winner)
	}
}

func TestDrawOfferLifecycle(t *testing.T) {
	g := newStartedGame(t)

	if err := g.AcceptDraw("w"); !errors.Is(err, ErrNoDrawOffer) {
		t.Errorf("accept without offer err = %v, want ErrNoDrawOffer", err)
	}

	agreed, err := g.OfferDraw("w")
	if err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if agreed {
		t.Error("single offer reported agreement")
	}
	// A move withdraws the standing offer.
	move(t, g, "w", "e2e4")
	if err := g.AcceptDraw("b"); !errors.Is(err, ErrNoDrawOffer) {
		t.Errorf("accept after move err = %v, want ErrNoDrawOffer", err)
	}

	if _, err := g.OfferDraw("b"); err != nil {
		t.Fatalf("OfferDraw black: %v", err)
	}
	agreed, err = g.OfferDraw("w")
	if err != nil {
		t.Fatalf("OfferDraw white: %v", err)
	}
	if !agreed {
		t.Error("mutual offers did not end the game")
	}
	status, winner := g.Status()
	if status != StatusDrawAgreed || winner != nil {
		t.Errorf("after agreement: %s/%v, want draw_agreed with no winner", status, winner)
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	// One reversible move away from the hundredth halfmove.
	g, err := RestoreGame("g1",
		"4k3/8/8/8/8/8/8/4K2R w - - 99 80",
		Seat{Player: Player{ID: "w"}},
		Seat{Player: Player{ID: "b"}},
		StatusInProgress, Matchmaking{Mode: MatchOpen}, nil)
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	move(t, g, "w", "h1h2")

	status, winner := g.Status()
	if status != StatusDrawFiftyMoves || winner != nil {
		t.Errorf("after 100th halfmove: %s/%v, want draw_fifty_moves", status, winner)
	}
}

func TestStateSnapshot(t *testing.T) {
	g := newStartedGame(t)
	move(t, g, "w", "e2e4")

	state := g.State()
	if state.ToMove != PlayerColorBlack {
		t.Errorf("to move = %s, want black", state.ToMove)
	}
	if state.White.Handle != "white" || state.Black.Handle != "black" {
		t.Errorf("seats = %+v / %+v", state.White, state.Black)
	}
	if len(state.MoveHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(state.MoveHistory))
	}
	if len(state.LegalMoves) != 20 {
		t.Errorf("black has %d replies, want 20", len(state.LegalMoves))
	}
	if state.IsCheck {
		t.Error("quiet position flagged as check")
	}
}

func TestSpectatorGate(t *testing.T) {
	g := NewGame("g1", Matchmaking{Mode: MatchOpen})
	if _, err := g.AddPlayer(Player{ID: "w"}); err != nil {
		t.Fatalf("seat white: %v", err)
	}
	if g.CanSpectate() {
		t.Error("waiting game open to spectators")
	}
	if _, err := g.AddPlayer(Player{ID: "b"}); err != nil {
		t.Fatalf("seat black: %v", err)
	}
	if !g.CanSpectate() {
		t.Error("running game closed to spectators")
	}
}
