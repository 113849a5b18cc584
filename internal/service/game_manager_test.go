package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/doorgames/chess-backend/internal/model"
	"github.com/doorgames/chess-backend/internal/store"
	"github.com/doorgames/chess-backend/internal/ws"
)

func mustParse(t *testing.T, notation string) chess.Move {
	t.Helper()
	mv, err := chess.ParseMove(notation)
	if err != nil {
		t.Fatalf("parse move %q: %v", notation, err)
	}
	return mv
}

func newTestManager(t *testing.T) (*GameManager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "chess.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gm := NewGameManager(st, log)
	t.Cleanup(func() {
		gm.Close()
		st.Close()
	})
	return gm, st
}

func TestCreateAndJoinGame(t *testing.T) {
	gm, _ := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	state, err := gm.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.Status != model.StatusWaiting {
		t.Errorf("status = %s, want waiting", state.Status)
	}

	// The creator cannot take the second seat.
	if _, err := gm.JoinGame(ctx, gameID, "alice", "alice"); !errors.Is(err, model.ErrJoinNotAllowed) {
		t.Errorf("self-join err = %v, want ErrJoinNotAllowed", err)
	}

	color, err := gm.JoinGame(ctx, gameID, "bob", "bob")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if color != model.PlayerColorBlack {
		t.Errorf("joiner color = %s, want black", color)
	}

	state, err = gm.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState after join: %v", err)
	}
	if state.Status != model.StatusInProgress {
		t.Errorf("status = %s, want in_progress", state.Status)
	}
	if len(state.LegalMoves) != 20 {
		t.Errorf("opening position has %d legal moves, want 20", len(state.LegalMoves))
	}
}

func TestEloGateOnJoin(t *testing.T) {
	gm, st := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{
		Mode:   model.MatchElo,
		MinElo: 1400,
		MaxElo: 1600,
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	// New players start at 1200, outside the band.
	if _, err := gm.JoinGame(ctx, gameID, "bob", "bob"); !errors.Is(err, model.ErrJoinNotAllowed) {
		t.Errorf("out-of-band join err = %v, want ErrJoinNotAllowed", err)
	}

	if _, err := st.GetOrCreatePlayer(ctx, "carol", "carol"); err != nil {
		t.Fatalf("seed carol: %v", err)
	}
	if err := st.ApplyResult(ctx, "carol", 1500, store.OutcomeWin); err != nil {
		t.Fatalf("rate carol: %v", err)
	}
	if _, err := gm.JoinGame(ctx, gameID, "carol", "carol"); err != nil {
		t.Errorf("in-band join err = %v, want nil", err)
	}
}

func TestMoveSurvivesRestart(t *testing.T) {
	gm, st := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gm.JoinGame(ctx, gameID, "bob", "bob"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if _, err := gm.MakeMove(ctx, gameID, "alice", mustParse(t, "e2e4")); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}

	// A second manager over the same store resumes the game.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gm2 := NewGameManager(st, log)
	defer gm2.Close()

	state, err := gm2.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("resume GetGameState: %v", err)
	}
	if state.ToMove != model.PlayerColorBlack {
		t.Errorf("resumed side to move = %s, want black", state.ToMove)
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].Notation != "e2e4" {
		t.Errorf("resumed history = %+v, want single e2e4", state.MoveHistory)
	}
	if _, err := gm2.MakeMove(ctx, gameID, "bob", mustParse(t, "e7e5")); err != nil {
		t.Errorf("move on resumed game: %v", err)
	}
}

func TestResignSettlesRatings(t *testing.T) {
	gm, st := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gm.JoinGame(ctx, gameID, "bob", "bob"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if err := gm.Resign(ctx, gameID, "alice"); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	state, err := gm.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.Status != model.StatusResigned {
		t.Errorf("status = %s, want resigned", state.Status)
	}
	if state.Winner == nil || *state.Winner != model.PlayerColorBlack {
		t.Errorf("winner = %v, want black", state.Winner)
	}

	alice, err := st.GetPlayer(ctx, "alice")
	if err != nil {
		t.Fatalf("GetPlayer alice: %v", err)
	}
	bob, err := st.GetPlayer(ctx, "bob")
	if err != nil {
		t.Fatalf("GetPlayer bob: %v", err)
	}
	if alice.Elo != 1184 || alice.Losses != 1 {
		t.Errorf("alice = elo %d losses %d, want 1184/1", alice.Elo, alice.Losses)
	}
	if bob.Elo != 1216 || bob.Wins != 1 {
		t.Errorf("bob = elo %d wins %d, want 1216/1", bob.Elo, bob.Wins)
	}
}

func TestDrawAgreement(t *testing.T) {
	gm, _ := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gm.JoinGame(ctx, gameID, "bob", "bob"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	if err := gm.AcceptDraw(ctx, gameID, "bob"); !errors.Is(err, model.ErrNoDrawOffer) {
		t.Errorf("accept without offer err = %v, want ErrNoDrawOffer", err)
	}
	agreed, err := gm.OfferDraw(ctx, gameID, "alice")
	if err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if agreed {
		t.Error("single offer reported as agreement")
	}
	if err := gm.AcceptDraw(ctx, gameID, "bob"); err != nil {
		t.Fatalf("AcceptDraw: %v", err)
	}

	state, _ := gm.GetGameState(ctx, gameID)
	if state.Status != model.StatusDrawAgreed || state.Winner != nil {
		t.Errorf("state = %s/%v, want draw_agreed with no winner", state.Status, state.Winner)
	}
}

func TestMatchPairNotifiesBothPlayers(t *testing.T) {
	gm, _ := newTestManager(t)
	ctx := context.Background()

	if err := gm.JoinMatchmaking(ctx, "alice", "alice"); err != nil {
		t.Fatalf("JoinMatchmaking alice: %v", err)
	}
	if err := gm.JoinMatchmaking(ctx, "bob", "bob"); err != nil {
		t.Fatalf("JoinMatchmaking bob: %v", err)
	}

	chAlice := make(chan string, 1)
	chBob := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", chAlice)
	gm.RegisterMatchmakingChannel("bob", chBob)

	p1, p2, ok := gm.queue.NextPair()
	if !ok {
		t.Fatal("NextPair found no pair")
	}
	gm.matchPair(p1, p2)

	var found ws.MatchFoundPayload
	if err := json.Unmarshal([]byte(<-chAlice), &found); err != nil {
		t.Fatalf("unmarshal alice notification: %v", err)
	}
	if found.GameID == "" || found.Color != "white" {
		t.Errorf("alice notification = %+v, want white seat", found)
	}
	gameID := found.GameID

	if err := json.Unmarshal([]byte(<-chBob), &found); err != nil {
		t.Fatalf("unmarshal bob notification: %v", err)
	}
	if found.GameID != gameID || found.Color != "black" {
		t.Errorf("bob notification = %+v, want black seat in %s", found, gameID)
	}

	state, err := gm.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.Status != model.StatusInProgress {
		t.Errorf("matched game status = %s, want in_progress", state.Status)
	}
}

func TestExpireGameNotInMemory(t *testing.T) {
	gm, st := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gm.JoinGame(ctx, gameID, "bob", "bob"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	// Simulate a restart so the game is settled from the store alone.
	gm.mu.Lock()
	delete(gm.games, gameID)
	gm.mu.Unlock()

	rec, err := st.GetGame(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	gm.expireGame(ctx, rec)

	rec, err = st.GetGame(ctx, gameID)
	if err != nil {
		t.Fatalf("GetGame after expiry: %v", err)
	}
	// White was to move, so white forfeits.
	if rec.Status != string(model.StatusTimeout) || rec.WinnerID != "bob" {
		t.Errorf("expired game = %s/%s, want timeout won by bob", rec.Status, rec.WinnerID)
	}
	bob, err := st.GetPlayer(ctx, "bob")
	if err != nil {
		t.Fatalf("GetPlayer bob: %v", err)
	}
	if bob.Wins != 1 {
		t.Errorf("bob wins = %d, want 1", bob.Wins)
	}
}

func TestDeleteGame(t *testing.T) {
	gm, _ := newTestManager(t)
	ctx := context.Background()

	gameID, err := gm.CreateGame(ctx, "alice", "alice", model.Matchmaking{Mode: model.MatchOpen})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := gm.DeleteGame(ctx, gameID, "bob"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("delete by non-creator err = %v, want ErrGameNotFound", err)
	}
	if err := gm.DeleteGame(ctx, gameID, "alice"); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := gm.GetGameState(ctx, gameID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("state of deleted game err = %v, want ErrGameNotFound", err)
	}
}
