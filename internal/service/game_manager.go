package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/doorgames/chess-backend/internal/model"
	"github.com/doorgames/chess-backend/internal/store"
	"github.com/doorgames/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// GameManager owns the live games, the matchmaking queue and the timeout
// sweep. Games not in memory are resumed from the store on demand.
type GameManager struct {
	st  *store.Store
	log *slog.Logger

	mu               sync.RWMutex
	games            map[string]*model.Game
	matchingChannels map[string]chan string

	queue *model.Queue
	done  chan struct{}
}

func NewGameManager(st *store.Store, log *slog.Logger) *GameManager {
	gm := &GameManager{
		st:               st,
		log:              log,
		games:            make(map[string]*model.Game),
		matchingChannels: make(map[string]chan string),
		queue:            model.NewQueue(),
		done:             make(chan struct{}),
	}
	go gm.processMatchmaking()
	go gm.sweepTimeouts()
	return gm
}

// Close stops the background tickers.
func (gm *GameManager) Close() {
	close(gm.done)
}

// CreateGame opens a new game with the creator seated as white.
func (gm *GameManager) CreateGame(ctx context.Context, playerID, handle string, mm model.Matchmaking) (string, error) {
	creator, err := gm.st.GetOrCreatePlayer(ctx, playerID, handle)
	if err != nil {
		return "", err
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, mm)
	if _, err := game.AddPlayer(playerFromRecord(creator)); err != nil {
		return "", err
	}

	if err := gm.st.CreateGame(ctx, store.GameRecord{
		ID:            gameID,
		WhiteID:       creator.ID,
		WhiteHandle:   creator.Handle,
		WhiteElo:      creator.Elo,
		Status:        string(model.StatusWaiting),
		FEN:           chess.StartingFEN,
		Mode:          string(mm.Mode),
		MinElo:        mm.MinElo,
		MaxElo:        mm.MaxElo,
		ChallengeID:   mm.TargetID,
		ChallengeName: mm.TargetHandle,
	}); err != nil {
		return "", err
	}

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.log.Info("game created", "game_id", gameID, "player_id", playerID, "mode", mm.Mode)
	return gameID, nil
}

// JoinGame seats the player as black and starts the game.
func (gm *GameManager) JoinGame(ctx context.Context, gameID, playerID, handle string) (model.PlayerColor, error) {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return "", err
	}
	joiner, err := gm.st.GetOrCreatePlayer(ctx, playerID, handle)
	if err != nil {
		return "", err
	}

	color, err := game.AddPlayer(playerFromRecord(joiner))
	if err != nil {
		return "", err
	}
	if err := gm.st.JoinGame(ctx, gameID, joiner.ID, joiner.Handle, joiner.Elo); err != nil {
		return "", err
	}
	gm.log.Info("player joined game", "game_id", gameID, "player_id", playerID, "color", color)
	return color, nil
}

// GetGameState returns a snapshot of the game for clients.
func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.State(), nil
}

// LegalMoves returns the legal moves for the side to move.
func (gm *GameManager) LegalMoves(ctx context.Context, gameID string) ([]string, error) {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(), nil
}

// MakeMove plays a move for the player and persists the outcome.
func (gm *GameManager) MakeMove(ctx context.Context, gameID, playerID string, mv chess.Move) (chess.MoveResult, error) {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return chess.MoveResult{}, err
	}

	result, err := game.MakeMove(playerID, mv)
	if err != nil {
		return chess.MoveResult{}, err
	}

	moves := game.Moves()
	last := moves[len(moves)-1]
	if err := gm.st.RecordMove(ctx, gameID, last.Number, last.Notation, last.FENAfter); err != nil {
		gm.log.Error("persist move failed", "game_id", gameID, "error", err)
	}
	if status, _ := game.Status(); status.IsOver() {
		gm.persistFinish(ctx, game)
	}
	return result, nil
}

// Resign forfeits the game for the player.
func (gm *GameManager) Resign(ctx context.Context, gameID, playerID string) error {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.persistFinish(ctx, game)
	return nil
}

// OfferDraw records a draw offer; a mutual offer ends the game drawn.
func (gm *GameManager) OfferDraw(ctx context.Context, gameID, playerID string) (bool, error) {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return false, err
	}
	white, _ := game.Seats()
	agreed, err := game.OfferDraw(playerID)
	if err != nil {
		return false, err
	}
	if agreed {
		gm.persistFinish(ctx, game)
		return true, nil
	}
	if err := gm.st.SetDrawOffer(ctx, gameID, white.Occupied() && white.ID == playerID); err != nil {
		gm.log.Error("persist draw offer failed", "game_id", gameID, "error", err)
	}
	return false, nil
}

// AcceptDraw ends the game drawn if the opponent has an offer standing.
func (gm *GameManager) AcceptDraw(ctx context.Context, gameID, playerID string) error {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.AcceptDraw(playerID); err != nil {
		return err
	}
	gm.persistFinish(ctx, game)
	return nil
}

// ListOpenGames returns waiting games the player could join.
func (gm *GameManager) ListOpenGames(ctx context.Context, playerID string) ([]store.GameRecord, error) {
	return gm.st.ListOpenGames(ctx, playerID)
}

// ListActiveGames returns the player's unfinished games.
func (gm *GameManager) ListActiveGames(ctx context.Context, playerID string) ([]store.GameRecord, error) {
	return gm.st.ListActiveGames(ctx, playerID)
}

// DeleteGame withdraws a waiting game. Only the creator can do this.
func (gm *GameManager) DeleteGame(ctx context.Context, gameID, playerID string) error {
	ok, err := gm.st.DeleteGame(ctx, gameID, playerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGameNotFound
	}
	gm.mu.Lock()
	delete(gm.games, gameID)
	gm.mu.Unlock()
	return nil
}

// Leaderboard returns the top rated players.
func (gm *GameManager) Leaderboard(ctx context.Context, limit int) ([]store.PlayerRecord, error) {
	return gm.st.Leaderboard(ctx, limit)
}

// GetPlayer ensures the player exists and returns their record.
func (gm *GameManager) GetPlayer(ctx context.Context, playerID, handle string) (store.PlayerRecord, error) {
	return gm.st.GetOrCreatePlayer(ctx, playerID, handle)
}

// JoinMatchmaking puts the player in the queue.
func (gm *GameManager) JoinMatchmaking(ctx context.Context, playerID, handle string) error {
	p, err := gm.st.GetOrCreatePlayer(ctx, playerID, handle)
	if err != nil {
		return err
	}
	return gm.queue.Add(playerFromRecord(p))
}

// LeaveMatchmaking takes the player out of the queue.
func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.Remove(playerID)
}

// RegisterMatchmakingChannel hands the manager a channel to deliver a match
// notification on. Any previous channel for the player is closed.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel removes the player's channel without closing
// it; whoever created the channel closes it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.matchingChannels, playerID)
}

// RegisterConnection attaches a WebSocket to a game.
func (gm *GameManager) RegisterConnection(ctx context.Context, gameID, playerID string, conn *websocket.Conn) error {
	game, err := gm.getOrLoad(ctx, gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

// UnregisterConnection detaches a WebSocket from a game.
func (gm *GameManager) UnregisterConnection(gameID, playerID string) {
	gm.mu.RLock()
	game, ok := gm.games[gameID]
	gm.mu.RUnlock()
	if !ok {
		return
	}
	game.UnregisterConnection(playerID)
}

// getOrLoad returns the live game, resuming it from the store when it is not
// in memory.
func (gm *GameManager) getOrLoad(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, ok := gm.games[gameID]
	gm.mu.RUnlock()
	if ok {
		return game, nil
	}

	rec, err := gm.st.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	game, err = restoreFromRecord(ctx, gm.st, rec)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if existing, ok := gm.games[gameID]; ok {
		return existing, nil
	}
	gm.games[gameID] = game
	gm.log.Info("game resumed from store", "game_id", gameID, "status", rec.Status)
	return game, nil
}

func restoreFromRecord(ctx context.Context, st *store.Store, rec store.GameRecord) (*model.Game, error) {
	rows, err := st.Moves(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	moves := make([]model.MoveRecord, len(rows))
	for i, r := range rows {
		moves[i] = model.MoveRecord{
			Number:   r.Number,
			Notation: r.Notation,
			FENAfter: r.FENAfter,
			PlayedAt: r.PlayedAt,
		}
	}
	white := model.Seat{
		Player: model.Player{ID: rec.WhiteID, Handle: rec.WhiteHandle, Elo: rec.WhiteElo},
	}
	var black model.Seat
	if rec.BlackID != "" {
		black = model.Seat{
			Player: model.Player{ID: rec.BlackID, Handle: rec.BlackHandle, Elo: rec.BlackElo},
		}
	}
	mm := model.Matchmaking{
		Mode:         model.MatchmakingMode(rec.Mode),
		MinElo:       rec.MinElo,
		MaxElo:       rec.MaxElo,
		TargetID:     rec.ChallengeID,
		TargetHandle: rec.ChallengeName,
	}
	return model.RestoreGame(rec.ID, rec.FEN, white, black, model.GameStatus(rec.Status), mm, moves)
}

// persistFinish writes the final status and settles ratings. It is a no-op
// for games that are still running.
func (gm *GameManager) persistFinish(ctx context.Context, game *model.Game) {
	status, winner := game.Status()
	if !status.IsOver() {
		return
	}
	white, black := game.Seats()

	winnerID := ""
	if winner != nil {
		if *winner == model.PlayerColorWhite {
			winnerID = white.ID
		} else {
			winnerID = black.ID
		}
	}
	if err := gm.st.FinishGame(ctx, game.ID, string(status), winnerID); err != nil {
		gm.log.Error("persist finish failed", "game_id", game.ID, "error", err)
		return
	}
	if white.Occupied() && black.Occupied() {
		gm.settleRatings(ctx, white.Player, black.Player, status, winner)
	}
	gm.log.Info("game finished", "game_id", game.ID, "status", status, "winner", winnerID)
}

func (gm *GameManager) settleRatings(ctx context.Context, white, black model.Player, status model.GameStatus, winner *model.PlayerColor) {
	whiteScore := 0.5
	whiteOutcome, blackOutcome := store.OutcomeDraw, store.OutcomeDraw
	if !status.IsDraw() && winner != nil {
		if *winner == model.PlayerColorWhite {
			whiteScore = 1
			whiteOutcome, blackOutcome = store.OutcomeWin, store.OutcomeLoss
		} else {
			whiteScore = 0
			whiteOutcome, blackOutcome = store.OutcomeLoss, store.OutcomeWin
		}
	}

	newWhite := nextRating(white.Elo, black.Elo, whiteScore)
	newBlack := nextRating(black.Elo, white.Elo, 1-whiteScore)
	if err := gm.st.ApplyResult(ctx, white.ID, newWhite, whiteOutcome); err != nil {
		gm.log.Error("apply rating failed", "player_id", white.ID, "error", err)
	}
	if err := gm.st.ApplyResult(ctx, black.ID, newBlack, blackOutcome); err != nil {
		gm.log.Error("apply rating failed", "player_id", black.ID, "error", err)
	}
}

// processMatchmaking pairs queued players once a second and notifies them
// over their registered channels.
func (gm *GameManager) processMatchmaking() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
		}

		for {
			p1, p2, ok := gm.queue.NextPair()
			if !ok {
				break
			}
			gm.matchPair(p1, p2)
		}
	}
}

func (gm *GameManager) matchPair(p1, p2 model.Player) {
	ctx := context.Background()

	gameID := uuid.New().String()
	game := model.NewGame(gameID, model.Matchmaking{Mode: model.MatchChallenge, TargetID: p2.ID})
	c1, err := game.AddPlayer(p1)
	if err != nil {
		gm.log.Error("seat matched player failed", "player_id", p1.ID, "error", err)
		return
	}
	c2, err := game.AddPlayer(p2)
	if err != nil {
		gm.log.Error("seat matched player failed", "player_id", p2.ID, "error", err)
		return
	}

	if err := gm.st.CreateGame(ctx, store.GameRecord{
		ID:          gameID,
		WhiteID:     p1.ID,
		WhiteHandle: p1.Handle,
		WhiteElo:    p1.Elo,
		Status:      string(model.StatusWaiting),
		FEN:         chess.StartingFEN,
		Mode:        string(model.MatchOpen),
	}); err != nil {
		gm.log.Error("persist matched game failed", "game_id", gameID, "error", err)
		return
	}
	if err := gm.st.JoinGame(ctx, gameID, p2.ID, p2.Handle, p2.Elo); err != nil {
		gm.log.Error("persist matched game failed", "game_id", gameID, "error", err)
		return
	}

	gm.mu.Lock()
	gm.games[gameID] = game
	notified := gm.notifyMatchLocked(p1.ID, gameID, c1) && gm.notifyMatchLocked(p2.ID, gameID, c2)
	gm.mu.Unlock()

	if !notified {
		gm.log.Warn("matched players not all notified", "game_id", gameID)
	}
	gm.log.Info("match made", "game_id", gameID,
		"white", p1.ID, "black", p2.ID, "elo_gap", p1.Elo-p2.Elo)
}

// notifyMatchLocked sends a match notification and retires the player's
// channel. Callers must hold gm.mu.
func (gm *GameManager) notifyMatchLocked(playerID, gameID string, color model.PlayerColor) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := json.Marshal(ws.MatchFoundPayload{GameID: gameID, Color: string(color)})
	if err != nil {
		return false
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		return false
	}
}

// sweepTimeouts forfeits games whose side to move has been silent past the
// move limit.
func (gm *GameManager) sweepTimeouts() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
		}
		gm.expireOverdueGames(context.Background())
	}
}

func (gm *GameManager) expireOverdueGames(ctx context.Context) {
	cutoff := time.Now().Add(-model.DefaultMoveLimit)
	expired, err := gm.st.ExpiredGames(ctx, cutoff)
	if err != nil {
		gm.log.Error("timeout sweep failed", "error", err)
		return
	}
	for _, rec := range expired {
		gm.expireGame(ctx, rec)
	}
}

func (gm *GameManager) expireGame(ctx context.Context, rec store.GameRecord) {
	gm.mu.RLock()
	game, loaded := gm.games[rec.ID]
	gm.mu.RUnlock()

	if loaded {
		if game.CheckTimeout() {
			gm.persistFinish(ctx, game)
		}
		return
	}

	// Not in memory; settle directly from the persisted position.
	board, err := chess.FromFEN(rec.FEN)
	if err != nil {
		gm.log.Error("expire game: bad stored position", "game_id", rec.ID, "error", err)
		return
	}
	winnerID := rec.WhiteID
	whiteOutcome, blackOutcome := store.OutcomeWin, store.OutcomeLoss
	if board.SideToMove == chess.White {
		winnerID = rec.BlackID
		whiteOutcome, blackOutcome = store.OutcomeLoss, store.OutcomeWin
	}
	if err := gm.st.FinishGame(ctx, rec.ID, string(model.StatusTimeout), winnerID); err != nil {
		gm.log.Error("expire game failed", "game_id", rec.ID, "error", err)
		return
	}

	whiteScore := 0.0
	if winnerID == rec.WhiteID {
		whiteScore = 1.0
	}
	newWhite := nextRating(rec.WhiteElo, rec.BlackElo, whiteScore)
	newBlack := nextRating(rec.BlackElo, rec.WhiteElo, 1-whiteScore)
	if err := gm.st.ApplyResult(ctx, rec.WhiteID, newWhite, whiteOutcome); err != nil {
		gm.log.Error("apply rating failed", "player_id", rec.WhiteID, "error", err)
	}
	if err := gm.st.ApplyResult(ctx, rec.BlackID, newBlack, blackOutcome); err != nil {
		gm.log.Error("apply rating failed", "player_id", rec.BlackID, "error", err)
	}
	gm.log.Info("game timed out", "game_id", rec.ID, "winner", winnerID)
}

func playerFromRecord(p store.PlayerRecord) model.Player {
	return model.Player{ID: p.ID, Handle: p.Handle, Elo: p.Elo}
}
