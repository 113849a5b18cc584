package service

import (
	"context"
	"fmt"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/doorgames/chess-backend/internal/model"
	"github.com/doorgames/chess-backend/internal/store"
	"github.com/gofiber/websocket/v2"
)

// GameService is the API surface the controllers talk to. It parses client
// input into engine types and delegates to the manager.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{gameManager: gameManager}
}

func (gs *GameService) CreateGame(ctx context.Context, playerID, handle string, mm model.Matchmaking) (string, error) {
	gameID, err := gs.gameManager.CreateGame(ctx, playerID, handle, mm)
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(ctx context.Context, gameID, playerID, handle string) (model.PlayerColor, error) {
	return gs.gameManager.JoinGame(ctx, gameID, playerID, handle)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) LegalMoves(ctx context.Context, gameID string) ([]string, error) {
	return gs.gameManager.LegalMoves(ctx, gameID)
}

// HandleMove parses a coordinate-notation move and plays it.
func (gs *GameService) HandleMove(ctx context.Context, gameID, playerID, notation string) (chess.MoveResult, error) {
	mv, err := chess.ParseMove(notation)
	if err != nil {
		return chess.MoveResult{}, err
	}
	return gs.gameManager.MakeMove(ctx, gameID, playerID, mv)
}

func (gs *GameService) Resign(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.Resign(ctx, gameID, playerID)
}

func (gs *GameService) OfferDraw(ctx context.Context, gameID, playerID string) (bool, error) {
	return gs.gameManager.OfferDraw(ctx, gameID, playerID)
}

func (gs *GameService) AcceptDraw(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.AcceptDraw(ctx, gameID, playerID)
}

func (gs *GameService) DeleteGame(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.DeleteGame(ctx, gameID, playerID)
}

func (gs *GameService) ListOpenGames(ctx context.Context, playerID string) ([]store.GameRecord, error) {
	return gs.gameManager.ListOpenGames(ctx, playerID)
}

func (gs *GameService) ListActiveGames(ctx context.Context, playerID string) ([]store.GameRecord, error) {
	return gs.gameManager.ListActiveGames(ctx, playerID)
}

func (gs *GameService) Leaderboard(ctx context.Context, limit int) ([]store.PlayerRecord, error) {
	return gs.gameManager.Leaderboard(ctx, limit)
}

func (gs *GameService) GetPlayer(ctx context.Context, playerID, handle string) (store.PlayerRecord, error) {
	return gs.gameManager.GetPlayer(ctx, playerID, handle)
}

func (gs *GameService) JoinMatchmaking(ctx context.Context, playerID, handle string) error {
	return gs.gameManager.JoinMatchmaking(ctx, playerID, handle)
}

func (gs *GameService) LeaveMatchmaking(playerID string) {
	gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}
