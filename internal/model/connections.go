package model

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/doorgames/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

// GameConnections holds the live WebSocket connections for one game, keyed by
// player ID (spectators included).
type GameConnections struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		conns: make(map[string]*websocket.Conn),
	}
}

// Register stores the connection. A duplicate connection for the same player
// is rejected politely; the existing one stays.
func (gc *GameConnections) Register(playerID string, conn *websocket.Conn) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if _, exists := gc.conns[playerID]; exists {
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection already exists"),
		)
		_ = conn.Close()
		return nil
	}
	gc.conns[playerID] = conn
	return nil
}

func (gc *GameConnections) Unregister(playerID string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	delete(gc.conns, playerID)
}

// Broadcast sends a game-state message to every connection, dropping the ones
// that fail to write.
func (gc *GameConnections) Broadcast(state GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		slog.Error("marshal game state", "game_id", state.ID, "error", err)
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	gc.mu.Lock()
	defer gc.mu.Unlock()
	for playerID, conn := range gc.conns {
		if err := conn.WriteJSON(msg); err != nil {
			slog.Warn("drop dead connection", "game_id", state.ID, "player_id", playerID, "error", err)
			delete(gc.conns, playerID)
		}
	}
}
