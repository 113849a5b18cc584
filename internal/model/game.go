package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameFull          = errors.New("game is full")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotInGame         = errors.New("player not in game")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNoDrawOffer       = errors.New("no draw offer from opponent")
	ErrJoinNotAllowed    = errors.New("player may not join this game")
)

// Game is a single chess game: the engine board plus seats, history and
// session bookkeeping. All exported methods are safe for concurrent use.
type Game struct {
	ID string

	mu          sync.Mutex
	board       *chess.Board
	status      GameStatus
	winner      *PlayerColor
	white       Seat
	black       Seat
	moves       []MoveRecord
	matchmaking Matchmaking
	whiteDraw   bool
	blackDraw   bool
	createdAt   time.Time
	lastMoveAt  time.Time
	timer       *TurnTimer

	connections *GameConnections
}

// GameState is the JSON snapshot sent to clients and spectators.
type GameState struct {
	ID          string       `json:"id"`
	FEN         string       `json:"fen"`
	ToMove      PlayerColor  `json:"toMove"`
	Status      GameStatus   `json:"status"`
	Winner      *PlayerColor `json:"winner"`
	White       Seat         `json:"white"`
	Black       Seat         `json:"black"`
	MoveHistory []MoveRecord `json:"moveHistory"`
	MoveText    string       `json:"moveText"`
	LegalMoves  []string     `json:"legalMoves"`
	IsCheck     bool         `json:"isCheck"`
	WhiteDraw   bool         `json:"whiteDrawOffer"`
	BlackDraw   bool         `json:"blackDrawOffer"`
	LastMoveAt  time.Time    `json:"lastMoveAt"`
	MoveTimeMS  int64        `json:"moveTimeLeftMs"`
}

func NewGame(id string, mm Matchmaking) *Game {
	now := time.Now()
	return &Game{
		ID:          id,
		board:       chess.NewBoard(),
		status:      StatusWaiting,
		matchmaking: mm,
		createdAt:   now,
		lastMoveAt:  now,
		timer:       NewTurnTimer(DefaultMoveLimit),
		connections: NewGameConnections(),
	}
}

// RestoreGame rebuilds a live game from persisted state.
func RestoreGame(id, fen string, white, black Seat, status GameStatus, mm Matchmaking, moves []MoveRecord) (*Game, error) {
	board, err := chess.FromFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", id, err)
	}
	g := &Game{
		ID:          id,
		board:       board,
		status:      status,
		white:       white,
		black:       black,
		moves:       moves,
		matchmaking: mm,
		createdAt:   time.Now(),
		lastMoveAt:  time.Now(),
		timer:       NewTurnTimer(DefaultMoveLimit),
		connections: NewGameConnections(),
	}
	g.white.Color = PlayerColorWhite
	g.black.Color = PlayerColorBlack
	if status == StatusInProgress {
		g.timer.Start()
	}
	return g, nil
}

// AddPlayer seats a player, white first. Joining the black seat starts the
// game.
func (g *Game) AddPlayer(p Player) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.white.Occupied() {
		g.white = Seat{Player: p, Color: PlayerColorWhite}
		return PlayerColorWhite, nil
	}
	if !g.black.Occupied() {
		if g.white.ID == p.ID {
			return "", ErrJoinNotAllowed
		}
		if !g.matchmaking.Allows(p) {
			return "", ErrJoinNotAllowed
		}
		g.black = Seat{Player: p, Color: PlayerColorBlack}
		g.status = StatusInProgress
		g.lastMoveAt = time.Now()
		g.timer.Start()
		g.notifyLocked()
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPlayer(playerID)
}

func (g *Game) isPlayer(playerID string) bool {
	return (g.white.Occupied() && g.white.ID == playerID) ||
		(g.black.Occupied() && g.black.ID == playerID)
}

func (g *Game) playerColor(playerID string) (PlayerColor, bool) {
	switch {
	case g.white.Occupied() && g.white.ID == playerID:
		return PlayerColorWhite, true
	case g.black.Occupied() && g.black.ID == playerID:
		return PlayerColorBlack, true
	default:
		return "", false
	}
}

// MakeMove validates that it is the player's turn, applies the move through
// the engine, records it, and updates the game status.
func (g *Game) MakeMove(playerID string, mv chess.Move) (chess.MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress {
		return chess.MoveResult{}, ErrGameNotInProgress
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return chess.MoveResult{}, ErrNotInGame
	}
	if color.BoardColor() != g.board.SideToMove {
		return chess.MoveResult{}, ErrNotYourTurn
	}

	result, err := g.board.MakeMove(mv)
	if err != nil {
		return chess.MoveResult{}, err
	}

	now := time.Now()
	g.moves = append(g.moves, MoveRecord{
		Number:   len(g.moves) + 1,
		Notation: mv.Algebraic(),
		FENAfter: g.board.FEN(),
		PlayedAt: now,
	})
	g.lastMoveAt = now
	g.whiteDraw = false
	g.blackDraw = false

	switch {
	case result.Checkmate:
		g.status = StatusCheckmate
		winner := color
		g.winner = &winner
		g.timer.Stop()
	case result.Stalemate:
		g.status = StatusStalemate
		g.timer.Stop()
	case g.board.HalfmoveClock >= 100:
		g.status = StatusDrawFiftyMoves
		g.timer.Stop()
	default:
		g.timer.Start()
	}

	g.notifyLocked()
	return result, nil
}

// Resign ends the game in the opponent's favor.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress {
		return ErrGameNotInProgress
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return ErrNotInGame
	}

	g.status = StatusResigned
	winner := color.Opposite()
	g.winner = &winner
	g.timer.Stop()
	g.notifyLocked()
	return nil
}

// OfferDraw records a draw offer; if both sides have offered, the game ends
// drawn and true is returned.
func (g *Game) OfferDraw(playerID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress {
		return false, ErrGameNotInProgress
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return false, ErrNotInGame
	}

	if color == PlayerColorWhite {
		g.whiteDraw = true
	} else {
		g.blackDraw = true
	}
	if g.whiteDraw && g.blackDraw {
		g.status = StatusDrawAgreed
		g.timer.Stop()
		g.notifyLocked()
		return true, nil
	}
	g.notifyLocked()
	return false, nil
}

// AcceptDraw ends the game drawn, provided the opponent has offered.
func (g *Game) AcceptDraw(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress {
		return ErrGameNotInProgress
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return ErrNotInGame
	}

	opponentOffered := g.blackDraw
	if color == PlayerColorBlack {
		opponentOffered = g.whiteDraw
	}
	if !opponentOffered {
		return ErrNoDrawOffer
	}

	g.status = StatusDrawAgreed
	g.timer.Stop()
	g.notifyLocked()
	return nil
}

// CheckTimeout forfeits the game if the player to move has exceeded the move
// limit. Returns true when the game was just ended by timeout.
func (g *Game) CheckTimeout() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusInProgress || !g.timer.Expired() {
		return false
	}
	g.status = StatusTimeout
	winner := ColorOf(g.board.SideToMove).Opposite()
	g.winner = &winner
	g.timer.Stop()
	g.notifyLocked()
	return true
}

// Status returns the current status and winner, if any.
func (g *Game) Status() (GameStatus, *PlayerColor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.winner
}

// Seats returns the white and black seats.
func (g *Game) Seats() (Seat, Seat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.white, g.black
}

// FEN returns the current position.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.FEN()
}

// Moves returns a copy of the move history.
func (g *Game) Moves() []MoveRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]MoveRecord, len(g.moves))
	copy(out, g.moves)
	return out
}

// LegalMoves returns the legal moves for the side to move in coordinate
// notation, for client-side move hints.
func (g *Game) LegalMoves() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legalMoveStrings()
}

func (g *Game) legalMoveStrings() []string {
	moves := g.board.LegalMoves()
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Algebraic()
	}
	return out
}

// Matchmaking returns the join rules for the game.
func (g *Game) Matchmaking() Matchmaking {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.matchmaking
}

// State captures a consistent snapshot for clients.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	history := make([]MoveRecord, len(g.moves))
	copy(history, g.moves)

	var legal []string
	if g.status == StatusInProgress {
		legal = g.legalMoveStrings()
	}

	return GameState{
		ID:          g.ID,
		FEN:         g.board.FEN(),
		ToMove:      ColorOf(g.board.SideToMove),
		Status:      g.status,
		Winner:      g.winner,
		White:       g.white,
		Black:       g.black,
		MoveHistory: history,
		MoveText:    MoveListText(history),
		LegalMoves:  legal,
		IsCheck:     g.board.IsInCheck(g.board.SideToMove),
		WhiteDraw:   g.whiteDraw,
		BlackDraw:   g.blackDraw,
		LastMoveAt:  g.lastMoveAt,
		MoveTimeMS:  g.timer.Remaining().Milliseconds(),
	}
}

// notifyLocked pushes the current state to every connection. Callers must
// hold g.mu; the send itself happens off the lock.
func (g *Game) notifyLocked() {
	state := g.stateLocked()
	go g.connections.Broadcast(state)
}

// CanSpectate reports whether a non-player may watch the game.
func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status != StatusWaiting
}

// RegisterConnection attaches a WebSocket to the game and sends the current
// state. Players may always connect; others only as spectators.
func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	if !g.IsPlayerInGame(playerID) && !g.CanSpectate() {
		return ErrNotInGame
	}
	if err := g.connections.Register(playerID, conn); err != nil {
		return err
	}
	go g.connections.Broadcast(g.State())
	return nil
}

// UnregisterConnection detaches a WebSocket from the game.
func (g *Game) UnregisterConnection(playerID string) {
	g.connections.Unregister(playerID)
}
