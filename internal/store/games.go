package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GameRecord is a game's persisted state. Black fields are empty until a
// second player joins.
type GameRecord struct {
	ID             string    `json:"id"`
	WhiteID        string    `json:"whiteId"`
	WhiteHandle    string    `json:"whiteHandle"`
	WhiteElo       int       `json:"whiteElo"`
	BlackID        string    `json:"blackId,omitempty"`
	BlackHandle    string    `json:"blackHandle,omitempty"`
	BlackElo       int       `json:"blackElo,omitempty"`
	Status         string    `json:"status"`
	FEN            string    `json:"fen"`
	Mode           string    `json:"mode"`
	MinElo         int       `json:"minElo,omitempty"`
	MaxElo         int       `json:"maxElo,omitempty"`
	ChallengeID    string    `json:"challengeId,omitempty"`
	ChallengeName  string    `json:"challengeName,omitempty"`
	WhiteDrawOffer bool      `json:"whiteDrawOffer"`
	BlackDrawOffer bool      `json:"blackDrawOffer"`
	WinnerID       string    `json:"winnerId,omitempty"`
	LastMoveAt     time.Time `json:"lastMoveAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MoveRow is one persisted move of a game.
type MoveRow struct {
	Number   int       `json:"number"`
	Notation string    `json:"notation"`
	FENAfter string    `json:"fenAfter"`
	PlayedAt time.Time `json:"playedAt"`
}

const gameColumns = `game_id, white_player_id, white_handle, white_elo,
	black_player_id, black_handle, black_elo, status, fen,
	matchmaking_mode, min_elo, max_elo, challenge_target_id, challenge_target_handle,
	white_draw_offer, black_draw_offer, winner_player_id, last_move_at, created_at`

// CreateGame inserts a fresh waiting game with the creator seated as white.
func (s *Store) CreateGame(ctx context.Context, g GameRecord) error {
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (game_id, white_player_id, white_handle, white_elo,
			status, fen, matchmaking_mode, min_elo, max_elo,
			challenge_target_id, challenge_target_handle, last_move_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.WhiteID, g.WhiteHandle, g.WhiteElo,
		g.Status, g.FEN, g.Mode, g.MinElo, g.MaxElo,
		nullable(g.ChallengeID), nullable(g.ChallengeName), now, now)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// JoinGame seats the joining player as black and moves the game into play.
func (s *Store) JoinGame(ctx context.Context, gameID, playerID, handle string, elo int) error {
	now := toMillis(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET black_player_id = ?, black_handle = ?, black_elo = ?,
		 status = 'in_progress', last_move_at = ?
		 WHERE game_id = ? AND status = 'waiting'`,
		playerID, handle, elo, now, gameID)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return nil
}

// GetGame loads a game by ID.
func (s *Store) GetGame(ctx context.Context, gameID string) (GameRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE game_id = ?`, gameID)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// RecordMove appends a move, updates the stored position and clears any
// standing draw offers.
func (s *Store) RecordMove(ctx context.Context, gameID string, number int, notation, fenAfter string) error {
	now := toMillis(time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record move: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO moves (game_id, move_number, notation, fen_after, played_at)
		 VALUES (?, ?, ?, ?, ?)`,
		gameID, number, notation, fenAfter, now); err != nil {
		return fmt.Errorf("record move: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET fen = ?, last_move_at = ?,
		 white_draw_offer = 0, black_draw_offer = 0 WHERE game_id = ?`,
		fenAfter, now, gameID); err != nil {
		return fmt.Errorf("record move: %w", err)
	}
	return tx.Commit()
}

// Moves returns a game's move history in play order.
func (s *Store) Moves(ctx context.Context, gameID string) ([]MoveRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT move_number, notation, fen_after, played_at
		 FROM moves WHERE game_id = ? ORDER BY move_number ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var out []MoveRow
	for rows.Next() {
		var m MoveRow
		var ms int64
		if err := rows.Scan(&m.Number, &m.Notation, &m.FENAfter, &ms); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.PlayedAt = fromMillis(ms)
		out = append(out, m)
	}
	return out, rows.Err()
}

// FinishGame marks a game over. winnerID is empty for draws.
func (s *Store) FinishGame(ctx context.Context, gameID, status, winnerID string) error {
	now := toMillis(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET status = ?, winner_player_id = ?, completed_at = ?
		 WHERE game_id = ?`,
		status, nullable(winnerID), now, gameID)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return nil
}

// SetDrawOffer records a standing draw offer for one side.
func (s *Store) SetDrawOffer(ctx context.Context, gameID string, byWhite bool) error {
	col := "black_draw_offer"
	if byWhite {
		col = "white_draw_offer"
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE games SET `+col+` = 1 WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("set draw offer: %w", err)
	}
	return nil
}

// ListOpenGames returns waiting games that someone other than excludeID
// created.
func (s *Store) ListOpenGames(ctx context.Context, excludeID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE status = 'waiting' AND white_player_id != ?
		 ORDER BY created_at ASC`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// ListActiveGames returns the player's waiting and in-progress games.
func (s *Store) ListActiveGames(ctx context.Context, playerID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE status IN ('waiting', 'in_progress')
		 AND (white_player_id = ? OR black_player_id = ?)
		 ORDER BY last_move_at DESC`, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// CountActiveGames counts the player's waiting and in-progress games.
func (s *Store) CountActiveGames(ctx context.Context, playerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games
		 WHERE status IN ('waiting', 'in_progress')
		 AND (white_player_id = ? OR black_player_id = ?)`,
		playerID, playerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active games: %w", err)
	}
	return n, nil
}

// ExpiredGames returns in-progress games whose last move is older than
// cutoff.
func (s *Store) ExpiredGames(ctx context.Context, cutoff time.Time) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE status = 'in_progress' AND last_move_at < ?`, toMillis(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list expired games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// DeleteGame removes a waiting game, but only for its creator. Reports
// whether a row was deleted.
func (s *Store) DeleteGame(ctx context.Context, gameID, playerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM games
		 WHERE game_id = ? AND white_player_id = ? AND status = 'waiting'`,
		gameID, playerID)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (GameRecord, error) {
	var g GameRecord
	var blackID, blackHandle, challengeID, challengeName, winnerID sql.NullString
	var blackElo sql.NullInt64
	var whiteOffer, blackOffer int
	var lastMove, created int64
	err := row.Scan(&g.ID, &g.WhiteID, &g.WhiteHandle, &g.WhiteElo,
		&blackID, &blackHandle, &blackElo, &g.Status, &g.FEN,
		&g.Mode, &g.MinElo, &g.MaxElo, &challengeID, &challengeName,
		&whiteOffer, &blackOffer, &winnerID, &lastMove, &created)
	if err != nil {
		return GameRecord{}, err
	}
	g.BlackID = blackID.String
	g.BlackHandle = blackHandle.String
	g.BlackElo = int(blackElo.Int64)
	g.ChallengeID = challengeID.String
	g.ChallengeName = challengeName.String
	g.WinnerID = winnerID.String
	g.WhiteDrawOffer = whiteOffer != 0
	g.BlackDrawOffer = blackOffer != 0
	g.LastMoveAt = fromMillis(lastMove)
	g.CreatedAt = fromMillis(created)
	return g, nil
}

func collectGames(rows *sql.Rows) ([]GameRecord, error) {
	var out []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
