package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PlayerRecord is a player's persisted identity and rating.
type PlayerRecord struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Elo         int    `json:"elo"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// GetOrCreatePlayer loads the player with the given ID, creating a fresh
// record with the default rating when none exists. The stored handle is
// refreshed when the caller supplies a different one.
func (s *Store) GetOrCreatePlayer(ctx context.Context, id, handle string) (PlayerRecord, error) {
	p, err := s.GetPlayer(ctx, id)
	if err == nil {
		if handle != "" && handle != p.Handle {
			now := toMillis(time.Now())
			if _, err := s.db.ExecContext(ctx,
				`UPDATE players SET handle = ?, updated_at = ? WHERE player_id = ?`,
				handle, now, id); err != nil {
				return PlayerRecord{}, fmt.Errorf("update handle: %w", err)
			}
			p.Handle = handle
		}
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return PlayerRecord{}, err
	}
	if handle == "" {
		handle = "anonymous"
	}
	now := toMillis(time.Now())
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO players (player_id, handle, elo, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, handle, DefaultElo, now, now); err != nil {
		return PlayerRecord{}, fmt.Errorf("create player: %w", err)
	}
	return PlayerRecord{ID: id, Handle: handle, Elo: DefaultElo}, nil
}

// GetPlayer loads a player by ID.
func (s *Store) GetPlayer(ctx context.Context, id string) (PlayerRecord, error) {
	var p PlayerRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, handle, elo, wins, losses, draws, games_played
		 FROM players WHERE player_id = ?`, id).
		Scan(&p.ID, &p.Handle, &p.Elo, &p.Wins, &p.Losses, &p.Draws, &p.GamesPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerRecord{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// Outcome records how a finished game counted for one player.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// ApplyResult writes a player's post-game rating and bumps the matching
// win/loss/draw counter.
func (s *Store) ApplyResult(ctx context.Context, id string, newElo int, outcome Outcome) error {
	col := "draws"
	switch outcome {
	case OutcomeWin:
		col = "wins"
	case OutcomeLoss:
		col = "losses"
	}
	now := toMillis(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET elo = ?, `+col+` = `+col+` + 1,
		 games_played = games_played + 1, updated_at = ? WHERE player_id = ?`,
		newElo, now, id)
	if err != nil {
		return fmt.Errorf("apply result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}

// Leaderboard returns the top rated players that have completed at least one
// game, ordered by rating.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]PlayerRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, handle, elo, wins, losses, draws, games_played
		 FROM players WHERE games_played > 0 ORDER BY elo DESC, handle ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.ID, &p.Handle, &p.Elo, &p.Wins, &p.Losses, &p.Draws, &p.GamesPlayed); err != nil {
			return nil, fmt.Errorf("leaderboard scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
