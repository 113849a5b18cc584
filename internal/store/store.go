// Package store persists players, games and move history in SQLite. Boards
// are stored as FEN strings only; no chess rules live here.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DefaultElo is the rating assigned to new players.
const DefaultElo = 1200

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			handle TEXT NOT NULL,
			elo INTEGER NOT NULL DEFAULT 1200,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			draws INTEGER NOT NULL DEFAULT 0,
			games_played INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			white_player_id TEXT NOT NULL,
			white_handle TEXT NOT NULL,
			white_elo INTEGER NOT NULL,
			black_player_id TEXT,
			black_handle TEXT,
			black_elo INTEGER,
			status TEXT NOT NULL DEFAULT 'waiting',
			fen TEXT NOT NULL,
			matchmaking_mode TEXT NOT NULL DEFAULT 'open',
			min_elo INTEGER NOT NULL DEFAULT 0,
			max_elo INTEGER NOT NULL DEFAULT 0,
			challenge_target_id TEXT,
			challenge_target_handle TEXT,
			white_draw_offer INTEGER NOT NULL DEFAULT 0,
			black_draw_offer INTEGER NOT NULL DEFAULT 0,
			winner_player_id TEXT,
			last_move_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			completed_at INTEGER,
			FOREIGN KEY (white_player_id) REFERENCES players(player_id),
			FOREIGN KEY (black_player_id) REFERENCES players(player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS moves (
			move_id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			move_number INTEGER NOT NULL,
			notation TEXT NOT NULL,
			fen_after TEXT NOT NULL,
			played_at INTEGER NOT NULL,
			FOREIGN KEY (game_id) REFERENCES games(game_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_status ON games(status)`,
		`CREATE INDEX IF NOT EXISTS idx_games_white ON games(white_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_games_black ON games(black_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_players_elo ON players(elo DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
