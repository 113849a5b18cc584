package model

// GameStatus tracks a game through its lifecycle. Decisive endings record the
// winner on the Game itself.
type GameStatus string

const (
	StatusWaiting        GameStatus = "waiting"
	StatusInProgress     GameStatus = "in_progress"
	StatusCheckmate      GameStatus = "checkmate"
	StatusStalemate      GameStatus = "stalemate"
	StatusResigned       GameStatus = "resigned"
	StatusTimeout        GameStatus = "timeout"
	StatusDrawAgreed     GameStatus = "draw_agreed"
	StatusDrawFiftyMoves GameStatus = "draw_fifty_moves"
)

func (s GameStatus) IsOver() bool {
	return s != StatusWaiting && s != StatusInProgress
}

// IsDraw reports whether the game ended without a winner.
func (s GameStatus) IsDraw() bool {
	return s == StatusStalemate || s == StatusDrawAgreed || s == StatusDrawFiftyMoves
}

// MatchmakingMode selects how an open game can be joined.
type MatchmakingMode string

const (
	MatchOpen      MatchmakingMode = "open"
	MatchElo       MatchmakingMode = "elo"
	MatchChallenge MatchmakingMode = "challenge"
)

// Matchmaking describes the join rules for a game waiting for an opponent.
type Matchmaking struct {
	Mode         MatchmakingMode `json:"mode"`
	MinElo       int             `json:"minElo,omitempty"`
	MaxElo       int             `json:"maxElo,omitempty"`
	TargetID     string          `json:"targetId,omitempty"`
	TargetHandle string          `json:"targetHandle,omitempty"`
}

// Allows reports whether the given player may take the open seat.
func (m Matchmaking) Allows(p Player) bool {
	switch m.Mode {
	case MatchElo:
		return p.Elo >= m.MinElo && p.Elo <= m.MaxElo
	case MatchChallenge:
		return p.ID == m.TargetID
	default:
		return true
	}
}
