package service

import (
	"time"

	"github.com/wricardo/decodoku/game/engine"
)

// Event types reported in StepResult.Events
const (
	EventSelect     = "select"
	EventMove       = "move"
	EventCancel     = "cancel"
	EventVictory    = "victory"
	EventFailure    = "failure"
	EventNewEpisode = "new_episode"
)

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	PuzzleState    *engine.PuzzleState  `json:"puzzle_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// StepResult contains the result of one processed input tick
type StepResult struct {
	Moved     bool                `json:"moved"`
	Resolved  bool                `json:"resolved"`
	State     *engine.PuzzleState `json:"puzzle_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
	Remaining int                 `json:"remaining_charge"`
}

// GameEvent represents something that happened while processing input
type GameEvent struct {
	Type      string           `json:"type"` // "select", "move", "cancel", "victory", "failure", "new_episode"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// GraphOptions selects which lattice the decoding graph is drawn from and
// whether the decoder is consulted
type GraphOptions struct {
	Original bool `json:"original"`
	Clusters bool `json:"clusters"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history for the current episode
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	Episode     int                 `json:"episode"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename    string  `json:"filename"`
	ConfigID    string  `json:"config_id"` // The identifier to use for session creation
	Name        string  `json:"name"`      // Display name
	Description string  `json:"description"`
	P           float64 `json:"p"`
	K           int     `json:"k"`
	L           int     `json:"l"`
}
