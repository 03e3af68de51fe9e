package service

import (
	"context"
	"time"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

// GameService defines all puzzle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed *int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int

	// Puzzle Input
	Press(ctx context.Context, sessionID string, pos engine.Position) (*StepResult, error)
	Advance(ctx context.Context, sessionID string) (*StepResult, error)
	Step(ctx context.Context, sessionID string, input engine.Input) (*StepResult, error)
	NewEpisode(ctx context.Context, sessionID string) (*StepResult, error)

	// Puzzle State
	GetPuzzleState(ctx context.Context, sessionID string) (*engine.PuzzleState, error)
	RenderGraph(ctx context.Context, sessionID string, opts GraphOptions) (*render.GraphView, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.PuzzleConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Session represents an active puzzle session
type Session struct {
	ID             string
	Engine         *engine.PuzzleEngine
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
