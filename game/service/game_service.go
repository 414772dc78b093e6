package service

import (
	"context"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/scores"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Input(ctx context.Context, sessionID, direction string) (*InputResult, error)
	Step(ctx context.Context, sessionID string, ticks int) (*StepResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MapConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MapConfig) error
	ListThemes(ctx context.Context) []engine.ColorTheme

	// Scores
	Leaderboard(ctx context.Context, limit int) ([]scores.Submission, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MapConfig, opts ...SessionOption) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles map configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MapConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MapConfig
	SaveConfig(name string, config *engine.MapConfig) error
}

// SnapshotPublisher receives the per-tick snapshots and game events of
// realtime sessions. Implementations must not block.
type SnapshotPublisher interface {
	PublishSnapshot(sessionID string, snap *engine.Snapshot)
	PublishEvent(sessionID string, event GameEvent)
}
