package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

var (
	// ErrRealtimeSession is returned when a manual operation targets a
	// session driven by its own loop
	ErrRealtimeSession = errors.New("session runs in real time")

	// ErrInvalidTicks is returned for a step of fewer than one tick
	ErrInvalidTicks = errors.New("ticks must be at least 1")

	// ErrInvalidDirection is returned for unknown input directions
	ErrInvalidDirection = errors.New("invalid direction")
)

// CreateSessionRequest describes a new session
type CreateSessionRequest struct {
	ConfigName string `json:"config,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	Realtime   bool   `json:"realtime"`
	Seed       int64  `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	PlayerID       string            `json:"player_id"`
	ConfigName     string            `json:"config_name"`
	Realtime       bool              `json:"realtime"`
	Running        bool              `json:"running"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot  `json:"snapshot"`
	MapConfig      *engine.MapConfig `json:"map_config,omitempty"`
}

// InputResult acknowledges a buffered direction
type InputResult struct {
	Accepted  bool   `json:"accepted"`
	Direction string `json:"direction"`
	Tick      uint64 `json:"tick"`
	Message   string `json:"message,omitempty"`
}

// StepResult contains the result of advancing a manual session
type StepResult struct {
	TicksRequested int              `json:"ticks_requested"`
	TicksExecuted  int              `json:"ticks_executed"`
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	ScoreDelta     int              `json:"score_delta"`
	DotsEaten      int              `json:"dots_eaten"`
	GhostsEaten    int              `json:"ghosts_eaten"`
	GameOver       bool             `json:"game_over"`
	Reason         engine.EndReason `json:"reason,omitempty"`
	Events         []GameEvent      `json:"events,omitempty"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// Event types
const (
	EventGameOver = "game_over"
	EventRestart  = "restart"
	EventScore    = "score_submitted"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Score     int              `json:"score,omitempty"`
	Reason    engine.EndReason `json:"reason,omitempty"`
}

// ConfigInfo provides information about a map configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Ghosts      int    `json:"ghosts"`
	PowerUps    int    `json:"power_ups"`
	Theme       string `json:"theme,omitempty"`
}
