package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

// Session represents an active game session. A realtime session owns a Loop
// that drives its engine; a manual session is advanced by Step.
type Session struct {
	ID        string
	PlayerID  string
	ConfigID  string
	Realtime  bool
	Engine    *engine.GameEngine
	Config    *engine.MapConfig
	CreatedAt time.Time

	// lastAccessed has its own lock so reads never wait on a running Step.
	accessMu     sync.RWMutex
	lastAccessed time.Time

	engineOpts []engine.Option
	loopOpts   []engine.LoopOption

	mu   sync.Mutex
	loop *engine.Loop
}

// SessionOption configures a new session
type SessionOption func(*Session)

// WithPlayer sets the player the session's scores are submitted for.
func WithPlayer(playerID string) SessionOption {
	return func(s *Session) { s.PlayerID = playerID }
}

// WithConfigID records the identifier the config was requested by.
func WithConfigID(id string) SessionOption {
	return func(s *Session) { s.ConfigID = id }
}

// WithRealtime marks the session as driven by a Loop.
func WithRealtime(realtime bool) SessionOption {
	return func(s *Session) { s.Realtime = realtime }
}

// WithEngineOptions passes options to the session's engine.
func WithEngineOptions(opts ...engine.Option) SessionOption {
	return func(s *Session) { s.engineOpts = append(s.engineOpts, opts...) }
}

// NewSession builds a session and its engine. The loop of a realtime session
// is not started until Start is called.
func NewSession(id string, config *engine.MapConfig, opts ...SessionOption) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:           id,
		Config:       config,
		CreatedAt:    now,
		lastAccessed: now,
	}
	for _, opt := range opts {
		opt(s)
	}

	eng, err := engine.NewEngine(config, s.engineOpts...)
	if err != nil {
		return nil, err
	}
	s.Engine = eng
	return s, nil
}

// Start launches the loop of a realtime session with opts. The options are
// kept so Restart can build the next loop the same way. Manual sessions
// ignore Start.
func (s *Session) Start(opts ...engine.LoopOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Realtime {
		return nil
	}
	if s.loop != nil && s.loop.Running() {
		return engine.ErrLoopRunning
	}
	s.loopOpts = opts
	return s.startLocked()
}

func (s *Session) startLocked() error {
	loop := engine.NewLoop(s.Engine, s.loopOpts...)
	if err := loop.Start(context.Background()); err != nil {
		return err
	}
	s.loop = loop
	return nil
}

// Stop halts the loop, if any. Loop hooks must not take the session lock.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loop != nil {
		s.loop.Stop()
	}
}

// Running reports whether the session's loop is ticking.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop != nil && s.loop.Running()
}

// Input buffers a direction for the next tick. Safe while the loop runs.
func (s *Session) Input(d engine.Direction) {
	s.Engine.Input(d)
}

// Step advances a manual session by up to ticks ticks. It returns how many
// ran and, when the game ended during the call, the final result.
func (s *Session) Step(ticks int) (executed int, final *engine.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOver := s.Engine.IsGameOver()
	for executed < ticks && s.Engine.Tick() {
		executed++
	}
	if !wasOver && s.Engine.IsGameOver() {
		r := s.Engine.Result()
		final = &r
	}
	return executed, final
}

// Restart stops the loop, resets the engine and, for realtime sessions,
// starts a fresh loop.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loop != nil {
		s.loop.Stop()
		s.loop = nil
	}
	s.Engine.Restart()
	if s.Realtime {
		return s.startLocked()
	}
	return nil
}

// Snapshot returns the latest published snapshot of a looped session, or a
// fresh one otherwise.
func (s *Session) Snapshot() *engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loop != nil {
		return s.loop.Snapshot()
	}
	return s.Engine.Snapshot()
}

// Touch records an access at t.
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time of the latest access.
func (s *Session) LastAccessed() time.Time {
	s.accessMu.RLock()
	defer s.accessMu.RUnlock()
	return s.lastAccessed
}
