package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/scores"
)

// submitTimeout bounds a single score submission
const submitTimeout = 10 * time.Second

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	publisher SnapshotPublisher
	submitter scores.Submitter
	board     *scores.Leaderboard
	interval  time.Duration
	log       *log.Entry
	mu        sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithPublisher streams realtime snapshots and events to p.
func WithPublisher(p SnapshotPublisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithSubmitter hands finished games to sub in addition to the leaderboard.
func WithSubmitter(sub scores.Submitter) Option {
	return func(s *gameServiceImpl) { s.submitter = sub }
}

// WithLeaderboard replaces the in-memory leaderboard.
func WithLeaderboard(board *scores.Leaderboard) Option {
	return func(s *gameServiceImpl) { s.board = board }
}

// WithTickInterval overrides the loop interval of realtime sessions.
func WithTickInterval(d time.Duration) Option {
	return func(s *gameServiceImpl) { s.interval = d }
}

// WithLogger sets the service logger.
func WithLogger(entry *log.Entry) Option {
	return func(s *gameServiceImpl) { s.log = entry }
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		board:    scores.NewLeaderboard(scores.DefaultLeaderboardSize),
		log:      log.WithField("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session and starts its loop when realtime
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.MapConfig
	var err error
	if req.ConfigName != "" {
		config, err = s.configs.LoadConfig(req.ConfigName)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", req.ConfigName, configIDs, err)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", req.ConfigName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := req.ConfigName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = "anon-" + uuid.NewString()
	}

	opts := []SessionOption{
		WithPlayer(playerID),
		WithConfigID(configID),
		WithRealtime(req.Realtime),
		WithEngineOptions(engine.WithLogger(s.log.WithField("component", "engine"))),
	}
	if req.Seed != 0 {
		opts = append(opts, WithEngineOptions(engine.WithSeed(req.Seed)))
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if sess.Realtime {
		if err := sess.Start(s.loopOptions(sess)...); err != nil {
			_ = s.sessions.Delete(sess.ID)
			return nil, fmt.Errorf("failed to start session loop: %w", err)
		}
	}

	s.log.WithFields(log.Fields{
		"session":  sess.ID,
		"config":   configID,
		"player":   playerID,
		"realtime": sess.Realtime,
	}).Info("session created")

	return s.sessionInfo(sess, true), nil
}

// loopOptions wires a realtime session's loop to the publisher and the
// score collaborator
func (s *gameServiceImpl) loopOptions(sess *Session) []engine.LoopOption {
	opts := []engine.LoopOption{
		engine.WithLoopLogger(s.log.WithFields(log.Fields{"component": "loop", "session": sess.ID})),
		engine.WithGameOver(func(r engine.Result) { s.finish(sess, r) }),
	}
	if s.publisher != nil {
		opts = append(opts, engine.WithTickHandler(func(snap *engine.Snapshot) {
			s.publisher.PublishSnapshot(sess.ID, snap)
		}))
	}
	if s.interval > 0 {
		opts = append(opts, engine.WithInterval(s.interval))
	}
	return opts
}

// finish submits the result of a finished game and announces it. It runs on
// the loop goroutine for realtime sessions, so it must not take the session
// lock.
func (s *gameServiceImpl) finish(sess *Session, result engine.Result) GameEvent {
	entry := s.log.WithFields(log.Fields{
		"session": sess.ID,
		"player":  sess.PlayerID,
		"score":   result.Score,
		"reason":  result.Reason,
	})

	sub := scores.NewSubmission(sess.PlayerID, sess.ID, sess.Config.Name, result)
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	submitters := scores.Multi{s.board, s.submitter}
	if err := submitters.Submit(ctx, sub); err != nil {
		entry.WithError(err).Warn("score submission failed")
	} else {
		entry.Info("score submitted")
	}

	event := GameEvent{
		Type:      EventGameOver,
		Message:   fmt.Sprintf("Game over (%s) with %d points", result.Reason, result.Score),
		Timestamp: time.Now(),
		Score:     result.Score,
		Reason:    result.Reason,
	}
	if s.publisher != nil {
		s.publisher.PublishEvent(sess.ID, event)
	}
	return event
}

func (s *gameServiceImpl) sessionInfo(sess *Session, withConfig bool) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		PlayerID:       sess.PlayerID,
		ConfigName:     sess.ConfigID,
		Realtime:       sess.Realtime,
		Running:        sess.Running(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		Snapshot:       sess.Snapshot(),
	}
	if info.ConfigName == "" {
		info.ConfigName = s.getConfigID(sess.Config.Name)
	}
	if withConfig {
		info.MapConfig = sess.Config
	}
	return info
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	_ = s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, false))
	}
	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Input buffers a direction for the session's next tick
func (s *gameServiceImpl) Input(ctx context.Context, sessionID, direction string) (*InputResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, direction)
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	snap := sess.Snapshot()
	if snap.GameOver {
		return &InputResult{
			Direction: d.String(),
			Tick:      snap.Tick,
			Message:   "game is over, restart to play again",
		}, nil
	}

	sess.Input(d)
	return &InputResult{
		Accepted:  true,
		Direction: d.String(),
		Tick:      snap.Tick,
	}, nil
}

// Step advances a manual session by a number of ticks
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, ticks int) (*StepResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ticks < 1 {
		return nil, ErrInvalidTicks
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if sess.Realtime {
		return nil, fmt.Errorf("cannot step session %s: %w", sessionID, ErrRealtimeSession)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	result := &StepResult{TicksRequested: ticks}
	if ticks > engine.MaxStepTicks {
		result.Truncated = true
		result.Limit = engine.MaxStepTicks
		ticks = engine.MaxStepTicks
	}

	start := sess.Snapshot()
	executed, final := sess.Step(ticks)
	end := sess.Snapshot()

	result.TicksExecuted = executed
	result.ScoreDelta = end.Score - start.Score
	result.DotsEaten = end.DotsEaten - start.DotsEaten
	result.GhostsEaten = end.GhostsEaten - start.GhostsEaten
	result.GameOver = end.GameOver
	result.Reason = end.Reason
	result.Snapshot = end

	if s.publisher != nil {
		s.publisher.PublishSnapshot(sess.ID, end)
	}
	if final != nil {
		result.Events = append(result.Events, s.finish(sess, *final))
	}
	return result, nil
}

// Restart resets a session to its initial state
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Restart(); err != nil {
		return nil, fmt.Errorf("failed to restart session %s: %w", sessionID, err)
	}

	snap := sess.Snapshot()
	if s.publisher != nil {
		s.publisher.PublishEvent(sess.ID, GameEvent{
			Type:      EventRestart,
			Message:   "Game restarted",
			Timestamp: time.Now(),
		})
		s.publisher.PublishSnapshot(sess.ID, snap)
	}
	s.log.WithField("session", sessionID).Info("session restarted")
	return snap, nil
}

// GetSnapshot retrieves the latest render snapshot
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess.Snapshot(), nil
}

// ListConfigs returns available map configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific map configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MapConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a map configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MapConfig) error {
	if config == nil {
		return errors.New("config is required")
	}
	return s.configs.SaveConfig(configName, config)
}

// ListThemes returns the available color themes
func (s *gameServiceImpl) ListThemes(ctx context.Context) []engine.ColorTheme {
	return engine.Themes()
}

// Leaderboard returns the best recorded scores
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]scores.Submission, error) {
	return s.board.Top(limit), nil
}
