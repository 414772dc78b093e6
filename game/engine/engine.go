package engine

import (
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Input may be called from any goroutine
	Input(direction Direction)

	// Simulation, owned by a single tick driver
	Tick() bool
	Restart()
	End(reason EndReason) bool

	// Game state
	GetState() *GameState
	IsGameOver() bool
	GetScore() int
	Snapshot() *Snapshot
	Result() Result

	// Configuration
	GetConfig() *MapConfig
	GetRules() Rules
	GetGrid() *GridMap
}

// GameState is the mutable state of one game. Only the tick driver touches it.
type GameState struct {
	Tick        uint64    `json:"tick"`
	Pacman      Player    `json:"pacman"`
	Ghosts      []*Ghost  `json:"ghosts"`
	Dots        []Cell    `json:"dots"`
	PowerUps    []Cell    `json:"power_ups"`
	Score       int       `json:"score"`
	DotsEaten   int       `json:"dots_eaten"`
	GhostsEaten int       `json:"ghosts_eaten"`
	GameOver    bool      `json:"game_over"`
	Reason      EndReason `json:"reason,omitempty"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	config   *MapConfig
	rules    Rules
	grid     *GridMap
	state    *GameState
	input    *InputBuffer
	resolver *CollisionResolver
	flee     GhostPolicy
	rng      *rand.Rand
	seed     uint64
	log      *log.Entry
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSeed fixes the RNG seed, overriding the map's rules.
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.seed = uint64(seed)
	}
}

// WithLogger sets the logger used for engine events.
func WithLogger(entry *log.Entry) Option {
	return func(e *GameEngine) {
		if entry != nil {
			e.log = entry
		}
	}
}

// NewEngine creates a new game engine with the provided configuration.
// Invalid configs abort construction with an error wrapping ErrInvalidMap.
func NewEngine(config *MapConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateMapConfig(config); err != nil {
		return nil, err
	}

	grid, err := NewGridMap(config.Width, config.Height, config.EffectiveCellSize(), config.Cells)
	if err != nil {
		return nil, err
	}

	rules := config.Rules.WithDefaults()
	e := &GameEngine{
		config: config,
		rules:  rules,
		grid:   grid,
		input:  NewInputBuffer(rules.InputMemoryTicks),
		flee:   FleePolicy{},
		seed:   uint64(rules.Seed),
		log:    log.WithField("component", "engine"),
	}
	if e.seed == 0 {
		e.seed = uint64(time.Now().UnixNano())
	}

	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("map", config.Name)

	e.reset()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in classic map
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultMapConfig(), opts...)
	if err != nil {
		// the built-in map is covered by tests
		panic(err)
	}
	return e
}

// reset rebuilds the initial state and re-seeds the RNG so every restart
// replays the same game for the same inputs.
func (e *GameEngine) reset() {
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed^0x9e3779b97f4a7c15))
	e.input.Reset()
	e.resolver = NewCollisionResolver(e.grid, e.rules, e.rng)
	e.state = InitGameStateFromConfig(e.config, e.grid, e.rules, e.rng)
}

// InitGameStateFromConfig creates the initial game state for a map
func InitGameStateFromConfig(config *MapConfig, grid *GridMap, rules Rules, rng *rand.Rand) *GameState {
	state := &GameState{
		Pacman:   Player{Pos: grid.PixelOf(config.PacmanStart)},
		PowerUps: append([]Cell{}, config.PowerUps...),
	}

	if config.Dots != nil {
		state.Dots = append([]Cell{}, config.Dots...)
	} else {
		state.Dots = generateDots(config, grid)
	}

	spawns := grid.Spawns()
	for i, name := range config.GhostPolicies() {
		policy, err := NewPolicy(name, rng)
		if err != nil {
			policy = ChasePolicy{}
		}
		state.Ghosts = append(state.Ghosts, &Ghost{
			ID:           i,
			Pos:          grid.PixelOf(spawns[i%len(spawns)]),
			InSpawn:      true,
			ReleaseTicks: rules.ReleaseDelay(i),
			Policy:       policy,
		})
	}

	return state
}

// generateDots places a dot on every path cell except Pac-Man's start and
// the power-up cells.
func generateDots(config *MapConfig, grid *GridMap) []Cell {
	skip := map[Cell]bool{config.PacmanStart: true}
	for _, c := range config.PowerUps {
		skip[c] = true
	}

	dots := []Cell{}
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			c := Cell{X: x, Y: y}
			if kind, _ := grid.Kind(c); kind == Path && !skip[c] {
				dots = append(dots, c)
			}
		}
	}
	return dots
}

// Input buffers a directional keypress. Safe for concurrent use.
func (e *GameEngine) Input(direction Direction) {
	e.input.Press(direction)
}

// Tick advances the game by one frame and reports whether it ran. Order:
// latch input, move Pac-Man, steer while the buffered press is live, age
// the buffer, update each ghost, resolve collisions.
func (e *GameEngine) Tick() bool {
	s := e.state
	if s.GameOver {
		return false
	}
	s.Tick++

	e.input.Latch()
	s.Pacman.Move(e.grid)
	if e.input.Active() {
		if err := s.Pacman.Steer(e.grid, e.input.Direction()); err != nil {
			e.log.WithField("tick", s.Tick).Debugf("turn rejected: %v", err)
		}
	}
	e.input.Decrement()

	pacman := e.grid.CellOf(s.Pacman.Pos)
	for _, gh := range s.Ghosts {
		if err := gh.Update(e.grid, pacman, e.flee); err != nil {
			e.log.WithField("tick", s.Tick).Debugf("ghost fallback: %v", err)
		}
	}

	contact := e.resolver.Resolve(s)
	if contact.PowerUps > 0 {
		e.log.WithFields(log.Fields{"tick": s.Tick, "fear_ticks": e.rules.FearTicks}).Debug("power-up eaten")
	}
	for _, id := range contact.Captured {
		e.log.WithFields(log.Fields{"tick": s.Tick, "ghost": id, "score": s.Score}).Debug("ghost captured")
	}

	switch {
	case contact.Fatal:
		e.log.WithFields(log.Fields{"tick": s.Tick, "ghost": contact.FatalBy}).Debug("caught by ghost")
		e.End(ReasonCaught)
	case e.rules.TimeLimitTicks() > 0 && s.Tick >= e.rules.TimeLimitTicks():
		e.End(ReasonTimeout)
	}

	return true
}

// Restart reinitializes the whole game. Restarting twice in a row yields
// identical states.
func (e *GameEngine) Restart() {
	e.reset()
	e.log.Debug("game restarted")
}

// End marks the game as over. It returns false if the game had already ended.
func (e *GameEngine) End(reason EndReason) bool {
	if e.state.GameOver {
		return false
	}
	e.state.GameOver = true
	e.state.Reason = reason
	e.log.WithFields(log.Fields{
		"reason": reason,
		"score":  e.state.Score,
		"tick":   e.state.Tick,
	}).Info("game over")
	return true
}

// GetState returns the live game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// Snapshot returns a render snapshot of the current state
func (e *GameEngine) Snapshot() *Snapshot {
	return NewSnapshot(e.state, e.grid, e.config)
}

// Result returns the current outcome
func (e *GameEngine) Result() Result {
	return Result{
		Score:       e.state.Score,
		Reason:      e.state.Reason,
		Ticks:       e.state.Tick,
		DotsEaten:   e.state.DotsEaten,
		GhostsEaten: e.state.GhostsEaten,
	}
}

// GetConfig returns the map configuration
func (e *GameEngine) GetConfig() *MapConfig {
	return e.config
}

// GetRules returns the effective rules
func (e *GameEngine) GetRules() Rules {
	return e.rules
}

// GetGrid returns the grid
func (e *GameEngine) GetGrid() *GridMap {
	return e.grid
}

// Seed returns the RNG seed restarts replay from
func (e *GameEngine) Seed() uint64 {
	return e.seed
}
