package engine

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

// openRoomConfig is a 5x5 room: border walls, empty interior, a ghost spawn
// at (1,1) and one dot at (2,2).
func openRoomConfig() *MapConfig {
	return &MapConfig{
		Name:        "open_room",
		Description: "5x5 open room",
		Width:       5,
		Height:      5,
		PacmanStart: Cell{X: 1, Y: 1},
		PowerUps:    []Cell{},
		Dots:        []Cell{{X: 2, Y: 2}},
		Cells: "11111" +
			"13001" +
			"10001" +
			"10001" +
			"11111",
		Ghosts: []string{},
		Rules:  Rules{Seed: 7},
	}
}

func createTestEngine(t *testing.T, config *MapConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func tickN(e *GameEngine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func TestNewEngine(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())

	state := e.GetState()
	if state.Pacman.Pos != (Position{X: 20, Y: 20}) {
		t.Errorf("Expected Pac-Man at (20,20), got %+v", state.Pacman.Pos)
	}
	if state.Pacman.Moving {
		t.Error("Expected Pac-Man to start still")
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", e.GetScore())
	}
	if e.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if len(state.Dots) != 1 {
		t.Errorf("Expected 1 dot, got %d", len(state.Dots))
	}
	if len(state.Ghosts) != 0 {
		t.Errorf("Expected no ghosts, got %d", len(state.Ghosts))
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := openRoomConfig()
	config.Cells = "1111"

	_, err := NewEngine(config)
	if !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Expected ErrInvalidMap, got %v", err)
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(1))

	config := e.GetConfig()
	if config.Name != ClassicMapName {
		t.Errorf("Expected classic map, got %s", config.Name)
	}

	state := e.GetState()
	if len(state.Ghosts) != len(DefaultGhosts) {
		t.Errorf("Expected %d ghosts, got %d", len(DefaultGhosts), len(state.Ghosts))
	}
	if len(state.PowerUps) != 5 {
		t.Errorf("Expected 5 power-ups, got %d", len(state.PowerUps))
	}

	wantDots := CountCellKind(e.GetGrid(), Path) - 1 - len(config.PowerUps)
	if len(state.Dots) != wantDots {
		t.Errorf("Expected %d generated dots, got %d", wantDots, len(state.Dots))
	}
	for _, dot := range state.Dots {
		if dot == config.PacmanStart {
			t.Error("Expected no dot on Pac-Man's start cell")
		}
	}

	for i, gh := range state.Ghosts {
		if !gh.InSpawn {
			t.Errorf("Expected ghost %d to start in spawn", i)
		}
		if gh.ReleaseTicks != i*DefaultReleaseIntervalTicks {
			t.Errorf("Expected ghost %d release delay %d, got %d", i, i*DefaultReleaseIntervalTicks, gh.ReleaseTicks)
		}
	}
}

func TestNewEngine_ReleaseAtOnce(t *testing.T) {
	config := DefaultMapConfig()
	config.Rules.ReleaseIntervalTicks = NoReleaseInterval
	e := createTestEngine(t, config)

	state := e.GetState()
	if len(state.Ghosts) < 2 {
		t.Fatalf("Expected several ghosts, got %d", len(state.Ghosts))
	}
	for i, gh := range state.Ghosts {
		if gh.ReleaseTicks != 0 {
			t.Errorf("Expected ghost %d released immediately, got delay %d", i, gh.ReleaseTicks)
		}
	}

	e.Restart()
	for i, gh := range e.GetState().Ghosts {
		if gh.ReleaseTicks != 0 {
			t.Errorf("Expected ghost %d released immediately after restart, got delay %d", i, gh.ReleaseTicks)
		}
	}
}

func TestEngine_EndToEndDotPickup(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())

	e.Input(Right)
	// One tick to steer, then twenty pixels to reach the aligned cell (2,1)
	// but press DOWN while still short of it; the buffered press lands on
	// the intersection.
	tickN(e, 16)
	if got := e.GetState().Pacman.Pos; got != (Position{X: 35, Y: 20}) {
		t.Fatalf("Expected Pac-Man at (35,20), got %+v", got)
	}

	e.Input(Down)
	tickN(e, 5)
	state := e.GetState()
	if state.Pacman.Pos != (Position{X: 40, Y: 20}) {
		t.Fatalf("Expected Pac-Man aligned on (2,1), got %+v", state.Pacman.Pos)
	}
	if state.Pacman.Dir != Down {
		t.Fatalf("Expected buffered DOWN to apply at (2,1), got %s", state.Pacman.Dir)
	}

	tickN(e, 20)
	state = e.GetState()
	if state.Pacman.Pos != (Position{X: 40, Y: 40}) {
		t.Errorf("Expected Pac-Man at (2,2) pixel position (40,40), got %+v", state.Pacman.Pos)
	}
	if len(state.Dots) != 0 {
		t.Errorf("Expected the dot to be consumed, %d left", len(state.Dots))
	}
	if state.Score != DefaultPickupScore {
		t.Errorf("Expected score %d, got %d", DefaultPickupScore, state.Score)
	}
	if e.IsGameOver() {
		t.Error("Expected the game to continue")
	}
}

func TestEngine_TickAfterGameOver(t *testing.T) {
	e := createTestEngine(t, openRoomConfig())

	if !e.End(ReasonStopped) {
		t.Fatal("Expected first End to succeed")
	}
	if e.End(ReasonCaught) {
		t.Error("Expected second End to be ignored")
	}
	if e.GetState().Reason != ReasonStopped {
		t.Errorf("Expected reason %q, got %q", ReasonStopped, e.GetState().Reason)
	}

	before := e.GetState().Tick
	if e.Tick() {
		t.Error("Expected Tick to report no progress after game over")
	}
	if e.GetState().Tick != before {
		t.Error("Expected tick counter to stay put after game over")
	}
}

func TestEngine_TimeLimit(t *testing.T) {
	config := openRoomConfig()
	config.Rules.TickRate = 10
	config.Rules.TimeLimitSeconds = 2
	e := createTestEngine(t, config)

	tickN(e, 19)
	if e.IsGameOver() {
		t.Fatal("Expected game to run until the time limit")
	}
	e.Tick()
	if !e.IsGameOver() {
		t.Fatal("Expected game over at the time limit")
	}

	result := e.Result()
	if result.Reason != ReasonTimeout {
		t.Errorf("Expected reason %q, got %q", ReasonTimeout, result.Reason)
	}
	if result.Ticks != 20 {
		t.Errorf("Expected 20 ticks, got %d", result.Ticks)
	}
}

func TestEngine_CaptureSymmetry(t *testing.T) {
	t.Run("normal ghost ends the game", func(t *testing.T) {
		config := openRoomConfig()
		config.Ghosts = []string{PolicyChase}
		e := createTestEngine(t, config)

		gh := e.GetState().Ghosts[0]
		gh.Pos = e.GetState().Pacman.Pos
		gh.ReleaseTicks = 100

		e.Tick()
		if !e.IsGameOver() {
			t.Fatal("Expected contact with a normal ghost to end the game")
		}
		if e.GetState().Reason != ReasonCaught {
			t.Errorf("Expected reason %q, got %q", ReasonCaught, e.GetState().Reason)
		}
	})

	t.Run("feared ghost is captured", func(t *testing.T) {
		config := openRoomConfig()
		config.Ghosts = []string{PolicyChase}
		e := createTestEngine(t, config)

		gh := e.GetState().Ghosts[0]
		gh.Pos = Position{X: 60, Y: 60}
		gh.InSpawn = false
		gh.FearTicks = 50
		gh.ReleaseTicks = 100
		e.GetState().Pacman.Pos = gh.Pos

		e.Tick()
		if e.IsGameOver() {
			t.Fatal("Expected contact with a feared ghost not to end the game")
		}
		if e.GetScore() != DefaultGhostScore {
			t.Errorf("Expected score %d, got %d", DefaultGhostScore, e.GetScore())
		}
		if gh.Pos != (Position{X: 20, Y: 20}) {
			t.Errorf("Expected ghost back on the spawn cell, got %+v", gh.Pos)
		}
		if !gh.InSpawn || gh.FearTicks != 0 || gh.Dir != None {
			t.Errorf("Expected ghost reset to spawn exit, got %+v", gh)
		}
	})
}

func TestEngine_FearExpiresForAllGhosts(t *testing.T) {
	// Ghosts are walled into their spawn cells so they never reach Pac-Man.
	config := &MapConfig{
		Name:        "fear",
		Width:       7,
		Height:      5,
		PacmanStart: Cell{X: 1, Y: 1},
		PowerUps:    []Cell{{X: 2, Y: 1}},
		Dots:        []Cell{},
		Cells: "1111111" +
			"1000001" +
			"1111111" +
			"1313131" +
			"1111111",
		Ghosts: []string{PolicyChase, PolicyRandom, PolicyChase},
		Rules:  Rules{FearTicks: 30, ReleaseIntervalTicks: 1, Seed: 3},
	}
	e := createTestEngine(t, config)

	e.Input(Right)
	for i := 0; i < 100 && len(e.GetState().PowerUps) > 0; i++ {
		e.Tick()
	}
	if len(e.GetState().PowerUps) != 0 {
		t.Fatal("Expected Pac-Man to eat the power-up")
	}

	for _, gh := range e.GetState().Ghosts {
		if gh.FearTicks != 30 {
			t.Errorf("Expected ghost %d fear 30, got %d", gh.ID, gh.FearTicks)
		}
	}

	tickN(e, 29)
	for _, gh := range e.GetState().Ghosts {
		if !gh.Feared() {
			t.Errorf("Expected ghost %d still feared after 29 ticks", gh.ID)
		}
	}

	e.Tick()
	for _, gh := range e.GetState().Ghosts {
		if gh.Feared() {
			t.Errorf("Expected ghost %d fear to expire after 30 ticks, got %d left", gh.ID, gh.FearTicks)
		}
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected power-ups to give no score, got %d", e.GetScore())
	}
}

func TestEngine_RestartIdempotent(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(42))
	initial := e.Snapshot()

	e.Input(Left)
	tickN(e, 150)

	e.Restart()
	first := e.Snapshot()
	e.Restart()
	second := e.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical states after two restarts\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(initial, first) {
		t.Error("Expected restart to reproduce the initial state")
	}
}

func TestEngine_RestartReplaysSameGame(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(99))

	play := func() *Snapshot {
		e.Restart()
		inputs := []Direction{Left, Up, Right, Down}
		for i := 0; i < 600 && !e.IsGameOver(); i++ {
			if i%60 == 0 {
				e.Input(inputs[(i/60)%len(inputs)])
			}
			e.Tick()
		}
		return e.Snapshot()
	}

	a := play()
	b := play()
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected the same seed and inputs to replay the same game")
	}
}

func TestEngine_PacmanMovesOnePixelPerTick(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(5))
	grid := e.GetGrid()
	wrapJump := (grid.Width() - 1) * grid.CellSize()
	rng := rand.New(rand.NewPCG(1, 2))

	prev := e.GetState().Pacman.Pos
	for i := 0; i < 3000 && !e.IsGameOver(); i++ {
		if i%15 == 0 {
			e.Input(Directions[rng.IntN(len(Directions))])
		}
		e.Tick()

		cur := e.GetState().Pacman.Pos
		dx, dy := abs(cur.X-prev.X), abs(cur.Y-prev.Y)
		switch {
		case dx+dy <= 1:
		case dy == 0 && dx == wrapJump:
		default:
			t.Fatalf("Tick %d: Pac-Man jumped from %+v to %+v", e.GetState().Tick, prev, cur)
		}
		prev = cur
	}
}

func TestEngine_GhostsMoveOnePixelPerTick(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(11))
	grid := e.GetGrid()
	wrapJump := (grid.Width() - 1) * grid.CellSize()

	prev := make([]Position, len(e.GetState().Ghosts))
	for i, gh := range e.GetState().Ghosts {
		prev[i] = gh.Pos
	}

	for i := 0; i < 2000 && !e.IsGameOver(); i++ {
		e.Tick()
		for j, gh := range e.GetState().Ghosts {
			dx, dy := abs(gh.Pos.X-prev[j].X), abs(gh.Pos.Y-prev[j].Y)
			captured := gh.InSpawn && gh.Dir == None
			if dx+dy > 1 && !(dy == 0 && dx == wrapJump) && !captured {
				t.Fatalf("Tick %d: ghost %d jumped from %+v to %+v", e.GetState().Tick, j, prev[j], gh.Pos)
			}
			if !grid.Aligned(gh.Pos) && gh.Dir == None {
				t.Fatalf("Tick %d: ghost %d stopped between cells at %+v", e.GetState().Tick, j, gh.Pos)
			}
			prev[j] = gh.Pos
		}
	}
}

func TestEngine_Snapshot(t *testing.T) {
	e := NewEngineWithDefaults(WithSeed(1))
	snap := e.Snapshot()

	if snap.Width != 23 || snap.Height != 23 || snap.CellSize != DefaultCellSize {
		t.Errorf("Expected 23x23 grid of %dpx cells, got %dx%d of %d", DefaultCellSize, snap.Width, snap.Height, snap.CellSize)
	}
	if snap.Pacman.X != 11*DefaultCellSize || snap.Pacman.Y != 15*DefaultCellSize {
		t.Errorf("Expected Pac-Man at (220,300), got (%d,%d)", snap.Pacman.X, snap.Pacman.Y)
	}
	if snap.Theme.Name != DefaultThemeName {
		t.Errorf("Expected default theme, got %q", snap.Theme.Name)
	}
	if len(snap.Ghosts) != 4 {
		t.Fatalf("Expected 4 ghosts, got %d", len(snap.Ghosts))
	}
	if snap.Ghosts[0].State != StateSpawnExit.String() {
		t.Errorf("Expected ghost 0 in spawn exit, got %s", snap.Ghosts[0].State)
	}

	// The snapshot must not alias live state.
	snap.Dots[0] = Cell{X: -1, Y: -1}
	if e.GetState().Dots[0] == (Cell{X: -1, Y: -1}) {
		t.Error("Expected snapshot dots to be a copy")
	}
}
