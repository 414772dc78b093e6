package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rules are the tunable numbers of a game. Zero values mean "use the default".
type Rules struct {
	TickRate         int `json:"tick_rate,omitempty"`
	InputMemoryTicks int `json:"input_memory_ticks,omitempty"`
	FearTicks        int `json:"fear_ticks,omitempty"`
	PickupScore      int `json:"pickup_score,omitempty"`
	GhostScore       int `json:"ghost_score,omitempty"`
	// ReleaseIntervalTicks staggers ghost n's release by n intervals.
	// NoReleaseInterval (-1) releases every ghost at once.
	ReleaseIntervalTicks int   `json:"release_interval_ticks,omitempty"`
	TimeLimitSeconds     int   `json:"time_limit_seconds,omitempty"`
	Seed                 int64 `json:"seed,omitempty"`
}

// WithDefaults returns a copy of the rules with unset fields filled in.
// TimeLimitSeconds and Seed stay zero when unset: no limit, random seed.
func (r Rules) WithDefaults() Rules {
	if r.TickRate == 0 {
		r.TickRate = DefaultTickRate
	}
	if r.InputMemoryTicks == 0 {
		r.InputMemoryTicks = DefaultInputMemoryTicks
	}
	if r.FearTicks == 0 {
		r.FearTicks = DefaultFearTicks
	}
	if r.PickupScore == 0 {
		r.PickupScore = DefaultPickupScore
	}
	if r.GhostScore == 0 {
		r.GhostScore = DefaultGhostScore
	}
	if r.ReleaseIntervalTicks == 0 {
		r.ReleaseIntervalTicks = DefaultReleaseIntervalTicks
	}
	return r
}

// ReleaseDelay returns how many ticks ghost i waits in the spawn.
func (r Rules) ReleaseDelay(i int) int {
	interval := r.WithDefaults().ReleaseIntervalTicks
	if interval < 0 {
		return 0
	}
	return i * interval
}

// TimeLimitTicks converts the time limit into ticks; 0 means unlimited.
func (r Rules) TimeLimitTicks() uint64 {
	if r.TimeLimitSeconds <= 0 {
		return 0
	}
	return uint64(r.TimeLimitSeconds) * uint64(r.WithDefaults().TickRate)
}

// MapConfig describes one level
type MapConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CellSize    int    `json:"cell_size,omitempty"`
	PacmanStart Cell   `json:"pacman_start"`
	PowerUps    []Cell `json:"power_ups"`
	// Dots lists dot cells explicitly. A nil list places a dot on every
	// path cell except Pac-Man's start and the power-up cells.
	Dots  []Cell `json:"dots"`
	Cells string `json:"cells"`
	// Ghosts names one policy per ghost; nil means DefaultGhosts.
	Ghosts []string `json:"ghosts"`
	Theme  string   `json:"theme,omitempty"`
	Rules  Rules    `json:"rules"`
}

// EffectiveCellSize returns the configured cell size or the default.
func (c *MapConfig) EffectiveCellSize() int {
	if c.CellSize == 0 {
		return DefaultCellSize
	}
	return c.CellSize
}

// GhostPolicies returns the ghost lineup, falling back to DefaultGhosts.
func (c *MapConfig) GhostPolicies() []string {
	if c.Ghosts == nil {
		return DefaultGhosts
	}
	return c.Ghosts
}

// ValidateMapConfig checks that a map config can build a playable game
func ValidateMapConfig(config *MapConfig) error {
	if config == nil {
		return invalidMap("config is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return invalidMap("name is required")
	}

	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return invalidMap("width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return invalidMap("height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}
	if config.CellSize < 0 {
		return invalidMap("cell_size must not be negative, got %d", config.CellSize)
	}

	grid, err := NewGridMap(config.Width, config.Height, config.EffectiveCellSize(), config.Cells)
	if err != nil {
		return err
	}

	if err := checkCell(grid, "pacman_start", config.PacmanStart, Path, GhostSpawn); err != nil {
		return err
	}
	for i, c := range config.PowerUps {
		if err := checkCell(grid, fmt.Sprintf("power_ups[%d]", i), c, Path); err != nil {
			return err
		}
	}
	for i, c := range config.Dots {
		if err := checkCell(grid, fmt.Sprintf("dots[%d]", i), c, Path, GhostSpawn); err != nil {
			return err
		}
	}

	ghosts := config.GhostPolicies()
	if len(ghosts) > MaxGhosts {
		return invalidMap("at most %d ghosts allowed, got %d", MaxGhosts, len(ghosts))
	}
	for i, name := range ghosts {
		if _, err := NewPolicy(name, nil); err != nil {
			return invalidMap("ghosts[%d]: %v", i, err)
		}
	}

	if config.Theme != "" {
		if _, ok := ThemeByName(config.Theme); !ok {
			return invalidMap("unknown theme %q", config.Theme)
		}
	}

	r := config.Rules
	if r.TickRate != 0 && (r.TickRate < MinTickRate || r.TickRate > MaxTickRate) {
		return invalidMap("rules.tick_rate must be between %d and %d, got %d", MinTickRate, MaxTickRate, r.TickRate)
	}
	for name, v := range map[string]int{
		"input_memory_ticks": r.InputMemoryTicks,
		"fear_ticks":         r.FearTicks,
		"pickup_score":       r.PickupScore,
		"ghost_score":        r.GhostScore,
		"time_limit_seconds": r.TimeLimitSeconds,
	} {
		if v < 0 {
			return invalidMap("rules.%s must not be negative, got %d", name, v)
		}
	}
	if r.ReleaseIntervalTicks < NoReleaseInterval {
		return invalidMap("rules.release_interval_ticks must be %d or more, got %d", NoReleaseInterval, r.ReleaseIntervalTicks)
	}

	return nil
}

func checkCell(grid *GridMap, field string, c Cell, allowed ...CellKind) error {
	kind, err := grid.Kind(c)
	if err != nil {
		return invalidMap("%s %s is outside the grid", field, c)
	}
	for _, k := range allowed {
		if kind == k {
			return nil
		}
	}
	return invalidMap("%s %s is a %s cell", field, c, kind)
}

// LoadMapConfig loads a map configuration from a JSON file
func LoadMapConfig(filename string) (*MapConfig, error) {
	// CONFIG_DIR replaces the default configs/ directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseMapConfig(data)
}

// ParseMapConfig decodes and validates a JSON map configuration
func ParseMapConfig(data []byte) (*MapConfig, error) {
	var config MapConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	if err := ValidateMapConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a map configuration by name from the configs
// directory. The built-in classic map is used when no file exists for it.
func LoadConfigByName(configName string) (*MapConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	dir := "configs"
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		dir = configDir
	}
	configPath := filepath.Join(dir, configName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if configName == ClassicMapName+".json" {
			return DefaultMapConfig(), nil
		}
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configName, err)
	}

	config, err := ParseMapConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// ClassicMapName is the name of the built-in map
const ClassicMapName = "classic"

// classicLayout is the 23x23 arcade maze: one gate above a five-cell ghost
// house and a wrap tunnel on row 11.
const classicLayout = "" +
	"11111111111111111111111" +
	"10001000000000000010001" +
	"10101011111011111010101" +
	"10000000100000100000001" +
	"11101010101110101010111" +
	"10001010101110101010111" +
	"10101010101110101010101" +
	"10001010000000001010001" +
	"11111010111111101011111" +
	"10000010000000001000001" +
	"10111110111211101111101" +
	"00000000133333100000000" +
	"10111110111111101111101" +
	"10000010000000001000001" +
	"11111010111111101011111" +
	"10001010000000001010001" +
	"10101010101110101010101" +
	"10001010101110101010111" +
	"11101010101110101010111" +
	"10000000100000100000001" +
	"10101011111011111010101" +
	"10001000000000000010001" +
	"11111111111111111111111"

// DefaultMapConfig returns the built-in classic map
func DefaultMapConfig() *MapConfig {
	return &MapConfig{
		Name:        ClassicMapName,
		Description: "The classic 23x23 maze with a central ghost house and a side tunnel",
		Width:       23,
		Height:      23,
		CellSize:    DefaultCellSize,
		PacmanStart: Cell{X: 11, Y: 15},
		PowerUps: []Cell{
			{X: 2, Y: 5}, {X: 21, Y: 6}, {X: 11, Y: 7}, {X: 21, Y: 16}, {X: 2, Y: 17},
		},
		Cells: classicLayout,
		Theme: DefaultThemeName,
	}
}
