package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateMapConfig_Default(t *testing.T) {
	if err := ValidateMapConfig(DefaultMapConfig()); err != nil {
		t.Fatalf("Expected built-in classic map to be valid: %v", err)
	}
	if err := ValidateMapConfig(openRoomConfig()); err != nil {
		t.Fatalf("Expected open room to be valid: %v", err)
	}
}

func TestValidateMapConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MapConfig)
	}{
		{"missing name", func(c *MapConfig) { c.Name = "" }},
		{"too narrow", func(c *MapConfig) { c.Width = 2 }},
		{"too tall", func(c *MapConfig) { c.Height = MaxGridSize + 1 }},
		{"negative cell size", func(c *MapConfig) { c.CellSize = -1 }},
		{"layout size mismatch", func(c *MapConfig) { c.Cells = c.Cells[:len(c.Cells)-1] }},
		{"bad digit", func(c *MapConfig) { c.Cells = "9" + c.Cells[1:] }},
		{"no spawn", func(c *MapConfig) { c.Cells = "11111" + "10001" + "10001" + "10001" + "11111" }},
		{"pacman in wall", func(c *MapConfig) { c.PacmanStart = Cell{0, 0} }},
		{"pacman outside", func(c *MapConfig) { c.PacmanStart = Cell{9, 9} }},
		{"power-up in wall", func(c *MapConfig) { c.PowerUps = []Cell{{4, 4}} }},
		{"dot outside", func(c *MapConfig) { c.Dots = []Cell{{-1, 2}} }},
		{"unknown ghost policy", func(c *MapConfig) { c.Ghosts = []string{"teleport"} }},
		{"too many ghosts", func(c *MapConfig) { c.Ghosts = make([]string, MaxGhosts+1) }},
		{"unknown theme", func(c *MapConfig) { c.Theme = "Neon" }},
		{"tick rate too high", func(c *MapConfig) { c.Rules.TickRate = MaxTickRate + 1 }},
		{"negative fear", func(c *MapConfig) { c.Rules.FearTicks = -5 }},
		{"release interval below disabled", func(c *MapConfig) { c.Rules.ReleaseIntervalTicks = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := openRoomConfig()
			tt.mutate(config)
			if err := ValidateMapConfig(config); !errors.Is(err, ErrInvalidMap) {
				t.Errorf("Expected ErrInvalidMap, got %v", err)
			}
		})
	}
}

func TestRules_WithDefaults(t *testing.T) {
	r := Rules{FearTicks: 120}.WithDefaults()

	if r.FearTicks != 120 {
		t.Errorf("Expected explicit fear ticks kept, got %d", r.FearTicks)
	}
	if r.TickRate != DefaultTickRate || r.InputMemoryTicks != DefaultInputMemoryTicks {
		t.Errorf("Expected default tick rate and input memory, got %+v", r)
	}
	if r.PickupScore != DefaultPickupScore || r.GhostScore != DefaultGhostScore {
		t.Errorf("Expected default scores, got %+v", r)
	}
	if r.TimeLimitTicks() != 0 {
		t.Errorf("Expected no time limit, got %d ticks", r.TimeLimitTicks())
	}

	r.TimeLimitSeconds = 3
	if r.TimeLimitTicks() != 3*DefaultTickRate {
		t.Errorf("Expected %d ticks, got %d", 3*DefaultTickRate, r.TimeLimitTicks())
	}
}

func TestRules_ReleaseDelay(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		ghost    int
		want     int
	}{
		{"default interval", 0, 2, 2 * DefaultReleaseIntervalTicks},
		{"explicit interval", 30, 3, 90},
		{"first ghost never waits", 30, 0, 0},
		{"disabled", NoReleaseInterval, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rules{ReleaseIntervalTicks: tt.interval}
			if got := r.ReleaseDelay(tt.ghost); got != tt.want {
				t.Errorf("Expected delay %d, got %d", tt.want, got)
			}
		})
	}
}

func TestValidateMapConfig_ReleaseDisabled(t *testing.T) {
	config := openRoomConfig()
	config.Rules.ReleaseIntervalTicks = NoReleaseInterval
	if err := ValidateMapConfig(config); err != nil {
		t.Errorf("Expected disabled release interval to validate, got %v", err)
	}
}

func TestParseMapConfig(t *testing.T) {
	data := []byte(`{
		"name": "json_room",
		"description": "room from json",
		"width": 5,
		"height": 5,
		"pacman_start": {"x": 1, "y": 1},
		"power_ups": [{"x": 3, "y": 3}],
		"dots": [],
		"cells": "1111113001100011000111111",
		"ghosts": ["random"],
		"theme": "Sunny Milk",
		"rules": {"fear_ticks": 90}
	}`)

	config, err := ParseMapConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	state := e.GetState()
	if len(state.Dots) != 0 {
		t.Errorf("Expected an explicit empty dot list to stay empty, got %d dots", len(state.Dots))
	}
	if len(state.Ghosts) != 1 || state.Ghosts[0].PolicyName() != PolicyRandom {
		t.Errorf("Expected one random ghost, got %+v", state.Ghosts)
	}
	if e.GetRules().FearTicks != 90 {
		t.Errorf("Expected fear ticks 90, got %d", e.GetRules().FearTicks)
	}
	if e.Snapshot().Theme.Name != "Sunny Milk" {
		t.Errorf("Expected theme Sunny Milk, got %q", e.Snapshot().Theme.Name)
	}

	if _, err := ParseMapConfig([]byte(`{not json`)); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Expected ErrInvalidMap for malformed JSON, got %v", err)
	}
}

func TestParseMapConfig_GeneratedDots(t *testing.T) {
	data := []byte(`{
		"name": "generated",
		"width": 5,
		"height": 5,
		"pacman_start": {"x": 1, "y": 1},
		"power_ups": [{"x": 3, "y": 3}],
		"cells": "1111113001100011000111111"
	}`)

	config, err := ParseMapConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	e, err := NewEngine(config, WithSeed(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// 8 path cells less the power-up; the start is a spawn cell
	if got := len(e.GetState().Dots); got != 7 {
		t.Errorf("Expected 7 generated dots, got %d", got)
	}
	if got := len(e.GetState().Ghosts); got != len(DefaultGhosts) {
		t.Errorf("Expected default ghost lineup, got %d ghosts", got)
	}
}

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	data := `{"name":"room","width":5,"height":5,"pacman_start":{"x":1,"y":1},` +
		`"power_ups":[],"dots":[{"x":2,"y":2}],"cells":"1111113001100011000111111"}`
	if err := os.WriteFile(filepath.Join(dir, "room.json"), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfigByName("room")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "room" {
		t.Errorf("Expected name room, got %s", config.Name)
	}

	if _, err := LoadMapConfig("configs/room.json"); err != nil {
		t.Errorf("Expected CONFIG_DIR to redirect configs/ paths: %v", err)
	}

	if _, err := LoadConfigByName("missing"); err == nil {
		t.Error("Expected error for missing config")
	}

	classic, err := LoadConfigByName(ClassicMapName)
	if err != nil {
		t.Fatalf("Expected built-in classic fallback: %v", err)
	}
	if classic.Width != 23 {
		t.Errorf("Expected classic width 23, got %d", classic.Width)
	}
}

func TestThemes(t *testing.T) {
	themes := Themes()
	if len(themes) != 4 {
		t.Fatalf("Expected 4 themes, got %d", len(themes))
	}

	theme, ok := ThemeByName("Nanomachine")
	if !ok {
		t.Fatal("Expected Nanomachine theme")
	}
	if theme.Colors() != [3]string{"#abcdef", "#000000", "#ff0f0f"} {
		t.Errorf("Unexpected Nanomachine colors %v", theme.Colors())
	}

	if _, ok := ThemeByName("Neon"); ok {
		t.Error("Expected unknown theme lookup to fail")
	}
}
