package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"name": "room",
		"description": "Test room",
		"width": 5,
		"height": 5,
		"pacman_start": {"x": 1, "y": 1},
		"power_ups": [{"x": 3, "y": 1}],
		"cells": "1111110001100011003111111",
		"ghosts": ["chase"]
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "test_config.json" {
		t.Errorf("Expected file name test_config.json, got %s", result.File)
	}
	for _, want := range []string{"Name: room", "Grid: 5x5", "Ghosts: chase", "Connectivity"} {
		if !hasError(result, want) {
			t.Errorf("Expected info %q, got %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid json", `{"name": "test", invalid json}`, "Invalid JSON"},
		{"no spawn", `{"name":"x","width":5,"height":5,"pacman_start":{"x":1,"y":1},"cells":"1111110001100011000111111"}`, "spawn"},
		{"bad digit", `{"name":"x","width":5,"height":5,"pacman_start":{"x":1,"y":1},"cells":"1111110001100011007111111"}`, "digit"},
		{"start in wall", `{"name":"x","width":5,"height":5,"pacman_start":{"x":0,"y":0},"cells":"1111110001100011003111111"}`, "invalid map"},
		{"unknown policy", `{"name":"x","width":5,"height":5,"pacman_start":{"x":1,"y":1},"cells":"1111110001100011003111111","ghosts":["teleport"]}`, "invalid map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writeConfig(t, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateConfig_UnreachableDot(t *testing.T) {
	// the right column is walled off from the start
	path := writeConfig(t, `{
		"name": "split",
		"width": 5,
		"height": 5,
		"pacman_start": {"x": 1, "y": 1},
		"power_ups": [],
		"dots": [{"x": 3, "y": 1}],
		"cells": "1111110101101011013111111"
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected unreachable dot to invalidate the map")
	}
	if !hasError(result, "Unreachable: Dot at (3,1)") {
		t.Errorf("Expected the unreachable dot listed, got %v", result.Errors)
	}
}

func TestValidateConnectivity_Tunnel(t *testing.T) {
	// the two halves only meet through the wrap-around tunnel on row 1
	g, err := engine.NewGridMap(5, 3, 20, "11111"+"01310"+"11111")
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}

	result := validateConnectivity(g, engine.Cell{X: 0, Y: 1}, []engine.Cell{{X: 4, Y: 1}}, nil)
	if !result.Valid {
		t.Errorf("Expected the tunnel to connect both sides, got %v", result.Errors)
	}
}

func TestValidateConfig_BuiltinClassic(t *testing.T) {
	classic := engine.DefaultMapConfig()
	g, err := engine.NewGridMap(classic.Width, classic.Height, engine.DefaultCellSize, classic.Cells)
	if err != nil {
		t.Fatalf("Failed to build classic grid: %v", err)
	}
	result := validateConnectivity(g, classic.PacmanStart, nil, classic.PowerUps)
	if !result.Valid {
		t.Errorf("Expected every classic power-up reachable, got %v", result.Errors)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	if got := configDir(nil); got != "../configs" {
		t.Errorf("Expected ../configs, got %s", got)
	}

	t.Setenv("CONFIG_DIR", "/maps")
	if got := configDir(nil); got != "/maps" {
		t.Errorf("Expected CONFIG_DIR, got %s", got)
	}
	if got := configDir([]string{"./here"}); got != "./here" {
		t.Errorf("Expected argument to win, got %s", got)
	}
}
