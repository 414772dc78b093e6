// Command validate provides a small CLI that validates map configuration JSON
// files in the ../configs directory (or CONFIG_DIR, also read from ../.env).
// It checks:
//   - JSON structure and required fields
//   - Grid size and allowed cell digits (0 path, 1 wall, 2 gate, 3 ghost spawn)
//   - Presence of at least one ghost spawn
//   - Pac-Man's start, dots and power-ups on walkable cells
//   - Ghost policies, theme and rules
//   - Connectivity: every dot and power-up is reachable from Pac-Man's start
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single map configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseMapConfig(data)
	if err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateMapConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	e, err := engine.NewEngine(config)
	if err != nil {
		result.fail("Failed to build engine: %v", err)
		return result
	}

	// Connectivity validation - every pickup must be reachable from the start
	connectivity := validateConnectivity(e.GetGrid(), config.PacmanStart, e.GetState().Dots, config.PowerUps)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	// Add informational data
	if result.Valid {
		g := e.GetGrid()
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d, cell size %d", g.Width(), g.Height(), g.CellSize())
		result.info("Pac-Man start: %s", config.PacmanStart)
		result.info("Dots: %d, Power-ups: %d", len(e.GetState().Dots), len(config.PowerUps))
		result.info("Ghosts: %s", strings.Join(config.GhostPolicies(), ", "))
		result.info("Spawn cells: %d, Gates: %d, Tunnels: %d", len(g.Spawns()), len(g.Gates()), len(engine.TunnelCells(g)))
	}

	return result
}

// validateConnectivity ensures every dot and power-up can be reached from
// Pac-Man's start, following tunnels.
func validateConnectivity(g *engine.GridMap, start engine.Cell, dots, powerUps []engine.Cell) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	reachable := engine.ReachableCells(g, start)

	var unreachable []string
	for _, c := range dots {
		if !reachable.Has(c) {
			unreachable = append(unreachable, fmt.Sprintf("Dot at %s", c))
		}
	}
	for _, c := range powerUps {
		if !reachable.Has(c) {
			unreachable = append(unreachable, fmt.Sprintf("Power-up at %s", c))
		}
	}

	total := len(dots) + len(powerUps)
	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d pickups unreachable from Pac-Man's start", len(unreachable), total)
		for _, u := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", u))
		}
	} else {
		result.info("Connectivity: All %d pickups reachable from start (%d walkable cells)", total, reachable.Size())
	}

	return result
}

// configDir resolves the directory to scan: the first argument, then
// CONFIG_DIR, then ../configs.
func configDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "../configs"
}

// main scans the config directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	_ = godotenv.Load("../.env")

	dir := configDir(os.Args[1:])
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", dir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
