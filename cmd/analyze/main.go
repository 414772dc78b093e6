// Command analyze prints quick, human-readable heuristics about the map
// files in the project's configs directory. It summarizes dimensions, cell
// kinds, pickups, tunnels and dead ends, and highlights dots Pac-Man cannot
// reach or cannot reach while a power-up is still active.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

// Analysis holds the heuristics computed for one map.
type Analysis struct {
	Name        string
	Width       int
	Height      int
	Paths       int
	Walls       int
	Gates       int
	Spawns      int
	Dots        int
	PowerUps    int
	Ghosts      int
	Tunnels     []engine.Cell
	DeadEnds    []engine.Cell
	Reachable   int
	Unreachable []engine.Cell
	// FarDots are dots farther from every power-up than Pac-Man travels
	// during one fear period.
	FarDots     []engine.Cell
	NearestDot  engine.Cell
	NearestDist int
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	} else if env := os.Getenv("CONFIG_DIR"); env != "" {
		dir = env
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error listing configs: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Printf("No map files in %s, analyzing the built-in classic map\n", dir)
		printAnalysis(analyze(engine.DefaultMapConfig()))
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeFile(file)
	}
}

func analyzeFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	config, err := engine.ParseMapConfig(data)
	if err != nil {
		fmt.Printf("Error parsing map: %v\n", err)
		return
	}

	printAnalysis(analyze(config))
}

func analyze(config *engine.MapConfig) (*Analysis, error) {
	e, err := engine.NewEngine(config, engine.WithSeed(1))
	if err != nil {
		return nil, err
	}
	g := e.GetGrid()
	state := e.GetState()

	a := &Analysis{
		Name:     config.Name,
		Width:    g.Width(),
		Height:   g.Height(),
		Paths:    engine.CountCellKind(g, engine.Path),
		Walls:    engine.CountCellKind(g, engine.Wall),
		Gates:    engine.CountCellKind(g, engine.Gate),
		Spawns:   engine.CountCellKind(g, engine.GhostSpawn),
		Dots:     len(state.Dots),
		PowerUps: len(state.PowerUps),
		Ghosts:   len(state.Ghosts),
		Tunnels:  engine.TunnelCells(g),
		DeadEnds: engine.DeadEnds(g),
	}

	reachable := engine.ReachableCells(g, config.PacmanStart)
	a.Reachable = reachable.Size()
	for _, dot := range state.Dots {
		if !reachable.Has(dot) {
			a.Unreachable = append(a.Unreachable, dot)
		}
	}

	if len(state.PowerUps) > 0 {
		reach := fearReach(e.GetRules(), config.EffectiveCellSize())
		for _, dot := range state.Dots {
			if nearestPowerUp(dot, state.PowerUps) > reach {
				a.FarDots = append(a.FarDots, dot)
			}
		}
	}

	if dot, dist, ok := engine.FindNearestDot(state, g); ok {
		a.NearestDot = dot
		a.NearestDist = dist
	} else {
		a.NearestDist = -1
	}

	return a, nil
}

// fearReach is how many cells Pac-Man covers while ghosts stay frightened.
func fearReach(rules engine.Rules, cellSize int) int {
	return rules.WithDefaults().FearTicks / cellSize
}

func nearestPowerUp(c engine.Cell, powerUps []engine.Cell) int {
	best := -1
	for _, p := range powerUps {
		if d := c.Manhattan(p); best == -1 || d < best {
			best = d
		}
	}
	return best
}

func printAnalysis(a *Analysis, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Map: %s (%dx%d)\n", a.Name, a.Width, a.Height)
	fmt.Printf("Cells: %d path, %d wall, %d gate, %d spawn\n", a.Paths, a.Walls, a.Gates, a.Spawns)
	fmt.Printf("Pickups: %d dots, %d power-ups\n", a.Dots, a.PowerUps)
	fmt.Printf("Ghosts: %d\n", a.Ghosts)
	fmt.Printf("Tunnels: %d cells %v\n", len(a.Tunnels), a.Tunnels)
	fmt.Printf("Dead ends: %d\n", len(a.DeadEnds))
	fmt.Printf("Reachable from start: %d cells\n", a.Reachable)
	if a.NearestDist >= 0 {
		fmt.Printf("Nearest dot: %s at distance %d\n", a.NearestDot, a.NearestDist)
	}

	if len(a.Unreachable) > 0 {
		fmt.Printf("WARNING: %d dots unreachable: %v\n", len(a.Unreachable), a.Unreachable)
	}
	if len(a.FarDots) > 0 {
		fmt.Printf("NOTE: %d dots out of fear reach of every power-up\n", len(a.FarDots))
	}
	if len(a.DeadEnds) > 0 {
		fmt.Printf("NOTE: ghosts reverse at dead ends %v\n", a.DeadEnds)
	}
}
