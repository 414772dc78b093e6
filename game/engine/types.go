package engine

import (
	"fmt"
	"strings"
)

// CellKind represents the different kinds of grid cells
type CellKind int

const (
	Path CellKind = iota
	Wall
	Gate
	GhostSpawn
)

const (
	// Defaults taken from the classic game
	DefaultCellSize             = 20
	DefaultTickRate             = 60
	DefaultInputMemoryTicks     = 10
	DefaultFearTicks            = 600
	DefaultPickupScore          = 10
	DefaultGhostScore           = 200
	DefaultReleaseIntervalTicks = 90
	// NoReleaseInterval releases every ghost on the first tick
	NoReleaseInterval = -1

	// Contact thresholds as a fraction of the cell size
	PickupRadiusFactor = 0.4
	GhostRadiusFactor  = 0.3

	// Validation constants
	MinGridSize  = 3
	MaxGridSize  = 100
	MaxGhosts    = 16
	MinTickRate  = 1
	MaxTickRate  = 240
	MaxStepTicks = 600
)

// String returns the lowercase name of the cell kind
func (k CellKind) String() string {
	switch k {
	case Path:
		return "path"
	case Wall:
		return "wall"
	case Gate:
		return "gate"
	case GhostSpawn:
		return "ghost_spawn"
	default:
		return fmt.Sprintf("cell_kind(%d)", int(k))
	}
}

// Direction is a movement direction; None means standing still.
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// Directions lists the movement directions in tie-break order.
var Directions = [...]Direction{Up, Down, Left, Right}

// Delta returns the unit pixel delta of one tick of movement.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Reverse returns the opposite direction. None has no reverse.
func (d Direction) Reverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return None
	}
}

// Horizontal reports whether the direction moves along the X axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection converts "up", "down", "left" or "right" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return None, fmt.Errorf("invalid direction %q: must be up, down, left or right", s)
	}
}

// Cell is a grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in the given direction.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the Manhattan distance to another cell.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Position is a pixel coordinate of an actor's top-left corner
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// EndReason tells why a game ended
type EndReason string

const (
	ReasonNone    EndReason = ""
	ReasonCaught  EndReason = "caught"
	ReasonTimeout EndReason = "timeout"
	ReasonStopped EndReason = "stopped"
)

// Result is the final outcome handed to the score collaborator
type Result struct {
	Score       int       `json:"score"`
	Reason      EndReason `json:"reason"`
	Ticks       uint64    `json:"ticks"`
	DotsEaten   int       `json:"dots_eaten"`
	GhostsEaten int       `json:"ghosts_eaten"`
}
