package engine

import "fmt"

// GridMap is the immutable tile grid of one level
type GridMap struct {
	width    int
	height   int
	cellSize int
	cells    []CellKind
	spawns   []Cell
	gates    []Cell
}

// NewGridMap parses a row-major digit string ('0' path, '1' wall, '2' gate,
// '3' ghost spawn) into a grid. The map must contain at least one ghost spawn.
func NewGridMap(width, height, cellSize int, layout string) (*GridMap, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidMap("grid must be at least 1x1, got %dx%d", width, height)
	}
	if cellSize <= 0 {
		return nil, invalidMap("cell size must be positive, got %d", cellSize)
	}
	if len(layout) != width*height {
		return nil, invalidMap("layout has %d cells, expected %d (%dx%d)", len(layout), width*height, width, height)
	}

	g := &GridMap{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cells:    make([]CellKind, len(layout)),
	}

	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		if ch < '0' || ch > '3' {
			return nil, invalidMap("invalid cell digit %q at col %d, row %d", ch, i%width, i/width)
		}
		kind := CellKind(ch - '0')
		g.cells[i] = kind

		c := Cell{X: i % width, Y: i / width}
		switch kind {
		case GhostSpawn:
			g.spawns = append(g.spawns, c)
		case Gate:
			g.gates = append(g.gates, c)
		}
	}

	if len(g.spawns) == 0 {
		return nil, invalidMap("layout must contain at least one ghost spawn (3) cell")
	}

	return g, nil
}

// Width returns the grid width in cells
func (g *GridMap) Width() int { return g.width }

// Height returns the grid height in cells
func (g *GridMap) Height() int { return g.height }

// CellSize returns the pixel edge length of a cell
func (g *GridMap) CellSize() int { return g.cellSize }

// Spawns returns a copy of the ghost spawn cells in row-major order.
func (g *GridMap) Spawns() []Cell {
	return append([]Cell(nil), g.spawns...)
}

// Gates returns a copy of the gate cells in row-major order.
func (g *GridMap) Gates() []Cell {
	return append([]Cell(nil), g.gates...)
}

// InBounds reports whether the cell lies inside the grid.
func (g *GridMap) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// CellAt returns the kind of the cell at (x, y). Coordinates outside the grid
// yield ErrOutOfBounds; they are never clamped.
func (g *GridMap) CellAt(x, y int) (CellKind, error) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return Wall, fmt.Errorf("cell (%d,%d) on %dx%d grid: %w", x, y, g.width, g.height, ErrOutOfBounds)
	}
	return g.cells[y*g.width+x], nil
}

// Kind is CellAt for a Cell value.
func (g *GridMap) Kind(c Cell) (CellKind, error) {
	return g.CellAt(c.X, c.Y)
}

// Wrap maps a cell one step past an edge onto the opposite edge, which is how
// tunnels connect. Cells further out are returned unchanged.
func (g *GridMap) Wrap(c Cell) Cell {
	switch c.X {
	case -1:
		c.X = g.width - 1
	case g.width:
		c.X = 0
	}
	switch c.Y {
	case -1:
		c.Y = g.height - 1
	case g.height:
		c.Y = 0
	}
	return c
}

// Neighbor returns the wrapped neighbour of c in direction d and its kind.
func (g *GridMap) Neighbor(c Cell, d Direction) (Cell, CellKind, error) {
	n := g.Wrap(c.Step(d))
	kind, err := g.Kind(n)
	return n, kind, err
}

// IsWalkable reports whether an actor may occupy a cell of the given kind.
// Gates only open for a ghost that is actively leaving the spawn.
func IsWalkable(kind CellKind, leavingSpawn bool) bool {
	switch kind {
	case Path, GhostSpawn:
		return true
	case Gate:
		return leavingSpawn
	default:
		return false
	}
}

func invalidMap(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMap, fmt.Sprintf(format, args...))
}
