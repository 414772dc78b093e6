package engine

import "math"

// PixelOf returns the aligned pixel position of a cell.
func (g *GridMap) PixelOf(c Cell) Position {
	return Position{X: c.X * g.cellSize, Y: c.Y * g.cellSize}
}

// Aligned reports whether the position sits exactly on one cell.
func (g *GridMap) Aligned(p Position) bool {
	return p.X%g.cellSize == 0 && p.Y%g.cellSize == 0
}

// CellsOccupied returns the one or two cells an actor at p overlaps. A
// position misaligned on X is reported as straddling along X even when it is
// also misaligned on Y. Cells are not wrapped.
func (g *GridMap) CellsOccupied(p Position) []Cell {
	cx, cy := floorDiv(p.X, g.cellSize), floorDiv(p.Y, g.cellSize)
	switch {
	case floorMod(p.X, g.cellSize) != 0:
		return []Cell{{X: cx, Y: cy}, {X: cx + 1, Y: cy}}
	case floorMod(p.Y, g.cellSize) != 0:
		return []Cell{{X: cx, Y: cy}, {X: cx, Y: cy + 1}}
	default:
		return []Cell{{X: cx, Y: cy}}
	}
}

// Straddling reports whether p overlaps two cells.
func (g *GridMap) Straddling(p Position) bool {
	return len(g.CellsOccupied(p)) == 2
}

// CellOf returns the wrapped cell containing the actor's center.
func (g *GridMap) CellOf(p Position) Cell {
	half := g.cellSize / 2
	return g.Wrap(Cell{
		X: floorDiv(p.X+half, g.cellSize),
		Y: floorDiv(p.Y+half, g.cellSize),
	})
}

// WrapPosition re-enters a position that left the grid at the aligned edge
// cell on the opposite side.
func (g *GridMap) WrapPosition(p Position) Position {
	maxX := (g.width - 1) * g.cellSize
	maxY := (g.height - 1) * g.cellSize
	switch {
	case p.X < 0:
		p.X = maxX
	case p.X > maxX:
		p.X = 0
	}
	switch {
	case p.Y < 0:
		p.Y = maxY
	case p.Y > maxY:
		p.Y = 0
	}
	return p
}

// blocked reports whether any cell overlapped at probe is off the map or
// not walkable. Cells one step past an edge are wrapped first.
func (g *GridMap) blocked(probe Position, leavingSpawn bool) bool {
	for _, c := range g.CellsOccupied(probe) {
		kind, err := g.Kind(g.Wrap(c))
		if err != nil || !IsWalkable(kind, leavingSpawn) {
			return true
		}
	}
	return false
}

// Distance returns the center-to-center distance between two equally sized actors.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func step(p Position, d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
