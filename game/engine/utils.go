package engine

import "github.com/zyedidia/generic/mapset"

// CountCellKind counts the cells of a specific kind in the grid
func CountCellKind(g *GridMap, kind CellKind) int {
	count := 0
	for _, k := range g.cells {
		if k == kind {
			count++
		}
	}
	return count
}

// ReachableCells returns every cell Pac-Man can reach from start, following
// tunnels.
func ReachableCells(g *GridMap, start Cell) mapset.Set[Cell] {
	reachable := mapset.New[Cell]()
	queue := []Cell{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if reachable.Has(current) {
			continue
		}
		kind, err := g.Kind(current)
		if err != nil || !IsWalkable(kind, false) {
			continue
		}
		reachable.Put(current)

		for _, d := range Directions {
			next := g.Wrap(current.Step(d))
			if !reachable.Has(next) {
				queue = append(queue, next)
			}
		}
	}

	return reachable
}

// TunnelCells returns the path cells on the grid edge whose wrapped
// neighbour on the opposite edge is also a path.
func TunnelCells(g *GridMap) []Cell {
	var tunnels []Cell
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Cell{X: x, Y: y}
			if kind, _ := g.Kind(c); kind != Path {
				continue
			}
			for _, d := range Directions {
				raw := c.Step(d)
				if g.InBounds(raw) {
					continue
				}
				if _, kind, err := g.Neighbor(c, d); err == nil && kind == Path {
					tunnels = append(tunnels, c)
					break
				}
			}
		}
	}
	return tunnels
}

// DeadEnds returns the path cells with exactly one open neighbour, where a
// ghost has to reverse.
func DeadEnds(g *GridMap) []Cell {
	var ends []Cell
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Cell{X: x, Y: y}
			if kind, _ := g.Kind(c); kind != Path {
				continue
			}
			open := 0
			for _, d := range Directions {
				if _, kind, err := g.Neighbor(c, d); err == nil && IsWalkable(kind, false) {
					open++
				}
			}
			if open == 1 {
				ends = append(ends, c)
			}
		}
	}
	return ends
}

// FindNearestDot finds the remaining dot closest to Pac-Man by Manhattan distance
func FindNearestDot(state *GameState, g *GridMap) (Cell, int, bool) {
	from := g.CellOf(state.Pacman.Pos)
	minDistance := -1
	var nearest Cell

	for _, dot := range state.Dots {
		distance := from.Manhattan(dot)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = dot
		}
	}

	return nearest, minDistance, minDistance != -1
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
