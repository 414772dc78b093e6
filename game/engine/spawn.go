package engine

import "github.com/zyedidia/generic/mapset"

// firstStep runs a breadth-first search from start over cells accepted by
// pass and returns the first direction of a shortest route to the nearest
// cell accepted by goal. Neighbours are expanded in Up, Down, Left, Right
// order so equal routes resolve the same way every time.
func firstStep(g *GridMap, start Cell, pass, goal func(CellKind) bool) (Direction, bool) {
	type node struct {
		cell  Cell
		first Direction
	}

	visited := mapset.New[Cell]()
	visited.Put(start)
	queue := []node{{cell: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			next, kind, err := g.Neighbor(current.cell, d)
			if err != nil || visited.Has(next) || !pass(kind) {
				continue
			}
			visited.Put(next)

			first := current.first
			if first == None {
				first = d
			}
			if goal(kind) {
				return first, true
			}
			queue = append(queue, node{cell: next, first: first})
		}
	}

	return None, false
}

// exitDirection steers a ghost out of the spawn: toward the nearest gate
// while inside the house, then from the gate toward the nearest open path.
// Maps without gates head straight for the nearest path cell.
func exitDirection(g *GridMap, from Cell) (Direction, bool) {
	kind, err := g.Kind(from)
	if err != nil {
		return None, false
	}

	notWall := func(k CellKind) bool { return k != Wall }
	isPath := func(k CellKind) bool { return k == Path }

	if kind == GhostSpawn && len(g.gates) > 0 {
		if d, ok := firstStep(g, from, notWall, func(k CellKind) bool { return k == Gate }); ok {
			return d, true
		}
	}

	if kind == Gate {
		// never back into the house once on the gate
		outside := func(k CellKind) bool { return k == Path || k == Gate }
		if d, ok := firstStep(g, from, outside, isPath); ok {
			return d, true
		}
	}

	return firstStep(g, from, notWall, isPath)
}
