package main

import (
	"github.com/wricardo/mcp-training/pacman/game/engine"
)

// dangerRadius is how close (in cells) a normal ghost may get before the
// strategy stops routing through it and starts fleeing.
const dangerRadius = 2

// SearchStrategy picks Pac-Man's next direction with a breadth-first search
// toward the closest pickup, routing around normal ghosts.
type SearchStrategy struct {
	grid *engine.GridMap
}

// NewSearchStrategy builds a strategy for the session's map layout.
func NewSearchStrategy(config *engine.MapConfig) (*SearchStrategy, error) {
	grid, err := engine.NewGridMap(config.Width, config.Height, config.EffectiveCellSize(), config.Cells)
	if err != nil {
		return nil, err
	}
	return &SearchStrategy{grid: grid}, nil
}

// DecisionCell is the cell Pac-Man will be aligned on after one more tick.
// Turns are only legal there.
func (s *SearchStrategy) DecisionCell(snap *engine.Snapshot) engine.Cell {
	pos := engine.Position{X: snap.Pacman.X, Y: snap.Pacman.Y}
	if snap.Pacman.Moving {
		if d, err := engine.ParseDirection(snap.Pacman.Dir); err == nil {
			dx, dy := d.Delta()
			pos = s.grid.WrapPosition(engine.Position{X: pos.X + dx, Y: pos.Y + dy})
		}
	}
	return s.grid.CellOf(pos)
}

// NextMove returns the direction to take from the decision cell, or None
// when Pac-Man is boxed in.
func (s *SearchStrategy) NextMove(snap *engine.Snapshot) engine.Direction {
	from := s.DecisionCell(snap)
	threats := s.threats(snap)

	danger := map[engine.Cell]bool{}
	for _, t := range threats {
		for _, c := range s.around(t, dangerRadius-1) {
			danger[c] = true
		}
	}

	targets := map[engine.Cell]bool{}
	for _, c := range snap.Dots {
		targets[c] = true
	}
	for _, c := range snap.PowerUps {
		targets[c] = true
	}
	for _, gh := range snap.Ghosts {
		if gh.Feared && !gh.InSpawn {
			targets[s.grid.CellOf(engine.Position{X: gh.X, Y: gh.Y})] = true
		}
	}

	if d := s.BFS(from, targets, danger); d != engine.None {
		return d
	}
	if len(threats) > 0 {
		return s.flee(from, threats)
	}
	// no safe route: ignore ghosts rather than stand still
	if d := s.BFS(from, targets, nil); d != engine.None {
		return d
	}
	return s.anyOpen(from)
}

// BFS returns the first step of a shortest path from start to any target,
// avoiding blocked cells. The start cell itself never counts as a target.
func (s *SearchStrategy) BFS(start engine.Cell, targets, blocked map[engine.Cell]bool) engine.Direction {
	type node struct {
		cell  engine.Cell
		first engine.Direction
	}

	visited := map[engine.Cell]bool{start: true}
	queue := []node{}
	for _, d := range engine.Directions {
		next, ok := s.open(start, d)
		if !ok || blocked[next] || visited[next] {
			continue
		}
		visited[next] = true
		queue = append(queue, node{next, d})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if targets[current.cell] {
			return current.first
		}
		for _, d := range engine.Directions {
			next, ok := s.open(current.cell, d)
			if !ok || blocked[next] || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, node{next, current.first})
		}
	}

	return engine.None
}

// threats are the cells of ghosts that would catch Pac-Man
func (s *SearchStrategy) threats(snap *engine.Snapshot) []engine.Cell {
	var cells []engine.Cell
	for _, gh := range snap.Ghosts {
		if gh.Feared {
			continue
		}
		cells = append(cells, s.grid.CellOf(engine.Position{X: gh.X, Y: gh.Y}))
	}
	return cells
}

// around lists the open cells within radius steps of c, c included.
func (s *SearchStrategy) around(c engine.Cell, radius int) []engine.Cell {
	seen := map[engine.Cell]bool{c: true}
	frontier := []engine.Cell{c}
	for i := 0; i < radius; i++ {
		var next []engine.Cell
		for _, cell := range frontier {
			for _, d := range engine.Directions {
				n, ok := s.open(cell, d)
				if ok && !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
	}

	cells := make([]engine.Cell, 0, len(seen))
	for cell := range seen {
		cells = append(cells, cell)
	}
	return cells
}

// flee picks the open direction that ends farthest from the closest threat.
func (s *SearchStrategy) flee(from engine.Cell, threats []engine.Cell) engine.Direction {
	best := engine.None
	bestDistance := -1
	for _, d := range engine.Directions {
		next, ok := s.open(from, d)
		if !ok {
			continue
		}
		closest := -1
		for _, t := range threats {
			if dist := next.Manhattan(t); closest == -1 || dist < closest {
				closest = dist
			}
		}
		if closest > bestDistance {
			bestDistance = closest
			best = d
		}
	}
	return best
}

func (s *SearchStrategy) anyOpen(from engine.Cell) engine.Direction {
	for _, d := range engine.Directions {
		if _, ok := s.open(from, d); ok {
			return d
		}
	}
	return engine.None
}

// open reports the neighbour in direction d when Pac-Man may enter it.
func (s *SearchStrategy) open(c engine.Cell, d engine.Direction) (engine.Cell, bool) {
	next, kind, err := s.grid.Neighbor(c, d)
	if err != nil || !engine.IsWalkable(kind, false) {
		return engine.Cell{}, false
	}
	return next, true
}
