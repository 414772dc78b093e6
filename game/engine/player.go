package engine

import "fmt"

// Player is Pac-Man's movement state
type Player struct {
	Pos    Position  `json:"pos"`
	Dir    Direction `json:"dir"`
	Moving bool      `json:"moving"`
}

// Steer tries to turn Pac-Man toward d. Between two cells only moves along
// the straddle axis are allowed; on an aligned cell the turn must not lead
// into a wall, gate or unopened edge. A rejected turn leaves the player
// untouched and returns an error wrapping ErrIllegalTurn.
func (p *Player) Steer(g *GridMap, d Direction) error {
	if d == None {
		return nil
	}

	cells := g.CellsOccupied(p.Pos)
	if len(cells) == 2 {
		alongX := cells[0].Y == cells[1].Y
		if alongX != d.Horizontal() {
			return fmt.Errorf("turn %s between %s and %s: %w", d, cells[0], cells[1], ErrIllegalTurn)
		}
	} else if g.blocked(step(p.Pos, d), false) {
		return fmt.Errorf("turn %s at %s: %w", d, cells[0], ErrIllegalTurn)
	}

	p.Dir = d
	p.Moving = true
	return nil
}

// Move advances Pac-Man one pixel, wrapping through tunnels. On entering a
// cell whose next neighbour is blocked the player stops there.
func (p *Player) Move(g *GridMap) {
	if !p.Moving || p.Dir == None {
		return
	}

	next := g.WrapPosition(step(p.Pos, p.Dir))
	if g.Aligned(next) && g.blocked(step(next, p.Dir), false) {
		p.Moving = false
	}
	p.Pos = next
}
