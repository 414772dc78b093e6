package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/scores"
	"github.com/wricardo/mcp-training/pacman/game/service"
)

// Board legend
const (
	charWall    = '#'
	charGate    = '-'
	charSpawn   = '_'
	charPath    = ' '
	charDot     = '.'
	charPowerUp = 'o'
	charPacman  = 'C'
	charGhost   = 'G'
	charFeared  = 'g'
)

func formatSessionInfo(session *service.SessionInfo) string {
	mode := "manual"
	if session.Realtime {
		mode = "realtime"
		if session.Running {
			mode += " (running)"
		}
	}

	result := fmt.Sprintf("Session: %s\nPlayer: %s\nMap: %s\nMode: %s\nCreated: %s\nLast Accessed: %s\n",
		session.ID, session.PlayerID, session.ConfigName, mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))

	if session.Snapshot != nil {
		result += "\n" + formatSnapshot(session.Snapshot, session.MapConfig)
	}
	return result
}

// formatSnapshot renders the score line, the actors and, when the layout is
// known, the board as text.
func formatSnapshot(snap *engine.Snapshot, layout *engine.MapConfig) string {
	var b strings.Builder

	if snap.GameOver {
		fmt.Fprintf(&b, "💀 GAME OVER (%s)\n", snap.Reason)
	}
	fmt.Fprintf(&b, "Tick: %d | Score: %d | Dots left: %d | Power-ups left: %d\n",
		snap.Tick, snap.Score, len(snap.Dots), len(snap.PowerUps))
	fmt.Fprintf(&b, "Eaten: %d dots, %d ghosts\n", snap.DotsEaten, snap.GhostsEaten)

	pac := snap.Pacman
	fmt.Fprintf(&b, "Pac-Man: pixel (%d,%d)", pac.X, pac.Y)
	if cell, ok := actorCell(snap, layout, pac.X, pac.Y); ok {
		fmt.Fprintf(&b, " cell %s", cell)
	}
	fmt.Fprintf(&b, " facing %s", pac.Dir)
	if !pac.Moving {
		b.WriteString(" (stopped)")
	}
	b.WriteString("\n")

	for _, g := range snap.Ghosts {
		fmt.Fprintf(&b, "Ghost %d [%s]: pixel (%d,%d) %s", g.ID, g.Policy, g.X, g.Y, g.State)
		if g.Feared {
			fmt.Fprintf(&b, " (%d fear ticks left)", g.FearTicks)
		}
		b.WriteString("\n")
	}

	if board := renderBoard(snap, layout); board != "" {
		b.WriteString("\n")
		b.WriteString(board)
	}
	return b.String()
}

func actorCell(snap *engine.Snapshot, layout *engine.MapConfig, x, y int) (engine.Cell, bool) {
	g := layoutGrid(layout)
	if g == nil || snap.Width != g.Width() || snap.Height != g.Height() {
		return engine.Cell{}, false
	}
	return g.CellOf(engine.Position{X: x, Y: y}), true
}

func layoutGrid(layout *engine.MapConfig) *engine.GridMap {
	if layout == nil {
		return nil
	}
	g, err := engine.NewGridMap(layout.Width, layout.Height, layout.EffectiveCellSize(), layout.Cells)
	if err != nil {
		return nil
	}
	return g
}

// renderBoard draws the maze with one character per cell; see the legend
// constants. Actors drawn later cover earlier ones.
func renderBoard(snap *engine.Snapshot, layout *engine.MapConfig) string {
	g := layoutGrid(layout)
	if g == nil || snap.Width != g.Width() || snap.Height != g.Height() {
		return ""
	}

	rows := make([][]rune, g.Height())
	for y := range rows {
		rows[y] = make([]rune, g.Width())
		for x := range rows[y] {
			kind, _ := g.CellAt(x, y)
			switch kind {
			case engine.Wall:
				rows[y][x] = charWall
			case engine.Gate:
				rows[y][x] = charGate
			case engine.GhostSpawn:
				rows[y][x] = charSpawn
			default:
				rows[y][x] = charPath
			}
		}
	}

	put := func(c engine.Cell, r rune) {
		if g.InBounds(c) {
			rows[c.Y][c.X] = r
		}
	}
	for _, d := range snap.Dots {
		put(d, charDot)
	}
	for _, p := range snap.PowerUps {
		put(p, charPowerUp)
	}
	for _, gh := range snap.Ghosts {
		r := charGhost
		if gh.Feared {
			r = charFeared
		}
		put(g.CellOf(engine.Position{X: gh.X, Y: gh.Y}), r)
	}
	put(g.CellOf(engine.Position{X: snap.Pacman.X, Y: snap.Pacman.Y}), charPacman)

	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < g.Width(); x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%2d %s\n", y, string(row))
	}
	return b.String()
}

func formatInputResult(result *service.InputResult) string {
	if !result.Accepted {
		msg := "✗ Input rejected"
		if result.Message != "" {
			msg += ": " + result.Message
		}
		return msg
	}
	return fmt.Sprintf("✓ %s buffered at tick %d", result.Direction, result.Tick)
}

func formatStepResult(result *service.StepResult, layout *engine.MapConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticks: %d/%d executed", result.TicksExecuted, result.TicksRequested)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to the %d tick limit)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score delta: %+d | Dots eaten: %d | Ghosts eaten: %d\n",
		result.ScoreDelta, result.DotsEaten, result.GhostsEaten)

	for _, e := range result.Events {
		fmt.Fprintf(&b, "Event: %s - %s\n", e.Type, e.Message)
	}

	if result.Snapshot != nil {
		b.WriteString("\n")
		b.WriteString(formatSnapshot(result.Snapshot, layout))
	}
	return b.String()
}

func formatLeaderboard(entries []scores.Submission) string {
	if len(entries) == 0 {
		return "Leaderboard is empty. Finish a game to get on it!"
	}

	var b strings.Builder
	b.WriteString("🏆 Leaderboard\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %-16s %6d  (%s, %s after %d ticks)\n",
			i+1, e.PlayerID, e.Score, e.MapName, e.Reason, e.Ticks)
	}
	return b.String()
}

const gameInstructions = `🎮 Pac-Man - Complete Instructions

GAME OBJECTIVE:
Score as many points as possible before a ghost catches you or the time limit
of the map runs out.

SCORING:
• Dot (.): 10 points
• Frightened ghost (g): 200 points; the ghost returns to its spawn
• Power-up (o): no points, but frightens every ghost for a while

BOARD LEGEND:
• C - Pac-Man
• G - Ghost (deadly)
• g - Frightened ghost (edible)
• . - Dot
• o - Power-up
• # - Wall
• - - Ghost gate (ghosts only, and only when leaving the spawn)
• _ - Ghost spawn
• (space) - Empty path
Rows and columns are numbered from 0; x is the column, y the row.

MOVEMENT:
• Positions are in pixels; one cell is 20 pixels on the default maps
• Pac-Man moves one pixel per tick, so one cell takes 20 ticks
• Input is remembered for a few ticks: press a direction just before a
  junction and Pac-Man turns as soon as the turn is legal
• In a corridor you can only reverse; perpendicular turns need an intersection
• Pac-Man stops when the cell ahead is a wall or a gate
• Leaving the board through an open edge wraps to the opposite edge

GHOSTS:
• Ghosts leave the spawn through the gate and follow a policy:
  chase (toward you), flee (away from you) or random
• Frightened ghosts always flee
• Touching a normal ghost ends the game

MANUAL SESSIONS (default):
1. create_session
2. input a direction, or pass one to step
3. step N ticks; the result shows what happened and the new board
4. snapshot any time; restart after game over

REALTIME SESSIONS:
Created with realtime=true. The game runs on its own clock, so only input,
snapshot and restart are useful; step is rejected.

🤖 STRATEGY:
• Plan routes cell by cell; 20 ticks per cell helps you time turns
• Buffer the turn shortly before reaching the junction
• Eat a power-up when ghosts are close, then hunt the frightened ones
• Watch fear ticks: a ghost turns deadly again when they reach 0`
