package engine

import (
	"errors"
	"reflect"
	"testing"
)

// gatedLayout is a 5x5 room with a gate at (2,1) and a ghost spawn at (1,3).
const gatedLayout = "11111" +
	"10201" +
	"10001" +
	"13001" +
	"11111"

// tunnelLayout has an open row 1 that wraps left to right.
const tunnelLayout = "11111" +
	"00000" +
	"13111"

func mustGrid(t *testing.T, w, h int, layout string) *GridMap {
	t.Helper()
	g, err := NewGridMap(w, h, DefaultCellSize, layout)
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	return g
}

func TestNewGridMap(t *testing.T) {
	g := mustGrid(t, 5, 5, gatedLayout)

	if g.Width() != 5 || g.Height() != 5 {
		t.Errorf("Expected 5x5 grid, got %dx%d", g.Width(), g.Height())
	}
	if !reflect.DeepEqual(g.Spawns(), []Cell{{X: 1, Y: 3}}) {
		t.Errorf("Expected spawn at (1,3), got %v", g.Spawns())
	}
	if !reflect.DeepEqual(g.Gates(), []Cell{{X: 2, Y: 1}}) {
		t.Errorf("Expected gate at (2,1), got %v", g.Gates())
	}

	tests := []struct {
		x, y int
		want CellKind
	}{
		{0, 0, Wall},
		{1, 1, Path},
		{2, 1, Gate},
		{1, 3, GhostSpawn},
	}
	for _, tt := range tests {
		got, err := g.CellAt(tt.x, tt.y)
		if err != nil {
			t.Errorf("CellAt(%d,%d) unexpected error: %v", tt.x, tt.y, err)
		}
		if got != tt.want {
			t.Errorf("CellAt(%d,%d): expected %s, got %s", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestNewGridMap_Errors(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		layout string
	}{
		{"size mismatch", 5, 5, "1111"},
		{"bad digit", 3, 3, "111" + "143" + "111"},
		{"no spawn", 3, 3, "111" + "101" + "111"},
		{"zero width", 0, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGridMap(tt.w, tt.h, DefaultCellSize, tt.layout)
			if !errors.Is(err, ErrInvalidMap) {
				t.Errorf("Expected ErrInvalidMap, got %v", err)
			}
		})
	}
}

func TestCellAt_OutOfBounds(t *testing.T) {
	g := mustGrid(t, 5, 5, gatedLayout)

	for _, c := range []Cell{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if _, err := g.CellAt(c.X, c.Y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("CellAt%s: expected ErrOutOfBounds, got %v", c, err)
		}
	}
}

func TestIsWalkable(t *testing.T) {
	tests := []struct {
		kind    CellKind
		leaving bool
		want    bool
	}{
		{Path, false, true},
		{GhostSpawn, false, true},
		{Wall, false, false},
		{Wall, true, false},
		{Gate, false, false},
		{Gate, true, true},
	}
	for _, tt := range tests {
		if got := IsWalkable(tt.kind, tt.leaving); got != tt.want {
			t.Errorf("IsWalkable(%s, %v): expected %v, got %v", tt.kind, tt.leaving, tt.want, got)
		}
	}
}

func TestWrap(t *testing.T) {
	g := mustGrid(t, 5, 3, tunnelLayout)

	tests := []struct {
		in, want Cell
	}{
		{Cell{-1, 1}, Cell{4, 1}},
		{Cell{5, 1}, Cell{0, 1}},
		{Cell{2, -1}, Cell{2, 2}},
		{Cell{2, 3}, Cell{2, 0}},
		{Cell{2, 1}, Cell{2, 1}},
		{Cell{-2, 1}, Cell{-2, 1}},
	}
	for _, tt := range tests {
		if got := g.Wrap(tt.in); got != tt.want {
			t.Errorf("Wrap%s: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestCellsOccupied(t *testing.T) {
	g := mustGrid(t, 5, 5, gatedLayout)

	tests := []struct {
		name string
		pos  Position
		want []Cell
	}{
		{"aligned", Position{20, 40}, []Cell{{1, 2}}},
		{"straddle x", Position{25, 40}, []Cell{{1, 2}, {2, 2}}},
		{"straddle y", Position{20, 45}, []Cell{{1, 2}, {1, 3}}},
		{"x check wins", Position{25, 45}, []Cell{{1, 2}, {2, 2}}},
		{"left of grid", Position{-1, 20}, []Cell{{-1, 1}, {0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellsOccupied(tt.pos); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCellOf(t *testing.T) {
	g := mustGrid(t, 5, 3, tunnelLayout)

	tests := []struct {
		pos  Position
		want Cell
	}{
		{Position{20, 20}, Cell{1, 1}},
		{Position{29, 20}, Cell{1, 1}},
		{Position{30, 20}, Cell{2, 1}},
		{Position{90, 20}, Cell{0, 1}},
	}
	for _, tt := range tests {
		if got := g.CellOf(tt.pos); got != tt.want {
			t.Errorf("CellOf(%+v): expected %s, got %s", tt.pos, tt.want, got)
		}
	}
}

func TestWrapPosition(t *testing.T) {
	g := mustGrid(t, 5, 3, tunnelLayout)

	if got := g.WrapPosition(Position{-1, 20}); got != (Position{80, 20}) {
		t.Errorf("Expected left exit to re-enter at (80,20), got %+v", got)
	}
	if got := g.WrapPosition(Position{81, 20}); got != (Position{0, 20}) {
		t.Errorf("Expected right exit to re-enter at (0,20), got %+v", got)
	}
	if got := g.WrapPosition(Position{40, 20}); got != (Position{40, 20}) {
		t.Errorf("Expected inner position unchanged, got %+v", got)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 20, 0},
		{19, 20, 0},
		{20, 20, 1},
		{-1, 20, -1},
		{-20, 20, -1},
		{-21, 20, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d,%d): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestUtils(t *testing.T) {
	g := mustGrid(t, 5, 3, tunnelLayout)

	if got := CountCellKind(g, Path); got != 5 {
		t.Errorf("Expected 5 path cells, got %d", got)
	}
	if got := TunnelCells(g); !reflect.DeepEqual(got, []Cell{{0, 1}, {4, 1}}) {
		t.Errorf("Expected tunnel cells (0,1) and (4,1), got %v", got)
	}

	reachable := ReachableCells(g, Cell{2, 1})
	// the tunnel row plus the spawn cell below (1,1)
	if reachable.Size() != 6 {
		t.Errorf("Expected 6 reachable cells, got %d", reachable.Size())
	}
	if !reachable.Has(Cell{0, 1}) || reachable.Has(Cell{0, 0}) {
		t.Error("Expected tunnel cells reachable and walls not")
	}

	room := mustGrid(t, 5, 5, gatedLayout)
	if ends := DeadEnds(room); !reflect.DeepEqual(ends, []Cell{{1, 1}, {3, 1}}) {
		t.Errorf("Expected dead ends beside the gate, got %v", ends)
	}
}
