// Package battle simulates turn-based combat between two factions of units
// on a rectangular wall/open grid.
package battle

import (
	"cmp"
	"fmt"
	"slices"
)

// Tile is the kind of a single grid cell.
type Tile int

const (
	Open Tile = iota
	Wall
)

// String returns the board character for the tile.
func (t Tile) String() string {
	if t == Wall {
		return "#"
	}
	return "."
}

// Position is a grid coordinate. Row 0 is the top of the board.
type Position struct {
	Row int
	Col int
}

// String returns a human-readable coordinate label.
func (p Position) String() string {
	return fmt.Sprintf("(row %d, col %d)", p.Row, p.Col)
}

// Less reports whether p precedes o in reading order: top-to-bottom, then
// left-to-right.
func (p Position) Less(o Position) bool {
	return comparePositions(p, o) < 0
}

// Neighbors returns the four orthogonal neighbors of p in reading order:
// up, left, right, down.
//
// Postcondition: the returned positions are strictly increasing in reading order.
func (p Position) Neighbors() [4]Position {
	return [4]Position{
		{Row: p.Row - 1, Col: p.Col},
		{Row: p.Row, Col: p.Col - 1},
		{Row: p.Row, Col: p.Col + 1},
		{Row: p.Row + 1, Col: p.Col},
	}
}

// SortReadingOrder sorts positions in place in reading order.
func SortReadingOrder(ps []Position) {
	slices.SortFunc(ps, comparePositions)
}

func comparePositions(a, b Position) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Grid is an immutable rectangular map of tiles.
//
// Invariant: every row has exactly cols tiles; rows > 0 and cols > 0.
type Grid struct {
	tiles [][]Tile
	rows  int
	cols  int
}

// NewGrid builds a Grid from a copy of rows.
//
// Precondition: rows must be non-empty and rectangular.
// Postcondition: Returns a Grid independent of rows, or an error wrapping
// ErrEmptyBoard or ErrNotRectangular.
func NewGrid(rows [][]Tile) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyBoard
	}
	cols := len(rows[0])
	tiles := make([][]Tile, len(rows))
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d tiles, want %d: %w", r, len(row), cols, ErrNotRectangular)
		}
		tiles[r] = slices.Clone(row)
	}
	return &Grid{tiles: tiles, rows: len(rows), cols: cols}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// At returns the tile at p. Positions off the grid read as Wall.
func (g *Grid) At(p Position) Tile {
	if !g.InBounds(p) {
		return Wall
	}
	return g.tiles[p.Row][p.Col]
}

// Passable reports whether p is on the grid and Open. Occupancy is not
// considered here.
func (g *Grid) Passable(p Position) bool {
	return g.At(p) == Open
}
