package battle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTile is wrapped by ParseError for characters outside "#.EG".
	ErrUnknownTile = errors.New("unknown tile")
	// ErrNotRectangular is returned when board rows differ in length.
	ErrNotRectangular = errors.New("board is not rectangular")
	// ErrEmptyBoard is returned when a board has no tiles.
	ErrEmptyBoard = errors.New("board is empty")
)

// ParseError reports an unrecognized character in a board.
type ParseError struct {
	Row  int
	Col  int
	Char rune
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d col %d: %v %q", e.Row, e.Col, ErrUnknownTile, e.Char)
}

// Unwrap returns ErrUnknownTile.
func (e *ParseError) Unwrap() error { return ErrUnknownTile }

// Board is a parsed battle map: the terrain plus where each unit starts.
// A Board is never mutated by a Battle, so one Board can seed any number of
// independent battles.
type Board struct {
	Grid   *Grid
	Spawns []Spawn
}

// Parse reads a board where '#' is a wall, '.' is open floor, 'E' is an elf
// and 'G' is a goblin. Leading and trailing blank lines are ignored and
// carriage returns are stripped.
//
// Postcondition: Returns a Board whose Spawns are in reading order, or an
// error wrapping ErrUnknownTile, ErrNotRectangular, or ErrEmptyBoard.
func Parse(input string) (*Board, error) {
	lines := strings.Split(strings.ReplaceAll(input, "\r", ""), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	rows := make([][]Tile, len(lines))
	var spawns []Spawn
	for r, line := range lines {
		row := make([]Tile, len(line))
		for c := 0; c < len(line); c++ {
			switch ch := line[c]; ch {
			case '#':
				row[c] = Wall
			case '.':
				row[c] = Open
			default:
				f, ok := factionForMarker(ch)
				if !ok {
					return nil, &ParseError{Row: r, Col: c, Char: rune(ch)}
				}
				row[c] = Open
				spawns = append(spawns, Spawn{Faction: f, Position: Position{Row: r, Col: c}})
			}
		}
		rows[r] = row
	}

	grid, err := NewGrid(rows)
	if err != nil {
		return nil, fmt.Errorf("parsing board: %w", err)
	}
	return &Board{Grid: grid, Spawns: spawns}, nil
}

// Count returns how many units of faction f the board spawns.
func (bd *Board) Count(f Faction) int {
	n := 0
	for _, s := range bd.Spawns {
		if s.Faction == f {
			n++
		}
	}
	return n
}

// Battle starts a fresh battle on the board.
//
// Postcondition: Each call returns a battle sharing no mutable state with
// any other.
func (bd *Board) Battle(hitPoints int, powers Powers, opts ...Option) (*Battle, error) {
	return New(bd.Grid, bd.Spawns, hitPoints, powers, opts...)
}

// String renders the battle map. Each row lists the live units on it, in
// column order, as "E(200), G(131)".
func (b *Battle) String() string {
	var sb strings.Builder
	for r := 0; r < b.grid.Rows(); r++ {
		var units []string
		for c := 0; c < b.grid.Cols(); c++ {
			p := Position{Row: r, Col: c}
			if u, ok := b.UnitAt(p); ok {
				sb.WriteByte(u.Faction.Marker())
				units = append(units, fmt.Sprintf("%c(%d)", u.Faction.Marker(), u.HitPoints))
				continue
			}
			sb.WriteString(b.grid.At(p).String())
		}
		if len(units) > 0 {
			sb.WriteString("   ")
			sb.WriteString(strings.Join(units, ", "))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
