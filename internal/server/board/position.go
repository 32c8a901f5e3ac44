package board

import (
	"cmp"
	"fmt"
	"iter"
)

// Column is a file index, A through H
type Column int8

// Row is a rank index, 1 through 8
type Row int8

const (
	ColumnA Column = iota
	ColumnB
	ColumnC
	ColumnD
	ColumnE
	ColumnF
	ColumnG
	ColumnH
)

const (
	Row1 Row = iota
	Row2
	Row3
	Row4
	Row5
	Row6
	Row7
	Row8
)

const boardSize = 8

func (c Column) String() string {
	return string(rune('a' + c))
}

func (r Row) String() string {
	return string(rune('1' + r))
}

// Position is an immutable square on the board. The zero value is a1.
// Fields are unexported so a Position outside the board cannot be built.
type Position struct {
	col Column
	row Row
}

// NewPosition builds a square from its axes
func NewPosition(col Column, row Row) (Position, error) {
	if col < ColumnA || col > ColumnH || row < Row1 || row > Row8 {
		return Position{}, &PositionError{
			Input: fmt.Sprintf("%d,%d", col, row),
			Err:   ErrOutOfRange,
		}
	}
	return Position{col: col, row: row}, nil
}

// ParsePosition reads two-character algebraic notation such as "a2".
// Files are lower-case only.
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, &PositionError{Input: s, Err: ErrParse}
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, &PositionError{Input: s, Err: ErrParse}
	}
	return Position{col: Column(file - 'a'), row: Row(rank - '1')}, nil
}

// MustParsePosition is ParsePosition for literals known to be valid
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Column() Column { return p.col }
func (p Position) Row() Row       { return p.row }

func (p Position) String() string {
	return p.col.String() + p.row.String()
}

// MarshalText lets positions serve as JSON map keys
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Compare orders by column, then row
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.col, other.col); c != 0 {
		return c
	}
	return cmp.Compare(p.row, other.row)
}

// Delta returns the column and row difference from p to other
func (p Position) Delta(other Position) (dc, dr int) {
	return int(other.col - p.col), int(other.row - p.row)
}

// Offset returns the square shifted by (dc, dr) if it stays on the board
func (p Position) Offset(dc, dr int) (Position, bool) {
	col, row := int(p.col)+dc, int(p.row)+dr
	if col < 0 || col >= boardSize || row < 0 || row >= boardSize {
		return Position{}, false
	}
	return Position{col: Column(col), row: Row(row)}, true
}

// Between yields the squares strictly between p and other when both share
// a rank, file or diagonal. Unaligned or adjacent squares yield nothing.
func (p Position) Between(other Position) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		dc, dr := p.Delta(other)
		if !aligned(dc, dr) {
			return
		}
		stepC, stepR := sign(dc), sign(dr)
		steps := max(abs(dc), abs(dr))
		for i := 1; i < steps; i++ {
			next := Position{col: p.col + Column(i*stepC), row: p.row + Row(i*stepR)}
			if !yield(next) {
				return
			}
		}
	}
}

// AllPositions yields every square from a1 to h8 in column-major order
func AllPositions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for c := ColumnA; c <= ColumnH; c++ {
			for r := Row1; r <= Row8; r++ {
				if !yield(Position{col: c, row: r}) {
					return
				}
			}
		}
	}
}

func aligned(dc, dr int) bool {
	if dc == 0 && dr == 0 {
		return false
	}
	return dc == 0 || dr == 0 || abs(dc) == abs(dr)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
