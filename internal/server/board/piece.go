package board

import (
	"fmt"
	"strings"

	"chessgame/internal/server/core"
)

// Kind identifies a piece type. The zero value marks an empty square.
type Kind int8

const (
	Pawn Kind = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

// Kinds lists every piece type in ascending material order
var Kinds = [...]Kind{Pawn, Knight, Bishop, Rook, Queen, King}

var kindNames = map[Kind]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

var kindSymbols = map[Kind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// ParseKind accepts the lower-case name of a piece type
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid piece kind: %q", s)
}

// slides reports whether the kind requires every intervening square to be empty
func (k Kind) slides() bool {
	return k != Knight
}

// Piece is an immutable (kind, color) value
type Piece struct {
	Kind  Kind
	Color core.Color
}

// NewPiece is shorthand used by layouts and tests
func NewPiece(kind Kind, color core.Color) Piece {
	return Piece{Kind: kind, Color: color}
}

// IsEmpty reports whether p is the zero value
func (p Piece) IsEmpty() bool {
	return p.Kind == 0
}

// Symbol returns the letter used in ASCII boards, upper-case for white
func (p Piece) Symbol() string {
	sym, ok := kindSymbols[p.Kind]
	if !ok {
		return "."
	}
	if p.Color == core.ColorWhite {
		return strings.ToUpper(string(sym))
	}
	return string(sym)
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// ParseSymbol is the inverse of Symbol
func ParseSymbol(s string) (Piece, error) {
	if len(s) != 1 {
		return Piece{}, fmt.Errorf("invalid piece symbol: %q", s)
	}
	color := core.ColorBlack
	lower := strings.ToLower(s)
	if lower != s {
		color = core.ColorWhite
	}
	for k, sym := range kindSymbols {
		if string(sym) == lower {
			return Piece{Kind: k, Color: color}, nil
		}
	}
	return Piece{}, fmt.Errorf("invalid piece symbol: %q", s)
}

// CanMove reports whether the move shape from -> to fits the piece's
// movement rule given the occupant of the destination (zero when empty).
// Path blocking and same-color occupancy are checked by the Board.
func (p Piece) CanMove(from, to Position, target Piece) bool {
	dc, dr := from.Delta(to)
	if dc == 0 && dr == 0 {
		return false
	}

	switch p.Kind {
	case Pawn:
		return p.pawnCanMove(from, dc, dr, target)
	case Knight:
		return (abs(dc) == 1 && abs(dr) == 2) || (abs(dc) == 2 && abs(dr) == 1)
	case Bishop:
		return abs(dc) == abs(dr)
	case Rook:
		return dc == 0 || dr == 0
	case Queen:
		return abs(dc) == abs(dr) || dc == 0 || dr == 0
	case King:
		return abs(dc) <= 1 && abs(dr) <= 1
	default:
		return false
	}
}

func (p Piece) pawnCanMove(from Position, dc, dr int, target Piece) bool {
	forward := pawnDirection(p.Color)

	switch {
	case dc == 0 && dr == forward:
		return target.IsEmpty()
	case dc == 0 && dr == 2*forward:
		return from.Row() == pawnStartRow(p.Color) && target.IsEmpty()
	case abs(dc) == 1 && dr == forward:
		return !target.IsEmpty() && target.Color != p.Color
	default:
		return false
	}
}

// attacks is CanMove with the destination treated as holding an enemy,
// which is what check detection needs for pawns.
func (p Piece) attacks(from, to Position) bool {
	if p.Kind == Pawn {
		dc, dr := from.Delta(to)
		return abs(dc) == 1 && dr == pawnDirection(p.Color)
	}
	return p.CanMove(from, to, Piece{Kind: King, Color: core.OppositeColor(p.Color)})
}

func pawnDirection(c core.Color) int {
	if c == core.ColorWhite {
		return 1
	}
	return -1
}

func pawnStartRow(c core.Color) Row {
	if c == core.ColorWhite {
		return Row2
	}
	return Row7
}
