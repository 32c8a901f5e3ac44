package board

import (
	"fmt"
	"maps"
	"strings"

	"chessgame/internal/server/core"
)

// Board owns the position-to-piece mapping and the side to move.
// A Board is not safe for concurrent use; callers serialize access per game.
type Board struct {
	squares   [boardSize][boardSize]Piece // [column][row]
	turn      core.Color
	selfCheck bool
}

// Option configures a Board at construction
type Option func(*Board)

// WithSelfCheckPrevention rejects moves that leave the mover's own king
// attacked. Off by default, in which case a king may be captured.
func WithSelfCheckPrevention(enabled bool) Option {
	return func(b *Board) {
		b.selfCheck = enabled
	}
}

var backRank = [boardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// New returns the standard starting layout with white to move
func New(opts ...Option) *Board {
	b := &Board{turn: core.ColorWhite}
	for c := ColumnA; c <= ColumnH; c++ {
		b.squares[c][Row1] = NewPiece(backRank[c], core.ColorWhite)
		b.squares[c][Row2] = NewPiece(Pawn, core.ColorWhite)
		b.squares[c][Row7] = NewPiece(Pawn, core.ColorBlack)
		b.squares[c][Row8] = NewPiece(backRank[c], core.ColorBlack)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Restore rebuilds a board from a persisted mapping. The state is trusted
// as-is; no history is replayed or validated.
func Restore(pieces map[Position]Piece, turn core.Color, opts ...Option) *Board {
	b := &Board{turn: turn}
	if !turn.Valid() {
		b.turn = core.ColorWhite
	}
	for pos, piece := range pieces {
		if piece.IsEmpty() {
			continue
		}
		b.squares[pos.col][pos.row] = piece
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromSnapshot is Restore for mappings keyed by algebraic notation
func FromSnapshot(pieces map[string]Piece, turn core.Color, opts ...Option) (*Board, error) {
	positions := make(map[Position]Piece, len(pieces))
	for square, piece := range pieces {
		pos, err := ParsePosition(square)
		if err != nil {
			return nil, err
		}
		positions[pos] = piece
	}
	if !turn.Valid() {
		return nil, fmt.Errorf("invalid turn color: %v", turn)
	}
	return Restore(positions, turn, opts...), nil
}

// Move validates and applies a move for the side to move. On error the
// board is left untouched.
func (b *Board) Move(from, to Position) error {
	if b.Finished() {
		return &MoveError{From: from, To: to, Err: ErrGameOver}
	}
	if err := b.validate(from, to, true); err != nil {
		return &MoveError{From: from, To: to, Err: err}
	}
	if b.selfCheck && !b.LeavesKingSafe(from, to) {
		return &MoveError{From: from, To: to, Err: ErrKingInCheck}
	}

	b.apply(from, to)
	b.turn = core.OppositeColor(b.turn)
	return nil
}

// MoveNotation parses both squares and calls Move
func (b *Board) MoveNotation(source, destination string) error {
	from, err := ParsePosition(source)
	if err != nil {
		return err
	}
	to, err := ParsePosition(destination)
	if err != nil {
		return err
	}
	return b.Move(from, to)
}

// validate runs the occupancy, pattern and path checks in order
func (b *Board) validate(from, to Position, checkTurn bool) error {
	piece := b.squares[from.col][from.row]
	if piece.IsEmpty() {
		return ErrNoPiece
	}
	if checkTurn && piece.Color != b.turn {
		return ErrWrongTurn
	}

	target := b.squares[to.col][to.row]
	if !target.IsEmpty() && target.Color == piece.Color {
		return ErrIllegalDestination
	}
	if !piece.CanMove(from, to, target) {
		return ErrIllegalPattern
	}
	if piece.Kind.slides() && !b.pathClear(from, to) {
		return ErrPathBlocked
	}
	return nil
}

func (b *Board) pathClear(from, to Position) bool {
	for sq := range from.Between(to) {
		if !b.squares[sq.col][sq.row].IsEmpty() {
			return false
		}
	}
	return true
}

// apply relocates the piece, dropping any occupant of the destination
func (b *Board) apply(from, to Position) {
	b.squares[to.col][to.row] = b.squares[from.col][from.row]
	b.squares[from.col][from.row] = Piece{}
}

// PieceAt returns the occupant of pos, if any
func (b *Board) PieceAt(pos Position) (Piece, bool) {
	p := b.squares[pos.col][pos.row]
	return p, !p.IsEmpty()
}

func (b *Board) Turn() core.Color {
	return b.turn
}

// SelfCheckPrevention reports whether the board was built in strict mode
func (b *Board) SelfCheckPrevention() bool {
	return b.selfCheck
}

// PiecesByPosition returns a copy of the occupied squares
func (b *Board) PiecesByPosition() map[Position]Piece {
	pieces := make(map[Position]Piece, 32)
	for pos := range AllPositions() {
		if p := b.squares[pos.col][pos.row]; !p.IsEmpty() {
			pieces[pos] = p
		}
	}
	return pieces
}

// Snapshot is PiecesByPosition keyed by algebraic notation, the form
// handed to persistence and presentation
func (b *Board) Snapshot() map[string]Piece {
	pieces := b.PiecesByPosition()
	snap := make(map[string]Piece, len(pieces))
	for pos, p := range pieces {
		snap[pos.String()] = p
	}
	return snap
}

// Count returns the number of pieces on the board
func (b *Board) Count() int {
	n := 0
	for pos := range AllPositions() {
		if !b.squares[pos.col][pos.row].IsEmpty() {
			n++
		}
	}
	return n
}

// KingPosition locates the king of the given color
func (b *Board) KingPosition(color core.Color) (Position, bool) {
	for pos := range AllPositions() {
		if p := b.squares[pos.col][pos.row]; p.Kind == King && p.Color == color {
			return pos, true
		}
	}
	return Position{}, false
}

// Finished reports whether either king has been captured
func (b *Board) Finished() bool {
	for _, c := range core.Colors {
		if _, ok := b.KingPosition(c); !ok {
			return true
		}
	}
	return false
}

// Clone returns an independent copy
func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

// Equal compares layout and turn
func (b *Board) Equal(other *Board) bool {
	return b.turn == other.turn && maps.Equal(b.PiecesByPosition(), other.PiecesByPosition())
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := Row8; r >= Row1; r-- {
		sb.WriteString(fmt.Sprintf("%s ", r))
		for c := ColumnA; c <= ColumnH; c++ {
			sb.WriteString(b.squares[c][r].Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %s\n", r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
