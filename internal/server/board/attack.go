package board

import (
	"iter"

	"chessgame/internal/server/core"
)

// Move is a (source, destination) pair
type Move struct {
	From Position
	To   Position
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// IsAttacked reports whether any piece of color by could reach target,
// ignoring whose turn it is and the safety of by's own king.
func (b *Board) IsAttacked(target Position, by core.Color) bool {
	for pos := range AllPositions() {
		p := b.squares[pos.col][pos.row]
		if p.IsEmpty() || p.Color != by || pos == target {
			continue
		}
		if !p.attacks(pos, target) {
			continue
		}
		if p.Kind.slides() && !b.pathClear(pos, target) {
			continue
		}
		return true
	}
	return false
}

// InCheck reports whether color's king is attacked. A missing king is
// not in check.
func (b *Board) InCheck(color core.Color) bool {
	king, ok := b.KingPosition(color)
	if !ok {
		return false
	}
	return b.IsAttacked(king, core.OppositeColor(color))
}

// CandidateMoves yields every move of color that passes the occupancy,
// pattern and path checks, regardless of whose turn it is.
func (b *Board) CandidateMoves(color core.Color) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for from := range AllPositions() {
			p := b.squares[from.col][from.row]
			if p.IsEmpty() || p.Color != color {
				continue
			}
			for to := range AllPositions() {
				if b.validate(from, to, false) != nil {
					continue
				}
				if !yield(Move{From: from, To: to}) {
					return
				}
			}
		}
	}
}

// LeavesKingSafe simulates from -> to on a copy and reports whether the
// mover's king is not attacked afterwards. The move must already be valid.
func (b *Board) LeavesKingSafe(from, to Position) bool {
	mover := b.squares[from.col][from.row]
	sim := b.Clone()
	sim.apply(from, to)
	return !sim.InCheck(mover.Color)
}
