package rules

import (
	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
)

// DoubledPawnPenalty is subtracted per pawn on a file holding two or more
// pawns of the same color
const DoubledPawnPenalty = 0.5

var pieceValues = map[board.Kind]float64{
	board.Pawn:   1,
	board.Knight: 2.5,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   0,
}

// Value returns the material value of a piece kind
func Value(k board.Kind) float64 {
	return pieceValues[k]
}

// Score sums color's material and applies the doubled pawn penalty
func Score(b *board.Board, color core.Color) float64 {
	var total float64
	var pawnsPerColumn [8]int

	for pos, p := range b.PiecesByPosition() {
		if p.Color != color {
			continue
		}
		total += Value(p.Kind)
		if p.Kind == board.Pawn {
			pawnsPerColumn[pos.Column()]++
		}
	}

	for _, n := range pawnsPerColumn {
		if n >= 2 {
			total -= DoubledPawnPenalty * float64(n)
		}
	}
	return total
}
