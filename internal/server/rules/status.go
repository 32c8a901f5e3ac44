// Package rules evaluates finished-game conditions and material scores on
// top of a board. Every function is a pure read of the board.
package rules

import (
	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
)

// IsCheck reports whether color's king is attacked by any opposing piece
func IsCheck(b *board.Board, color core.Color) bool {
	return b.InCheck(color)
}

// IsCheckmate reports whether color is in check and every candidate move
// still leaves its king attacked.
func IsCheckmate(b *board.Board, color core.Color) bool {
	if !b.InCheck(color) {
		return false
	}
	return !hasSafeMove(b, color)
}

// IsStalemate reports whether color is not in check but has no move that
// keeps its king safe. A side without a king is never stalemated.
func IsStalemate(b *board.Board, color core.Color) bool {
	if _, ok := b.KingPosition(color); !ok {
		return false
	}
	if b.InCheck(color) {
		return false
	}
	return !hasSafeMove(b, color)
}

// IsKingCaptured reports whether color's king is missing from the board
func IsKingCaptured(b *board.Board, color core.Color) bool {
	_, ok := b.KingPosition(color)
	return !ok
}

func hasSafeMove(b *board.Board, color core.Color) bool {
	for m := range b.CandidateMoves(color) {
		if b.LeavesKingSafe(m.From, m.To) {
			return true
		}
	}
	return false
}
