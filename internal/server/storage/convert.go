package storage

import (
	"fmt"
	"sort"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
)

// PieceRecords converts a board snapshot into rows, ordered by square
func PieceRecords(snapshot map[string]board.Piece) []PieceRecord {
	records := make([]PieceRecord, 0, len(snapshot))
	for square, p := range snapshot {
		records = append(records, PieceRecord{
			Position: square,
			Kind:     p.Kind.String(),
			Color:    p.Color.String(),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})
	return records
}

// Board rebuilds the stored board. The snapshot is trusted as-is.
func (r *GameRecord) Board() (*board.Board, error) {
	turn, err := core.ParseColor(r.Turn)
	if err != nil {
		return nil, err
	}

	pieces := make(map[string]board.Piece, len(r.Pieces))
	for _, p := range r.Pieces {
		kind, err := board.ParseKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("square %s: %w", p.Position, err)
		}
		color, err := core.ParseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("square %s: %w", p.Position, err)
		}
		pieces[p.Position] = board.NewPiece(kind, color)
	}

	return board.FromSnapshot(pieces, turn, board.WithSelfCheckPrevention(r.Strict))
}
