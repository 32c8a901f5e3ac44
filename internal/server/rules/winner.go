package rules

import (
	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
)

// Status classifies why a game ended, or that it has not
type Status int

const (
	StatusOngoing Status = iota
	StatusKingCaptured
	StatusCheckmate
	StatusStalemate
)

func (s Status) String() string {
	switch s {
	case StatusKingCaptured:
		return "king_captured"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Outcome aggregates everything the service layer reports about a board
type Outcome struct {
	Status     Status
	Winner     core.Winner
	WhiteScore float64
	BlackScore float64
	InCheck    bool // Side to move is in check
	strict     bool
}

// ResolveWinner awards a captured king to the capturer outright and
// otherwise compares material scores, equal scores being a draw.
func ResolveWinner(b *board.Board) core.Winner {
	whiteGone := IsKingCaptured(b, core.ColorWhite)
	blackGone := IsKingCaptured(b, core.ColorBlack)
	switch {
	case whiteGone && !blackGone:
		return core.WinnerBlack
	case blackGone && !whiteGone:
		return core.WinnerWhite
	}
	return compareScores(Score(b, core.ColorWhite), Score(b, core.ColorBlack))
}

func compareScores(white, black float64) core.Winner {
	switch {
	case white > black:
		return core.WinnerWhite
	case black > white:
		return core.WinnerBlack
	default:
		return core.WinnerDraw
	}
}

// Evaluate inspects the board from the side to move's perspective.
// Checkmate and stalemate only decide the winner on boards that forbid
// leaving the king in check; elsewhere the mated side may still move and
// lose its king, so ResolveWinner stands.
func Evaluate(b *board.Board) Outcome {
	turn := b.Turn()
	out := Outcome{
		WhiteScore: Score(b, core.ColorWhite),
		BlackScore: Score(b, core.ColorBlack),
		InCheck:    IsCheck(b, turn),
		Winner:     ResolveWinner(b),
		strict:     b.SelfCheckPrevention(),
	}

	switch {
	case IsKingCaptured(b, core.ColorWhite) || IsKingCaptured(b, core.ColorBlack):
		out.Status = StatusKingCaptured
	case out.InCheck && IsCheckmate(b, turn):
		out.Status = StatusCheckmate
		if out.strict {
			out.Winner = core.WinnerOf(core.OppositeColor(turn))
		}
	case !out.InCheck && IsStalemate(b, turn):
		out.Status = StatusStalemate
		if out.strict {
			out.Winner = core.WinnerDraw
		}
	}
	return out
}

// Finished reports whether the outcome ends the game
func (o Outcome) Finished() bool {
	switch o.Status {
	case StatusKingCaptured:
		return true
	case StatusCheckmate, StatusStalemate:
		return o.strict
	default:
		return false
	}
}
