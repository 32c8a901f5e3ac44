package board

import (
	"errors"
	"fmt"
)

// Sentinel errors for coordinate and move failures.
// Callers inspect them with errors.Is through the wrapping types below.
var (
	ErrParse              = errors.New("malformed square notation")
	ErrOutOfRange         = errors.New("square outside the board")
	ErrNoPiece            = errors.New("no piece at source")
	ErrWrongTurn          = errors.New("piece does not belong to the side to move")
	ErrIllegalDestination = errors.New("destination holds a piece of the same color")
	ErrIllegalPattern     = errors.New("piece cannot move in that pattern")
	ErrPathBlocked        = errors.New("path is blocked")
	ErrKingInCheck        = errors.New("move leaves own king in check")
	ErrGameOver           = errors.New("game is finished")
)

// PositionError reports a square that could not be constructed.
type PositionError struct {
	Input string // Raw notation, or "column,row" for numeric input
	Err   error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("square %q: %v", e.Input, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// MoveError reports a rejected move along with the squares involved.
type MoveError struct {
	From Position
	To   Position
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
