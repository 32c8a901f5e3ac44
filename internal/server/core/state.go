package core

type State int

const (
	StateOngoing State = iota
	StateWhiteWins
	StateBlackWins
	StateDraw
)

func (s State) String() string {
	switch s {
	case StateOngoing:
		return "ongoing"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Finished reports whether the state is terminal
func (s State) Finished() bool {
	return s == StateWhiteWins || s == StateBlackWins || s == StateDraw
}

// Winner is the classification of a finished game
type Winner int

const (
	WinnerDraw Winner = iota
	WinnerWhite
	WinnerBlack
)

func (w Winner) String() string {
	switch w {
	case WinnerWhite:
		return "white"
	case WinnerBlack:
		return "black"
	default:
		return "draw"
	}
}

// State converts the winner into the terminal game state it implies
func (w Winner) State() State {
	switch w {
	case WinnerWhite:
		return StateWhiteWins
	case WinnerBlack:
		return StateBlackWins
	default:
		return StateDraw
	}
}

// WinnerOf returns the winner classification for a single color
func WinnerOf(c Color) Winner {
	if c == ColorWhite {
		return WinnerWhite
	}
	return WinnerBlack
}
