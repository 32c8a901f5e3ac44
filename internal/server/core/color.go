package core

import "fmt"

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

// Colors lists both sides in move order
var Colors = [2]Color{ColorWhite, ColorBlack}

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	} else {
		return "-"
	}
}

// Name returns the long form used in API responses
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "none"
	}
}

func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts the short ("w", "b") and long ("white", "black") forms
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return 0, fmt.Errorf("invalid color: %q", s)
	}
}
