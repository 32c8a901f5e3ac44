package display

import (
	"io"
	"strings"
)

// RenderBoard writes an ASCII board with colored pieces: white pieces are
// upper-case, black lower-case, coordinates on the first and last lines
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	var sb strings.Builder
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		isFileLine := i == 0 || i == last

		for _, char := range line {
			switch {
			case isFileLine && char >= 'a' && char <= 'h':
				sb.WriteString(Cyan + string(char) + Reset)
			case char >= 'A' && char <= 'Z':
				sb.WriteString(Blue + string(char) + Reset)
			case char >= 'a' && char <= 'z':
				sb.WriteString(Red + string(char) + Reset)
			case char >= '1' && char <= '8':
				sb.WriteString(Cyan + string(char) + Reset)
			default:
				sb.WriteRune(char)
			}
		}
		sb.WriteByte('\n')
	}
	io.WriteString(w, sb.String())
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
