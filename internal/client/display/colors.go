package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes, blanked by Init when output is not a terminal
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Init disables colors unless f is an interactive terminal
func Init(f *os.File) {
	if !term.IsTerminal(int(f.Fd())) {
		DisableColors()
	}
}

// DisableColors blanks every color code
func DisableColors() {
	for _, c := range []*string{&Reset, &Red, &Green, &Yellow, &Blue, &Magenta, &Cyan, &White} {
		*c = ""
	}
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}
