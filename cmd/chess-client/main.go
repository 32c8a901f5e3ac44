// Package main implements an interactive client for the chess server API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessgame/internal/client/commands"
	"chessgame/internal/client/display"
	"chessgame/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "Chess server base URL")
	history := flag.String("history", ".chess_history", "Readline history file")
	flag.Parse()

	display.Init(os.Stdout)

	s := session.New(*apiURL)
	registry := commands.NewRegistry(s)

	completions := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range registry.Names() {
		completions = append(completions, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     *history,
		AutoComplete:    readline.NewPrefixCompleter(completions...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *session.Session) string {
	promptStr := "chess"

	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		promptStr += display.Yellow + " [" + display.White + id + display.Yellow + "]"
	}

	if st := s.CurrentGameState; st != nil {
		if st.State != "ongoing" {
			promptStr += " - " + display.Magenta + st.State + display.Reset
		} else {
			promptStr += " - Turn:" + display.ColorForTurn(st.Turn)
			if st.InCheck {
				promptStr += display.Yellow + " (check)"
			}
		}
	}

	return display.Prompt(promptStr)
}
