package commands

import (
	"errors"
	"fmt"
	"strings"

	"chessgame/internal/client/display"
	"chessgame/internal/client/session"
	"chessgame/internal/server/core"
)

var errNoGame = errors.New("no current game, use 'new' or 'join <gameId>'")

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game",
		Usage:       "new [gameId] [-strict]",
		Group:       "Game",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Group:       "Game",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <source> <destination> | move <e2e4>",
		Group:       "Game",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Group:       "Game",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Group:       "Game",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "status",
		ShortName:   "t",
		Description: "Show material scores",
		Usage:       "status",
		Group:       "Game",
		Handler:     statusHandler,
	})

	r.Register(&Command{
		Name:        "result",
		ShortName:   "r",
		Description: "Show the winner by the current position",
		Usage:       "result",
		Group:       "Game",
		Handler:     resultHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for game updates",
		Usage:       "poll",
		Group:       "Game",
		Handler:     pollHandler,
	})

	r.Register(&Command{
		Name:        "end",
		ShortName:   "e",
		Description: "End and delete a game",
		Usage:       "end [gameId]",
		Group:       "Game",
		Handler:     endGameHandler,
	})
}

func newGameHandler(s *session.Session, args []string) error {
	req := &core.CreateGameRequest{}
	for _, arg := range args {
		if arg == "-strict" || arg == "--strict" {
			req.Strict = true
			continue
		}
		if req.GameID != "" {
			return fmt.Errorf("usage: new [gameId] [-strict]")
		}
		req.GameID = arg
	}

	resp, err := s.Client.CreateGame(req)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	if resp.Restored {
		fmt.Fprintf(s.Out, "%sGame restored: %s%s\n", display.Green, resp.GameID, display.Reset)
	} else {
		fmt.Fprintf(s.Out, "%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	}
	fmt.Fprintf(s.Out, "Turn: %s | State: %s | Moves: %d | Strict: %t\n",
		display.ColorForTurn(resp.Turn), resp.State, resp.MoveCount, resp.Strict)
	return nil
}

func joinGameHandler(s *session.Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	resp, err := s.Client.GetGame(args[0])
	if err != nil {
		return err
	}
	s.SetGame(resp)

	fmt.Fprintf(s.Out, "%sJoined game: %s%s\n", display.Green, resp.GameID, display.Reset)
	fmt.Fprintf(s.Out, "Turn: %s | State: %s | Moves: %d\n",
		display.ColorForTurn(resp.Turn), resp.State, resp.MoveCount)
	return nil
}

// splitMove accepts "e2 e4" and "e2e4"
func splitMove(args []string) (string, string, bool) {
	switch len(args) {
	case 1:
		if len(args[0]) != 4 {
			return "", "", false
		}
		return args[0][:2], args[0][2:], true
	case 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

func moveHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	src, dst, ok := splitMove(args)
	if !ok {
		return fmt.Errorf("usage: move <source> <destination>")
	}

	resp, err := s.Client.MakeMove(s.CurrentGame, strings.ToLower(src), strings.ToLower(dst))
	if err != nil {
		return err
	}
	s.SetGame(resp)

	fmt.Fprintf(s.Out, "%sMove accepted%s\n", display.Green, display.Reset)
	if lm := resp.LastMove; lm != nil && lm.Captured != "" {
		fmt.Fprintf(s.Out, "%sCaptured: %s%s\n", display.Magenta, lm.Captured, display.Reset)
	}
	if resp.InCheck {
		fmt.Fprintf(s.Out, "%s%s is in check%s\n", display.Yellow, display.ColorForTurn(resp.Turn), display.Reset)
	}
	if resp.State != "ongoing" {
		fmt.Fprintf(s.Out, "%sGame over: %s%s\n", display.Cyan, resp.State, display.Reset)
	}
	return nil
}

func showBoardHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	game, err := s.Client.GetGame(s.CurrentGame)
	if err != nil {
		return err
	}
	board, err := s.Client.GetBoard(s.CurrentGame)
	if err != nil {
		return err
	}
	s.SetGame(game)

	fmt.Fprintln(s.Out)
	display.RenderBoard(s.Out, board.Board)

	fmt.Fprintf(s.Out, "\nTurn: %s | State: %s | Moves: %d\n",
		display.ColorForTurn(game.Turn), game.State, game.MoveCount)
	if game.Status != "" && game.Status != "ongoing" {
		fmt.Fprintf(s.Out, "Status: %s\n", game.Status)
	}

	if lm := game.LastMove; lm != nil {
		fmt.Fprintf(s.Out, "Last move: %s%s by %s", lm.Source, lm.Destination, display.ColorForTurn(lm.PlayerColor))
		if lm.Captured != "" {
			fmt.Fprintf(s.Out, " capturing %s", lm.Captured)
		}
		fmt.Fprintln(s.Out)
	}
	return nil
}

func gameStateHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	resp, err := s.Client.GetGame(s.CurrentGame)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	fmt.Fprintf(s.Out, "%sGame State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(s.Out, resp)
	return nil
}

func statusHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	resp, err := s.Client.GetStatus(s.CurrentGame)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sScores:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  White: %.1f\n", resp.White)
	fmt.Fprintf(s.Out, "  Black: %.1f\n", resp.Black)
	return nil
}

func resultHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	resp, err := s.Client.GetResult(s.CurrentGame)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sResult:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  Winner: %s (%s)\n", resp.Winner, resp.Reason)
	fmt.Fprintf(s.Out, "  White:  %.1f\n", resp.WhiteScore)
	fmt.Fprintf(s.Out, "  Black:  %.1f\n", resp.BlackScore)
	return nil
}

func pollHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return errNoGame
	}

	moveCount := 0
	if s.CurrentGameState != nil {
		moveCount = s.CurrentGameState.MoveCount
	}

	fmt.Fprintf(s.Out, "%sLong-polling for updates (move count: %d)...%s\n",
		display.Cyan, moveCount, display.Reset)

	resp, err := s.Client.GetGameWithPoll(s.CurrentGame, moveCount)
	if err != nil {
		return err
	}
	s.SetGame(resp)

	if resp.MoveCount > moveCount {
		fmt.Fprintf(s.Out, "%sGame updated! New moves detected%s\n", display.Green, display.Reset)
		if lm := resp.LastMove; lm != nil {
			fmt.Fprintf(s.Out, "Last move: %s%s\n", lm.Source, lm.Destination)
		}
	} else {
		fmt.Fprintf(s.Out, "%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	return nil
}

func endGameHandler(s *session.Session, args []string) error {
	gameID := s.CurrentGame
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("specify game ID or set current game")
	}

	if err := s.Client.EndGame(gameID); err != nil {
		return err
	}
	if gameID == s.CurrentGame {
		s.ClearGame()
	}

	fmt.Fprintf(s.Out, "%sGame ended: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}
