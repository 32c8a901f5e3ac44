// Package cli implements the "db" maintenance subcommand of chess-server.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"chessgame/internal/server/core"
	"chessgame/internal/server/rules"
	"chessgame/internal/server/storage"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	return run(os.Stdout, args)
}

func run(out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, show")
	}

	switch args[0] {
	case "init":
		return runInit(out, args[1:])
	case "delete":
		return runDelete(out, args[1:])
	case "query":
		return runQuery(out, args[1:])
	case "show":
		return runShow(out, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses -path plus any extra flags registered by the caller
func openStore(name string, args []string, extra func(*flag.FlagSet)) (*storage.Store, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if *path == "" {
		return nil, "", fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open store: %w", err)
	}
	return store, *path, nil
}

func runInit(out io.Writer, args []string) error {
	store, path, err := openStore("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", path)
	return nil
}

func runDelete(out io.Writer, args []string) error {
	store, path, err := openStore("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", path)
	return nil
}

func runQuery(out io.Writer, args []string) error {
	var gameID *string
	store, _, err := openStore("query", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tTurn\tMoves\tPieces\tStrict\tUpdated (UTC)")
	fmt.Fprintln(w, "-------\t----\t-----\t------\t------\t-------------")
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%s\n",
			g.GameID, g.Turn, g.MoveCount, g.PieceCount, g.Strict, g.UpdatedAt)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

// runShow prints a stored board with its scores
func runShow(out io.Writer, args []string) error {
	var gameID *string
	store, _, err := openStore("show", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to show (required)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if *gameID == "" {
		return fmt.Errorf("game ID required")
	}

	record, err := store.LoadGame(*gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no stored game with ID %s", *gameID)
	}
	if err != nil {
		return err
	}

	b, err := record.Board()
	if err != nil {
		return fmt.Errorf("stored game is corrupt: %w", err)
	}

	fmt.Fprintln(out, b.ToASCII())
	fmt.Fprintf(out, "\nTurn: %s  Moves: %d\n", b.Turn().Name(), record.MoveCount)
	fmt.Fprintf(out, "Score: white %.1f, black %.1f (leader: %s)\n",
		rules.Score(b, core.ColorWhite), rules.Score(b, core.ColorBlack), rules.ResolveWinner(b))
	return nil
}
