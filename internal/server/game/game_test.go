package game

import (
	"errors"
	"sync"
	"testing"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
)

func sq(s string) board.Position {
	return board.MustParsePosition(s)
}

func TestMoveUpdatesSnapshot(t *testing.T) {
	g := New(false)

	res, err := g.Move(sq("e2"), sq("e4"))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.PlayerColor != core.ColorWhite {
		t.Errorf("PlayerColor = %v, want white", res.PlayerColor)
	}
	if !res.Captured.IsEmpty() {
		t.Errorf("Captured = %v, want empty", res.Captured)
	}
	if res.GameState != core.StateOngoing {
		t.Errorf("GameState = %v, want ongoing", res.GameState)
	}

	snap := g.Snapshot()
	if snap.MoveCount != 1 {
		t.Errorf("MoveCount = %d, want 1", snap.MoveCount)
	}
	if snap.Turn != core.ColorBlack {
		t.Errorf("Turn = %v, want black", snap.Turn)
	}
	if snap.Pieces["e4"] != board.NewPiece(board.Pawn, core.ColorWhite) {
		t.Errorf("e4 = %v, want white pawn", snap.Pieces["e4"])
	}
	if snap.LastResult == nil || snap.LastResult.Destination != sq("e4") {
		t.Errorf("LastResult = %+v", snap.LastResult)
	}
	if snap.Restored {
		t.Error("new game reported as restored")
	}
}

func TestRejectedMoveLeavesGame(t *testing.T) {
	g := New(false)
	_, err := g.Move(sq("e7"), sq("e5"))
	if !errors.Is(err, board.ErrWrongTurn) {
		t.Fatalf("error = %v, want ErrWrongTurn", err)
	}
	if g.MoveCount() != 0 {
		t.Errorf("MoveCount = %d after rejected move", g.MoveCount())
	}
}

func TestCaptureRecorded(t *testing.T) {
	g := New(false)
	for _, m := range [][2]string{{"e2", "e4"}, {"d7", "d5"}} {
		if _, err := g.Move(sq(m[0]), sq(m[1])); err != nil {
			t.Fatal(err)
		}
	}
	res, err := g.Move(sq("e4"), sq("d5"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Captured != board.NewPiece(board.Pawn, core.ColorBlack) {
		t.Errorf("Captured = %v, want black pawn", res.Captured)
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	b := board.Restore(map[board.Position]board.Piece{
		sq("a1"): board.NewPiece(board.King, core.ColorWhite),
		sq("e8"): board.NewPiece(board.King, core.ColorBlack),
		sq("e2"): board.NewPiece(board.Rook, core.ColorWhite),
	}, core.ColorWhite)
	g := Restore(b, 10)

	res, err := g.Move(sq("e2"), sq("e8"))
	if err != nil {
		t.Fatal(err)
	}
	if res.GameState != core.StateWhiteWins {
		t.Errorf("GameState = %v, want white wins", res.GameState)
	}
	if g.MoveCount() != 11 {
		t.Errorf("MoveCount = %d, want 11", g.MoveCount())
	}

	_, err = g.Move(sq("a1"), sq("a2"))
	if !errors.Is(err, board.ErrGameOver) {
		t.Errorf("error = %v, want ErrGameOver", err)
	}
}

func TestStrictCheckmateEndsGame(t *testing.T) {
	g := New(true)
	for _, m := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		if _, err := g.Move(sq(m[0]), sq(m[1])); err != nil {
			t.Fatalf("move %v: %v", m, err)
		}
	}
	if g.State() != core.StateBlackWins {
		t.Errorf("State = %v, want black wins", g.State())
	}
}

func TestPermissiveCheckmateContinues(t *testing.T) {
	g := New(false)
	for _, m := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		if _, err := g.Move(sq(m[0]), sq(m[1])); err != nil {
			t.Fatalf("move %v: %v", m, err)
		}
	}
	if g.State() != core.StateOngoing {
		t.Fatalf("State = %v, want ongoing", g.State())
	}
	if _, err := g.Move(sq("a2"), sq("a3")); err != nil {
		t.Fatalf("ignoring mate should be allowed: %v", err)
	}
	if _, err := g.Move(sq("h4"), sq("e1")); err != nil {
		t.Fatal(err)
	}
	if g.State() != core.StateBlackWins {
		t.Errorf("State = %v, want black wins", g.State())
	}
}

func TestRestoreFinishedBoard(t *testing.T) {
	b := board.Restore(map[board.Position]board.Piece{
		sq("e8"): board.NewPiece(board.King, core.ColorBlack),
	}, core.ColorWhite)
	g := Restore(b, 30)
	if g.State() != core.StateBlackWins {
		t.Errorf("State = %v, want black wins", g.State())
	}
	if !g.Snapshot().Restored {
		t.Error("Restored = false")
	}
}

func TestBoardReturnsCopy(t *testing.T) {
	g := New(false)
	b := g.Board()
	if err := b.MoveNotation("e2", "e4"); err != nil {
		t.Fatal(err)
	}
	if g.MoveCount() != 0 || g.Snapshot().Turn != core.ColorWhite {
		t.Error("mutating the copy affected the game")
	}
}

func TestConcurrentMovesSerialized(t *testing.T) {
	g := New(false)

	// Every goroutine races for the same white move; exactly one may win
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Move(sq("e2"), sq("e4"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 {
		t.Errorf("%d moves succeeded, want exactly 1", ok)
	}
	if g.MoveCount() != 1 {
		t.Errorf("MoveCount = %d, want 1", g.MoveCount())
	}
}
