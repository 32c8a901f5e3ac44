package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return s
}

func recordFor(gameID string, b *board.Board, moveCount int) GameRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return GameRecord{
		GameID:    gameID,
		Turn:      b.Turn().String(),
		Strict:    b.SelfCheckPrevention(),
		MoveCount: moveCount,
		CreatedAt: now,
		UpdatedAt: now,
		Pieces:    PieceRecords(b.Snapshot()),
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	b := board.New(board.WithSelfCheckPrevention(true))
	if err := b.MoveNotation("e2", "e4"); err != nil {
		t.Fatal(err)
	}
	rec := recordFor("game-1", b, 1)
	if err := s.SaveGameSync(rec); err != nil {
		t.Fatalf("SaveGameSync: %v", err)
	}

	got, err := s.LoadGame("game-1")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	opts := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(rec, *got, opts); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	restored, err := got.Board()
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if !restored.Equal(b) {
		t.Error("restored board differs")
	}
	if !restored.SelfCheckPrevention() {
		t.Error("strict flag lost")
	}
}

func TestLoadMissingGame(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	if _, err := s.LoadGame("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	exists, err := s.GameExists("nope")
	if err != nil || exists {
		t.Errorf("GameExists = %t, %v", exists, err)
	}
}

func TestAsyncSaveFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openTestStore(t, path)

	b := board.New()
	if err := s.SaveGame(recordFor("async", b, 0)); err != nil {
		t.Fatal(err)
	}
	if err := b.MoveNotation("g1", "f3"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGame(recordFor("async", b, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.IsHealthy() {
		t.Error("store degraded during writes")
	}

	reopened := openTestStore(t, path)
	defer reopened.Close()

	got, err := reopened.LoadGame("async")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if got.MoveCount != 1 || got.Turn != "b" {
		t.Errorf("MoveCount=%d Turn=%s, want 1 b", got.MoveCount, got.Turn)
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	b := board.New()
	old := recordFor("g", b, 0)
	if err := b.MoveNotation("d2", "d4"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGameSync(recordFor("g", b, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGameSync(old); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadGame("g")
	if err != nil {
		t.Fatal(err)
	}
	if got.MoveCount != 1 {
		t.Errorf("MoveCount = %d, stale snapshot overwrote newer one", got.MoveCount)
	}
}

func TestDeleteGameCascades(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	if err := s.SaveGameSync(recordFor("gone", board.New(), 0)); err != nil {
		t.Fatal(err)
	}
	deleted, err := s.DeleteGame("gone")
	if err != nil || !deleted {
		t.Fatalf("DeleteGame = %t, %v", deleted, err)
	}
	if deleted, err := s.DeleteGame("gone"); err != nil || deleted {
		t.Errorf("second DeleteGame = %t, %v, want false", deleted, err)
	}

	pieces, err := s.loadPieces("gone")
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 0 {
		t.Errorf("%d pieces left after delete", len(pieces))
	}
}

func TestInterleavedWritesStayHealthy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openTestStore(t, path)

	const games = 50
	for i := range games {
		id := fmt.Sprintf("game-%d", i)
		b := board.New()
		if err := s.SaveGameSync(recordFor(id, b, 0)); err != nil {
			t.Fatalf("SaveGameSync(%s): %v", id, err)
		}
		if err := b.MoveNotation("e2", "e4"); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveGame(recordFor(id, b, 1)); err != nil {
			t.Fatalf("SaveGame(%s): %v", id, err)
		}
		if i%10 == 9 {
			if _, err := s.DeleteGame("absent"); err != nil {
				t.Fatalf("DeleteGame: %v", err)
			}
		}
	}
	if !s.IsHealthy() {
		t.Fatal("store degraded under interleaved writes")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openTestStore(t, path)
	defer reopened.Close()

	for i := range games {
		id := fmt.Sprintf("game-%d", i)
		got, err := reopened.LoadGame(id)
		if err != nil {
			t.Fatalf("LoadGame(%s): %v", id, err)
		}
		if got.MoveCount != 1 || got.Turn != "b" {
			t.Errorf("%s: MoveCount=%d Turn=%s, want 1 b", id, got.MoveCount, got.Turn)
		}
	}
}

func TestWritesAfterClose(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	rec := recordFor("late", board.New(), 0)
	if err := s.SaveGame(rec); !errors.Is(err, ErrClosed) {
		t.Errorf("SaveGame error = %v, want ErrClosed", err)
	}
	if err := s.SaveGameSync(rec); !errors.Is(err, ErrClosed) {
		t.Errorf("SaveGameSync error = %v, want ErrClosed", err)
	}
	if _, err := s.DeleteGame("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("DeleteGame error = %v, want ErrClosed", err)
	}
}

func TestQueryGames(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	for _, id := range []string{"one", "two"} {
		if err := s.SaveGameSync(recordFor(id, board.New(), 0)); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.QueryGames("*")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("QueryGames(*) returned %d rows, want 2", len(all))
	}

	one, err := s.QueryGames("one")
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].PieceCount != 32 || one[0].Turn != "w" {
		t.Errorf("QueryGames(one) = %+v", one)
	}
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openTestStore(t, path)
	if err := s.DeleteDB(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file still exists: %v", err)
	}
}

func TestPieceRecordsSorted(t *testing.T) {
	recs := PieceRecords(map[string]board.Piece{
		"h8": board.NewPiece(board.Rook, core.ColorBlack),
		"a1": board.NewPiece(board.Rook, core.ColorWhite),
	})
	want := []PieceRecord{
		{Position: "a1", Kind: "rook", Color: "w"},
		{Position: "h8", Kind: "rook", Color: "b"},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("PieceRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordBoardRejectsCorruptRows(t *testing.T) {
	rec := GameRecord{Turn: "w", Pieces: []PieceRecord{{Position: "a1", Kind: "dragon", Color: "w"}}}
	if _, err := rec.Board(); err == nil {
		t.Error("Board accepted unknown piece kind")
	}
	rec = GameRecord{Turn: "x"}
	if _, err := rec.Board(); err == nil {
		t.Error("Board accepted invalid turn")
	}
}
