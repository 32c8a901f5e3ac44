package commands

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chessgame/internal/client/display"
	"chessgame/internal/client/session"
	"chessgame/internal/server/processor"
	"chessgame/internal/server/service"

	chesshttp "chessgame/internal/server/http"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// newTestSession runs the real API behind an httptest server
func newTestSession(t *testing.T) (*Registry, *session.Session, *bytes.Buffer) {
	t.Helper()
	display.DisableColors()

	svc := service.New(nil)
	app := chesshttp.NewFiberApp(processor.New(svc, false), svc, true)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(func() {
		srv.Close()
		svc.Shutdown(time.Second)
	})

	var out bytes.Buffer
	s := session.New(srv.URL)
	s.Out = &out
	s.Client.Out = &out
	return NewRegistry(s), s, &out
}

func execute(t *testing.T, r *Registry, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := r.Execute(line); err != nil {
		t.Fatalf("Execute(%q) = %v", line, err)
	}
	return out.String()
}

func TestNewMoveShow(t *testing.T) {
	r, s, out := newTestSession(t)

	got := execute(t, r, out, "new")
	if !strings.Contains(got, "Game created") || s.CurrentGame == "" {
		t.Fatalf("new output = %q", got)
	}

	got = execute(t, r, out, "move e2 e4")
	if !strings.Contains(got, "Move accepted") {
		t.Fatalf("move output = %q", got)
	}
	if s.CurrentGameState.MoveCount != 1 || s.CurrentGameState.Turn != "b" {
		t.Errorf("session state = %+v", s.CurrentGameState)
	}

	got = execute(t, r, out, "m e7e5")
	if !strings.Contains(got, "Move accepted") {
		t.Fatalf("compact move output = %q", got)
	}

	got = execute(t, r, out, "show")
	for _, want := range []string{"4 . . . . P . . .  4", "Moves: 2", "Last move: e7e5 by Black"} {
		if !strings.Contains(got, want) {
			t.Errorf("show output missing %q:\n%s", want, got)
		}
	}
}

func TestMoveRejected(t *testing.T) {
	r, _, out := newTestSession(t)
	execute(t, r, out, "new")

	got := execute(t, r, out, "move a2 a5")
	if !strings.Contains(got, "Error:") || !strings.Contains(got, "ILLEGAL_PATTERN") {
		t.Errorf("output = %q", got)
	}

	got = execute(t, r, out, "move a2")
	if !strings.Contains(got, "usage: move") {
		t.Errorf("output = %q", got)
	}
}

func TestCommandsWithoutGame(t *testing.T) {
	r, _, out := newTestSession(t)
	for _, line := range []string{"move e2 e4", "show", "state", "status", "result", "poll"} {
		got := execute(t, r, out, line)
		if !strings.Contains(got, "no current game") {
			t.Errorf("%s output = %q", line, got)
		}
	}
}

func TestStatusResultEnd(t *testing.T) {
	r, s, out := newTestSession(t)
	execute(t, r, out, "new -strict")
	if !s.CurrentGameState.Strict {
		t.Error("strict flag not sent")
	}

	got := execute(t, r, out, "status")
	if !strings.Contains(got, "White: 38.0") || !strings.Contains(got, "Black: 38.0") {
		t.Errorf("status output = %q", got)
	}

	got = execute(t, r, out, "result")
	if !strings.Contains(got, "Winner: draw (score)") {
		t.Errorf("result output = %q", got)
	}

	id := s.CurrentGame
	got = execute(t, r, out, "end")
	if !strings.Contains(got, "Game ended: "+id) || s.CurrentGame != "" {
		t.Errorf("end output = %q, current = %q", got, s.CurrentGame)
	}

	got = execute(t, r, out, "join "+id)
	if !strings.Contains(got, "GAME_NOT_FOUND") {
		t.Errorf("join ended game output = %q", got)
	}
}

func TestUtilityCommands(t *testing.T) {
	r, s, out := newTestSession(t)

	got := execute(t, r, out, "health")
	if !strings.Contains(got, "Status:  healthy") || !strings.Contains(got, "Storage: disabled") {
		t.Errorf("health output = %q", got)
	}

	got = execute(t, r, out, "help")
	for _, name := range []string{"Game:", "Utility:", "move", "result", "exit"} {
		if !strings.Contains(got, name) {
			t.Errorf("help missing %q", name)
		}
	}

	got = execute(t, r, out, "help move")
	if !strings.Contains(got, "Usage: move <source> <destination>") {
		t.Errorf("help move output = %q", got)
	}

	got = execute(t, r, out, "bogus")
	if !strings.Contains(got, "Unknown command: bogus") {
		t.Errorf("unknown output = %q", got)
	}

	execute(t, r, out, "verbose")
	if !s.Verbose {
		t.Error("verbose not toggled")
	}

	base := s.APIBaseURL
	got = execute(t, r, out, "url localhost:9999")
	if s.APIBaseURL != "http://localhost:9999" || s.Client.BaseURL != "http://localhost:9999" {
		t.Errorf("url not updated: %q", got)
	}
	s.SetAPIBaseURL(base)

	if err := r.Execute("exit"); !errors.Is(err, ErrExit) {
		t.Errorf("exit = %v, want ErrExit", err)
	}
}

func TestPollReturnsAfterOpponentMove(t *testing.T) {
	r, s, out := newTestSession(t)
	execute(t, r, out, "new")
	gameID := s.CurrentGame

	// a second player moves from another session
	opponent := session.New(s.APIBaseURL)
	opponent.Out = &bytes.Buffer{}
	go func() {
		time.Sleep(100 * time.Millisecond)
		opponent.Client.MakeMove(gameID, "e2", "e4")
	}()

	got := execute(t, r, out, "poll")
	if !strings.Contains(got, "New moves detected") || !strings.Contains(got, "Last move: e2e4") {
		t.Errorf("poll output = %q", got)
	}
}

func TestSplitMove(t *testing.T) {
	tests := []struct {
		args     []string
		src, dst string
		ok       bool
	}{
		{[]string{"e2", "e4"}, "e2", "e4", true},
		{[]string{"g1f3"}, "g1", "f3", true},
		{[]string{"e2e"}, "", "", false},
		{nil, "", "", false},
		{[]string{"a", "b", "c"}, "", "", false},
	}
	for _, tt := range tests {
		src, dst, ok := splitMove(tt.args)
		if src != tt.src || dst != tt.dst || ok != tt.ok {
			t.Errorf("splitMove(%v) = %q,%q,%t", tt.args, src, dst, ok)
		}
	}
}
