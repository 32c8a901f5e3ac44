package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chessgame/internal/server/core"
	"chessgame/internal/server/processor"
	"chessgame/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var clientSeq atomic.Int64

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return NewFiberApp(processor.New(svc, false), svc, true)
}

// do sends a request from a fresh client address so the rate limiter
// only engages when a test asks for it
func do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	return doAs(t, app, fmt.Sprintf("10.0.0.%d", clientSeq.Add(1)), method, path, body)
}

func doAs(t *testing.T, app *fiber.App, ip, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Forwarded-For", ip)

	resp, err := app.Test(req, 30_000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}

func createGame(t *testing.T, app *fiber.App) core.GameResponse {
	t.Helper()
	resp := do(t, app, fiber.MethodPost, "/api/v1/games", "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	return decode[core.GameResponse](t, resp)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp := do(t, app, fiber.MethodGet, "/health", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "healthy" || body["storage"] != "disabled" {
		t.Errorf("health = %v", body)
	}
}

func TestCreateAndGetGame(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	if _, err := uuid.Parse(game.GameID); err != nil {
		t.Fatalf("game ID %q is not a UUID", game.GameID)
	}

	resp := do(t, app, fiber.MethodGet, "/api/v1/games/"+game.GameID, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got := decode[core.GameResponse](t, resp)
	if got.GameID != game.GameID || got.Turn != "w" || len(got.Pieces) != 32 {
		t.Errorf("game = %+v", got)
	}
}

func TestCreateGameWithBody(t *testing.T) {
	app := newTestApp(t)
	id := uuid.New().String()

	resp := do(t, app, fiber.MethodPost, "/api/v1/games", fmt.Sprintf(`{"gameId":%q,"strict":true}`, id))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	game := decode[core.GameResponse](t, resp)
	if game.GameID != id || !game.Strict {
		t.Errorf("game = %+v", game)
	}

	dup := do(t, app, fiber.MethodPost, "/api/v1/games", fmt.Sprintf(`{"gameId":%q}`, id))
	if dup.StatusCode != fiber.StatusBadRequest {
		t.Errorf("duplicate status = %d", dup.StatusCode)
	}
}

func TestCreateGameValidation(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad game id", `{"gameId":"not-a-uuid"}`, fiber.StatusBadRequest},
		{"malformed json", `{"gameId":`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, app, fiber.MethodPost, "/api/v1/games", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			errResp := decode[core.ErrorResponse](t, resp)
			if errResp.Code != core.ErrInvalidRequest {
				t.Errorf("code = %s", errResp.Code)
			}
		})
	}
}

func TestWrongContentType(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/games", strings.NewReader("strict"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestMakeMove(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	path := "/api/v1/games/" + game.GameID + "/moves"

	resp := do(t, app, fiber.MethodPost, path, `{"source":"e2","destination":"e4"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[core.GameResponse](t, resp)
	if got.Turn != "b" || got.MoveCount != 1 || got.Pieces["e4"] != "P" {
		t.Errorf("after move = %+v", got)
	}
}

func TestMakeMoveErrors(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	path := "/api/v1/games/" + game.GameID + "/moves"

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing destination", `{"source":"e2"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"off board", `{"source":"e2","destination":"e9"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"upper-case file", `{"source":"E2","destination":"e4"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"same square", `{"source":"e2","destination":"e2"}`, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"illegal pattern", `{"source":"a2","destination":"a5"}`, fiber.StatusBadRequest, core.ErrIllegalPattern},
		{"wrong turn", `{"source":"e7","destination":"e5"}`, fiber.StatusBadRequest, core.ErrWrongTurn},
		{"path blocked", `{"source":"a1","destination":"a3"}`, fiber.StatusBadRequest, core.ErrPathBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, app, fiber.MethodPost, path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := decode[core.ErrorResponse](t, resp); got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s (%s)", got.Code, tt.wantCode, got.Details)
			}
		})
	}
}

func TestUnknownAndInvalidGameID(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, fiber.MethodGet, "/api/v1/games/"+uuid.New().String(), "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", resp.StatusCode)
	}

	resp = do(t, app, fiber.MethodGet, "/api/v1/games/not-a-uuid/board", "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", resp.StatusCode)
	}
}

func TestBoardStatusResult(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	base := "/api/v1/games/" + game.GameID

	board := decode[core.BoardResponse](t, do(t, app, fiber.MethodGet, base+"/board", ""))
	if !strings.Contains(board.Board, "R N B Q K B N R") || board.Turn != "w" {
		t.Errorf("board = %+v", board)
	}

	status := decode[core.StatusResponse](t, do(t, app, fiber.MethodGet, base+"/status", ""))
	if status.White != 38 || status.Black != 38 {
		t.Errorf("status = %+v", status)
	}

	result := decode[core.ResultResponse](t, do(t, app, fiber.MethodGet, base+"/result", ""))
	if result.Winner != "draw" || result.Reason != "score" {
		t.Errorf("result = %+v", result)
	}
}

func TestEndGame(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	path := "/api/v1/games/" + game.GameID

	resp := do(t, app, fiber.MethodDelete, path, "")
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, app, fiber.MethodGet, path, "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("get after delete = %d", resp.StatusCode)
	}
	resp = do(t, app, fiber.MethodDelete, path, "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("second delete = %d", resp.StatusCode)
	}
}

func TestGameOverConflict(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	path := "/api/v1/games/" + game.GameID + "/moves"

	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4", "a2a3", "h4e1"}
	for _, m := range moves {
		body := fmt.Sprintf(`{"source":%q,"destination":%q}`, m[:2], m[2:])
		if resp := do(t, app, fiber.MethodPost, path, body); resp.StatusCode != fiber.StatusOK {
			t.Fatalf("move %s status = %d", m, resp.StatusCode)
		}
	}

	resp := do(t, app, fiber.MethodPost, path, `{"source":"a3","destination":"a4"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
	if got := decode[core.ErrorResponse](t, resp); got.Code != core.ErrGameOver {
		t.Errorf("code = %s", got.Code)
	}
}

func TestLongPoll(t *testing.T) {
	app := newTestApp(t)
	game := createGame(t, app)
	base := "/api/v1/games/" + game.GameID

	// a client that is already behind is answered at once
	resp := do(t, app, fiber.MethodGet, base+"?wait=true&moveCount=5", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("behind client status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	done := make(chan core.GameResponse, 1)
	go func() {
		req := httptest.NewRequest(fiber.MethodGet, base+"?wait=true&moveCount=0", nil)
		req.Header.Set("X-Forwarded-For", "10.1.0.1")
		resp, err := app.Test(req, 30_000)
		if err != nil {
			close(done)
			return
		}
		defer resp.Body.Close()
		var g core.GameResponse
		json.NewDecoder(resp.Body).Decode(&g)
		done <- g
	}()

	// give the poller time to register before moving
	time.Sleep(100 * time.Millisecond)
	do(t, app, fiber.MethodPost, base+"/moves", `{"source":"d2","destination":"d4"}`).Body.Close()

	select {
	case g, ok := <-done:
		if !ok {
			t.Fatal("long-poll request failed")
		}
		if g.MoveCount != 1 {
			t.Errorf("poll returned MoveCount = %d, want 1", g.MoveCount)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("long-poll did not return after move")
	}
}

func TestRateLimit(t *testing.T) {
	app := newTestApp(t)
	limited := false
	for range rateLimitRate*2 + 5 {
		resp := doAs(t, app, "192.0.2.1", fiber.MethodGet, "/api/v1/games/"+uuid.New().String(), "")
		resp.Body.Close()
		if resp.StatusCode == fiber.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("rate limiter never engaged")
	}
}
