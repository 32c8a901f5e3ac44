package game

import (
	"sync"
	"time"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
	"chessgame/internal/server/rules"
)

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Source      board.Position
	Destination board.Position
	PlayerColor core.Color
	Captured    board.Piece // Zero when nothing was taken
	GameState   core.State
}

// Snapshot is a consistent read-only copy of a game, safe to hand to
// persistence and presentation while play continues
type Snapshot struct {
	Pieces     map[string]board.Piece
	Turn       core.Color
	State      core.State
	Outcome    rules.Outcome
	MoveCount  int
	Strict     bool
	Restored   bool
	LastResult *MoveResult
	ASCII      string
}

// Game is one session. It exclusively owns its Board and serializes every
// mutation through its own mutex.
type Game struct {
	mu         sync.Mutex
	board      *board.Board
	state      core.State
	moveCount  int
	restored   bool
	lastResult *MoveResult
	lastActive time.Time
}

// New starts a game from the standard layout
func New(strict bool) *Game {
	return newGame(board.New(board.WithSelfCheckPrevention(strict)), false)
}

// Restore resumes a game from a persisted board
func Restore(b *board.Board, moveCount int) *Game {
	g := newGame(b, true)
	g.moveCount = moveCount
	return g
}

func newGame(b *board.Board, restored bool) *Game {
	g := &Game{
		board:      b,
		state:      core.StateOngoing,
		restored:   restored,
		lastActive: time.Now(),
	}
	// A restored board may already be over
	g.refreshState()
	return g
}

// Move applies a move and updates the game state. Moves on a finished game
// fail with board.ErrGameOver.
func (g *Game) Move(source, destination board.Position) (*MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastActive = time.Now()

	if g.state.Finished() {
		return nil, &board.MoveError{From: source, To: destination, Err: board.ErrGameOver}
	}

	mover := g.board.Turn()
	captured, _ := g.board.PieceAt(destination)
	if err := g.board.Move(source, destination); err != nil {
		return nil, err
	}

	g.moveCount++
	g.refreshState()

	g.lastResult = &MoveResult{
		Source:      source,
		Destination: destination,
		PlayerColor: mover,
		Captured:    captured,
		GameState:   g.state,
	}
	return g.lastResult, nil
}

func (g *Game) refreshState() {
	if out := rules.Evaluate(g.board); out.Finished() {
		g.state = out.Winner.State()
	}
}

// Snapshot copies the current state under the session lock
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		Pieces:    g.board.Snapshot(),
		Turn:      g.board.Turn(),
		State:     g.state,
		Outcome:   rules.Evaluate(g.board),
		MoveCount: g.moveCount,
		Strict:    g.board.SelfCheckPrevention(),
		Restored:  g.restored,
		ASCII:     g.board.ToASCII(),
	}
	if g.lastResult != nil {
		last := *g.lastResult
		snap.LastResult = &last
	}
	return snap
}

// Board returns a copy of the live board
func (g *Game) Board() *board.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) State() core.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moveCount
}

// IdleSince reports when the game was last touched by a move
func (g *Game) IdleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}
