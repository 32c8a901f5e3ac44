// Package session holds the interactive client's mutable context.
package session

import (
	"io"
	"os"

	"chessgame/internal/client/api"
	"chessgame/internal/server/core"
)

type Session struct {
	APIBaseURL       string
	Client           *api.Client
	CurrentGame      string
	CurrentGameState *core.GameResponse
	Verbose          bool
	Out              io.Writer
}

// New builds a session talking to baseURL and writing to stdout
func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
		Out:        os.Stdout,
	}
}

// SetGame records the game the user is playing and its latest state
func (s *Session) SetGame(resp *core.GameResponse) {
	s.CurrentGame = resp.GameID
	s.CurrentGameState = resp
}

// ClearGame forgets the current game
func (s *Session) ClearGame() {
	s.CurrentGame = ""
	s.CurrentGameState = nil
}

// SetAPIBaseURL points the session and its client at a new server
func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}
