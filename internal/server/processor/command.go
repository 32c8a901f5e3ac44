package processor

import (
	"chessgame/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdMakeMove
	CmdGetBoard
	CmdGetStatus
	CmdGetResult
	CmdEndGame
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{
		Type:   CmdCreateGame,
		GameID: req.GameID,
		Args:   req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewMakeMoveCommand(gameID string, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		GameID: gameID,
		Args:   req,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewGetStatusCommand(gameID string) Command {
	return Command{
		Type:   CmdGetStatus,
		GameID: gameID,
	}
}

func NewGetResultCommand(gameID string) Command {
	return Command{
		Type:   CmdGetResult,
		GameID: gameID,
	}
}

func NewEndGameCommand(gameID string) Command {
	return Command{
		Type:   CmdEndGame,
		GameID: gameID,
	}
}
