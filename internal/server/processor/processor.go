package processor

import (
	"errors"
	"fmt"
	"strings"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"
	"chessgame/internal/server/game"
	"chessgame/internal/server/rules"
	"chessgame/internal/server/service"
)

// Processor handles command execution between the transport and service layers
type Processor struct {
	svc    *service.Service
	strict bool // Default self-check prevention for new games
}

// New creates a processor. strict is the default for games whose request
// does not ask for self-check prevention.
func New(svc *service.Service, strict bool) *Processor {
	return &Processor{svc: svc, strict: strict}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetStatus:
		return p.handleGetStatus(cmd)
	case CmdGetResult:
		return p.handleGetResult(cmd)
	case CmdEndGame:
		return p.handleEndGame(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// handleCreateGame starts a new game or resumes a stored one
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	gameID := args.GameID
	if gameID == "" {
		gameID = p.svc.GenerateGameID()
	}

	g, _, err := p.svc.StartGame(gameID, args.Strict || p.strict)
	switch {
	case errors.Is(err, service.ErrGameExists):
		return p.errorResponse("game already in progress", core.ErrInvalidRequest)
	case errors.Is(err, service.ErrCapacity):
		return p.errorResponse("game capacity reached", core.ErrResourceLimit)
	case err != nil:
		return p.errorResponse(fmt.Sprintf("failed to start game: %v", err), core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(gameID, g.Snapshot()),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g.Snapshot()),
	}
}

// handleMakeMove parses the squares and applies the move
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	source, err := board.ParsePosition(strings.TrimSpace(args.Source))
	if err != nil {
		return p.moveErrorResponse(err)
	}
	destination, err := board.ParsePosition(strings.TrimSpace(args.Destination))
	if err != nil {
		return p.moveErrorResponse(err)
	}

	if _, err := p.svc.ApplyMove(cmd.GameID, source, destination); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.moveErrorResponse(err)
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g.Snapshot()),
	}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	snap := g.Snapshot()
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			Board: snap.ASCII,
			Turn:  snap.Turn.String(),
		},
	}
}

// handleGetStatus reports both material scores
func (p *Processor) handleGetStatus(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	out := g.Snapshot().Outcome
	return ProcessorResponse{
		Success: true,
		Data: core.StatusResponse{
			White: out.WhiteScore,
			Black: out.BlackScore,
		},
	}
}

// handleGetResult reports scores and the winner as the game stands
func (p *Processor) handleGetResult(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	out := g.Snapshot().Outcome
	reason := "score"
	switch out.Status {
	case rules.StatusKingCaptured:
		reason = out.Status.String()
	case rules.StatusCheckmate, rules.StatusStalemate:
		if out.Finished() {
			reason = out.Status.String()
		}
	}

	return ProcessorResponse{
		Success: true,
		Data: core.ResultResponse{
			WhiteScore: out.WhiteScore,
			BlackScore: out.BlackScore,
			Winner:     out.Winner.String(),
			Reason:     reason,
		},
	}
}

func (p *Processor) handleEndGame(cmd Command) ProcessorResponse {
	if err := p.svc.EndGame(cmd.GameID); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}
	return ProcessorResponse{Success: true}
}

func (p *Processor) buildGameResponse(gameID string, snap game.Snapshot) core.GameResponse {
	pieces := make(map[string]string, len(snap.Pieces))
	for square, piece := range snap.Pieces {
		pieces[square] = piece.Symbol()
	}

	resp := core.GameResponse{
		GameID:    gameID,
		Turn:      snap.Turn.String(),
		State:     snap.State.String(),
		Status:    snap.Outcome.Status.String(),
		InCheck:   snap.Outcome.InCheck,
		Strict:    snap.Strict,
		MoveCount: snap.MoveCount,
		Restored:  snap.Restored,
		Pieces:    pieces,
	}

	if last := snap.LastResult; last != nil {
		resp.LastMove = &core.MoveInfo{
			Source:      last.Source.String(),
			Destination: last.Destination.String(),
			PlayerColor: last.PlayerColor.String(),
		}
		if !last.Captured.IsEmpty() {
			resp.LastMove.Captured = last.Captured.Symbol()
		}
	}
	return resp
}

var moveErrorCodes = []struct {
	err  error
	code string
}{
	{board.ErrParse, core.ErrInvalidPosition},
	{board.ErrOutOfRange, core.ErrInvalidPosition},
	{board.ErrNoPiece, core.ErrNoPiece},
	{board.ErrWrongTurn, core.ErrWrongTurn},
	{board.ErrIllegalDestination, core.ErrIllegalDestination},
	{board.ErrIllegalPattern, core.ErrIllegalPattern},
	{board.ErrPathBlocked, core.ErrPathBlocked},
	{board.ErrKingInCheck, core.ErrKingInCheck},
	{board.ErrGameOver, core.ErrGameOver},
}

// MoveErrorCode maps a move or square error to its API error code
func MoveErrorCode(err error) string {
	for _, m := range moveErrorCodes {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return core.ErrInternalError
}

func (p *Processor) moveErrorResponse(err error) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   "move rejected",
			Code:    MoveErrorCode(err),
			Details: err.Error(),
		},
	}
}

func (p *Processor) errorResponse(message string, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
