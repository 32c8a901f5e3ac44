package http

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessgame/internal/server/core"
	"chessgame/internal/server/processor"
	"chessgame/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: service.WaitTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", requireGameID, h.GetGame)
	api.Delete("/games/:gameId", requireGameID, h.EndGame)
	api.Post("/games/:gameId/moves", requireGameID, h.MakeMove)
	api.Get("/games/:gameId/board", requireGameID, h.GetBoard)
	api.Get("/games/:gameId/status", requireGameID, h.GetStatus)
	api.Get("/games/:gameId/result", requireGameID, h.GetResult)

	return app
}

// contentTypeValidator ensures POST requests carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// requireGameID rejects malformed :gameId parameters before any lookup
func requireGameID(c *fiber.Ctx) error {
	if !isValidUUID(c.Params("gameId")) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		})
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusForCode picks the HTTP status for a processor error code
func statusForCode(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrGameOver:
		return fiber.StatusConflict
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusForCode(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// validatedBody fetches the body parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, *core.ErrorResponse) {
	var zero T
	if validated, ok := c.Locals("validated").(bool); !ok || !validated {
		return zero, &core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		}
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, &core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		}
	}
	return *body, nil
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"games":   h.svc.GameCount(),
	})
}

// CreateGame starts a new game, or resumes the stored game named in the body
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.CreateGameRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetGame retrieves game state, optionally long-polling for the next move
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	// Client is already behind, answer immediately
	if moveCount != g.MoveCount() {
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	}

	// fasthttp request contexts are not cancelled per request, so scope the
	// wait to this handler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	<-h.svc.RegisterWait(ctx, gameID, moveCount)

	// Game might have been ended while waiting
	return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
}

// MakeMove submits a move for the side to move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.MoveRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}

	resp := h.proc.Execute(processor.NewMakeMoveCommand(c.Params("gameId"), req))
	return respond(c, resp, fiber.StatusOK)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(c.Params("gameId"))), fiber.StatusOK)
}

// GetStatus returns both sides' material scores
func (h *HTTPHandler) GetStatus(c *fiber.Ctx) error {
	return respond(c, h.proc.Execute(processor.NewGetStatusCommand(c.Params("gameId"))), fiber.StatusOK)
}

// GetResult returns scores and the winner
func (h *HTTPHandler) GetResult(c *fiber.Ctx) error {
	return respond(c, h.proc.Execute(processor.NewGetResultCommand(c.Params("gameId"))), fiber.StatusOK)
}

// EndGame ends the game and deletes its stored snapshot
func (h *HTTPHandler) EndGame(c *fiber.Ctx) error {
	return respond(c, h.proc.Execute(processor.NewEndGameCommand(c.Params("gameId"))), fiber.StatusNoContent)
}
