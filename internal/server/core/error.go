package core

// Error codes
const (
	ErrGameNotFound       = "GAME_NOT_FOUND"
	ErrGameOver           = "GAME_OVER"
	ErrInvalidPosition    = "INVALID_POSITION"
	ErrNoPiece            = "NO_PIECE"
	ErrWrongTurn          = "WRONG_TURN"
	ErrIllegalDestination = "ILLEGAL_DESTINATION"
	ErrIllegalPattern     = "ILLEGAL_PATTERN"
	ErrPathBlocked        = "PATH_BLOCKED"
	ErrKingInCheck        = "KING_IN_CHECK"
	ErrRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent     = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest     = "INVALID_REQUEST"
	ErrInternalError      = "INTERNAL_ERROR"
	ErrResourceLimit      = "RESOURCE_LIMIT"
)
