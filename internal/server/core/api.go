package core

// Request types

type CreateGameRequest struct {
	GameID string `json:"gameId,omitempty" validate:"omitempty,uuid"` // Resume a stored game when set
	Strict bool   `json:"strict,omitempty"`                           // Forbid moves that leave the mover's king attacked
}

type MoveRequest struct {
	Source      string `json:"source" validate:"required,square"`
	Destination string `json:"destination" validate:"required,square,nefield=Source"`
}

// Response types

type GameResponse struct {
	GameID    string            `json:"gameId"`
	Turn      string            `json:"turn"`  // "w" or "b"
	State     string            `json:"state"` // "ongoing", "white wins", etc
	Status    string            `json:"status"`
	InCheck   bool              `json:"inCheck"`
	Strict    bool              `json:"strict"`
	MoveCount int               `json:"moveCount"`
	Restored  bool              `json:"restored,omitempty"`
	Pieces    map[string]string `json:"pieces"` // "a2" -> "P", white upper-case
	LastMove  *MoveInfo         `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Captured    string `json:"captured,omitempty"`
}

type BoardResponse struct {
	Board string `json:"board"` // ASCII representation
	Turn  string `json:"turn"`
}

type StatusResponse struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

type ResultResponse struct {
	WhiteScore float64 `json:"whiteScore"`
	BlackScore float64 `json:"blackScore"`
	Winner     string  `json:"winner"`
	Reason     string  `json:"reason"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
