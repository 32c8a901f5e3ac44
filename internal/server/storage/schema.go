package storage

import "time"

// GameRecord represents a row in the games table together with its pieces
type GameRecord struct {
	GameID    string        `db:"game_id"`
	Turn      string        `db:"turn"` // "w" or "b"
	Strict    bool          `db:"strict"`
	MoveCount int           `db:"move_count"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
	Pieces    []PieceRecord `db:"-"`
}

// PieceRecord represents a row in the pieces table
type PieceRecord struct {
	Position string `db:"position"` // Algebraic notation, "a2"
	Kind     string `db:"kind"`     // "pawn", "knight", ...
	Color    string `db:"color"`    // "w" or "b"
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	turn TEXT NOT NULL CHECK(turn IN ('w', 'b')),
	strict INTEGER NOT NULL DEFAULT 0,
	move_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pieces (
	game_id TEXT NOT NULL,
	position TEXT NOT NULL CHECK(length(position) = 2),
	kind TEXT NOT NULL CHECK(kind IN ('pawn', 'knight', 'bishop', 'rook', 'queen', 'king')),
	color TEXT NOT NULL CHECK(color IN ('w', 'b')),
	PRIMARY KEY (game_id, position),
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_pieces_game_id ON pieces(game_id);
CREATE INDEX IF NOT EXISTS idx_games_updated_at ON games(updated_at);
`
