package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// ErrNotFound is returned when no stored game matches the requested ID
var ErrNotFound = errors.New("game not found in storage")

// SaveGame queues a snapshot for the writer. A degraded store or a full
// queue drops the snapshot; only a closed store reports an error.
func (s *Store) SaveGame(record GameRecord) error {
	if !s.healthy.Load() {
		return nil
	}

	queued, err := s.enqueue(func(tx *sql.Tx) error {
		return writeGame(tx, record)
	})
	if err != nil {
		return err
	}
	if !queued {
		log.Printf("Storage write queue full, dropping snapshot of game %s", record.GameID)
	}
	return nil
}

// SaveGameSync writes the snapshot and waits for the commit
func (s *Store) SaveGameSync(record GameRecord) error {
	return s.submit(func(tx *sql.Tx) error {
		return writeGame(tx, record)
	})
}

func writeGame(tx *sql.Tx, record GameRecord) error {
	// Snapshots of concurrent moves may be queued out of order
	var stored int
	err := tx.QueryRow(`SELECT move_count FROM games WHERE game_id = ?`, record.GameID).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read stored move count: %w", err)
	}
	if err == nil && stored > record.MoveCount {
		return nil
	}

	upsert := `INSERT INTO games (game_id, turn, strict, move_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			turn = excluded.turn,
			strict = excluded.strict,
			move_count = excluded.move_count,
			updated_at = excluded.updated_at`

	if _, err := tx.Exec(upsert,
		record.GameID, record.Turn, record.Strict, record.MoveCount,
		record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM pieces WHERE game_id = ?`, record.GameID); err != nil {
		return fmt.Errorf("failed to clear pieces: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO pieces (game_id, position, kind, color) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare piece insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range record.Pieces {
		if _, err := stmt.Exec(record.GameID, p.Position, p.Kind, p.Color); err != nil {
			return fmt.Errorf("failed to insert piece at %s: %w", p.Position, err)
		}
	}
	return nil
}

// LoadGame reads a stored game with all of its pieces
func (s *Store) LoadGame(gameID string) (*GameRecord, error) {
	var g GameRecord
	query := `SELECT game_id, turn, strict, move_count, created_at, updated_at
		FROM games WHERE game_id = ?`

	err := s.db.QueryRow(query, gameID).Scan(
		&g.GameID, &g.Turn, &g.Strict, &g.MoveCount, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	pieces, err := s.loadPieces(gameID)
	if err != nil {
		return nil, err
	}
	g.Pieces = pieces
	return &g, nil
}

func (s *Store) loadPieces(gameID string) ([]PieceRecord, error) {
	rows, err := s.db.Query(
		`SELECT position, kind, color FROM pieces WHERE game_id = ? ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pieces []PieceRecord
	for rows.Next() {
		var p PieceRecord
		if err := rows.Scan(&p.Position, &p.Kind, &p.Color); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		pieces = append(pieces, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return pieces, nil
}

// GameExists reports whether a snapshot is stored for gameID
func (s *Store) GameExists(gameID string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM games WHERE game_id = ?`, gameID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteGame removes a stored game; pieces cascade. The boolean reports
// whether a game was stored under gameID.
func (s *Store) DeleteGame(gameID string) (bool, error) {
	var deleted bool
	err := s.submit(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		if err != nil {
			return fmt.Errorf("failed to delete game: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// GameSummary is a games row with its piece count, for listings
type GameSummary struct {
	GameID     string
	Turn       string
	Strict     bool
	MoveCount  int
	PieceCount int
	UpdatedAt  string
}

// QueryGames lists stored games, optionally filtered by ID ("" or "*" for all)
func (s *Store) QueryGames(gameID string) ([]GameSummary, error) {
	query := `SELECT
		g.game_id, g.turn, g.strict, g.move_count,
		(SELECT COUNT(*) FROM pieces p WHERE p.game_id = g.game_id),
		g.updated_at
	FROM games g WHERE 1=1`

	var args []interface{}

	if gameID != "" && gameID != "*" {
		query += " AND g.game_id = ?"
		args = append(args, gameID)
	}

	query += " ORDER BY g.updated_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameSummary
	for rows.Next() {
		var g GameSummary
		var updated sql.NullTime
		if err := rows.Scan(&g.GameID, &g.Turn, &g.Strict, &g.MoveCount, &g.PieceCount, &updated); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if updated.Valid {
			g.UpdatedAt = updated.Time.UTC().Format("2006-01-02 15:04:05")
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}
