package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"chessgame/internal/server/board"
	"chessgame/internal/server/game"
	"chessgame/internal/server/storage"

	"github.com/google/uuid"
)

// StartGame registers a game under id. A stored snapshot for id is resumed
// as-is; otherwise a fresh board is created. The boolean reports a resume.
func (s *Service) StartGame(id string, strict bool) (*game.Game, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.games[id]; ok {
		return g, false, fmt.Errorf("%w: %s", ErrGameExists, id)
	}
	if len(s.games) >= MaxGames {
		return nil, false, ErrCapacity
	}

	g, restored, err := s.loadOrCreate(id, strict)
	if err != nil {
		return nil, false, err
	}
	s.games[id] = g

	if !restored {
		s.persist(id, g, true)
	}
	return g, restored, nil
}

func (s *Service) loadOrCreate(id string, strict bool) (*game.Game, bool, error) {
	if s.store == nil {
		return game.New(strict), false, nil
	}

	record, err := s.store.LoadGame(id)
	if errors.Is(err, storage.ErrNotFound) {
		return game.New(strict), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	b, err := record.Board()
	if err != nil {
		return nil, false, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}
	return game.Restore(b, record.MoveCount), true, nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// ApplyMove plays a move in the game's own critical section, then persists
// the new snapshot and wakes waiting clients
func (s *Service) ApplyMove(gameID string, source, destination board.Position) (*game.MoveResult, error) {
	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	result, err := g.Move(source, destination)
	if err != nil {
		return nil, err
	}

	s.persist(gameID, g, false)
	s.waiter.NotifyGame(gameID, g.MoveCount())

	return result, nil
}

// EndGame removes a game from memory and deletes its stored snapshot. A
// game evicted from memory can still be ended through its snapshot.
func (s *Service) EndGame(gameID string) error {
	s.mu.Lock()
	_, inMemory := s.games[gameID]
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)

	stored := false
	if s.store != nil {
		deleted, err := s.store.DeleteGame(gameID)
		if err != nil {
			return fmt.Errorf("failed to delete stored game: %w", err)
		}
		stored = deleted
	}

	if !inMemory && !stored {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return nil
}

// persist queues a snapshot write; a new game is written synchronously so
// a resume right after creation finds it
func (s *Service) persist(gameID string, g *game.Game, sync bool) {
	if s.store == nil {
		return
	}

	record := recordFromSnapshot(gameID, g.Snapshot())
	if sync {
		if err := s.store.SaveGameSync(record); err != nil {
			log.Printf("failed to store new game %s: %v", gameID, err)
		}
		return
	}
	if err := s.store.SaveGame(record); err != nil {
		log.Printf("failed to queue snapshot of game %s: %v", gameID, err)
	}
}

func recordFromSnapshot(gameID string, snap game.Snapshot) storage.GameRecord {
	now := time.Now().UTC()
	return storage.GameRecord{
		GameID:    gameID,
		Turn:      snap.Turn.String(),
		Strict:    snap.Strict,
		MoveCount: snap.MoveCount,
		CreatedAt: now,
		UpdatedAt: now,
		Pieces:    storage.PieceRecords(snap.Pieces),
	}
}
