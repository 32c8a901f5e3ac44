package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessgame/internal/server/game"
	"chessgame/internal/server/storage"
)

const (
	MaxGames           = 1000
	IdleGameTTL        = 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrCapacity     = errors.New("game capacity reached")
)

// Service coordinates in-memory game sessions, storage and waiting clients.
// Each game serializes its own moves; mu only guards the registry map.
type Service struct {
	games  map[string]*game.Game
	mu     sync.RWMutex
	store  *storage.Store
	waiter *WaitRegistry
}

// New creates a new service instance with optional storage
func New(store *storage.Store) *Service {
	return &Service{
		games:  make(map[string]*game.Game),
		store:  store,
		waiter: NewWaitRegistry(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait registers a client to wait for a game's next move
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// GameCount returns the number of in-memory games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// ReleaseWaiters wakes every long-polling client so in-flight requests can
// finish before the HTTP server drains. Games and storage stay usable.
func (s *Service) ReleaseWaiters(timeout time.Duration) error {
	return s.waiter.Shutdown(timeout)
}

// Shutdown releases waiters, drops in-memory games and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically evicts idle games from memory. Their stored
// snapshots survive and can be resumed.
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.evictIdle(time.Now().Add(-IdleGameTTL)); evicted > 0 {
				log.Printf("cleanup: evicted %d idle games", evicted)
			}
		}
	}
}

func (s *Service) evictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, g := range s.games {
		if g.IdleSince().Before(cutoff) {
			delete(s.games, id)
			s.waiter.RemoveGame(id)
			evicted++
		}
	}
	return evicted
}
