// Package storage persists board snapshots (pieces by position plus the
// side to move) in SQLite. Every write, queued or synchronous, is committed
// by one writer goroutine; reads use the connection pool.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeQueueSize     = 1000
	writerDrainTimeout = 2 * time.Second
	writerCloseTimeout = 2 * time.Second
	maxReadConnections = 25
	maxIdleConnections = 5
	busyTimeout        = 5 * time.Second
)

// ErrClosed is returned for writes submitted after Close
var ErrClosed = errors.New("storage closed")

// writeRequest is one transaction for the writer. A nil done marks a
// fire-and-forget snapshot whose failure degrades the store.
type writeRequest struct {
	apply func(*sql.Tx) error
	done  chan error
}

// Store handles SQLite database operations
type Store struct {
	db      *sql.DB
	path    string
	writes  chan writeRequest
	healthy atomic.Bool

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// dsn builds the connection string. Transactions take the write lock at
// BEGIN, so a read-then-write never has to upgrade its lock.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
		path, busyTimeout.Milliseconds())
}

// NewStore opens the database and starts the writer
func NewStore(path string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL in development for concurrent readers while the writer runs
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.SetMaxOpenConns(maxReadConnections)
	db.SetMaxIdleConns(maxIdleConnections)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:      db,
		path:    path,
		writes:  make(chan writeRequest, writeQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	s.healthy.Store(true)

	go s.writerLoop()
	return s, nil
}

// IsHealthy reports false once a queued snapshot has failed to commit
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

func (s *Store) writerLoop() {
	defer close(s.stopped)

	for {
		select {
		case <-s.ctx.Done():
			s.drain()
			return
		case req := <-s.writes:
			s.handle(req)
		}
	}
}

// drain flushes what is queued at shutdown, bounded by writerDrainTimeout
func (s *Store) drain() {
	deadline := time.After(writerDrainTimeout)
	for {
		select {
		case req := <-s.writes:
			s.handle(req)
		case <-deadline:
			log.Printf("Storage drain timeout, %d writes dropped", len(s.writes))
			return
		default:
			return
		}
	}
}

func (s *Store) handle(req writeRequest) {
	if req.done != nil {
		req.done <- s.commit(req.apply)
		return
	}

	if !s.healthy.Load() {
		return
	}
	if err := s.commit(req.apply); err != nil {
		log.Printf("Storage degraded: %v", err)
		s.healthy.Store(false)
	}
}

func (s *Store) commit(apply func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := apply(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// enqueue hands a snapshot write to the writer without waiting for it
func (s *Store) enqueue(apply func(*sql.Tx) error) (queued bool, err error) {
	if s.ctx.Err() != nil {
		return false, ErrClosed
	}
	select {
	case s.writes <- writeRequest{apply: apply}:
		return true, nil
	default:
		return false, nil
	}
}

// submit runs apply on the writer and waits for its result
func (s *Store) submit(apply func(*sql.Tx) error) error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}

	req := writeRequest{apply: apply, done: make(chan error, 1)}
	select {
	case s.writes <- req:
	case <-s.stopped:
		return ErrClosed
	}

	select {
	case err := <-req.done:
		return err
	case <-s.stopped:
		// The writer may have served the request during its final drain
		select {
		case err := <-req.done:
			return err
		default:
			return ErrClosed
		}
	}
}

// Close stops the writer after draining pending writes and closes the database
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()

		select {
		case <-s.stopped:
		case <-time.After(writerCloseTimeout):
			log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
		}

		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	return s.submit(func(tx *sql.Tx) error {
		if _, err := tx.Exec(Schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	})
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
