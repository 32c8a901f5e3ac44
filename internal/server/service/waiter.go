package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for an opponent's move
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	GameID    string
	MoveCount int           // Last move count the client has seen
	Notify    chan struct{} // Buffered, fires once on change, timeout or removal
	timer     *time.Timer
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		timeout:  WaitTimeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that fires when the game's move count moves
// past moveCount, the wait times out, the game is removed, or ctx ends.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		GameID:    gameID,
		MoveCount: moveCount,
		Notify:    make(chan struct{}, WaitChannelBuffer),
	}

	// Released registry: answer at once instead of parking a goroutine
	select {
	case <-w.shutdown:
		signal(req.Notify)
		return req.Notify
	default:
	}

	req.timer = time.AfterFunc(w.timeout, func() {
		signal(req.Notify)
	})

	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-w.shutdown:
			signal(req.Notify)
		}
		w.removeWaiter(gameID, req)
	}()

	return req.Notify
}

// NotifyGame wakes every waiter whose known move count differs from current
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, req := range w.waiters[gameID] {
		if req.MoveCount != currentMoveCount {
			signal(req.Notify)
		}
	}
}

// RemoveGame wakes and forgets all waiters for a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.timer.Stop()
		signal(req.Notify)
	}
}

// Pending returns the number of clients waiting on a game
func (w *WaitRegistry) Pending(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown releases all waiters and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.once.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req.timer.Stop()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}

// signal performs a non-blocking send; a full buffer means already notified
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
