package lock

import (
	"context"
	"fmt"
	"sync"
)

// Local is an in-process keyed mutex. It only serializes callers inside one
// process; use Redis when several API instances share a database.
type Local struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

func NewLocal() *Local {
	return &Local{slots: make(map[int64]*slot)}
}

// Lock blocks until the user's lock is free or ctx is done.
func (l *Local) Lock(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[userID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[userID] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, s, false)
		return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(userID, s, true) })
	}, nil
}

func (l *Local) release(userID int64, s *slot, held bool) {
	if held {
		<-s.ch
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, userID)
	}
}
