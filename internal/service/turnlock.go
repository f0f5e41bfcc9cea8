package service

import (
	"context"
	"sync"
)

// TurnLocker serializes chat turns per user. Without it two concurrent turns
// for one user can both pass the rate limits before either appends.
type TurnLocker interface {
	Acquire(ctx context.Context, userName string) (release func(), err error)
}

// NoopTurnLocker keeps the unserialized behavior.
type NoopTurnLocker struct{}

func (NoopTurnLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// LocalTurnLocker serializes turns per user within this process only.
type LocalTurnLocker struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalTurnLocker() *LocalTurnLocker {
	return &LocalTurnLocker{locks: make(map[string]*userLock)}
}

func (l *LocalTurnLocker) Acquire(ctx context.Context, userName string) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userName]
	if !ok {
		ul = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userName] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(userName, ul)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ul.sem
			l.unref(userName, ul)
		})
	}, nil
}

func (l *LocalTurnLocker) unref(userName string, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userName)
	}
}
