package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestLocalTurnLocker_BlocksSameUser(t *testing.T) {
	l := NewLocalTurnLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, "alice"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second acquire to time out, got %v", err)
	}

	other, err := l.Acquire(ctx, "bob")
	if err != nil {
		t.Fatalf("other users must not block: %v", err)
	}
	other()

	release()
	release() // idempotent

	again, err := l.Acquire(ctx, "alice")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("expected lock table to be empty, got %d entries", len(l.locks))
	}
}

func TestRedisTurnLocker(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	l, err := NewRedisTurnLocker(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	user := "lock-test-" + time.Now().Format(time.RFC3339Nano)
	release, err := l.Acquire(ctx, user)
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, user); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second acquire to time out, got %v", err)
	}

	release()

	again, err := l.Acquire(ctx, user)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
