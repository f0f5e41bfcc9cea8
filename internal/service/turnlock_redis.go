package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/set-night/mindcoach/internal/config"
)

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisTurnLocker serializes turns per user across processes sharing one
// Redis. Locks expire after ttl so a crashed holder cannot block a user forever.
type RedisTurnLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisTurnLocker(ctx context.Context, redisURL string) (*RedisTurnLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisTurnLocker{
		client: client,
		prefix: "mindcoach:turn",
		ttl:    config.TurnLockTTL,
		poll:   config.TurnLockPollWait,
	}, nil
}

func (l *RedisTurnLocker) key(userName string) string {
	return l.prefix + ":" + userName
}

func (l *RedisTurnLocker) Acquire(ctx context.Context, userName string) (func(), error) {
	key := l.key(userName)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("set lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("release turn lock", "error", err, "user", userName)
		}
	}, nil
}

func (l *RedisTurnLocker) Close() error {
	return l.client.Close()
}
