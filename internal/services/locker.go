package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes work per key across service instances.
type Locker interface {
	// Acquire returns a release func, or ok=false when the key is held.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl, prefix: "admission:lock:"}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token)
	}
	return release, true, nil
}

// localLocker is used when no Redis is configured; it only covers this process.
type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) Acquire(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
