package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
)

// ErrLockHeld is returned when a lock is already held by another caller.
var ErrLockHeld = errors.New("lock already held")

// NewRedisClient creates a new Redis client.
func NewRedisClient(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// Close closes the Redis client.
func Close(client redis.UniversalClient) error {
	return client.Close()
}

// releaseScript deletes the lock key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker provides short-lived exclusive leases keyed by string.
// It is used to serialize racing confirmations of the same payment.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewLocker creates a Locker with the given lease TTL.
func NewLocker(client redis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lease for key. It returns a release function, or
// ErrLockHeld when another caller holds the lease.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Best effort; the TTL bounds a leaked lease.
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}
	return release, nil
}
