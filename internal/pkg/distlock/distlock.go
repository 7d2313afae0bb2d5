// Package distlock provides the cross-process lock used by the reminder
// scheduler so that a month's run is enqueued exactly once even when several
// server instances are up.
package distlock

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking. Implementations are
// meant for single-goroutine use; concurrent holders need separate instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// NewLock creates a distributed lock using the best available backend.
// With a Redis client it uses SET NX + TTL (preferred, crash-safe through
// expiry); otherwise it falls back to a PostgreSQL advisory lock, which the
// database releases automatically if the session drops.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return newRedisLock(redisClient, key, ttl)
	}
	return newPGAdvisoryLock(db, key)
}

type redisLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

func newRedisLock(client *redis.Client, key string, ttl time.Duration) *redisLock {
	// Random ownership token so we never release someone else's lock.
	b := make([]byte, 16)
	rand.Read(b)
	return &redisLock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

func (l *redisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

func (l *redisLock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
	return err
}

type pgAdvisoryLock struct {
	db     *sql.DB
	lockID int64
}

func newPGAdvisoryLock(db *sql.DB, key string) *pgAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &pgAdvisoryLock{db: db, lockID: int64(h.Sum64())}
}

func (l *pgAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired)
	return acquired, err
}

func (l *pgAdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	return err
}
