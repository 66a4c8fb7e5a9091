package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockManager provides cross-process locks using PostgreSQL advisory locks
type LockManager struct {
	pool *pgxpool.Pool
}

// NewLockManager connects a pool dedicated to advisory locks.
func NewLockManager(ctx context.Context, dsn string) (*LockManager, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock pool: %w", err)
	}
	return &LockManager{pool: pool}, nil
}

// Close releases the pool.
func (l *LockManager) Close() { l.pool.Close() }

// lockID converts a string key to an advisory lock id.
func lockID(key string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte("dnsmonitor:" + key))
	return int64(h.Sum32())
}

// Acquire obtains an exclusive advisory lock and blocks until it is granted.
// Advisory locks belong to a session, so the connection is held until the
// returned release function runs.
func (l *LockManager) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for lock %s: %w", key, err)
	}
	id := lockID(key)
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", id); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return func(c context.Context) error {
		defer conn.Release()
		if _, err := conn.Exec(c, "SELECT pg_advisory_unlock($1)", id); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
