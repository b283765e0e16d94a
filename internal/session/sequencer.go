package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// Sequencer hands out increasing search numbers per session and reports the
// most recently issued one. Next never returns a number at or below after,
// so a counter that was lost or expired resumes above the session's state.
type Sequencer interface {
	Next(ctx context.Context, sessionID string, after uint64) (uint64, error)
	Latest(ctx context.Context, sessionID string) (uint64, error)
}

// MemorySequencer keeps counters in process memory.
type MemorySequencer struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{counters: make(map[string]uint64)}
}

func (m *MemorySequencer) Next(_ context.Context, sessionID string, after uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters[sessionID] < after {
		m.counters[sessionID] = after
	}
	m.counters[sessionID]++
	return m.counters[sessionID], nil
}

func (m *MemorySequencer) Latest(_ context.Context, sessionID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[sessionID], nil
}

// Forget drops a session's counter.
func (m *MemorySequencer) Forget(sessionID string) {
	m.mu.Lock()
	delete(m.counters, sessionID)
	m.mu.Unlock()
}

// sequenceStore is the part of the redis client the sequencer uses.
type sequenceStore interface {
	Incr(ctx context.Context, key string) *redisv9.IntCmd
	Get(ctx context.Context, key string) *redisv9.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.BoolCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redisv9.BoolCmd
}

// RedisSequencer keeps counters in redis so several replicas agree on the latest search.
type RedisSequencer struct {
	store sequenceStore
	ttl   time.Duration
}

// NewRedisSequencer stores counters under search:seq:{session}, expiring after ttl
// without a Next or Latest call.
func NewRedisSequencer(store sequenceStore, ttl time.Duration) *RedisSequencer {
	return &RedisSequencer{store: store, ttl: ttl}
}

func sequenceKey(sessionID string) string {
	return "search:seq:" + sessionID
}

func (r *RedisSequencer) Next(ctx context.Context, sessionID string, after uint64) (uint64, error) {
	key := sequenceKey(sessionID)
	// Seed an expired or missing counter; a live one is left alone.
	if err := r.store.SetNX(ctx, key, after, r.ttl).Err(); err != nil {
		return 0, fmt.Errorf("seed %s: %w", key, err)
	}
	n, err := r.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if err := r.touch(ctx, key); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (r *RedisSequencer) Latest(ctx context.Context, sessionID string) (uint64, error) {
	key := sequenceKey(sessionID)
	val, err := r.store.Get(ctx, key).Result()
	if errors.Is(err, redisv9.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if err := r.touch(ctx, key); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *RedisSequencer) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.store.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}
