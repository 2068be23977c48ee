// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scan/delete batch bounds for prefix invalidation.
const (
	// scanBatchSize is the COUNT hint passed to SCAN per iteration.
	scanBatchSize = 100

	// deleteBatchSize bounds how many keys a single DEL command carries.
	deleteBatchSize = 100
)

// RedisStore implements [Store] using a shared Redis client.
type RedisStore struct {
	client *redis.Client
	ready  atomic.Bool
}

// NewRedisStore wraps an already-connected Redis client.
//
// The store starts ready; readiness flips on subsequent operation outcomes
// so a Redis outage is observed without a dedicated health-check goroutine.
func NewRedisStore(client *redis.Client) *RedisStore {
	store := &RedisStore{client: client}
	store.ready.Store(true)
	return store
}

/*
Get retrieves the raw value stored under key.

Description: A missing key is not an error; it is reported via the boolean.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - bool: Whether the key was present
  - error: Connectivity failures
*/
func (store *RedisStore) Get(context context.Context, key string) (string, bool, error) {
	value, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			store.ready.Store(true)
			return "", false, nil
		}
		store.ready.Store(false)
		return "", false, fmt.Errorf("cache_get_failed: %w", err)
	}

	store.ready.Store(true)
	return value, true, nil
}

/*
Set stores value under key with the given TTL.

Parameters:
  - context: context.Context
  - key: string
  - value: string
  - ttl: time.Duration

Returns:
  - error: Connectivity failures
*/
func (store *RedisStore) Set(context context.Context, key string, value string, ttl time.Duration) error {
	if err := store.client.Set(context, key, value, ttl).Err(); err != nil {
		store.ready.Store(false)
		return fmt.Errorf("cache_set_failed: %w", err)
	}

	store.ready.Store(true)
	return nil
}

/*
DeleteByPrefix removes every key starting with prefix.

Description: Iterates the keyspace with cursor-based SCAN (MATCH prefix*)
and issues DEL in bounded batches. Concurrent writers may recreate keys
mid-scan; that is acceptable because invalidated entries are TTL-bound
derived views.

Parameters:
  - context: context.Context
  - prefix: string

Returns:
  - error: Connectivity failures
*/
func (store *RedisStore) DeleteByPrefix(context context.Context, prefix string) error {
	var cursor uint64
	pattern := prefix + "*"
	pending := make([]string, 0, deleteBatchSize)

	for {
		keys, nextCursor, err := store.client.Scan(context, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			store.ready.Store(false)
			return fmt.Errorf("cache_scan_failed: %w", err)
		}

		pending = append(pending, keys...)

		// Flush full batches to keep each DEL bounded.
		for len(pending) >= deleteBatchSize {
			if err := store.client.Del(context, pending[:deleteBatchSize]...).Err(); err != nil {
				store.ready.Store(false)
				return fmt.Errorf("cache_delete_failed: %w", err)
			}
			pending = pending[deleteBatchSize:]
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if len(pending) > 0 {
		if err := store.client.Del(context, pending...).Err(); err != nil {
			store.ready.Store(false)
			return fmt.Errorf("cache_delete_failed: %w", err)
		}
	}

	store.ready.Store(true)
	return nil
}

// IsReady reports whether the last Redis interaction succeeded.
func (store *RedisStore) IsReady() bool {
	return store.ready.Load()
}
