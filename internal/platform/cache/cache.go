// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package cache defines the key-value caching contract used across Dokusha.

It serves two workloads: read-through caching of upstream catalog lookups and
storage of precomputed follow feeds. Both are disposable, TTL-bound derived
views — never a source of truth.

# Failure Discipline

Every cache operation is best-effort. Callers MUST treat any error from this
package as a miss and fall through to the authoritative source (database or
upstream API). A cache outage degrades latency, never correctness.
*/
package cache

import (
	"context"
	"time"
)

// Store is the key-value cache contract.
type Store interface {

	/*
		Get retrieves the raw value stored under key.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - string: Stored value (empty when absent)
		  - bool: Whether the key was present
		  - error: Connectivity failures (treat as a miss)
	*/
	Get(context context.Context, key string) (string, bool, error)

	/*
		Set stores value under key with the given TTL.

		Parameters:
		  - context: context.Context
		  - key: string
		  - value: string
		  - ttl: time.Duration

		Returns:
		  - error: Connectivity failures (safe to ignore)
	*/
	Set(context context.Context, key string, value string, ttl time.Duration) error

	/*
		DeleteByPrefix removes every key starting with prefix.

		Description: Scans and deletes in bounded-size batches so a large
		keyspace never blocks the store. Safe to run concurrently with
		writers; deletion is best-effort.

		Parameters:
		  - context: context.Context
		  - prefix: string

		Returns:
		  - error: Connectivity failures (safe to ignore)
	*/
	DeleteByPrefix(context context.Context, prefix string) error

	// IsReady reports whether the backing store is currently reachable.
	// Writers skip caching entirely when not ready rather than blocking.
	IsReady() bool
}
