// Package cache provides the byte caches behind thumbnail prefetching and
// view-state persistence.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry, for the CLI and TUI
//   - [RedisCache]: shared storage for `cardgrid serve` deployments
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so every backend sees the same key space.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// Default TTLs.
const (
	// ThumbTTL keeps downloaded thumbnails for a week.
	ThumbTTL = 7 * 24 * time.Hour

	// ViewTTL keeps saved grid views for a month.
	ViewTTL = 30 * 24 * time.Hour
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing. It backs disabled caching.
type NullCache struct{}

// NewNullCache returns a Cache on which every Get misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
