// Package cache stores resolved surface results between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: sharded JSON files under the user cache directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so that callers can namespace them, for example by
// solver version with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key is a miss
	// (hit == false) rather than an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLResult is how long a resolved surface stays cached.
const TTLResult = 30 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey returns the key of a resolved surface, given the hash of
	// the surface definition.
	ResultKey(surfaceHash string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:" followed by a hash of the surface hash.
func (DefaultKeyer) ResultKey(surfaceHash string) string {
	return hashKey("result", surfaceHash)
}
