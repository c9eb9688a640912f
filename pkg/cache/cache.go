// Package cache provides the byte-oriented cache behind registry responses
// and Debian status probes.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON envelopes on disk, used by the CLI (~/.cache/debgems)
//   - [RedisCache]: shared cache for the report server or CI runners
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// [Namespace] scopes keys so that the RubyGems client and the Debian probe
// can share one backend without collisions.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/matzehuels/debgems/pkg/observability"
)

// Cache stores opaque byte values with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and unmarshals it into v. Undecodable entries are
// treated as misses.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType(key))
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType is the first colon-separated segment of key.
func keyType(key string) string {
	t, _, _ := strings.Cut(key, ":")
	return t
}
