// Package cache stores rendered CMS responses between requests.
package cache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value for ttl. A ttl of zero uses the cache default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close()
}

const keyPrefix = "corpweb:"

// New returns a Valkey-backed cache when addr is set, otherwise an in-process
// memory cache. ttl is the default expiry for Set calls that pass zero.
func New(addr string, ttl time.Duration) (Cache, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if addr == "" {
		return NewMemory(ttl), nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, err
	}
	return &Valkey{client: client, ttl: ttl, prefix: keyPrefix}, nil
}
