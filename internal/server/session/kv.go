package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get for missing or expired keys.
var ErrNotFound = errors.New("key not found")

// KV is a key-value store with native per-key expiry.
// Expired keys must behave exactly like missing keys.
type KV interface {
	// Set stores value under key, replacing any previous value, for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)
	// Ping checks the connection to the store.
	Ping(ctx context.Context) error
	// Close releases resources held by the store.
	Close() error
}
