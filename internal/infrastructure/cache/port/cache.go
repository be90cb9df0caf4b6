package port

import (
	"context"
	"time"
)

// Cache is the key-value contract the application depends on. Implementations
// must be safe for concurrent use and honour ctx for timeouts.
type Cache interface {
	// Get returns ("", ErrMiss) when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value with ttl. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss so callers can tell it apart from transport
// errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
