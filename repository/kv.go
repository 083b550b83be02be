package repository

import (
	"context"
	"time"
)

// KeyValueStore is the single source of truth for every persisted record.
// Get returns domain.ErrKeyNotFound when the key is absent; any other error
// means the store itself failed. Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys matching a glob pattern (`*` and `?`).
	Keys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
}

// ExpiryPurger is implemented by stores that cannot expire keys on their own.
type ExpiryPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}
