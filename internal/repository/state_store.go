package repository

import (
	"context"
	"time"
)

// StateStore abstracts ephemeral key-value state: worker leases and webhook
// replay dedup. Implementations: Redis (production) or in-memory (local dev
// / single-instance).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// SetNX sets the key only if absent and reports whether it was set;
	// workers use it as a best-effort leader lease.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}
