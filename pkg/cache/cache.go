package cache

import (
	"context"
	"time"
)

// Counter is a store of expiring counters. A counter is created by its first
// increment and lives for the window given at that moment.
type Counter interface {
	// IncrWindow increments key and returns the new count and the time left
	// before the counter resets.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
