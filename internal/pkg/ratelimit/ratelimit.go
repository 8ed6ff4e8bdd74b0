// Package ratelimit counts events per key inside a fixed window that opens at the
// first event. Once the window has elapsed the key is forgotten and counting restarts.
package ratelimit

import "context"

// Store is a windowed counter keyed by identity (an email, a client IP).
type Store interface {
	// Hit records one event for key and returns the count in the current window.
	Hit(ctx context.Context, key string) (int64, error)
	// Count returns the events recorded in key's current window, zero once it has lapsed.
	Count(ctx context.Context, key string) (int64, error)
	// Reset forgets key.
	Reset(ctx context.Context, key string) error
}
