package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed notification IDs to prevent duplicate processing.
// It is a fast-path guard in front of the durable processed-order table; a miss here
// is always re-checked against the database before stock is touched.
type IdempotencyStore interface {
	// MarkProcessed marks a notification as processed with a TTL
	// Returns true if it was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, notificationID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a notification has already been processed
	IsProcessed(ctx context.Context, notificationID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed notification IDs
	TTL time.Duration

	// Enabled determines whether the fast-path check is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
