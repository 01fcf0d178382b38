package channel

import (
	"context"
	"time"
)

// TokenRecord is the cached OAuth access/refresh token pair for a
// marketplace, one row per channel. It avoids re-authenticating on every
// outbound call; adapters overwrite it after a successful refresh.
type TokenRecord struct {
	Channel      string    `gorm:"size:32;primaryKey"`
	AccessToken  string    `gorm:"size:2048;not null"`
	RefreshToken string    `gorm:"size:2048"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TokenRecord) TableName() string {
	return "marketplace_tokens"
}

// TokenRepository persists per-channel OAuth tokens
type TokenRepository interface {
	// Find returns the cached token for a channel, shared.ErrNotFound when absent
	Find(ctx context.Context, channel Code) (*TokenRecord, error)

	// Save upserts the token row for a channel
	Save(ctx context.Context, record *TokenRecord) error
}
