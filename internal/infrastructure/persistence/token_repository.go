package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/shared"
)

// GormTokenRepository implements TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new GormTokenRepository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// Find returns the cached token for a channel
func (r *GormTokenRepository) Find(ctx context.Context, code channel.Code) (*channel.TokenRecord, error) {
	var record channel.TokenRecord
	if err := r.db.WithContext(ctx).First(&record, "channel = ?", string(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save upserts the token row for a channel
func (r *GormTokenRepository) Save(ctx context.Context, record *channel.TokenRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel"}},
		UpdateAll: true,
	}).Create(record).Error
}

// Ensure GormTokenRepository implements TokenRepository
var _ channel.TokenRepository = (*GormTokenRepository)(nil)
