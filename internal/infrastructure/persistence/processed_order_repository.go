package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// GormProcessedOrderRepository implements ProcessedOrderRepository using GORM
type GormProcessedOrderRepository struct {
	db *gorm.DB
}

// NewGormProcessedOrderRepository creates a new GormProcessedOrderRepository
func NewGormProcessedOrderRepository(db *gorm.DB) *GormProcessedOrderRepository {
	return &GormProcessedOrderRepository{db: db}
}

// Exists reports whether the (channel, orderID) pair was already processed
func (r *GormProcessedOrderRepository) Exists(ctx context.Context, code channel.Code, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&channel.ProcessedOrder{}).
		Where("channel = ? AND order_id = ?", string(code), orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyOrderExit commits the idempotency record, the conditional stock
// decrement and the exit row in a single transaction. A duplicate order is
// detected by the ON CONFLICT DO NOTHING insert touching zero rows; the
// transaction then commits without any other writes and the method reports
// applied=false. When the decrement guard fails the whole transaction rolls
// back, so the idempotency record is not left behind and a later retry can
// still succeed.
func (r *GormProcessedOrderRepository) ApplyOrderExit(ctx context.Context, record *channel.ProcessedOrder, exit *inventory.StockExit) (bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			// Already processed, leave stock untouched
			return nil
		}

		result := tx.Model(&catalog.Product{}).
			Where("sku = ? AND stock_total >= ?", exit.SKU, exit.Quantity).
			UpdateColumns(map[string]any{
				"stock_total": gorm.Expr("stock_total - ?", exit.Quantity),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&catalog.Product{}).Where("sku = ?", exit.SKU).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrInsufficientStock
		}

		if err := tx.Create(exit).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// Ensure GormProcessedOrderRepository implements ProcessedOrderRepository
var _ channel.ProcessedOrderRepository = (*GormProcessedOrderRepository)(nil)
