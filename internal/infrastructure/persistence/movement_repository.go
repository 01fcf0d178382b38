package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM.
// Stock totals are only ever changed here, through conditional UPDATEs
// committed in the same transaction as the movement row.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// RecordEntry inserts the entry row and increments the product's stock total
func (r *GormMovementRepository) RecordEntry(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&catalog.Product{}).
			Where("sku = ?", entry.SKU).
			UpdateColumns(map[string]any{
				"stock_total": gorm.Expr("stock_total + ?", entry.Quantity),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		return tx.Create(entry).Error
	})
}

// RecordExit inserts the exit row and decrements the product's stock total.
// The WHERE clause carries the non-negativity guard, so a race between two
// exits is decided by the database: the loser matches zero rows and the
// whole transaction rolls back with ErrInsufficientStock.
func (r *GormMovementRepository) RecordExit(ctx context.Context, exit *inventory.StockExit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

		return tx.Create(exit).Error
	})
}

// FindEntriesBySKU lists entries for a SKU, newest first
func (r *GormMovementRepository) FindEntriesBySKU(ctx context.Context, sku string, filter shared.Filter) ([]inventory.StockEntry, error) {
	var entries []inventory.StockEntry
	err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at desc").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindExitsBySKU lists exits for a SKU, newest first
func (r *GormMovementRepository) FindExitsBySKU(ctx context.Context, sku string, filter shared.Filter) ([]inventory.StockExit, error) {
	var exits []inventory.StockExit
	err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at desc").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&exits).Error
	if err != nil {
		return nil, err
	}
	return exits, nil
}

// FindEntriesBetween lists entries in a time range across all SKUs
func (r *GormMovementRepository) FindEntriesBetween(ctx context.Context, from, to time.Time) ([]inventory.StockEntry, error) {
	var entries []inventory.StockEntry
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindExitsBetween lists exits in a time range across all SKUs
func (r *GormMovementRepository) FindExitsBetween(ctx context.Context, from, to time.Time) ([]inventory.StockExit, error) {
	var exits []inventory.StockExit
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&exits).Error
	if err != nil {
		return nil, err
	}
	return exits, nil
}

// SumEntriesBySKU sums entry quantities for a SKU
func (r *GormMovementRepository) SumEntriesBySKU(ctx context.Context, sku string) (decimal.Decimal, error) {
	return r.sumQuantity(ctx, &inventory.StockEntry{}, sku)
}

// SumExitsBySKU sums exit quantities for a SKU
func (r *GormMovementRepository) SumExitsBySKU(ctx context.Context, sku string) (decimal.Decimal, error) {
	return r.sumQuantity(ctx, &inventory.StockExit{}, sku)
}

func (r *GormMovementRepository) sumQuantity(ctx context.Context, model any, sku string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(model).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("sku = ?", sku).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
