package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/shared"
)

// MovementRepository persists the append-only stock movement log and owns
// the only write path for product stock totals. Both RecordEntry and
// RecordExit adjust the total with a single conditional UPDATE inside the
// same transaction as the movement insert, so totals are never computed
// client-side and an exit that would go negative fails atomically with
// shared.ErrInsufficientStock.
type MovementRepository interface {
	// RecordEntry inserts the entry row and increments the product's stock total
	RecordEntry(ctx context.Context, entry *StockEntry) error

	// RecordExit inserts the exit row and decrements the product's stock total.
	// Returns shared.ErrInsufficientStock (and writes nothing) when the
	// decrement would make the total negative.
	RecordExit(ctx context.Context, exit *StockExit) error

	// FindEntriesBySKU lists entries for a SKU, newest first
	FindEntriesBySKU(ctx context.Context, sku string, filter shared.Filter) ([]StockEntry, error)

	// FindExitsBySKU lists exits for a SKU, newest first
	FindExitsBySKU(ctx context.Context, sku string, filter shared.Filter) ([]StockExit, error)

	// FindEntriesBetween lists entries in a time range across all SKUs
	FindEntriesBetween(ctx context.Context, from, to time.Time) ([]StockEntry, error)

	// FindExitsBetween lists exits in a time range across all SKUs
	FindExitsBetween(ctx context.Context, from, to time.Time) ([]StockExit, error)

	// SumEntriesBySKU sums entry quantities for a SKU
	SumEntriesBySKU(ctx context.Context, sku string) (decimal.Decimal, error)

	// SumExitsBySKU sums exit quantities for a SKU
	SumExitsBySKU(ctx context.Context, sku string) (decimal.Decimal, error)
}
