package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// newSQLiteDB opens an in-memory SQLite database with the real schema, so
// the guarded UPDATEs and ON CONFLICT inserts run against an actual engine
// instead of a mock.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&inventory.StockEntry{},
		&inventory.StockExit{},
		&channel.ProcessedOrder{},
		&channel.TokenRecord{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, "Seeded "+sku, 1, decimal.Zero)
	require.NoError(t, err)
	product.StockTotal = decimal.NewFromInt(stock)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

func stockOf(t *testing.T, db *gorm.DB, sku string) decimal.Decimal {
	t.Helper()
	product, err := NewGormProductRepository(db).FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	return product.StockTotal
}

func TestProductRepositoryLifecycle(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product, err := catalog.NewProduct("ABC-001", "Widget", 6, decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, product))

	t.Run("find and exists", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, 6, found.UnitsPerPackage)

		exists, err := repo.ExistsBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = repo.FindBySKU(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("optimistic lock detects stale writer", func(t *testing.T) {
		first, err := repo.FindBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		second, err := repo.FindBySKU(ctx, "ABC-001")
		require.NoError(t, err)

		require.NoError(t, first.Update("Widget v2", 6, decimal.NewFromInt(1500)))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Update("Widget stale", 6, decimal.NewFromInt(1500)))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)

		current, err := repo.FindBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		assert.Equal(t, "Widget v2", current.Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, product.ID))
		_, err := repo.FindBySKU(ctx, "ABC-001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, product.ID), shared.ErrNotFound)
	})
}

func TestMovementRepositoryStockFlow(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()
	seedProduct(t, db, "ABC-001", 0)

	entry, err := inventory.NewStockEntry("ABC-001", decimal.NewFromInt(10), 6, "alice")
	require.NoError(t, err)
	require.NoError(t, repo.RecordEntry(ctx, entry))
	assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(10)))

	exit, err := inventory.NewStockExit("ABC-001", decimal.NewFromInt(3), "Falabella", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.RecordExit(ctx, exit))
	assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(7)))

	t.Run("over-exit is rejected atomically", func(t *testing.T) {
		over, err := inventory.NewStockExit("ABC-001", decimal.NewFromInt(8), "Web", "alice")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.RecordExit(ctx, over), shared.ErrInsufficientStock)

		// Stock untouched and no exit row written.
		assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(7)))
		exits, err := repo.FindExitsBySKU(ctx, "ABC-001", shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, exits, 1)
	})

	t.Run("unknown SKU", func(t *testing.T) {
		ghostEntry, err := inventory.NewStockEntry("GHOST", decimal.NewFromInt(1), 1, "alice")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.RecordEntry(ctx, ghostEntry), shared.ErrNotFound)

		ghostExit, err := inventory.NewStockExit("GHOST", decimal.NewFromInt(1), "Web", "alice")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.RecordExit(ctx, ghostExit), shared.ErrNotFound)
	})

	t.Run("racing exits are decided by the guard", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormMovementRepository(db)
		seedProduct(t, db, "RACE-001", 10)

		first, err := inventory.NewStockExit("RACE-001", decimal.NewFromInt(6), "Web", "alice")
		require.NoError(t, err)
		second, err := inventory.NewStockExit("RACE-001", decimal.NewFromInt(6), "Falabella", "bob")
		require.NoError(t, err)

		results := make(chan error, 2)
		for _, exit := range []*inventory.StockExit{first, second} {
			go func(exit *inventory.StockExit) {
				results <- repo.RecordExit(context.Background(), exit)
			}(exit)
		}

		var succeeded, rejected int
		for i := 0; i < 2; i++ {
			switch err := <-results; {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, rejected)
		assert.True(t, stockOf(t, db, "RACE-001").Equal(decimal.NewFromInt(4)))

		exits, err := repo.FindExitsBySKU(context.Background(), "RACE-001", shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, exits, 1)
	})

	t.Run("sums", func(t *testing.T) {
		entries, err := repo.SumEntriesBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		assert.True(t, entries.Equal(decimal.NewFromInt(10)))

		exits, err := repo.SumExitsBySKU(ctx, "ABC-001")
		require.NoError(t, err)
		assert.True(t, exits.Equal(decimal.NewFromInt(3)))
	})
}

func TestProcessedOrderRepositoryApplyOrderExit(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProcessedOrderRepository(db)
	movements := NewGormMovementRepository(db)
	ctx := context.Background()
	seedProduct(t, db, "ABC-001", 5)

	newLine := func(t *testing.T, orderID string, quantity int64) (*channel.ProcessedOrder, *inventory.StockExit) {
		t.Helper()
		record, err := channel.NewProcessedOrder(channel.CodeMercadoLibre, orderID, "ABC-001")
		require.NoError(t, err)
		exit, err := inventory.NewStockExit("ABC-001", decimal.NewFromInt(quantity), "Mercadolibre", "BOT_MELI")
		require.NoError(t, err)
		return record, exit
	}

	t.Run("first application decrements once", func(t *testing.T) {
		record, exit := newLine(t, "9001#ABC-001", 2)
		applied, err := repo.ApplyOrderExit(ctx, record, exit)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(3)))

		processed, err := repo.Exists(ctx, channel.CodeMercadoLibre, "9001#ABC-001")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("replay is a no-op", func(t *testing.T) {
		record, exit := newLine(t, "9001#ABC-001", 2)
		applied, err := repo.ApplyOrderExit(ctx, record, exit)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(3)))

		exits, err := movements.FindExitsBySKU(ctx, "ABC-001", shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, exits, 1)
	})

	t.Run("insufficient stock leaves no idempotency record", func(t *testing.T) {
		record, exit := newLine(t, "9002#ABC-001", 10)
		_, err := repo.ApplyOrderExit(ctx, record, exit)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		processed, err := repo.Exists(ctx, channel.CodeMercadoLibre, "9002#ABC-001")
		require.NoError(t, err)
		assert.False(t, processed, "failed line must stay retriable")

		// After restocking the same line applies cleanly.
		entry, err := inventory.NewStockEntry("ABC-001", decimal.NewFromInt(10), 1, "alice")
		require.NoError(t, err)
		require.NoError(t, movements.RecordEntry(ctx, entry))

		record, exit = newLine(t, "9002#ABC-001", 10)
		applied, err := repo.ApplyOrderExit(ctx, record, exit)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, stockOf(t, db, "ABC-001").Equal(decimal.NewFromInt(3)))
	})

	t.Run("unknown SKU rolls back", func(t *testing.T) {
		record, err := channel.NewProcessedOrder(channel.CodeMercadoLibre, "9003#GHOST", "GHOST")
		require.NoError(t, err)
		exit, err := inventory.NewStockExit("GHOST", decimal.NewFromInt(1), "Mercadolibre", "BOT_MELI")
		require.NoError(t, err)

		_, err = repo.ApplyOrderExit(ctx, record, exit)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		processed, err := repo.Exists(ctx, channel.CodeMercadoLibre, "9003#GHOST")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestTokenRepositoryRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormTokenRepository(db)
	ctx := context.Background()

	_, err := repo.Find(ctx, channel.CodeMercadoLibre)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &channel.TokenRecord{
		Channel:      string(channel.CodeMercadoLibre),
		AccessToken:  "APP_USR-1",
		RefreshToken: "TG-1",
		UpdatedAt:    time.Now(),
	}))

	record, err := repo.Find(ctx, channel.CodeMercadoLibre)
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-1", record.AccessToken)

	// Save is an upsert, one row per channel.
	require.NoError(t, repo.Save(ctx, &channel.TokenRecord{
		Channel:      string(channel.CodeMercadoLibre),
		AccessToken:  "APP_USR-2",
		RefreshToken: "TG-2",
		UpdatedAt:    time.Now(),
	}))

	record, err = repo.Find(ctx, channel.CodeMercadoLibre)
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-2", record.AccessToken)
	assert.Equal(t, "TG-2", record.RefreshToken)
}
