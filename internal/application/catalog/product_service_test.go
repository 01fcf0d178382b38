package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/shared"
)

// memoryProductRepository is an in-memory catalog.ProductRepository
type memoryProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *memoryProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.SKU == sku {
			copied := *product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Product, 0, len(r.products))
	for _, product := range r.products {
		result = append(result, *product)
	}
	return result, nil
}

func (r *memoryProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *memoryProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	_, err := r.FindBySKU(ctx, sku)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memoryProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *memoryProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.Save(ctx, product)
}

func (r *memoryProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func newTestProductService() (*ProductService, *memoryProductRepository) {
	repo := newMemoryProductRepository()
	return NewProductService(repo, zap.NewNop()), repo
}

func TestProductServiceCreate(t *testing.T) {
	t.Run("creates product with defaults", func(t *testing.T) {
		service, _ := newTestProductService()

		product, err := service.Create(context.Background(), CreateProductRequest{
			SKU:      "ABC-001",
			Name:     "Widget",
			UnitCost: decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		assert.Equal(t, "ABC-001", product.SKU)
		assert.Equal(t, 1, product.UnitsPerPackage)
		assert.True(t, product.StockTotal.IsZero())
	})

	t.Run("rejects duplicate SKU", func(t *testing.T) {
		service, _ := newTestProductService()

		_, err := service.Create(context.Background(), CreateProductRequest{SKU: "ABC-001", Name: "Widget"})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), CreateProductRequest{SKU: "ABC-001", Name: "Other"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_SKU", domainErr.Code)
	})
}

func TestProductServiceUpdate(t *testing.T) {
	service, _ := newTestProductService()

	created, err := service.Create(context.Background(), CreateProductRequest{
		SKU: "ABC-001", Name: "Widget", UnitsPerPackage: 6,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := service.Update(context.Background(), id, UpdateProductRequest{
		Name:     "Widget Pro",
		UnitCost: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget Pro", updated.Name)
	// Zero units-per-package keeps the existing value.
	assert.Equal(t, 6, updated.UnitsPerPackage)
}

func TestProductServiceBindChannel(t *testing.T) {
	service, _ := newTestProductService()

	created, err := service.Create(context.Background(), CreateProductRequest{SKU: "ABC-001", Name: "Widget"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	bound, err := service.BindChannel(context.Background(), id, BindChannelRequest{
		Channel: "mercadolibre",
		ItemID:  "MLC777",
	})
	require.NoError(t, err)
	assert.Equal(t, "MLC777", bound.Channels.MercadoLibre)

	_, err = service.BindChannel(context.Background(), id, BindChannelRequest{Channel: "ebay", ItemID: "x"})
	assert.Error(t, err)
}

func TestProductServiceDelete(t *testing.T) {
	service, repo := newTestProductService()

	created, err := service.Create(context.Background(), CreateProductRequest{SKU: "ABC-001", Name: "Widget"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, service.Delete(context.Background(), id))

	_, err = repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = service.Delete(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
