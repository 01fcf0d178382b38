package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// fakeProductRepository is an in-memory catalog.ProductRepository
type fakeProductRepository struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
}

func newFakeProductRepository(products ...*catalog.Product) *fakeProductRepository {
	repo := &fakeProductRepository{products: make(map[string]*catalog.Product)}
	for _, product := range products {
		repo.products[product.SKU] = product
	}
	return repo
}

func (r *fakeProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.ID == id {
			copied := *product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[sku]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter.Page > 1 {
		return nil, nil
	}
	result := make([]catalog.Product, 0, len(r.products))
	for _, product := range r.products {
		result = append(result, *product)
	}
	return result, nil
}

func (r *fakeProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[sku]
	return ok, nil
}

func (r *fakeProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *product
	r.products[product.SKU] = &copied
	return nil
}

func (r *fakeProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.Save(ctx, product)
}

func (r *fakeProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sku, product := range r.products {
		if product.ID == id {
			delete(r.products, sku)
			return nil
		}
	}
	return shared.ErrNotFound
}

// fakeProcessedOrderRepository mimics the transactional apply semantics of
// the database implementation against an in-memory product map
type fakeProcessedOrderRepository struct {
	mu       sync.Mutex
	products *fakeProductRepository
	applied  map[string]bool
	exits    []inventory.StockExit
}

func newFakeProcessedOrderRepository(products *fakeProductRepository) *fakeProcessedOrderRepository {
	return &fakeProcessedOrderRepository{
		products: products,
		applied:  make(map[string]bool),
	}
}

func (r *fakeProcessedOrderRepository) key(channelCode, orderID string) string {
	return channelCode + "|" + orderID
}

func (r *fakeProcessedOrderRepository) Exists(ctx context.Context, code channel.Code, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied[r.key(code.String(), orderID)], nil
}

func (r *fakeProcessedOrderRepository) ApplyOrderExit(ctx context.Context, record *channel.ProcessedOrder, exit *inventory.StockExit) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(record.Channel, record.OrderID)
	if r.applied[key] {
		return false, nil
	}

	product, ok := r.products.products[exit.SKU]
	if !ok {
		return false, shared.ErrNotFound
	}
	if product.StockTotal.LessThan(exit.Quantity) {
		return false, shared.ErrInsufficientStock
	}

	product.StockTotal = product.StockTotal.Sub(exit.Quantity)
	r.applied[key] = true
	r.exits = append(r.exits, *exit)
	return true, nil
}

// fakeAdapter is a scriptable channel.Marketplace
type fakeAdapter struct {
	code       channel.Code
	enabled    bool
	resolveRef *channel.ItemRef
	resolveErr error
	pushErr    error
	pushed     []int64
	orders     []channel.Order
	pullErr    error
	fetchOrder *channel.Order
}

func (a *fakeAdapter) Code() channel.Code { return a.code }
func (a *fakeAdapter) Enabled() bool      { return a.enabled }

func (a *fakeAdapter) ResolveItem(ctx context.Context, sku string) (*channel.ItemRef, error) {
	if a.resolveErr != nil {
		return nil, a.resolveErr
	}
	return a.resolveRef, nil
}

func (a *fakeAdapter) PushStock(ctx context.Context, ref *channel.ItemRef, quantity int64) error {
	if a.pushErr != nil {
		return a.pushErr
	}
	a.pushed = append(a.pushed, quantity)
	return nil
}

func (a *fakeAdapter) PullOrders(ctx context.Context, since time.Time) ([]channel.Order, error) {
	return a.orders, a.pullErr
}

func (a *fakeAdapter) FetchOrder(ctx context.Context, orderID string) (*channel.Order, error) {
	if a.fetchOrder == nil {
		return nil, channel.ErrOrderNotFound
	}
	return a.fetchOrder, nil
}

// fakeRegistry is an in-memory channel.Registry
type fakeRegistry struct {
	adapters []channel.Marketplace
}

func (r *fakeRegistry) Get(code channel.Code) (channel.Marketplace, error) {
	for _, adapter := range r.adapters {
		if adapter.Code() == code {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown channel %q", channel.ErrChannelNotConfigured, code)
}

func (r *fakeRegistry) List() []channel.Marketplace { return r.adapters }

func (r *fakeRegistry) ListEnabled() []channel.Marketplace {
	var enabled []channel.Marketplace
	for _, adapter := range r.adapters {
		if adapter.Enabled() {
			enabled = append(enabled, adapter)
		}
	}
	return enabled
}

// mustProduct builds a product with a preset stock total for tests
func mustProduct(sku string, stock int64) *catalog.Product {
	product, err := catalog.NewProduct(sku, "Test "+sku, 1, decimal.Zero)
	if err != nil {
		panic(err)
	}
	product.StockTotal = decimal.NewFromInt(stock)
	return product
}
