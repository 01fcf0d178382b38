// Package sync contains the channel synchronization application services:
// pushing stock totals out to marketplaces and ingesting marketplace orders
// into the stock ledger.
package sync

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/catalog"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/shared"
)

// SyncService pushes the authoritative stock total of a product out to every
// enabled channel. A sync run is manual and synchronous: the caller gets one
// result per channel, and a failing channel never aborts the others.
type SyncService struct {
	products catalog.ProductRepository
	registry channel.Registry
	logger   *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(products catalog.ProductRepository, registry channel.Registry, logger *zap.Logger) *SyncService {
	return &SyncService{
		products: products,
		registry: registry,
		logger:   logger,
	}
}

// SyncProduct pushes one product's stock total to all enabled channels.
// Marketplace references are taken from the product's stored channel
// identifiers; unbound channels are resolved by SKU first and the binding is
// persisted so the next sync skips resolution.
func (s *SyncService) SyncProduct(ctx context.Context, sku string) (*ProductSyncResult, error) {
	product, err := s.products.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}

	quantity := product.StockTotal.IntPart()
	if product.StockTotal.IsNegative() {
		quantity = 0
	}

	result := &ProductSyncResult{
		SKU:      product.SKU,
		Quantity: quantity,
		Channels: make([]ChannelResult, 0, 4),
	}

	for _, adapter := range s.registry.ListEnabled() {
		result.Channels = append(result.Channels, s.pushToChannel(ctx, adapter, product, quantity))
	}
	return result, nil
}

// SyncAll pushes every product to all enabled channels, page by page
func (s *SyncService) SyncAll(ctx context.Context) ([]ProductSyncResult, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 100
	filter.OrderBy = "sku"
	filter.OrderDir = "asc"

	var results []ProductSyncResult
	for page := 1; ; page++ {
		filter.Page = page
		products, err := s.products.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}
		for i := range products {
			result, err := s.SyncProduct(ctx, products[i].SKU)
			if err != nil {
				s.logger.Warn("Product sync failed",
					zap.String("sku", products[i].SKU),
					zap.Error(err),
				)
				continue
			}
			results = append(results, *result)
		}
		if len(products) < filter.Limit() {
			break
		}
	}
	return results, nil
}

// pushToChannel resolves the channel reference if needed and pushes the quantity
func (s *SyncService) pushToChannel(ctx context.Context, adapter channel.Marketplace, product *catalog.Product, quantity int64) ChannelResult {
	code := adapter.Code()
	result := ChannelResult{Channel: code.String()}

	ref := s.storedRef(product, code)
	if ref == nil {
		resolved, err := adapter.ResolveItem(ctx, product.SKU)
		switch {
		case errors.Is(err, channel.ErrItemNotFound):
			result.Status = StatusSkipped
			result.Message = "product is not listed on this channel"
			return result
		case errors.Is(err, channel.ErrItemNotSellable):
			result.Status = StatusSkipped
			result.Message = "listing is not in a sellable state"
			return result
		case err != nil:
			result.Status = StatusError
			result.Message = err.Error()
			return result
		}
		ref = resolved
		s.persistBinding(ctx, product, code, ref)
	}
	result.ItemID = ref.ItemID

	if err := adapter.PushStock(ctx, ref, quantity); err != nil {
		s.logger.Warn("Stock push failed",
			zap.String("sku", product.SKU),
			zap.String("channel", code.String()),
			zap.Error(err),
		)
		result.Status = StatusError
		result.Message = err.Error()
		return result
	}

	result.Status = StatusOK
	return result
}

// storedRef rebuilds a marketplace reference from the product's stored
// channel identifier. Variation identifiers are stored joined with '#'.
func (s *SyncService) storedRef(product *catalog.Product, code channel.Code) *channel.ItemRef {
	stored := product.ChannelID(code.String())
	if stored == "" {
		return nil
	}
	itemID, variationID, _ := strings.Cut(stored, "#")
	return &channel.ItemRef{Channel: code, ItemID: itemID, VariationID: variationID}
}

// persistBinding stores a freshly resolved reference on the product.
// Failures are logged, not returned: the push itself still proceeds and the
// binding is retried on the next sync.
func (s *SyncService) persistBinding(ctx context.Context, product *catalog.Product, code channel.Code, ref *channel.ItemRef) {
	stored := ref.ItemID
	if ref.VariationID != "" {
		stored = ref.ItemID + "#" + ref.VariationID
	}
	if err := product.SetChannelID(code.String(), stored); err != nil {
		s.logger.Warn("Failed to bind channel identifier",
			zap.String("sku", product.SKU),
			zap.String("channel", code.String()),
			zap.Error(err),
		)
		return
	}
	if err := s.products.SaveWithLock(ctx, product); err != nil {
		s.logger.Warn("Failed to persist channel binding",
			zap.String("sku", product.SKU),
			zap.String("channel", code.String()),
			zap.Error(err),
		)
	}
}
