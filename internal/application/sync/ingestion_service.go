package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/inventory"
	"github.com/omnistock/backend/internal/domain/shared"
)

// IngestionService turns marketplace orders into stock exits exactly once.
// The database idempotency record is authoritative; the idempotency store is
// a fast path that short-circuits repeat webhook deliveries without a
// database round trip.
type IngestionService struct {
	registry        channel.Registry
	processedOrders channel.ProcessedOrderRepository
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	logger          *zap.Logger
}

// NewIngestionService creates a new order ingestion service
func NewIngestionService(
	registry channel.Registry,
	processedOrders channel.ProcessedOrderRepository,
	idempotency shared.IdempotencyStore,
	idempotencyTTL time.Duration,
	logger *zap.Logger,
) *IngestionService {
	if idempotencyTTL <= 0 {
		idempotencyTTL = 24 * time.Hour
	}
	return &IngestionService{
		registry:        registry,
		processedOrders: processedOrders,
		idempotency:     idempotency,
		idempotencyTTL:  idempotencyTTL,
		logger:          logger,
	}
}

// PullAndIngest pulls recent orders from one channel and ingests each
func (s *IngestionService) PullAndIngest(ctx context.Context, code channel.Code, since time.Time) ([]OrderResult, error) {
	adapter, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	if !adapter.Enabled() {
		return nil, channel.ErrChannelNotConfigured
	}

	orders, err := adapter.PullOrders(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("pulling orders from %s: %w", code, err)
	}

	results := make([]OrderResult, 0, len(orders))
	for i := range orders {
		results = append(results, s.IngestOrder(ctx, &orders[i]))
	}
	return results, nil
}

// IngestByOrderID fetches one order by id and ingests it. Used by the
// webhook receiver, which only gets an order reference in the notification.
func (s *IngestionService) IngestByOrderID(ctx context.Context, code channel.Code, orderID string) (*OrderResult, error) {
	adapter, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}

	fetcher, ok := adapter.(channel.OrderFetcher)
	if !ok {
		return nil, fmt.Errorf("%w: channel %s does not support order lookup", channel.ErrChannelRequestFailed, code)
	}

	order, err := fetcher.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := s.IngestOrder(ctx, order)
	return &result, nil
}

// IngestOrder applies one order to the stock ledger. Each line is keyed by
// (channel, orderID#sku) so a redelivered order never decrements twice; a
// line that would drive stock negative is reported but writes nothing, and
// does not block the other lines.
func (s *IngestionService) IngestOrder(ctx context.Context, order *channel.Order) OrderResult {
	result := OrderResult{
		Channel: order.Channel.String(),
		OrderID: order.OrderID,
	}

	cacheKey := order.Channel.String() + ":" + order.OrderID
	if s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("Idempotency store lookup failed, falling through to database",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		} else if processed {
			for _, item := range order.Items {
				result.Lines = append(result.Lines, OrderLineResult{SKU: item.SKU, Outcome: LineDuplicate})
			}
			return result
		}
	}

	allSettled := true
	for _, item := range order.Items {
		line := s.ingestLine(ctx, order, item)
		if line.Outcome != LineApplied && line.Outcome != LineDuplicate {
			allSettled = false
		}
		result.Lines = append(result.Lines, line)
	}

	// Only orders whose every line left a durable record enter the fast
	// path. Failed, insufficient and unknown-SKU lines wrote nothing, so
	// their order must reach the database again on redelivery (an unknown
	// SKU may exist in the catalog by then).
	if allSettled && s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, cacheKey, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to mark order in idempotency store",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		}
	}
	return result
}

// ingestLine applies one order line inside a single database transaction
func (s *IngestionService) ingestLine(ctx context.Context, order *channel.Order, item channel.OrderItem) OrderLineResult {
	sku := strings.TrimSpace(item.SKU)
	if sku == "" {
		return OrderLineResult{Outcome: LineUnknownSKU, Message: "order line carries no SKU"}
	}

	lineKey := order.OrderID + "#" + sku
	record, err := channel.NewProcessedOrder(order.Channel, lineKey, sku)
	if err != nil {
		return OrderLineResult{SKU: sku, Outcome: LineFailed, Message: err.Error()}
	}

	exit, err := inventory.NewStockExit(sku, item.Quantity, order.Channel.ExitLabel(), order.Channel.BotUser())
	if err != nil {
		return OrderLineResult{SKU: sku, Outcome: LineFailed, Message: err.Error()}
	}

	applied, err := s.processedOrders.ApplyOrderExit(ctx, record, exit)
	switch {
	case errors.Is(err, shared.ErrInsufficientStock):
		s.logger.Warn("Order line exceeds available stock",
			zap.String("channel", order.Channel.String()),
			zap.String("order_id", order.OrderID),
			zap.String("sku", sku),
			zap.String("quantity", item.Quantity.String()),
		)
		return OrderLineResult{SKU: sku, Outcome: LineInsufficient, Message: "insufficient stock"}
	case errors.Is(err, shared.ErrNotFound):
		return OrderLineResult{SKU: sku, Outcome: LineUnknownSKU, Message: "SKU not in catalog"}
	case err != nil:
		return OrderLineResult{SKU: sku, Outcome: LineFailed, Message: err.Error()}
	case !applied:
		return OrderLineResult{SKU: sku, Outcome: LineDuplicate}
	}

	s.logger.Info("Order line applied to stock ledger",
		zap.String("channel", order.Channel.String()),
		zap.String("order_id", order.OrderID),
		zap.String("sku", sku),
		zap.String("quantity", item.Quantity.String()),
	)
	return OrderLineResult{SKU: sku, Outcome: LineApplied}
}
