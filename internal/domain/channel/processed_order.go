package channel

import (
	"context"
	"strings"
	"time"

	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/domain/inventory"
)

// ProcessedOrder is the idempotency record preventing a marketplace order
// from decrementing stock more than once. The (Channel, OrderID) pair is
// the primary key.
type ProcessedOrder struct {
	Channel   string    `gorm:"size:32;primaryKey"`
	OrderID   string    `gorm:"size:128;primaryKey"`
	SKU       string    `gorm:"size:64;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProcessedOrder) TableName() string {
	return "processed_orders"
}

// NewProcessedOrder creates a validated idempotency record
func NewProcessedOrder(channel Code, orderID, sku string) (*ProcessedOrder, error) {
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown sales channel: "+string(channel))
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Marketplace order ID cannot be empty")
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}

	return &ProcessedOrder{
		Channel:   string(channel),
		OrderID:   orderID,
		SKU:       sku,
		CreatedAt: time.Now(),
	}, nil
}

// ProcessedOrderRepository persists idempotency records and applies order
// exits exactly once.
type ProcessedOrderRepository interface {
	// Exists reports whether the (channel, orderID) pair was already processed
	Exists(ctx context.Context, channel Code, orderID string) (bool, error)

	// ApplyOrderExit commits the idempotency record, the exit row and the
	// conditional stock decrement in one transaction. Returns false without
	// touching stock when the record already exists; returns
	// shared.ErrInsufficientStock (nothing written, record NOT inserted)
	// when the decrement would go negative.
	ApplyOrderExit(ctx context.Context, record *ProcessedOrder, exit *inventory.StockExit) (bool, error)
}
