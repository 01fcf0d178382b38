package channel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an order pulled from a marketplace, reduced to what the stock
// ledger needs: which SKUs sold and in what quantity.
type Order struct {
	// Channel is the marketplace the order came from
	Channel Code
	// OrderID is the marketplace-side order identifier
	OrderID string
	// Status is the raw marketplace status string
	Status string
	// CreatedAt is when the order was created on the marketplace
	CreatedAt time.Time
	// Items contains the order line items
	Items []OrderItem
}

// OrderItem is a line item in a marketplace order
type OrderItem struct {
	// SKU is the seller's internal SKU as stored on the marketplace listing
	SKU string
	// ItemID is the marketplace-side item identifier
	ItemID string
	// Quantity is the number of units sold
	Quantity decimal.Decimal
	// UnitPrice is the sale price per unit, zero when not reported
	UnitPrice decimal.Decimal
}
