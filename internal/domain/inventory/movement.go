package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/shared"
)

// MovementType distinguishes entries (stock in) from exits (stock out)
type MovementType string

const (
	// MovementTypeEntry is incoming stock (purchase receiving)
	MovementTypeEntry MovementType = "ENTRY"
	// MovementTypeExit is outgoing stock (a sale on some channel)
	MovementTypeExit MovementType = "EXIT"
)

// StockEntry is an append-only record of incoming stock for a SKU.
// UnitsPerPackage is captured at entry time because the product value
// can change later.
type StockEntry struct {
	shared.BaseEntity
	SKU             string          `gorm:"size:64;not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitsPerPackage int             `gorm:"not null;default:1"`
	RecordedBy      string          `gorm:"size:64;not null"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry creates a validated stock entry record
func NewStockEntry(sku string, quantity decimal.Decimal, unitsPerPackage int, recordedBy string) (*StockEntry, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Entry quantity must be positive")
	}
	if unitsPerPackage < 1 {
		return nil, shared.NewDomainError("INVALID_UNITS", "Units per package must be at least 1")
	}
	if recordedBy == "" {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user is required")
	}

	return &StockEntry{
		BaseEntity:      shared.NewBaseEntity(),
		SKU:             sku,
		Quantity:        quantity,
		UnitsPerPackage: unitsPerPackage,
		RecordedBy:      recordedBy,
	}, nil
}

// StockExit is an append-only record of outgoing stock for a SKU,
// labelled with the sales channel that caused it.
type StockExit struct {
	shared.BaseEntity
	SKU        string          `gorm:"size:64;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Channel    string          `gorm:"size:32;not null"`
	RecordedBy string          `gorm:"size:64;not null"`
}

// TableName returns the table name for GORM
func (StockExit) TableName() string {
	return "stock_exits"
}

// NewStockExit creates a validated stock exit record
func NewStockExit(sku string, quantity decimal.Decimal, channel, recordedBy string) (*StockExit, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Exit quantity must be positive")
	}
	if channel == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Sales channel is required")
	}
	if recordedBy == "" {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user is required")
	}

	return &StockExit{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Quantity:   quantity,
		Channel:    channel,
		RecordedBy: recordedBy,
	}, nil
}
