package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/shared"
)

// Product is the aggregate root for sellable items. The SKU is the unique
// business key; marketplace-side identifiers are stored per channel so
// adapters can push stock without re-resolving them on every sync.
type Product struct {
	shared.BaseAggregateRoot
	SKU             string          `gorm:"size:64;not null;uniqueIndex"`
	Name            string          `gorm:"size:255;not null"`
	UnitsPerPackage int             `gorm:"not null;default:1"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Cost per package
	StockTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Maintained by conditional UPDATE only

	// Marketplace identifiers, empty when the product is not listed there
	FalabellaSKU    string `gorm:"size:128"`
	MercadoLibreID  string `gorm:"size:128"`
	RipleyProductID string `gorm:"size:128"`
	WooCommerceID   string `gorm:"size:128"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with a normalized SKU
func NewProduct(sku, name string, unitsPerPackage int, unitCost decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitsPerPackage < 1 {
		return nil, shared.NewDomainError("INVALID_UNITS", "Units per package must be at least 1")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		UnitsPerPackage:   unitsPerPackage,
		UnitCost:          unitCost,
		StockTotal:        decimal.Zero,
	}, nil
}

// Update changes the mutable product attributes
func (p *Product) Update(name string, unitsPerPackage int, unitCost decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitsPerPackage < 1 {
		return shared.NewDomainError("INVALID_UNITS", "Units per package must be at least 1")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	p.Name = name
	p.UnitsPerPackage = unitsPerPackage
	p.UnitCost = unitCost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetChannelID binds a marketplace-side identifier to the product
func (p *Product) SetChannelID(channel, id string) error {
	id = strings.TrimSpace(id)
	switch channel {
	case "FALABELLA":
		p.FalabellaSKU = id
	case "MERCADOLIBRE":
		p.MercadoLibreID = id
	case "RIPLEY":
		p.RipleyProductID = id
	case "WOOCOMMERCE":
		p.WooCommerceID = id
	default:
		return shared.NewDomainError("INVALID_CHANNEL", "Unknown sales channel: "+channel)
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ChannelID returns the marketplace-side identifier for a channel, empty if unbound
func (p *Product) ChannelID(channel string) string {
	switch channel {
	case "FALABELLA":
		return p.FalabellaSKU
	case "MERCADOLIBRE":
		return p.MercadoLibreID
	case "RIPLEY":
		return p.RipleyProductID
	case "WOOCOMMERCE":
		return p.WooCommerceID
	default:
		return ""
	}
}
