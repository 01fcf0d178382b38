package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/catalog"
)

// CreateProductRequest is the input for creating a product
type CreateProductRequest struct {
	SKU             string          `json:"sku" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	UnitsPerPackage int             `json:"units_per_package"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// UpdateProductRequest is the input for updating a product's attributes
type UpdateProductRequest struct {
	Name            string          `json:"name" binding:"required"`
	UnitsPerPackage int             `json:"units_per_package"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// BindChannelRequest binds a marketplace-side identifier to a product
type BindChannelRequest struct {
	Channel string `json:"channel" binding:"required"`
	ItemID  string `json:"item_id"`
}

// ListProductsRequest is the input for listing products
type ListProductsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}

// ProductResponse is the outward product representation
type ProductResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	UnitsPerPackage int             `json:"units_per_package"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	StockTotal      decimal.Decimal `json:"stock_total"`
	Channels        ChannelBindings `json:"channels"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ChannelBindings lists the marketplace identifiers bound to a product
type ChannelBindings struct {
	Falabella    string `json:"falabella,omitempty"`
	MercadoLibre string `json:"mercadolibre,omitempty"`
	Ripley       string `json:"ripley,omitempty"`
	WooCommerce  string `json:"woocommerce,omitempty"`
}

// ToProductResponse converts a domain product to its response shape
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              product.ID.String(),
		SKU:             product.SKU,
		Name:            product.Name,
		UnitsPerPackage: product.UnitsPerPackage,
		UnitCost:        product.UnitCost,
		StockTotal:      product.StockTotal,
		Channels: ChannelBindings{
			Falabella:    product.FalabellaSKU,
			MercadoLibre: product.MercadoLibreID,
			Ripley:       product.RipleyProductID,
			WooCommerce:  product.WooCommerceID,
		},
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
