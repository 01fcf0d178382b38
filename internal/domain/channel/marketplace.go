package channel

import (
	"context"
	"errors"
	"time"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	// Transport and platform errors
	ErrChannelNotConfigured   = errors.New("channel: marketplace not configured")
	ErrChannelUnavailable     = errors.New("channel: marketplace temporarily unavailable")
	ErrChannelRequestFailed   = errors.New("channel: marketplace request failed")
	ErrChannelInvalidResponse = errors.New("channel: invalid marketplace response")
	ErrChannelAuthFailed      = errors.New("channel: marketplace authentication failed")
	ErrChannelTokenExpired    = errors.New("channel: marketplace token expired")

	// Resolution errors
	ErrItemNotFound    = errors.New("channel: item not found on marketplace")
	ErrItemNotSellable = errors.New("channel: item is not in a sellable state")

	// Order errors
	ErrOrderNotFound = errors.New("channel: marketplace order not found")
)

// ---------------------------------------------------------------------------
// Code identifies a sales channel
// ---------------------------------------------------------------------------

// Code identifies a sales channel
type Code string

const (
	// CodeFalabella is the Falabella marketplace (HMAC-signed REST API)
	CodeFalabella Code = "FALABELLA"
	// CodeMercadoLibre is the MercadoLibre marketplace (OAuth2 bearer API)
	CodeMercadoLibre Code = "MERCADOLIBRE"
	// CodeRipley is the Ripley marketplace (Mirakl-style API)
	CodeRipley Code = "RIPLEY"
	// CodeWooCommerce is the self-hosted WooCommerce storefront
	CodeWooCommerce Code = "WOOCOMMERCE"
)

// IsValid returns true if the channel code is valid
func (c Code) IsValid() bool {
	switch c {
	case CodeFalabella, CodeMercadoLibre, CodeRipley, CodeWooCommerce:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// ExitLabel returns the label written into stock exit rows for this channel
func (c Code) ExitLabel() string {
	switch c {
	case CodeFalabella:
		return "Falabella"
	case CodeMercadoLibre:
		return "Mercadolibre"
	case CodeRipley:
		return "Ripley"
	case CodeWooCommerce:
		return "Web"
	default:
		return string(c)
	}
}

// BotUser returns the acting user recorded for automated ingestion on this channel
func (c Code) BotUser() string {
	switch c {
	case CodeFalabella:
		return "BOT_FALABELLA"
	case CodeMercadoLibre:
		return "BOT_MELI"
	case CodeRipley:
		return "BOT_RIPLEY"
	case CodeWooCommerce:
		return "BOT_WEB"
	default:
		return "BOT"
	}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// ItemRef identifies a listing on a marketplace. VariationID is set when
// the SKU lives on a purchasable variation rather than the parent item.
type ItemRef struct {
	// Channel is the marketplace this reference belongs to
	Channel Code
	// ItemID is the marketplace-side item identifier
	ItemID string
	// VariationID is the variation identifier, empty for single-variant items
	VariationID string
}

// Marketplace is the port interface for external sales channels. It is
// defined in the domain layer; concrete adapters (Falabella, MercadoLibre,
// Ripley, WooCommerce) live in the infrastructure layer.
type Marketplace interface {
	// Code returns the channel code this adapter handles
	Code() Code

	// Enabled reports whether credentials for this channel are configured
	Enabled() bool

	// ResolveItem locates the marketplace-side identifier for an internal SKU.
	// Matching is exact on the trimmed SKU; listings in a non-sellable state
	// are never returned. A genuine absence is ErrItemNotFound, transport
	// failures keep their own cause.
	ResolveItem(ctx context.Context, sku string) (*ItemRef, error)

	// PushStock sets the available quantity for a listing
	PushStock(ctx context.Context, ref *ItemRef, quantity int64) error

	// PullOrders returns recently paid/processing orders created after since
	PullOrders(ctx context.Context, since time.Time) ([]Order, error)
}

// OrderFetcher is an optional extension of Marketplace for channels that
// deliver webhook notifications referencing a single order. Callers
// type-assert against it.
type OrderFetcher interface {
	// FetchOrder retrieves one order by its marketplace-side identifier.
	// ErrOrderNotFound when the platform no longer knows the order.
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

// Registry provides access to configured marketplace adapters
type Registry interface {
	// Get returns the adapter for the given channel code
	Get(code Code) (Marketplace, error)

	// List returns all registered adapters
	List() []Marketplace

	// ListEnabled returns all adapters with configured credentials
	ListEnabled() []Marketplace
}
