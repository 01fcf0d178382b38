package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnistock/backend/internal/domain/inventory"
)

// RecordEntryRequest is the input for recording incoming stock
type RecordEntryRequest struct {
	SKU      string          `json:"sku" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// RecordExitRequest is the input for recording outgoing stock
type RecordExitRequest struct {
	SKU      string          `json:"sku" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Channel  string          `json:"channel" binding:"required"`
}

// ListMovementsRequest is the input for listing movements of a SKU
type ListMovementsRequest struct {
	SKU      string `form:"sku" binding:"required"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// EntryResponse is the outward stock entry representation
type EntryResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitsPerPackage int             `json:"units_per_package"`
	RecordedBy      string          `json:"recorded_by"`
	RecordedAt      time.Time       `json:"recorded_at"`
}

// ExitResponse is the outward stock exit representation
type ExitResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Quantity   decimal.Decimal `json:"quantity"`
	Channel    string          `json:"channel"`
	RecordedBy string          `json:"recorded_by"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// StockSummaryResponse reports the ledger view of one SKU
type StockSummaryResponse struct {
	SKU          string          `json:"sku"`
	StockTotal   decimal.Decimal `json:"stock_total"`
	TotalEntries decimal.Decimal `json:"total_entries"`
	TotalExits   decimal.Decimal `json:"total_exits"`
}

// ExportResponse points at a generated movement export file
type ExportResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Rows        int       `json:"rows"`
}

// ToEntryResponse converts a domain entry to its response shape
func ToEntryResponse(entry *inventory.StockEntry) EntryResponse {
	return EntryResponse{
		ID:              entry.ID.String(),
		SKU:             entry.SKU,
		Quantity:        entry.Quantity,
		UnitsPerPackage: entry.UnitsPerPackage,
		RecordedBy:      entry.RecordedBy,
		RecordedAt:      entry.CreatedAt,
	}
}

// ToExitResponse converts a domain exit to its response shape
func ToExitResponse(exit *inventory.StockExit) ExitResponse {
	return ExitResponse{
		ID:         exit.ID.String(),
		SKU:        exit.SKU,
		Quantity:   exit.Quantity,
		Channel:    exit.Channel,
		RecordedBy: exit.RecordedBy,
		RecordedAt: exit.CreatedAt,
	}
}
