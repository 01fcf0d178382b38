package sync

import "time"

// Push statuses for one channel in a sync run
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// ChannelResult reports the outcome of pushing one product to one channel
type ChannelResult struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	ItemID  string `json:"item_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProductSyncResult groups the per-channel outcomes for one product
type ProductSyncResult struct {
	SKU      string          `json:"sku"`
	Quantity int64           `json:"quantity"`
	Channels []ChannelResult `json:"channels"`
}

// PullOrdersRequest is the input for pulling orders from a channel
type PullOrdersRequest struct {
	Channel string    `json:"channel" binding:"required"`
	Since   time.Time `json:"since"`
}

// Ingestion outcomes for one order line
const (
	LineApplied      = "applied"
	LineDuplicate    = "duplicate"
	LineFailed       = "failed"
	LineUnknownSKU   = "unknown_sku"
	LineInsufficient = "insufficient_stock"
)

// OrderLineResult reports the outcome of ingesting one order line
type OrderLineResult struct {
	SKU     string `json:"sku"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// OrderResult reports the outcome of ingesting one marketplace order
type OrderResult struct {
	Channel string            `json:"channel"`
	OrderID string            `json:"order_id"`
	Lines   []OrderLineResult `json:"lines"`
}

// Applied reports whether any line of the order decremented stock
func (r OrderResult) Applied() bool {
	for _, line := range r.Lines {
		if line.Outcome == LineApplied {
			return true
		}
	}
	return false
}
