package marketplace

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

// SignQuery builds the signed query string for the Falabella seller-center
// API: parameters sorted by key, url-encoded, HMAC-SHA256 over the encoded
// string with the API key, hex signature appended as the last parameter.
// It is a pure function of its inputs so signing can be verified in isolation.
func SignQuery(apiKey string, params url.Values) string {
	encoded := params.Encode() // url.Values.Encode sorts by key

	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(encoded))
	signature := hex.EncodeToString(mac.Sum(nil))

	return encoded + "&Signature=" + signature
}

// FalabellaAdapter talks to the Falabella seller-center API. Every request
// carries Action, Format, Timestamp, UserID, Version and an HMAC signature
// computed over the sorted query string.
type FalabellaAdapter struct {
	cfg    config.FalabellaConfig
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewFalabellaAdapter creates a Falabella adapter from configuration
func NewFalabellaAdapter(cfg config.FalabellaConfig, logger *zap.Logger) *FalabellaAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FalabellaAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// Code returns the channel code this adapter handles
func (a *FalabellaAdapter) Code() channel.Code {
	return channel.CodeFalabella
}

// Enabled reports whether credentials for this channel are configured
func (a *FalabellaAdapter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.UserID != "" && a.cfg.APIKey != ""
}

// signedURL builds the full request URL for an action with extra parameters
func (a *FalabellaAdapter) signedURL(action string, extra url.Values) string {
	params := url.Values{}
	params.Set("Action", action)
	params.Set("Format", "JSON")
	params.Set("Timestamp", a.now().UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("UserID", a.cfg.UserID)
	params.Set("Version", "1.0")
	for key, values := range extra {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	return strings.TrimRight(a.cfg.BaseURL, "/") + "?" + SignQuery(a.cfg.APIKey, params)
}

// doRequest executes a signed request and decodes the response envelope.
// An ErrorResponse body is surfaced as ErrChannelRequestFailed with the
// platform's error code and message.
func (a *FalabellaAdapter) doRequest(ctx context.Context, method, requestURL string, body io.Reader, contentType string) (*falabellaSuccess, error) {
	if !a.Enabled() {
		return nil, channel.ErrChannelNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelRequestFailed, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", channel.ErrChannelInvalidResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", channel.ErrChannelAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", channel.ErrChannelUnavailable, resp.StatusCode)
	}

	var envelope falabellaEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	if envelope.ErrorResponse != nil {
		head := envelope.ErrorResponse.Head
		return nil, fmt.Errorf("%w: %s [%s] %s",
			channel.ErrChannelRequestFailed, head.RequestAction, head.ErrorCode, head.ErrorMessage)
	}
	if !envelope.IsSuccess() {
		return nil, fmt.Errorf("%w: envelope has neither success nor error body", channel.ErrChannelInvalidResponse)
	}
	return envelope.SuccessResponse, nil
}

// ResolveItem verifies that a seller SKU exists on the platform. Falabella
// addresses listings by seller SKU directly, so the reference is the SKU
// itself once the listing is confirmed live.
func (a *FalabellaAdapter) ResolveItem(ctx context.Context, sku string) (*channel.ItemRef, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, channel.ErrItemNotFound
	}

	extra := url.Values{}
	extra.Set("Search", sku)
	success, err := a.doRequest(ctx, http.MethodGet, a.signedURL("GetProducts", extra), nil, "")
	if err != nil {
		return nil, err
	}

	for _, product := range success.Body.Products {
		if strings.TrimSpace(product.SellerSKU) != sku {
			continue
		}
		if product.Status != "" && !strings.EqualFold(product.Status, "active") {
			return nil, fmt.Errorf("%w: status %q", channel.ErrItemNotSellable, product.Status)
		}
		return &channel.ItemRef{Channel: channel.CodeFalabella, ItemID: product.SellerSKU}, nil
	}
	return nil, channel.ErrItemNotFound
}

// PushStock sets the available quantity for a seller SKU. The action name is
// configurable because the platform has renamed it between API revisions.
func (a *FalabellaAdapter) PushStock(ctx context.Context, ref *channel.ItemRef, quantity int64) error {
	if ref == nil || ref.ItemID == "" {
		return channel.ErrItemNotFound
	}

	payload := falabellaProductRequest{
		Product: falabellaProductUpdate{
			SellerSKU: ref.ItemID,
			Quantity:  quantity,
		},
	}
	body, err := xml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", channel.ErrChannelRequestFailed, err)
	}

	action := a.cfg.UpdateAction
	if action == "" {
		action = "ProductUpdate"
	}

	_, err = a.doRequest(ctx, http.MethodPost, a.signedURL(action, nil),
		bytes.NewReader(append([]byte(xml.Header), body...)), "application/xml")
	if err != nil {
		return err
	}

	a.logger.Info("Stock pushed to Falabella",
		zap.String("seller_sku", ref.ItemID),
		zap.Int64("quantity", quantity),
	)
	return nil
}

// PullOrders returns orders created after since, with their line items.
// Order items require a second call per order; cancelled orders are skipped.
func (a *FalabellaAdapter) PullOrders(ctx context.Context, since time.Time) ([]channel.Order, error) {
	extra := url.Values{}
	extra.Set("CreatedAfter", since.UTC().Format("2006-01-02T15:04:05Z"))
	extra.Set("SortBy", "created_at")
	extra.Set("SortDirection", "DESC")

	success, err := a.doRequest(ctx, http.MethodGet, a.signedURL("GetOrders", extra), nil, "")
	if err != nil {
		return nil, err
	}

	orders := make([]channel.Order, 0, len(success.Body.Orders))
	for _, raw := range success.Body.Orders {
		status := ""
		if len(raw.Statuses.Status) > 0 {
			status = raw.Statuses.Status[0]
		}
		if strings.EqualFold(status, "canceled") || strings.EqualFold(status, "cancelled") {
			continue
		}

		items, err := a.fetchOrderItems(ctx, raw.OrderID)
		if err != nil {
			a.logger.Warn("Failed to fetch Falabella order items",
				zap.String("order_id", raw.OrderID),
				zap.Error(err),
			)
			continue
		}

		createdAt, _ := time.Parse("2006-01-02 15:04:05", raw.CreatedAt)
		orders = append(orders, channel.Order{
			Channel:   channel.CodeFalabella,
			OrderID:   raw.OrderID,
			Status:    status,
			CreatedAt: createdAt,
			Items:     items,
		})
	}
	return orders, nil
}

// fetchOrderItems retrieves and aggregates the line items of one order
func (a *FalabellaAdapter) fetchOrderItems(ctx context.Context, orderID string) ([]channel.OrderItem, error) {
	extra := url.Values{}
	extra.Set("OrderId", orderID)

	success, err := a.doRequest(ctx, http.MethodGet, a.signedURL("GetOrderItems", extra), nil, "")
	if err != nil {
		return nil, err
	}

	// The platform reports one row per unit; rows with the same SKU collapse
	// into a single line with the summed quantity.
	bySKU := make(map[string]*channel.OrderItem)
	order := make([]string, 0, len(success.Body.OrderItems))
	for _, raw := range success.Body.OrderItems {
		sku := strings.TrimSpace(raw.SKU)
		if sku == "" {
			sku = strings.TrimSpace(raw.ShopSKU)
		}
		if sku == "" {
			continue
		}

		quantity := decimal.NewFromInt(1)
		if raw.Quantity != "" {
			if parsed, err := decimal.NewFromString(raw.Quantity); err == nil && parsed.IsPositive() {
				quantity = parsed
			}
		}
		price := decimal.Zero
		if raw.ItemPrice != "" {
			if parsed, err := decimal.NewFromString(raw.ItemPrice); err == nil {
				price = parsed
			}
		}

		if existing, ok := bySKU[sku]; ok {
			existing.Quantity = existing.Quantity.Add(quantity)
			continue
		}
		bySKU[sku] = &channel.OrderItem{
			SKU:       sku,
			ItemID:    raw.OrderItemID,
			Quantity:  quantity,
			UnitPrice: price,
		}
		order = append(order, sku)
	}

	items := make([]channel.OrderItem, 0, len(order))
	for _, sku := range order {
		items = append(items, *bySKU[sku])
	}
	return items, nil
}

// Ensure FalabellaAdapter implements the marketplace port
var _ channel.Marketplace = (*FalabellaAdapter)(nil)
