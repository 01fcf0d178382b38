package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

// wooAPIPrefix is the WooCommerce REST API mount point
const wooAPIPrefix = "/wp-json/wc/v3"

// WooCommerceAdapter talks to a self-hosted WooCommerce storefront using
// consumer key/secret basic auth over HTTPS.
type WooCommerceAdapter struct {
	cfg    config.WooCommerceConfig
	client *http.Client
	logger *zap.Logger
}

// NewWooCommerceAdapter creates a WooCommerce adapter from configuration
func NewWooCommerceAdapter(cfg config.WooCommerceConfig, logger *zap.Logger) *WooCommerceAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WooCommerceAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Code returns the channel code this adapter handles
func (a *WooCommerceAdapter) Code() channel.Code {
	return channel.CodeWooCommerce
}

// Enabled reports whether credentials for this channel are configured
func (a *WooCommerceAdapter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.BaseURL != "" && a.cfg.ConsumerKey != "" && a.cfg.ConsumerSecret != ""
}

// doRequest executes an authenticated request against the store API
func (a *WooCommerceAdapter) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if !a.Enabled() {
		return nil, channel.ErrChannelNotConfigured
	}

	requestURL := strings.TrimRight(a.cfg.BaseURL, "/") + wooAPIPrefix + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelRequestFailed, err)
	}
	req.SetBasicAuth(a.cfg.ConsumerKey, a.cfg.ConsumerSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", channel.ErrChannelAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, channel.ErrItemNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", channel.ErrChannelUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d: %s", channel.ErrChannelRequestFailed, resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

// wooProduct is the subset of a store product the adapter needs
type wooProduct struct {
	ID     int64  `json:"id"`
	SKU    string `json:"sku"`
	Status string `json:"status"`
}

// ResolveItem looks up the store product carrying the SKU. The store's sku
// filter can return prefix matches, so the SKU is verified exactly. Only
// published products are sellable.
func (a *WooCommerceAdapter) ResolveItem(ctx context.Context, sku string) (*channel.ItemRef, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, channel.ErrItemNotFound
	}

	query := url.Values{}
	query.Set("sku", sku)
	raw, err := a.doRequest(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var products []wooProduct
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}

	for _, product := range products {
		if strings.TrimSpace(product.SKU) != sku {
			continue
		}
		if product.Status != "" && product.Status != "publish" {
			return nil, fmt.Errorf("%w: status %q", channel.ErrItemNotSellable, product.Status)
		}
		return &channel.ItemRef{
			Channel: channel.CodeWooCommerce,
			ItemID:  strconv.FormatInt(product.ID, 10),
		}, nil
	}
	return nil, channel.ErrItemNotFound
}

// PushStock sets the stock quantity for a store product
func (a *WooCommerceAdapter) PushStock(ctx context.Context, ref *channel.ItemRef, quantity int64) error {
	if ref == nil || ref.ItemID == "" {
		return channel.ErrItemNotFound
	}

	body, err := json.Marshal(map[string]any{
		"stock_quantity": quantity,
		"manage_stock":   true,
	})
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", channel.ErrChannelRequestFailed, err)
	}

	if _, err := a.doRequest(ctx, http.MethodPut, "/products/"+ref.ItemID, nil, body); err != nil {
		return err
	}

	a.logger.Info("Stock pushed to WooCommerce",
		zap.String("product_id", ref.ItemID),
		zap.Int64("quantity", quantity),
	)
	return nil
}

// PullOrders returns processing/completed orders created after since
func (a *WooCommerceAdapter) PullOrders(ctx context.Context, since time.Time) ([]channel.Order, error) {
	query := url.Values{}
	query.Set("after", since.UTC().Format(time.RFC3339))
	query.Set("status", "processing,completed")
	query.Set("per_page", "100")

	raw, err := a.doRequest(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var result []struct {
		ID          int64  `json:"id"`
		Status      string `json:"status"`
		DateCreated string `json:"date_created_gmt"`
		LineItems   []struct {
			ProductID int64  `json:"product_id"`
			SKU       string `json:"sku"`
			Quantity  int64  `json:"quantity"`
			Price     string `json:"price"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}

	orders := make([]channel.Order, 0, len(result))
	for _, raw := range result {
		items := make([]channel.OrderItem, 0, len(raw.LineItems))
		for _, line := range raw.LineItems {
			sku := strings.TrimSpace(line.SKU)
			if sku == "" {
				continue
			}
			price := decimal.Zero
			if line.Price != "" {
				if parsed, err := decimal.NewFromString(line.Price); err == nil {
					price = parsed
				}
			}
			items = append(items, channel.OrderItem{
				SKU:       sku,
				ItemID:    strconv.FormatInt(line.ProductID, 10),
				Quantity:  decimal.NewFromInt(line.Quantity),
				UnitPrice: price,
			})
		}

		createdAt, _ := time.Parse("2006-01-02T15:04:05", raw.DateCreated)
		orders = append(orders, channel.Order{
			Channel:   channel.CodeWooCommerce,
			OrderID:   strconv.FormatInt(raw.ID, 10),
			Status:    raw.Status,
			CreatedAt: createdAt,
			Items:     items,
		})
	}
	return orders, nil
}

// Ensure WooCommerceAdapter implements the marketplace port
var _ channel.Marketplace = (*WooCommerceAdapter)(nil)
