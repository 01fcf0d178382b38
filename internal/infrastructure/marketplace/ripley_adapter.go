package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

// ripleyTokenSkew is subtracted from the reported token lifetime so a token
// is never used in the seconds before it expires.
const ripleyTokenSkew = 30 * time.Second

// RipleyAdapter talks to the Ripley marketplace, a Mirakl-style API.
// Authentication is a client-credentials exchange against a separate token
// endpoint; tokens are short-lived and cached in memory until near expiry.
type RipleyAdapter struct {
	cfg    config.RipleyConfig
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewRipleyAdapter creates a Ripley adapter from configuration
func NewRipleyAdapter(cfg config.RipleyConfig, logger *zap.Logger) *RipleyAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RipleyAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Code returns the channel code this adapter handles
func (a *RipleyAdapter) Code() channel.Code {
	return channel.CodeRipley
}

// Enabled reports whether credentials for this channel are configured
func (a *RipleyAdapter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.BaseURL != "" && a.cfg.ClientID != "" && a.cfg.ClientSecret != ""
}

// token returns a valid access token, fetching a new one when the cached
// token is missing or near expiry
func (a *RipleyAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.expiresAt) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	tokenURL := a.cfg.TokenURL
	if tokenURL == "" {
		tokenURL = strings.TrimRight(a.cfg.BaseURL, "/") + "/oauth/token"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", channel.ErrChannelAuthFailed, err)
	}
	req.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", channel.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", channel.ErrChannelAuthFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned empty access token", channel.ErrChannelInvalidResponse)
	}

	a.accessToken = tokenResp.AccessToken
	a.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - ripleyTokenSkew)
	return a.accessToken, nil
}

// doRequest executes an authenticated request against the marketplace API
func (a *RipleyAdapter) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if !a.Enabled() {
		return nil, channel.ErrChannelNotConfigured
	}

	accessToken, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	requestURL := strings.TrimRight(a.cfg.BaseURL, "/") + path
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
	req.Header.Set("Authorization", "Bearer "+accessToken)
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
		// Drop the cached token so the next call re-authenticates.
		a.mu.Lock()
		a.accessToken = ""
		a.mu.Unlock()
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

// ResolveItem looks up the offer carrying the shop SKU. Ripley addresses
// inventory by shop SKU, so the reference is the SKU once the offer exists.
func (a *RipleyAdapter) ResolveItem(ctx context.Context, sku string) (*channel.ItemRef, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, channel.ErrItemNotFound
	}

	query := url.Values{}
	query.Set("sku", sku)
	raw, err := a.doRequest(ctx, http.MethodGet, "/offers", query, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Offers []struct {
			ShopSKU string `json:"shop_sku"`
			Active  bool   `json:"active"`
		} `json:"offers"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}

	for _, offer := range result.Offers {
		if strings.TrimSpace(offer.ShopSKU) != sku {
			continue
		}
		if !offer.Active {
			return nil, channel.ErrItemNotSellable
		}
		return &channel.ItemRef{Channel: channel.CodeRipley, ItemID: offer.ShopSKU}, nil
	}
	return nil, channel.ErrItemNotFound
}

// PushStock sets the available quantity for a shop SKU. The inventory
// endpoint takes a batch body with a nested quantity object per SKU.
func (a *RipleyAdapter) PushStock(ctx context.Context, ref *channel.ItemRef, quantity int64) error {
	if ref == nil || ref.ItemID == "" {
		return channel.ErrItemNotFound
	}

	payload := map[string]any{
		"inventory": []map[string]any{
			{
				"sku": ref.ItemID,
				"quantity": map[string]any{
					"amount": quantity,
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", channel.ErrChannelRequestFailed, err)
	}

	if _, err := a.doRequest(ctx, http.MethodPut, "/inventory", nil, body); err != nil {
		return err
	}

	a.logger.Info("Stock pushed to Ripley",
		zap.String("shop_sku", ref.ItemID),
		zap.Int64("quantity", quantity),
	)
	return nil
}

// PullOrders returns shippable orders created after since
func (a *RipleyAdapter) PullOrders(ctx context.Context, since time.Time) ([]channel.Order, error) {
	query := url.Values{}
	query.Set("start_date", since.UTC().Format(time.RFC3339))

	raw, err := a.doRequest(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Orders []struct {
			OrderID     string `json:"order_id"`
			State       string `json:"order_state"`
			CreatedDate string `json:"created_date"`
			OrderLines  []struct {
				ShopSKU  string  `json:"shop_sku"`
				OfferID  int64   `json:"offer_id"`
				Quantity int64   `json:"quantity"`
				Price    float64 `json:"price_unit"`
			} `json:"order_lines"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}

	orders := make([]channel.Order, 0, len(result.Orders))
	for _, raw := range result.Orders {
		state := strings.ToUpper(raw.State)
		if state == "CANCELED" || state == "REFUSED" {
			continue
		}

		items := make([]channel.OrderItem, 0, len(raw.OrderLines))
		for _, line := range raw.OrderLines {
			sku := strings.TrimSpace(line.ShopSKU)
			if sku == "" {
				continue
			}
			items = append(items, channel.OrderItem{
				SKU:       sku,
				Quantity:  decimal.NewFromInt(line.Quantity),
				UnitPrice: decimal.NewFromFloat(line.Price),
			})
		}

		createdAt, _ := time.Parse(time.RFC3339, raw.CreatedDate)
		orders = append(orders, channel.Order{
			Channel:   channel.CodeRipley,
			OrderID:   raw.OrderID,
			Status:    raw.State,
			CreatedAt: createdAt,
			Items:     items,
		})
	}
	return orders, nil
}

// Ensure RipleyAdapter implements the marketplace port
var _ channel.Marketplace = (*RipleyAdapter)(nil)
