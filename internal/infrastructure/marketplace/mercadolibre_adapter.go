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

// meliSellerSKUAttribute is the attribute id MercadoLibre uses for the
// seller's internal SKU on items and variations.
const meliSellerSKUAttribute = "SELLER_SKU"

// meliScanPageSize and meliMaxScanPages bound the fallback full-listing scan
// so a missing SKU cannot turn into an unbounded crawl.
const (
	meliScanPageSize = 50
	meliMaxScanPages = 4
)

// MercadoLibreAdapter talks to the MercadoLibre API with OAuth2 bearer
// tokens. Tokens live in the token repository; on a 401 the adapter runs a
// refresh-token exchange, persists the new pair, and retries the request
// once.
type MercadoLibreAdapter struct {
	cfg    config.MercadoLibreConfig
	tokens channel.TokenRepository
	client *http.Client
	logger *zap.Logger
}

// NewMercadoLibreAdapter creates a MercadoLibre adapter from configuration
func NewMercadoLibreAdapter(cfg config.MercadoLibreConfig, tokens channel.TokenRepository, logger *zap.Logger) *MercadoLibreAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MercadoLibreAdapter{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Code returns the channel code this adapter handles
func (a *MercadoLibreAdapter) Code() channel.Code {
	return channel.CodeMercadoLibre
}

// Enabled reports whether credentials for this channel are configured
func (a *MercadoLibreAdapter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.ClientID != "" && a.cfg.ClientSecret != ""
}

// doRequest executes an authenticated request. On 401 it refreshes the token
// pair and retries exactly once; a second 401 surfaces as ErrChannelAuthFailed.
func (a *MercadoLibreAdapter) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if !a.Enabled() {
		return nil, channel.ErrChannelNotConfigured
	}

	record, err := a.tokens.Find(ctx, channel.CodeMercadoLibre)
	if err != nil {
		return nil, fmt.Errorf("%w: no stored token: %v", channel.ErrChannelAuthFailed, err)
	}

	raw, status, err := a.execute(ctx, method, path, query, body, record.AccessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		record, err = a.refreshToken(ctx, record)
		if err != nil {
			return nil, err
		}
		raw, status, err = a.execute(ctx, method, path, query, body, record.AccessToken)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: request rejected after token refresh", channel.ErrChannelAuthFailed)
		}
	}

	switch {
	case status == http.StatusNotFound:
		return nil, channel.ErrItemNotFound
	case status >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", channel.ErrChannelUnavailable, status)
	case status >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d: %s", channel.ErrChannelRequestFailed, status, truncate(raw, 256))
	}
	return raw, nil
}

// execute performs one HTTP round trip with a bearer token
func (a *MercadoLibreAdapter) execute(ctx context.Context, method, path string, query url.Values, body []byte, accessToken string) ([]byte, int, error) {
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
		return nil, 0, fmt.Errorf("%w: %v", channel.ErrChannelRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", channel.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading response: %v", channel.ErrChannelInvalidResponse, err)
	}
	return raw, resp.StatusCode, nil
}

// refreshToken exchanges the refresh token for a new pair and persists it
func (a *MercadoLibreAdapter) refreshToken(ctx context.Context, record *channel.TokenRecord) (*channel.TokenRecord, error) {
	if record.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token stored", channel.ErrChannelTokenExpired)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("refresh_token", record.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(a.cfg.BaseURL, "/")+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token refresh returned status %d", channel.ErrChannelTokenExpired, resp.StatusCode)
	}

	var tokenResp meliTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token refresh returned empty access token", channel.ErrChannelInvalidResponse)
	}

	updated := &channel.TokenRecord{
		Channel:      channel.CodeMercadoLibre.String(),
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		UpdatedAt:    time.Now(),
	}
	if updated.RefreshToken == "" {
		updated.RefreshToken = record.RefreshToken
	}
	if err := a.tokens.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}

	a.logger.Info("MercadoLibre token refreshed")
	return updated, nil
}

// ResolveItem locates the listing carrying an internal SKU. It tries, in
// order: the seller_sku search filter, a keyword search, and a bounded scan
// of active listings comparing SKU attributes on items and variations.
// Closed and paused listings never match.
func (a *MercadoLibreAdapter) ResolveItem(ctx context.Context, sku string) (*channel.ItemRef, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, channel.ErrItemNotFound
	}

	// Step 1: the indexed seller_sku filter.
	query := url.Values{}
	query.Set("seller_sku", sku)
	if ref, err := a.searchAndMatch(ctx, query, sku); err != nil {
		return nil, err
	} else if ref != nil {
		return ref, nil
	}

	// Step 2: free-text search. The index sometimes lags behind the filter.
	query = url.Values{}
	query.Set("q", sku)
	if ref, err := a.searchAndMatch(ctx, query, sku); err != nil {
		return nil, err
	} else if ref != nil {
		return ref, nil
	}

	// Step 3: bounded scan of active listings.
	for page := 0; page < meliMaxScanPages; page++ {
		query = url.Values{}
		query.Set("status", "active")
		query.Set("limit", strconv.Itoa(meliScanPageSize))
		query.Set("offset", strconv.Itoa(page*meliScanPageSize))

		result, err := a.search(ctx, query)
		if err != nil {
			return nil, err
		}
		ref, err := a.matchCandidates(ctx, result.Results, sku)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			return ref, nil
		}
		if result.Paging.Offset+len(result.Results) >= result.Paging.Total || len(result.Results) == 0 {
			break
		}
	}

	return nil, channel.ErrItemNotFound
}

// search runs one /users/{seller}/items/search call
func (a *MercadoLibreAdapter) search(ctx context.Context, query url.Values) (*meliSearchResult, error) {
	raw, err := a.doRequest(ctx, http.MethodGet, "/users/"+a.cfg.SellerID+"/items/search", query, nil)
	if err != nil {
		return nil, err
	}
	var result meliSearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	return &result, nil
}

// searchAndMatch runs a search and verifies candidates against the SKU
func (a *MercadoLibreAdapter) searchAndMatch(ctx context.Context, query url.Values, sku string) (*channel.ItemRef, error) {
	result, err := a.search(ctx, query)
	if err != nil {
		return nil, err
	}
	return a.matchCandidates(ctx, result.Results, sku)
}

// matchCandidates fetches each candidate item and returns the first one
// whose SKU fields match exactly. Search results are hints, never trusted:
// the item detail is always verified.
func (a *MercadoLibreAdapter) matchCandidates(ctx context.Context, itemIDs []string, sku string) (*channel.ItemRef, error) {
	for _, itemID := range itemIDs {
		item, err := a.fetchItem(ctx, itemID)
		if err != nil {
			if channelErrIsNotFound(err) {
				continue
			}
			return nil, err
		}
		if ref := matchItemSKU(item, sku); ref != nil {
			return ref, nil
		}
	}
	return nil, nil
}

// fetchItem retrieves one item with its attributes and variations
func (a *MercadoLibreAdapter) fetchItem(ctx context.Context, itemID string) (*meliItem, error) {
	query := url.Values{}
	query.Set("include_attributes", "all")
	raw, err := a.doRequest(ctx, http.MethodGet, "/items/"+itemID, query, nil)
	if err != nil {
		return nil, err
	}
	var item meliItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	return &item, nil
}

// matchItemSKU compares an item's SKU fields against the wanted SKU. Listings
// that are closed or paused never match. Variation matches carry the
// variation id in the reference.
func matchItemSKU(item *meliItem, sku string) *channel.ItemRef {
	if item == nil {
		return nil
	}
	if strings.EqualFold(item.Status, "closed") || strings.EqualFold(item.Status, "paused") {
		return nil
	}

	for _, variation := range item.Variations {
		if strings.TrimSpace(variation.SellerCustomField) == sku ||
			attributeValue(variation.Attributes, meliSellerSKUAttribute) == sku {
			return &channel.ItemRef{
				Channel:     channel.CodeMercadoLibre,
				ItemID:      item.ID,
				VariationID: strconv.FormatInt(variation.ID, 10),
			}
		}
	}

	if strings.TrimSpace(item.SellerCustomField) == sku ||
		attributeValue(item.Attributes, meliSellerSKUAttribute) == sku {
		return &channel.ItemRef{Channel: channel.CodeMercadoLibre, ItemID: item.ID}
	}
	return nil
}

// attributeValue returns the trimmed value of the attribute with the given id
func attributeValue(attributes []meliAttribute, id string) string {
	for _, attribute := range attributes {
		if attribute.ID == id {
			return strings.TrimSpace(attribute.ValueName)
		}
	}
	return ""
}

// PushStock sets the available quantity on a listing. Variation references
// update the variation row, plain references update the item itself.
func (a *MercadoLibreAdapter) PushStock(ctx context.Context, ref *channel.ItemRef, quantity int64) error {
	if ref == nil || ref.ItemID == "" {
		return channel.ErrItemNotFound
	}

	var payload any
	if ref.VariationID != "" {
		variationID, err := strconv.ParseInt(ref.VariationID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid variation id %q", channel.ErrChannelRequestFailed, ref.VariationID)
		}
		payload = map[string]any{
			"variations": []map[string]any{
				{"id": variationID, "available_quantity": quantity},
			},
		}
	} else {
		payload = map[string]any{"available_quantity": quantity}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", channel.ErrChannelRequestFailed, err)
	}

	if _, err := a.doRequest(ctx, http.MethodPut, "/items/"+ref.ItemID, nil, body); err != nil {
		return err
	}

	a.logger.Info("Stock pushed to MercadoLibre",
		zap.String("item_id", ref.ItemID),
		zap.String("variation_id", ref.VariationID),
		zap.Int64("quantity", quantity),
	)
	return nil
}

// PullOrders returns paid orders created after since
func (a *MercadoLibreAdapter) PullOrders(ctx context.Context, since time.Time) ([]channel.Order, error) {
	query := url.Values{}
	query.Set("seller", a.cfg.SellerID)
	query.Set("order.date_created.from", since.UTC().Format(time.RFC3339))
	query.Set("sort", "date_desc")

	raw, err := a.doRequest(ctx, http.MethodGet, "/orders/search", query, nil)
	if err != nil {
		return nil, err
	}
	var result meliOrderSearch
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}

	orders := make([]channel.Order, 0, len(result.Results))
	for _, raw := range result.Results {
		if !strings.EqualFold(raw.Status, "paid") {
			continue
		}
		orders = append(orders, convertMeliOrder(raw))
	}
	return orders, nil
}

// FetchOrder retrieves one order by id, used by the webhook receiver
func (a *MercadoLibreAdapter) FetchOrder(ctx context.Context, orderID string) (*channel.Order, error) {
	raw, err := a.doRequest(ctx, http.MethodGet, "/orders/"+orderID, nil, nil)
	if err != nil {
		if channelErrIsNotFound(err) {
			return nil, channel.ErrOrderNotFound
		}
		return nil, err
	}
	var result meliOrder
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrChannelInvalidResponse, err)
	}
	order := convertMeliOrder(result)
	return &order, nil
}

// convertMeliOrder maps a platform order to the domain shape
func convertMeliOrder(raw meliOrder) channel.Order {
	createdAt, _ := time.Parse(time.RFC3339, raw.DateCreated)
	items := make([]channel.OrderItem, 0, len(raw.OrderItems))
	for _, line := range raw.OrderItems {
		sku := strings.TrimSpace(line.Item.SellerSKU)
		if sku == "" {
			sku = strings.TrimSpace(line.Item.SellerCustomField)
		}
		items = append(items, channel.OrderItem{
			SKU:       sku,
			ItemID:    line.Item.ID,
			Quantity:  decimal.NewFromInt(line.Quantity),
			UnitPrice: decimal.NewFromFloat(line.UnitPrice),
		})
	}
	return channel.Order{
		Channel:   channel.CodeMercadoLibre,
		OrderID:   strconv.FormatInt(raw.ID, 10),
		Status:    raw.Status,
		CreatedAt: createdAt,
		Items:     items,
	}
}

// Ensure MercadoLibreAdapter implements the marketplace port and order fetcher
var (
	_ channel.Marketplace  = (*MercadoLibreAdapter)(nil)
	_ channel.OrderFetcher = (*MercadoLibreAdapter)(nil)
)
