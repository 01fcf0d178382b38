package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

func newWooTestAdapter(t *testing.T, handler http.HandlerFunc) *WooCommerceAdapter {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_key", username)
		assert.Equal(t, "cs_secret", password)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewWooCommerceAdapter(config.WooCommerceConfig{
		Enabled:        true,
		BaseURL:        server.URL,
		ConsumerKey:    "ck_key",
		ConsumerSecret: "cs_secret",
	}, zap.NewNop())
}

func TestWooCommerceResolveItem(t *testing.T) {
	t.Run("verifies exact SKU among prefix matches", func(t *testing.T) {
		adapter := newWooTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
			assert.Equal(t, "ABC-001", r.URL.Query().Get("sku"))
			w.Write([]byte(`[
				{"id":10,"sku":"ABC-0010","status":"publish"},
				{"id":11,"sku":"ABC-001","status":"publish"}
			]`))
		})

		ref, err := adapter.ResolveItem(context.Background(), "ABC-001")
		require.NoError(t, err)
		assert.Equal(t, "11", ref.ItemID)
	})

	t.Run("draft products are not sellable", func(t *testing.T) {
		adapter := newWooTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":11,"sku":"ABC-001","status":"draft"}]`))
		})

		_, err := adapter.ResolveItem(context.Background(), "ABC-001")
		assert.ErrorIs(t, err, channel.ErrItemNotSellable)
	})
}

func TestWooCommercePushStock(t *testing.T) {
	var gotBody map[string]any
	adapter := newWooTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/wp-json/wc/v3/products/11", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id":11}`))
	})

	err := adapter.PushStock(context.Background(),
		&channel.ItemRef{Channel: channel.CodeWooCommerce, ItemID: "11"}, 25)
	require.NoError(t, err)

	assert.Equal(t, float64(25), gotBody["stock_quantity"])
	assert.Equal(t, true, gotBody["manage_stock"])
}

func TestWooCommercePullOrders(t *testing.T) {
	adapter := newWooTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "processing,completed", r.URL.Query().Get("status"))
		w.Write([]byte(`[{"id":501,"status":"processing","date_created_gmt":"2026-08-30T10:00:00",
			"line_items":[{"product_id":11,"sku":"ABC-001","quantity":2,"price":"12990"}]}]`))
	})

	orders, err := adapter.PullOrders(context.Background(), time0())
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "501", orders[0].OrderID)
	assert.Equal(t, channel.CodeWooCommerce, orders[0].Channel)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "ABC-001", orders[0].Items[0].SKU)
}

func TestRegistry(t *testing.T) {
	tokens := newFakeTokenRepository()
	registry := NewAdapterRegistry(config.ChannelsConfig{
		Falabella: config.FalabellaConfig{Enabled: true, UserID: "u", APIKey: "k"},
	}, tokens, zap.NewNop())

	assert.Len(t, registry.List(), 4)

	enabled := registry.ListEnabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, channel.CodeFalabella, enabled[0].Code())

	adapter, err := registry.Get(channel.CodeRipley)
	require.NoError(t, err)
	assert.False(t, adapter.Enabled())
}
