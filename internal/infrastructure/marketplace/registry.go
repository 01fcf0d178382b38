package marketplace

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

// AdapterRegistry holds the configured marketplace adapters, keyed by
// channel code. Listing order is stable for deterministic sync output.
type AdapterRegistry struct {
	adapters map[channel.Code]channel.Marketplace
}

// NewAdapterRegistry builds the registry with all four channel adapters.
// Disabled channels still get an adapter so callers receive a clear
// ErrChannelNotConfigured instead of a missing-key error.
func NewAdapterRegistry(cfg config.ChannelsConfig, tokens channel.TokenRepository, logger *zap.Logger) *AdapterRegistry {
	registry := &AdapterRegistry{
		adapters: make(map[channel.Code]channel.Marketplace, 4),
	}
	registry.Register(NewFalabellaAdapter(cfg.Falabella, logger))
	registry.Register(NewMercadoLibreAdapter(cfg.MercadoLibre, tokens, logger))
	registry.Register(NewRipleyAdapter(cfg.Ripley, logger))
	registry.Register(NewWooCommerceAdapter(cfg.WooCommerce, logger))
	return registry
}

// Register adds or replaces an adapter
func (r *AdapterRegistry) Register(adapter channel.Marketplace) {
	r.adapters[adapter.Code()] = adapter
}

// Get returns the adapter for the given channel code
func (r *AdapterRegistry) Get(code channel.Code) (channel.Marketplace, error) {
	adapter, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: unknown channel %q", channel.ErrChannelNotConfigured, code)
	}
	return adapter, nil
}

// List returns all registered adapters in stable code order
func (r *AdapterRegistry) List() []channel.Marketplace {
	adapters := make([]channel.Marketplace, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		adapters = append(adapters, adapter)
	}
	sort.Slice(adapters, func(i, j int) bool {
		return adapters[i].Code() < adapters[j].Code()
	})
	return adapters
}

// ListEnabled returns all adapters with configured credentials
func (r *AdapterRegistry) ListEnabled() []channel.Marketplace {
	var enabled []channel.Marketplace
	for _, adapter := range r.List() {
		if adapter.Enabled() {
			enabled = append(enabled, adapter)
		}
	}
	return enabled
}

// Ensure AdapterRegistry implements the registry port
var _ channel.Registry = (*AdapterRegistry)(nil)
