package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	appidentity "github.com/omnistock/backend/internal/application/identity"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/shared"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NewDomainError("NOT_FOUND", "gone"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate sku", shared.NewDomainError("DUPLICATE_SKU", "taken"), http.StatusConflict, "DUPLICATE_SKU"},
		{"insufficient stock", shared.NewDomainError("INSUFFICIENT_STOCK", "short"), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"export unavailable", shared.NewDomainError("EXPORT_UNAVAILABLE", "no storage"), http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE"},
		{"unknown domain code falls back to 400", shared.NewDomainError("INVALID_SKU", "bad"), http.StatusBadRequest, "INVALID_SKU"},
		{"wrapped domain error", fmt.Errorf("listing: %w", shared.NewDomainError("NOT_FOUND", "gone")), http.StatusNotFound, "NOT_FOUND"},
		{"invalid credentials", appidentity.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"channel not configured", channel.ErrChannelNotConfigured, http.StatusConflict, "CHANNEL_NOT_CONFIGURED"},
		{"item not found upstream", channel.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
		{"order not found upstream", fmt.Errorf("fetch: %w", channel.ErrOrderNotFound), http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"channel auth failure is a bad gateway", channel.ErrChannelAuthFailed, http.StatusBadGateway, "CHANNEL_AUTH_FAILED"},
		{"channel outage is a bad gateway", channel.ErrChannelUnavailable, http.StatusBadGateway, "CHANNEL_UNAVAILABLE"},
		{"anything else is internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := MapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}
