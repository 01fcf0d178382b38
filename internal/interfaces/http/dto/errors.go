package dto

import (
	"errors"
	"net/http"

	appidentity "github.com/omnistock/backend/internal/application/identity"
	"github.com/omnistock/backend/internal/domain/channel"
	"github.com/omnistock/backend/internal/domain/shared"
)

// statusByCode maps domain error codes to HTTP status codes. Unknown codes
// fall back to 400: a DomainError is always the caller's input being
// rejected, never an internal failure.
var statusByCode = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"DUPLICATE_SKU":        http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"EXPORT_UNAVAILABLE":   http.StatusServiceUnavailable,
}

// MapError converts an application error into an HTTP status and envelope
func MapError(err error) (int, Response) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		return status, Fail(domainErr.Code, domainErr.Message)
	}

	switch {
	case errors.Is(err, appidentity.ErrInvalidCredentials):
		return http.StatusUnauthorized, Fail("INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, channel.ErrChannelNotConfigured):
		return http.StatusConflict, Fail("CHANNEL_NOT_CONFIGURED", "The channel is not configured")
	case errors.Is(err, channel.ErrItemNotFound):
		return http.StatusNotFound, Fail("ITEM_NOT_FOUND", "Item not found on the marketplace")
	case errors.Is(err, channel.ErrOrderNotFound):
		return http.StatusNotFound, Fail("ORDER_NOT_FOUND", "Order not found on the marketplace")
	case errors.Is(err, channel.ErrChannelAuthFailed), errors.Is(err, channel.ErrChannelTokenExpired):
		return http.StatusBadGateway, Fail("CHANNEL_AUTH_FAILED", "Marketplace authentication failed")
	case errors.Is(err, channel.ErrChannelUnavailable):
		return http.StatusBadGateway, Fail("CHANNEL_UNAVAILABLE", "Marketplace is temporarily unavailable")
	case errors.Is(err, channel.ErrChannelRequestFailed), errors.Is(err, channel.ErrChannelInvalidResponse):
		return http.StatusBadGateway, Fail("CHANNEL_REQUEST_FAILED", "Marketplace request failed")
	}

	return http.StatusInternalServerError, Fail("INTERNAL_ERROR", "An internal error occurred")
}
