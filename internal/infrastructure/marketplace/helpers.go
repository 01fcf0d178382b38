// Package marketplace contains the concrete sales-channel adapters behind
// the domain marketplace port.
package marketplace

import (
	"errors"

	"github.com/omnistock/backend/internal/domain/channel"
)

// channelErrIsNotFound reports whether err is an item-absence error, as
// opposed to a transport or platform failure.
func channelErrIsNotFound(err error) bool {
	return errors.Is(err, channel.ErrItemNotFound)
}

// truncate clips a raw response body for inclusion in error messages
func truncate(raw []byte, max int) string {
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
