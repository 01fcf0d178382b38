package marketplace

import "time"

// time0 is a fixed "since" timestamp for order-pull tests
func time0() time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
}
