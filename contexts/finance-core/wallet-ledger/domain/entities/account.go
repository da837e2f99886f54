package entities

import "time"

// Account is one wallet balance row. Balances never go negative.
type Account struct {
	AccountID string
	Balance   int64
	UpdatedAt time.Time
}
