package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is one append-only ledger row. A user's total deposit is always
// the sum of their rows, recomputed on demand and never cached on User.
type Deposit struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
