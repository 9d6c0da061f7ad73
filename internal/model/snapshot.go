package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the full contract state observed by one refresh.
// A snapshot is immutable once published: a refresh either replaces the whole
// value or fails and leaves the previous one in place.
type BalanceSnapshot struct {
	Balances    map[string]decimal.Decimal `json:"balances"`
	Weights     WeightVector               `json:"weights"`
	TotalSupply decimal.Decimal            `json:"total_supply"`
	CapturedAt  time.Time                  `json:"captured_at"`
}

// Balance returns the observed holding for a symbol, zero if unobserved.
func (s *BalanceSnapshot) Balance(symbol string) decimal.Decimal {
	if b, ok := s.Balances[symbol]; ok {
		return b
	}
	return decimal.Zero
}

// Age reports how old the snapshot is relative to now.
func (s *BalanceSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt)
}
