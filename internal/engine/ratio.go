// Package engine contains the rebalancing decision core: required-holding
// math, deviation evaluation, and the cycle orchestrator.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Required computes the holding an asset must have to match its governance
// weight: totalSupply × weight / divisor, in the same human-scale units as
// observed balances. Pure and deterministic: fixed-point arithmetic only, so
// identical inputs always produce identical output.
func Required(totalSupply decimal.Decimal, weight, divisor int64) (decimal.Decimal, error) {
	if divisor <= 0 {
		return decimal.Zero, &ConfigError{Reason: fmt.Sprintf("divisor must be positive, got %d", divisor)}
	}
	if weight < 0 {
		return decimal.Zero, &ConfigError{Reason: fmt.Sprintf("weight must be non-negative, got %d", weight)}
	}
	return totalSupply.Mul(decimal.NewFromInt(weight)).Div(decimal.NewFromInt(divisor)), nil
}
