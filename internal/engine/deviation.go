package engine

import (
	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// DefaultTolerancePercent is the allowed deviation band before a corrective
// action is triggered.
const DefaultTolerancePercent = 5.0

var hundred = decimal.NewFromInt(100)

// Evaluate compares an actual holding against the required one and yields a
// directional correction. A required amount of zero never produces an action:
// a new or unlisted asset must not trigger a spurious full liquidation.
// Values exactly on the tolerance edge count as balanced, so rounding jitter
// around the boundary cannot oscillate between action and no action.
func Evaluate(actual, required, tolerancePercent decimal.Decimal) (model.Direction, decimal.Decimal) {
	if required.Sign() <= 0 {
		return model.DirectionNone, decimal.Zero
	}

	band := required.Mul(tolerancePercent).Div(hundred)
	upper := required.Add(band)
	lower := required.Sub(band)

	switch {
	case actual.GreaterThan(upper):
		return model.DirectionSell, actual.Sub(required)
	case actual.LessThan(lower):
		return model.DirectionBuy, required.Sub(actual)
	default:
		return model.DirectionNone, decimal.Zero
	}
}

// DeviationPercent reports |actual−required| / required × 100, zero when
// required is zero.
func DeviationPercent(actual, required decimal.Decimal) decimal.Decimal {
	if required.Sign() <= 0 {
		return decimal.Zero
	}
	return actual.Sub(required).Abs().Div(required).Mul(hundred)
}
