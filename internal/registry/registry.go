package registry

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// Registry is the static catalogue of tradable assets, loaded once at startup.
// The governance asset is tracked for exclusion only: it is a liability of the
// pool, never a rebalance target.
type Registry struct {
	assets     map[string]model.AssetDescriptor
	order      []string
	governance string
}

// New builds a Registry from configured descriptors.
func New(assets []model.AssetDescriptor, governanceSymbol string) (*Registry, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("registry: no assets configured")
	}
	if governanceSymbol == "" {
		return nil, fmt.Errorf("registry: governance symbol is required")
	}
	r := &Registry{
		assets:     make(map[string]model.AssetDescriptor, len(assets)),
		governance: governanceSymbol,
	}
	for _, a := range assets {
		if a.Symbol == "" {
			return nil, fmt.Errorf("registry: asset with empty symbol")
		}
		if a.Decimals < 0 {
			return nil, fmt.Errorf("registry: asset %s has negative decimals", a.Symbol)
		}
		if _, dup := r.assets[a.Symbol]; dup {
			return nil, fmt.Errorf("registry: duplicate asset %s", a.Symbol)
		}
		r.assets[a.Symbol] = a
		r.order = append(r.order, a.Symbol)
	}
	return r, nil
}

// Get returns the descriptor for a symbol.
func (r *Registry) Get(symbol string) (model.AssetDescriptor, bool) {
	a, ok := r.assets[symbol]
	return a, ok
}

// Governance returns the governance asset symbol.
func (r *Registry) Governance() string {
	return r.governance
}

// Rebalanceable lists the assets eligible for corrective actions, in
// configuration order, with the governance asset excluded.
func (r *Registry) Rebalanceable() []model.AssetDescriptor {
	out := make([]model.AssetDescriptor, 0, len(r.order))
	for _, sym := range r.order {
		if sym == r.governance {
			continue
		}
		out = append(out, r.assets[sym])
	}
	return out
}

// ToBaseUnits converts a human-scale amount to the asset's smallest unit.
func (r *Registry) ToBaseUnits(symbol string, amount decimal.Decimal) (decimal.Decimal, error) {
	a, ok := r.assets[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("registry: unknown asset %s", symbol)
	}
	return amount.Shift(a.Decimals), nil
}

// FromBaseUnits converts a raw ledger amount to human scale.
func (r *Registry) FromBaseUnits(symbol string, raw decimal.Decimal) (decimal.Decimal, error) {
	a, ok := r.assets[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("registry: unknown asset %s", symbol)
	}
	return raw.Shift(-a.Decimals), nil
}
