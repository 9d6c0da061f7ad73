package model

// AssetDescriptor identifies a tradable treasury asset.
type AssetDescriptor struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	LedgerID string `yaml:"ledger_id" json:"ledger_id"`
	Decimals int32  `yaml:"decimals" json:"decimals"`
}

// WeightVector holds the governance-assigned target weights plus the shared
// divisor that converts a weight into a fraction of total supply.
type WeightVector struct {
	Weights map[string]int64 `json:"weights"`
	Divisor int64            `json:"divisor"`
}

// Weight returns the weight for a symbol, zero if the symbol has none.
func (w WeightVector) Weight(symbol string) int64 {
	return w.Weights[symbol]
}
