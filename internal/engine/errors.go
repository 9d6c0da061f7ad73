package engine

import "fmt"

// ConfigError indicates invalid static configuration (bad divisor or weight).
// Fatal: there is nothing to repair automatically, it escalates to the
// process boundary instead of being silently defaulted.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Reason
}

// UnsupportedAssetError marks an asset present in the weight vector that the
// ledger cannot transfer. The asset is skipped with a recorded warning; the
// cycle continues.
type UnsupportedAssetError struct {
	Symbol string
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("asset %s has no ledger transfer support", e.Symbol)
}
