// Package ledger defines the narrow interfaces through which the engine
// reaches the external ledger: typed reads of contract state and typed
// transfer execution. No free-text parsing happens on either path.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// TransferResult is the ledger's acknowledgement of an executed transfer.
type TransferResult struct {
	TxID   string `json:"tx_id"`
	Status string `json:"status"`
}

// Querier reads contract state. Each call either returns a complete result
// or fails with a *QueryError; there are no partial results.
type Querier interface {
	GetWeights(ctx context.Context) (model.WeightVector, error)
	GetTotalSupply(ctx context.Context) (decimal.Decimal, error)
	GetBalances(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Transferor executes corrective transfers. TransferIn moves funds into the
// treasury, TransferOut withdraws them. Failures surface as *TransferError.
type Transferor interface {
	TransferIn(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error)
	TransferOut(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error)
	Supports(symbol string) bool
}

// Client bundles both capabilities of a ledger gateway.
type Client interface {
	Querier
	Transferor
	Name() string
}
