package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// MockTransfer records one transfer executed against the mock.
type MockTransfer struct {
	Symbol    string
	Direction model.Direction
	Amount    decimal.Decimal
}

// Mock is a controllable in-memory ledger for development and testing.
type Mock struct {
	mu sync.Mutex

	Weights     model.WeightVector
	TotalSupply decimal.Decimal
	Balances    map[string]decimal.Decimal

	// Failure injection
	QueryErr     error
	TransferErrs map[string]error
	Unsupported  map[string]bool

	// Refresh is blocked until Release is called while Blocking is set.
	Blocking bool
	gate     chan struct{}

	BalanceCalls int
	Transfers    []MockTransfer
}

// NewMock returns a mock prefilled with a small sample pool.
func NewMock() *Mock {
	return &Mock{
		Weights: model.WeightVector{
			Weights: map[string]int64{"HBAR": 40, "SAUCE": 30, "USDC": 20, "JAM": 10},
			Divisor: 10,
		},
		TotalSupply: decimal.NewFromInt(1000),
		Balances: map[string]decimal.Decimal{
			"HBAR":  decimal.NewFromInt(4000),
			"SAUCE": decimal.NewFromInt(3000),
			"USDC":  decimal.NewFromInt(2000),
			"JAM":   decimal.NewFromInt(1000),
		},
		gate: make(chan struct{}),
	}
}

func (m *Mock) Name() string { return "mock" }

// SetQueryErr injects a failure for all subsequent queries.
func (m *Mock) SetQueryErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryErr = err
}

// SetTransferErr injects a failure for transfers of one symbol.
func (m *Mock) SetTransferErr(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TransferErrs == nil {
		m.TransferErrs = make(map[string]error)
	}
	m.TransferErrs[symbol] = err
}

// SetBalance overrides one holding.
func (m *Mock) SetBalance(symbol string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Balances[symbol] = amount
}

// BalanceCallCount reports how many times GetBalances completed.
func (m *Mock) BalanceCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BalanceCalls
}

// TransferLog returns a copy of the executed transfers.
func (m *Mock) TransferLog() []MockTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockTransfer, len(m.Transfers))
	copy(out, m.Transfers)
	return out
}

// Release unblocks a Blocking mock's in-flight queries.
func (m *Mock) Release() {
	close(m.gate)
}

func (m *Mock) GetWeights(ctx context.Context) (model.WeightVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return model.WeightVector{}, &QueryError{Op: "weights", Err: m.QueryErr}
	}
	return m.Weights, nil
}

func (m *Mock) GetTotalSupply(ctx context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return decimal.Zero, &QueryError{Op: "supply", Err: m.QueryErr}
	}
	return m.TotalSupply, nil
}

func (m *Mock) GetBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	blocking := m.Blocking
	m.mu.Unlock()
	if blocking {
		<-m.gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceCalls++
	if m.QueryErr != nil {
		return nil, &QueryError{Op: "balances", Err: m.QueryErr}
	}
	out := make(map[string]decimal.Decimal, len(m.Balances))
	for k, v := range m.Balances {
		out[k] = v
	}
	return out, nil
}

func (m *Mock) Supports(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Unsupported[symbol]
}

func (m *Mock) TransferIn(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error) {
	return m.transfer(symbol, model.DirectionBuy, amount)
}

func (m *Mock) TransferOut(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error) {
	return m.transfer(symbol, model.DirectionSell, amount)
}

func (m *Mock) transfer(symbol string, dir model.Direction, amount decimal.Decimal) (*TransferResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.TransferErrs[symbol]; err != nil {
		return nil, &TransferError{Symbol: symbol, Err: err}
	}
	if amount.Sign() < 0 {
		return nil, &TransferError{Symbol: symbol, Err: fmt.Errorf("negative amount %s", amount)}
	}
	m.Transfers = append(m.Transfers, MockTransfer{Symbol: symbol, Direction: dir, Amount: amount})
	cur := m.Balances[symbol]
	if dir == model.DirectionBuy {
		m.Balances[symbol] = cur.Add(amount)
	} else {
		m.Balances[symbol] = cur.Sub(amount)
	}
	return &TransferResult{TxID: "mock-" + uuid.NewString(), Status: "SUCCESS"}, nil
}
