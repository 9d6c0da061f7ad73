package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// UnitConverter translates amounts between human scale and an asset's base
// units. *registry.Registry satisfies it.
type UnitConverter interface {
	ToBaseUnits(symbol string, amount decimal.Decimal) (decimal.Decimal, error)
	FromBaseUnits(symbol string, raw decimal.Decimal) (decimal.Decimal, error)
}

// GatewayClient implements Client against the treasury gateway REST API.
// The gateway owns signing, transaction assembly, and its own call timeouts;
// a gateway-side timeout surfaces here as an ordinary query/transfer error.
// Per-asset amounts cross the wire in base units; the client converts to and
// from human scale at this boundary.
type GatewayClient struct {
	BaseURL string
	APIKey  string
	Units   UnitConverter
	Client  *http.Client
}

// NewGatewayClient creates a gateway client.
func NewGatewayClient(baseURL, apiKey string, units UnitConverter) *GatewayClient {
	return &GatewayClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Units:   units,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GatewayClient) Name() string { return "gateway" }

func (g *GatewayClient) GetWeights(ctx context.Context) (model.WeightVector, error) {
	var out struct {
		Weights map[string]int64 `json:"weights"`
		Divisor int64            `json:"divisor"`
	}
	if err := g.getJSON(ctx, "/api/v1/treasury/weights", &out); err != nil {
		return model.WeightVector{}, &QueryError{Op: "weights", Err: err}
	}
	return model.WeightVector{Weights: out.Weights, Divisor: out.Divisor}, nil
}

func (g *GatewayClient) GetTotalSupply(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		TotalSupply decimal.Decimal `json:"total_supply"`
	}
	if err := g.getJSON(ctx, "/api/v1/token/supply", &out); err != nil {
		return decimal.Zero, &QueryError{Op: "supply", Err: err}
	}
	return out.TotalSupply, nil
}

func (g *GatewayClient) GetBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	var out struct {
		Balances map[string]decimal.Decimal `json:"balances"`
	}
	if err := g.getJSON(ctx, "/api/v1/treasury/balances", &out); err != nil {
		return nil, &QueryError{Op: "balances", Err: err}
	}
	balances := make(map[string]decimal.Decimal, len(out.Balances))
	for sym, raw := range out.Balances {
		human, err := g.Units.FromBaseUnits(sym, raw)
		if err != nil {
			// Symbols outside the registry are never rebalanced; keep the
			// raw figure rather than dropping the entry.
			balances[sym] = raw
			continue
		}
		balances[sym] = human
	}
	return balances, nil
}

// Supports asks the gateway once per process lifetime would be nicer, but the
// transfer endpoint rejects unknown symbols anyway; the gateway client is
// optimistic and lets the transfer call surface the rejection.
func (g *GatewayClient) Supports(symbol string) bool { return true }

func (g *GatewayClient) TransferIn(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error) {
	return g.transfer(ctx, symbol, amount, "in")
}

func (g *GatewayClient) TransferOut(ctx context.Context, symbol string, amount decimal.Decimal) (*TransferResult, error) {
	return g.transfer(ctx, symbol, amount, "out")
}

func (g *GatewayClient) transfer(ctx context.Context, symbol string, amount decimal.Decimal, direction string) (*TransferResult, error) {
	raw, err := g.Units.ToBaseUnits(symbol, amount)
	if err != nil {
		return nil, &TransferError{Symbol: symbol, Err: err}
	}
	payload := map[string]any{
		"symbol":    symbol,
		"amount":    raw,
		"direction": direction,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransferError{Symbol: symbol, Err: fmt.Errorf("marshal payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/api/v1/treasury/transfer", bytes.NewReader(body))
	if err != nil {
		return nil, &TransferError{Symbol: symbol, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, &TransferError{Symbol: symbol, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &TransferError{Symbol: symbol, Err: fmt.Errorf("status %d, body: %s", resp.StatusCode, string(raw))}
	}
	var result TransferResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransferError{Symbol: symbol, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

func (g *GatewayClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
