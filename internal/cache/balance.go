// Package cache holds the last observed contract state with bounded staleness.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/ledger"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// StaleDataError indicates the cache could not refresh; the previous snapshot
// is retained and the current cycle cannot proceed on fresh data.
type StaleDataError struct {
	Err error
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("balance cache refresh failed: %v", e.Err)
}

func (e *StaleDataError) Unwrap() error { return e.Err }

// BalanceCache serves the most recent BalanceSnapshot. A refresh replaces the
// snapshot atomically or fails leaving the prior one intact. Concurrent
// refreshes collapse into a single ledger round trip.
type BalanceCache struct {
	querier ledger.Querier
	log     zerolog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	snap  *model.BalanceSnapshot

	now func() time.Time
}

// New creates an empty cache backed by the given querier.
func New(querier ledger.Querier, log zerolog.Logger) *BalanceCache {
	return &BalanceCache{
		querier: querier,
		log:     log.With().Str("component", "balance_cache").Logger(),
		now:     time.Now,
	}
}

// Current returns the cached snapshot without refreshing, nil if none yet.
// Read-only diagnostics path.
func (c *BalanceCache) Current() *model.BalanceSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Get returns the cached snapshot if it is no older than maxAge, refreshing
// otherwise.
func (c *BalanceCache) Get(ctx context.Context, maxAge time.Duration) (*model.BalanceSnapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap != nil && snap.Age(c.now()) <= maxAge {
		return snap, nil
	}
	return c.ForceRefresh(ctx)
}

// ForceRefresh fetches weights, total supply, and balances as one atomic
// unit. All concurrent callers share a single in-flight refresh.
func (c *BalanceCache) ForceRefresh(ctx context.Context) (*model.BalanceSnapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.BalanceSnapshot), nil
}

func (c *BalanceCache) refresh(ctx context.Context) (*model.BalanceSnapshot, error) {
	weights, err := c.querier.GetWeights(ctx)
	if err != nil {
		return nil, &StaleDataError{Err: err}
	}
	supply, err := c.querier.GetTotalSupply(ctx)
	if err != nil {
		return nil, &StaleDataError{Err: err}
	}
	balances, err := c.querier.GetBalances(ctx)
	if err != nil {
		return nil, &StaleDataError{Err: err}
	}

	snap := &model.BalanceSnapshot{
		Balances:    balances,
		Weights:     weights,
		TotalSupply: supply,
		CapturedAt:  c.now(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.log.Debug().
		Int("assets", len(balances)).
		Str("total_supply", supply.String()).
		Msg("snapshot refreshed")
	return snap, nil
}
