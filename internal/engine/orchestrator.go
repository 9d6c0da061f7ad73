package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/cache"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/ledger"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/recorder"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/registry"
)

// Orchestrator runs the full rebalance cycle: refresh, evaluate every asset,
// execute corrective transfers sequentially, refresh again.
type Orchestrator struct {
	registry   *registry.Registry
	cache      *cache.BalanceCache
	transferor ledger.Transferor
	recorder   recorder.Recorder
	tolerance  decimal.Decimal
	log        zerolog.Logger
	now        func() time.Time
}

// NewOrchestrator wires the orchestrator. tolerancePercent <= 0 falls back to
// the default band.
func NewOrchestrator(
	reg *registry.Registry,
	bc *cache.BalanceCache,
	transferor ledger.Transferor,
	rec recorder.Recorder,
	tolerancePercent float64,
	log zerolog.Logger,
) *Orchestrator {
	if tolerancePercent <= 0 {
		tolerancePercent = DefaultTolerancePercent
	}
	return &Orchestrator{
		registry:   reg,
		cache:      bc,
		transferor: transferor,
		recorder:   rec,
		tolerance:  decimal.NewFromFloat(tolerancePercent),
		log:        log.With().Str("component", "orchestrator").Logger(),
		now:        time.Now,
	}
}

// RunCycle executes one rebalance cycle and returns its report.
// A *cache.StaleDataError aborts the cycle before any action; a *ConfigError
// escalates to the caller. Transfer failures never abort the cycle: each
// remaining action is still attempted and the failure appears in the report.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger model.TriggerType) (*model.CycleReport, error) {
	report := &model.CycleReport{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: o.now(),
	}
	o.log.Info().Str("cycle", report.ID).Str("trigger", string(trigger)).Msg("cycle started")

	// A cycle always starts from fresh data, never the passive read path.
	snap, err := o.cache.ForceRefresh(ctx)
	if err != nil {
		return nil, err
	}

	if err := o.plan(snap, report); err != nil {
		return nil, err
	}
	o.execute(ctx, report)

	// Re-observe ground truth so the next cycle does not reason from an
	// assumed post-transfer state.
	if _, err := o.cache.ForceRefresh(ctx); err != nil {
		o.log.Warn().Err(err).Str("cycle", report.ID).Msg("post-cycle refresh failed")
		report.Warnings = append(report.Warnings, fmt.Sprintf("post-cycle refresh failed: %v", err))
	}

	report.FinishedAt = o.now()
	o.log.Info().
		Str("cycle", report.ID).
		Int("actions", len(report.Actions)).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("cycle finished")

	if err := o.recorder.RecordCycle(report); err != nil {
		o.log.Error().Err(err).Str("cycle", report.ID).Msg("record cycle")
	}
	return report, nil
}

// plan evaluates every rebalanceable asset against the snapshot and appends
// pending actions, largest imbalance first.
func (o *Orchestrator) plan(snap *model.BalanceSnapshot, report *model.CycleReport) error {
	for _, asset := range o.registry.Rebalanceable() {
		required, err := Required(snap.TotalSupply, snap.Weights.Weight(asset.Symbol), snap.Weights.Divisor)
		if err != nil {
			return err
		}
		actual := snap.Balance(asset.Symbol)
		dir, magnitude := Evaluate(actual, required, o.tolerance)
		if dir == model.DirectionNone {
			continue
		}
		if !o.transferor.Supports(asset.Symbol) {
			warn := (&UnsupportedAssetError{Symbol: asset.Symbol}).Error()
			o.log.Warn().Str("symbol", asset.Symbol).Msg(warn)
			report.Warnings = append(report.Warnings, warn)
			continue
		}
		o.log.Debug().
			Str("symbol", asset.Symbol).
			Str("required", required.String()).
			Str("actual", actual.String()).
			Str("deviation_percent", DeviationPercent(actual, required).StringFixed(2)).
			Str("direction", string(dir)).
			Str("magnitude", magnitude.String()).
			Msg("deviation outside tolerance")
		report.Actions = append(report.Actions, model.CorrectiveAction{
			Symbol:    asset.Symbol,
			Direction: dir,
			Amount:    magnitude,
			Status:    model.StatusPending,
		})
	}

	// Weighted symbols missing from the registry cannot be corrected at all.
	gov := o.registry.Governance()
	for sym := range snap.Weights.Weights {
		if sym == gov {
			continue
		}
		if _, ok := o.registry.Get(sym); !ok {
			warn := fmt.Sprintf("weighted asset %s not in registry, skipped", sym)
			o.log.Warn().Str("symbol", sym).Msg(warn)
			report.Warnings = append(report.Warnings, warn)
		}
	}

	// Largest imbalance first bounds worst-case exposure soonest.
	sort.SliceStable(report.Actions, func(i, j int) bool {
		return report.Actions[i].Amount.GreaterThan(report.Actions[j].Amount)
	})
	return nil
}

// execute runs planned actions sequentially. Sequential execution keeps the
// blast radius of a mid-cycle crash to at most one action in an indeterminate
// state.
func (o *Orchestrator) execute(ctx context.Context, report *model.CycleReport) {
	for i := range report.Actions {
		act := &report.Actions[i]
		act.Status = model.StatusExecuting

		var (
			res *ledger.TransferResult
			err error
		)
		switch act.Direction {
		case model.DirectionBuy:
			res, err = o.transferor.TransferIn(ctx, act.Symbol, act.Amount)
		case model.DirectionSell:
			res, err = o.transferor.TransferOut(ctx, act.Symbol, act.Amount)
		}
		if err != nil {
			act.Status = model.StatusFailed
			act.Error = err.Error()
			report.Failed++
			o.log.Error().Err(err).
				Str("cycle", report.ID).
				Str("symbol", act.Symbol).
				Str("direction", string(act.Direction)).
				Msg("corrective action failed")
			continue
		}
		act.Status = model.StatusSucceeded
		act.TxID = res.TxID
		report.Succeeded++
		o.log.Info().
			Str("cycle", report.ID).
			Str("symbol", act.Symbol).
			Str("direction", string(act.Direction)).
			Str("amount", act.Amount.String()).
			Str("tx_id", res.TxID).
			Msg("corrective action executed")
	}
}
