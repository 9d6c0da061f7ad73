package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/retry"
)

// Lane serializes cycle execution. Both admission sources, the periodic timer
// and the alert feed, feed the same single-slot trigger channel: at most one
// cycle runs at a time and at most one pending re-run is coalesced while a
// cycle is in flight. Concurrent cycles could observe the same imbalance and
// double-correct it.
type Lane struct {
	orch    *Orchestrator
	backoff *retry.Scheduler
	log     zerolog.Logger

	trigger chan model.TriggerType
	fatal   chan error

	mu   sync.RWMutex
	last *model.CycleReport

	wg sync.WaitGroup
}

// NewLane creates a stopped lane.
func NewLane(orch *Orchestrator, backoff *retry.Scheduler, log zerolog.Logger) *Lane {
	return &Lane{
		orch:    orch,
		backoff: backoff,
		log:     log.With().Str("component", "lane").Logger(),
		trigger: make(chan model.TriggerType, 1),
		fatal:   make(chan error, 1),
	}
}

// Trigger admits a cycle. Returns false when an admission is already pending;
// the pending run will observe the same state, so the caller needs no retry.
func (l *Lane) Trigger(t model.TriggerType) bool {
	select {
	case l.trigger <- t:
		return true
	default:
		return false
	}
}

// LastReport returns the most recent completed cycle report, nil if none.
func (l *Lane) LastReport() *model.CycleReport {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// Fatal delivers a ConfigError that must stop the process.
func (l *Lane) Fatal() <-chan error {
	return l.fatal
}

// Start runs the lane until ctx is cancelled.
func (l *Lane) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.run(ctx)
}

// Wait blocks until the lane goroutine exits.
func (l *Lane) Wait() {
	l.wg.Wait()
}

func (l *Lane) run(ctx context.Context) {
	defer l.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case trig := <-l.trigger:
			l.runWithBackoff(ctx, trig)
		}
	}
}

// runWithBackoff retries a failed admission with the shared backoff until it
// succeeds or the context ends. Invalid configuration is not retried.
func (l *Lane) runWithBackoff(ctx context.Context, trig model.TriggerType) {
	for {
		report, err := l.orch.RunCycle(ctx, trig)
		if err == nil {
			// A cycle with FAILED transfers completed, but the ledger is
			// misbehaving: keep the shared backoff armed so the next
			// admission is gated. Only a clean cycle resets it.
			if report.Failed > 0 {
				delay := l.backoff.Failure()
				l.log.Warn().
					Str("trigger", string(trig)).
					Int("failed", report.Failed).
					Dur("backoff", delay).
					Msg("cycle completed with failed actions")
			} else {
				l.backoff.Success()
			}
			l.mu.Lock()
			l.last = report
			l.mu.Unlock()
			return
		}

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			select {
			case l.fatal <- err:
			default:
			}
			return
		}

		delay := l.backoff.Failure()
		l.log.Warn().Err(err).
			Str("trigger", string(trig)).
			Dur("backoff", delay).
			Msg("cycle failed, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
