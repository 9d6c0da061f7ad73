// Package scheduler provides the periodic admission source: a cron job that
// triggers a rebalance cycle on a fixed interval as a safety net beside the
// alert feed.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/engine"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// Scheduler manages the cron tasks feeding the run lane.
type Scheduler struct {
	cron *cron.Cron
	lane *engine.Lane
	log  zerolog.Logger
}

// New creates a Scheduler.
func New(lane *engine.Lane, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		lane: lane,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the periodic rebalance check.
func (s *Scheduler) Register(rebalanceCron string) error {
	if _, err := s.cron.AddFunc(rebalanceCron, func() {
		if !s.lane.Trigger(model.TriggerScheduled) {
			s.log.Debug().Msg("periodic trigger coalesced, cycle already pending")
		}
	}); err != nil {
		return fmt.Errorf("register rebalance task: %w", err)
	}
	s.log.Info().Str("schedule", rebalanceCron).Msg("rebalance task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}
