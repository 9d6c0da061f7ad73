package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/alert"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/cache"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/config"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/engine"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/ledger"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/logger"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/recorder"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/registry"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/retry"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/scheduler"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/server"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{Level: "info", Pretty: true})

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	log.Info().Msg("lynx balancer starting")

	reg, err := registry.New(cfg.Treasury.Assets, cfg.Treasury.GovernanceSymbol)
	if err != nil {
		log.Fatal().Err(err).Msg("init token registry")
	}

	// Ledger client: real gateway when configured, mock pool for development.
	var client ledger.Client
	if cfg.Gateway.BaseURL != "" {
		client = ledger.NewGatewayClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, reg)
	} else {
		client = ledger.NewMock()
	}
	log.Info().Str("ledger", client.Name()).Msg("ledger client ready")

	balances := cache.New(client, log)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	alertMaxAge := time.Duration(cfg.Alerts.MaxAgeSeconds) * time.Second
	var fingerprints alert.Ledger
	if cfg.Alerts.LedgerPath != "" {
		sl, err := alert.NewSQLiteLedger(cfg.Alerts.LedgerPath, 2*alertMaxAge)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite alert ledger failed, using memory")
			fingerprints = alert.NewMemoryLedger(2 * alertMaxAge)
		} else {
			fingerprints = sl
			defer sl.Close()
		}
	} else {
		fingerprints = alert.NewMemoryLedger(2 * alertMaxAge)
	}

	orch := engine.NewOrchestrator(reg, balances, client, rec, cfg.Treasury.TolerancePercent, log)
	backoff := retry.New(
		time.Duration(cfg.Retry.BaseSeconds)*time.Second,
		time.Duration(cfg.Retry.CapSeconds)*time.Second,
	)
	lane := engine.NewLane(orch, backoff, log)
	gate := alert.NewGate(fingerprints, alertMaxAge, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lane.Start(ctx)

	sched := scheduler.New(lane, log)
	if err := sched.Register(cfg.Schedule.RebalanceCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		Log:            log,
		Cache:          balances,
		Lane:           lane,
		Gate:           gate,
		Recorder:       rec,
		SnapshotMaxAge: time.Duration(cfg.Cache.MaxAgeSeconds) * time.Second,
	})
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("diagnostics server")
		}
	}()

	// Fixed startup pass so the pool is verified before the first alert.
	lane.Trigger(model.TriggerStartup)

	log.Info().Msg("lynx balancer running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received")
	case err := <-lane.Fatal():
		log.Error().Err(err).Msg("fatal configuration error")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	lane.Wait()

	log.Info().Msg("lynx balancer stopped")
}
