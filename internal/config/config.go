package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Gateway struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"gateway"`
	Treasury struct {
		GovernanceSymbol string                  `yaml:"governance_symbol"`
		Assets           []model.AssetDescriptor `yaml:"assets"`
		TolerancePercent float64                 `yaml:"tolerance_percent"`
	} `yaml:"treasury"`
	Cache struct {
		MaxAgeSeconds int `yaml:"max_age_seconds"`
	} `yaml:"cache"`
	Alerts struct {
		MaxAgeSeconds int    `yaml:"max_age_seconds"`
		LedgerPath    string `yaml:"ledger_path"`
	} `yaml:"alerts"`
	Schedule struct {
		RebalanceCron string `yaml:"rebalance_cron"`
	} `yaml:"schedule"`
	Retry struct {
		BaseSeconds int `yaml:"base_seconds"`
		CapSeconds  int `yaml:"cap_seconds"`
	} `yaml:"retry"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("GOVERNANCE_SYMBOL"); v != "" {
		cfg.Treasury.GovernanceSymbol = v
	}
	if v := os.Getenv("TOLERANCE_PERCENT"); v != "" {
		if tol, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Treasury.TolerancePercent = tol
		}
	}
	if v := os.Getenv("REBALANCE_CRON"); v != "" {
		cfg.Schedule.RebalanceCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("ALERT_LEDGER_PATH"); v != "" {
		cfg.Alerts.LedgerPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Treasury.GovernanceSymbol == "" {
		cfg.Treasury.GovernanceSymbol = "LYNX"
	}
	// 0 means unset; zero-tolerance operation is not supported, any drift
	// rounding would otherwise trigger constant dust corrections.
	if cfg.Treasury.TolerancePercent == 0 {
		cfg.Treasury.TolerancePercent = 5
	}
	if cfg.Cache.MaxAgeSeconds == 0 {
		cfg.Cache.MaxAgeSeconds = 60
	}
	if cfg.Alerts.MaxAgeSeconds == 0 {
		cfg.Alerts.MaxAgeSeconds = 300
	}
	if cfg.Schedule.RebalanceCron == "" {
		cfg.Schedule.RebalanceCron = "0 0 * * * *"
	}
	if cfg.Retry.BaseSeconds == 0 {
		cfg.Retry.BaseSeconds = 1
	}
	if cfg.Retry.CapSeconds == 0 {
		cfg.Retry.CapSeconds = 300
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Treasury.Assets) == 0 {
		return fmt.Errorf("treasury.assets must not be empty")
	}
	for _, a := range c.Treasury.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("treasury.assets: asset with empty symbol")
		}
		if a.Decimals < 0 {
			return fmt.Errorf("treasury.assets: %s has negative decimals", a.Symbol)
		}
	}
	if c.Treasury.TolerancePercent <= 0 || c.Treasury.TolerancePercent >= 100 {
		return fmt.Errorf("treasury.tolerance_percent must be in (0, 100), got %v", c.Treasury.TolerancePercent)
	}
	if c.Cache.MaxAgeSeconds < 0 {
		return fmt.Errorf("cache.max_age_seconds must be non-negative")
	}
	if c.Retry.CapSeconds < c.Retry.BaseSeconds {
		return fmt.Errorf("retry.cap_seconds must be >= retry.base_seconds")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port, got %d", c.Server.Port)
	}
	return nil
}
