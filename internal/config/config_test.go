package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "LYNX", cfg.Treasury.GovernanceSymbol)
	assert.Equal(t, 5.0, cfg.Treasury.TolerancePercent)
	assert.Equal(t, 60, cfg.Cache.MaxAgeSeconds)
	assert.Equal(t, 300, cfg.Alerts.MaxAgeSeconds)
	assert.Equal(t, 1, cfg.Retry.BaseSeconds)
	assert.Equal(t, 300, cfg.Retry.CapSeconds)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
treasury:
  governance_symbol: "GOV"
  tolerance_percent: 2.5
server:
  port: 9090
`)
	t.Setenv("GOVERNANCE_SYMBOL", "LYNX2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "LYNX2", cfg.Treasury.GovernanceSymbol, "env wins over file")
	assert.Equal(t, 2.5, cfg.Treasury.TolerancePercent)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
treasury:
  assets:
    - symbol: "HBAR"
      ledger_id: "0.0.2"
      decimals: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Treasury.TolerancePercent = 100
	assert.Error(t, cfg.Validate())

	cfg.Treasury.TolerancePercent = -1
	assert.Error(t, cfg.Validate())

	cfg.Treasury.TolerancePercent = 5
	cfg.Treasury.Assets = nil
	assert.Error(t, cfg.Validate())
}

func TestLoad_ZeroToleranceMeansDefault(t *testing.T) {
	path := writeConfig(t, `
treasury:
  tolerance_percent: 0
  assets:
    - symbol: "HBAR"
      ledger_id: "0.0.2"
      decimals: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Treasury.TolerancePercent)
	assert.NoError(t, cfg.Validate())
}
