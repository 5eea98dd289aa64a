package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "pricelist.db", cfg.Ledger.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentDocuments)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 50, cfg.Budget.PerDocumentCents)
	assert.Equal(t, 1000, cfg.Budget.DailyCents)
	assert.Equal(t, 3, cfg.Extract.MaxAttempts)
	assert.Equal(t, 120, cfg.Extract.RequestTimeoutSecs)
	assert.InDelta(t, 1.0, cfg.Extract.RequestsPerSecond, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
ledger:
  driver: postgres
  database_url: postgres://localhost/leasing
log:
  level: debug
  format: console
server:
  port: 9090
budget:
  daily_cents: 200
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Budget.DailyCents)
	// Defaults still apply for unset values
	assert.Equal(t, 50, cfg.Budget.PerDocumentCents)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
ledger:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEASING_LEDGER_DRIVER", "memory")
	t.Setenv("LEASING_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "memory", cfg.Ledger.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEASING_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestBudgetCapsMonthlyDefault(t *testing.T) {
	b := BudgetConfig{PerDocumentCents: 50, DailyCents: 100}
	caps := b.Caps()
	assert.Equal(t, 3000, caps.MonthlyCents)

	b.MonthlyCents = 500
	assert.Equal(t, 500, b.Caps().MonthlyCents)
}

// validDefaults returns a Config populated like Load's defaults.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Ledger.Driver = "sqlite"
	cfg.Ledger.Path = "pricelist.db"
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Budget.PerDocumentCents = 50
	cfg.Budget.DailyCents = 1000
	cfg.Batch.MaxConcurrentDocuments = 4
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateExtract_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("extract"))
}

func TestValidateExtract_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = ""

	err := cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateLedgerDrivers(t *testing.T) {
	cfg := validDefaults()

	cfg.Ledger.Driver = "postgres"
	cfg.Ledger.DatabaseURL = ""
	err := cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.database_url is required")

	cfg.Ledger.DatabaseURL = "postgres://localhost/leasing"
	assert.NoError(t, cfg.Validate("extract"))

	cfg.Ledger.Driver = "bolt"
	err = cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.driver must be one of")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentDocuments = 0
	err := cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_documents must be between 1 and 32")

	cfg.Batch.MaxConcurrentDocuments = 33
	err = cfg.Validate("extract")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrentDocuments = 32
	assert.NoError(t, cfg.Validate("extract"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
