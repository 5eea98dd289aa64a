package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leasingborsen/pricelist-cli/internal/budget"
)

// Config holds the full application configuration.
type Config struct {
	Ledger    LedgerConfig    `yaml:"ledger" mapstructure:"ledger"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Budget    BudgetConfig    `yaml:"budget" mapstructure:"budget"`
	Pricing   budget.Rates    `yaml:"pricing" mapstructure:"pricing"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures the spend ledger backend.
type LedgerConfig struct {
	// Driver is one of "memory", "sqlite", "postgres".
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// BudgetConfig holds the governor's spend caps.
type BudgetConfig struct {
	PerDocumentCents int `yaml:"per_document_cents" mapstructure:"per_document_cents"`
	DailyCents       int `yaml:"daily_cents" mapstructure:"daily_cents"`
	// MonthlyCents defaults to thirty daily caps when unset.
	MonthlyCents int `yaml:"monthly_cents" mapstructure:"monthly_cents"`
}

// Caps converts the config into governor caps.
func (b BudgetConfig) Caps() budget.Caps {
	monthly := b.MonthlyCents
	if monthly == 0 && b.DailyCents > 0 {
		monthly = 30 * b.DailyCents
	}
	return budget.Caps{
		PerDocumentCents: b.PerDocumentCents,
		DailyCents:       b.DailyCents,
		MonthlyCents:     monthly,
	}
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestTimeoutSecs int     `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RuleFile           string  `yaml:"rule_file" mapstructure:"rule_file"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
}

// ServerConfig configures the HTTP extraction endpoint.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEASING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.path", "pricelist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_documents", 4)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("budget.per_document_cents", 50)
	v.SetDefault("budget.daily_cents", 1000)
	v.SetDefault("extract.max_attempts", 3)
	v.SetDefault("extract.request_timeout_secs", 120)
	v.SetDefault("extract.requests_per_second", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given mode depends on. Modes are
// "extract", "serve", and "budget".
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch c.Ledger.Driver {
	case "memory":
	case "sqlite":
		check(c.Ledger.Path != "", "ledger.path is required for the sqlite driver")
	case "postgres":
		check(c.Ledger.DatabaseURL != "", "ledger.database_url is required for the postgres driver")
	default:
		check(false, "ledger.driver must be one of memory, sqlite, postgres")
	}

	switch mode {
	case "extract", "serve":
		check(c.Anthropic.Key != "", "anthropic.key is required")
		check(c.Budget.PerDocumentCents >= 0, "budget.per_document_cents must be >= 0")
		check(c.Budget.DailyCents >= 0, "budget.daily_cents must be >= 0")
		check(c.Batch.MaxConcurrentDocuments >= 1 && c.Batch.MaxConcurrentDocuments <= 32,
			"batch.max_concurrent_documents must be between 1 and 32")
		if mode == "serve" {
			check(c.Server.Port > 0, "server.port must be > 0")
		}
	case "budget":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
