package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leasingborsen/pricelist-cli/internal/ai"
	"github.com/leasingborsen/pricelist-cli/internal/budget"
	"github.com/leasingborsen/pricelist-cli/internal/hybrid"
	"github.com/leasingborsen/pricelist-cli/internal/pattern"
	anthropicpkg "github.com/leasingborsen/pricelist-cli/pkg/anthropic"
)

// engine bundles the orchestrator with the ledger it must close.
type engine struct {
	orch   *hybrid.Orchestrator
	ledger budget.Ledger
}

func (e *engine) Close() {
	_ = e.ledger.Close()
}

// initLedger opens the spend ledger configured by ledger.driver.
func initLedger(ctx context.Context) (budget.Ledger, error) {
	switch cfg.Ledger.Driver {
	case "memory":
		return budget.NewMemoryLedger(), nil
	case "sqlite":
		ledger, err := budget.NewSQLite(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		if err := ledger.Migrate(ctx); err != nil {
			ledger.Close()
			return nil, err
		}
		return ledger, nil
	case "postgres":
		ledger, err := budget.NewPostgres(ctx, cfg.Ledger.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := ledger.Migrate(ctx); err != nil {
			ledger.Close()
			return nil, err
		}
		return ledger, nil
	default:
		return nil, eris.Errorf("unsupported ledger driver %q", cfg.Ledger.Driver)
	}
}

// initEngine wires the full extraction stack from config.
func initEngine(ctx context.Context) (*engine, error) {
	ledger, err := initLedger(ctx)
	if err != nil {
		return nil, err
	}

	registry := pattern.DefaultRegistry()
	if cfg.Extract.RuleFile != "" {
		registry, err = pattern.LoadRegistry(cfg.Extract.RuleFile)
		if err != nil {
			ledger.Close()
			return nil, err
		}
	}

	aiEx := ai.NewExtractor(anthropicpkg.NewClient(cfg.Anthropic.Key), ai.Options{
		Model:             cfg.Anthropic.Model,
		MaxAttempts:       cfg.Extract.MaxAttempts,
		RequestTimeout:    time.Duration(cfg.Extract.RequestTimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Extract.RequestsPerSecond,
	})

	return &engine{
		orch: hybrid.New(
			pattern.NewExtractor(registry),
			aiEx,
			budget.NewGovernor(ledger, cfg.Budget.Caps()),
			budget.NewEstimator(cfg.Pricing),
			cfg.Anthropic.Model,
		),
		ledger: ledger,
	}, nil
}
