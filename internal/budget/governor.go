package budget

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leasingborsen/pricelist-cli/internal/model"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
)

// Caps are the spend limits the governor enforces, all in USD cents.
// Zero disables the corresponding cap.
type Caps struct {
	PerDocumentCents int `yaml:"per_document_cents" mapstructure:"per_document_cents"`
	DailyCents       int `yaml:"daily_cents" mapstructure:"daily_cents"`
	MonthlyCents     int `yaml:"monthly_cents" mapstructure:"monthly_cents"`
}

// DefaultCaps match a small dealer-ingestion workload.
func DefaultCaps() Caps {
	return Caps{
		PerDocumentCents: 50,
		DailyCents:       1_000,
		MonthlyCents:     30_000,
	}
}

// Governor gates AI spending against a ledger. Estimates for in-flight
// sessions are reserved so concurrent extractions cannot jointly exceed
// a cap that each one individually fits under.
type Governor struct {
	ledger Ledger
	caps   Caps
	now    func() time.Time

	mu       sync.Mutex
	reserved map[string]int
}

// NewGovernor builds a governor over the ledger.
func NewGovernor(ledger Ledger, caps Caps) *Governor {
	return &Governor{
		ledger:   ledger,
		caps:     caps,
		now:      time.Now,
		reserved: make(map[string]int),
	}
}

// Authorize decides whether a session may spend the estimated amount.
// Checks run per document, then daily, then monthly; the first exceeded
// cap names the denial reason. An approval reserves the estimate until
// Commit or Release.
func (g *Governor) Authorize(ctx context.Context, sessionID string, estimateCents int) (model.CostDecision, error) {
	at := g.now()

	dailySpent, err := g.ledger.DailyTotalCents(ctx, at)
	if err != nil {
		return model.CostDecision{}, eris.Wrap(err, "budget: daily total")
	}
	monthlySpent, err := g.ledger.MonthlyTotalCents(ctx, at)
	if err != nil {
		return model.CostDecision{}, eris.Wrap(err, "budget: monthly total")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	inFlight := 0
	for _, cents := range g.reserved {
		inFlight += cents
	}

	decision := model.CostDecision{
		EstimatedCostCents:          estimateCents,
		RemainingDailyBudgetCents:   remaining(g.caps.DailyCents, dailySpent+inFlight),
		RemainingMonthlyBudgetCents: remaining(g.caps.MonthlyCents, monthlySpent+inFlight),
	}

	switch {
	case g.caps.PerDocumentCents > 0 && estimateCents > g.caps.PerDocumentCents:
		decision.Reason = "per-document cap exceeded"
	case g.caps.DailyCents > 0 && dailySpent+inFlight+estimateCents > g.caps.DailyCents:
		decision.Reason = "daily cap exceeded"
	case g.caps.MonthlyCents > 0 && monthlySpent+inFlight+estimateCents > g.caps.MonthlyCents:
		decision.Reason = "monthly cap exceeded"
	default:
		decision.CanAfford = true
		g.reserved[sessionID] = estimateCents
	}

	if !decision.CanAfford {
		zap.L().Info("ai spend denied",
			zap.String("session_id", sessionID),
			zap.String("reason", decision.Reason),
			zap.Int("estimate_cents", estimateCents),
			zap.Int("daily_spent_cents", dailySpent),
			zap.Int("monthly_spent_cents", monthlySpent),
		)
	}

	return decision, nil
}

// Commit replaces a session's reservation with its actual cost in the
// ledger and records the session itself.
func (g *Governor) Commit(ctx context.Context, session model.Session) error {
	g.mu.Lock()
	delete(g.reserved, session.ID)
	g.mu.Unlock()

	if session.CostCents > 0 {
		if err := g.ledger.RecordSpend(ctx, g.now(), session.CostCents); err != nil {
			return eris.Wrap(err, "budget: record spend")
		}
	}
	return eris.Wrap(g.ledger.RecordSession(ctx, session), "budget: record session")
}

// Release drops a reservation without charging anything, used when the
// AI pass failed before spending.
func (g *Governor) Release(sessionID string) {
	g.mu.Lock()
	delete(g.reserved, sessionID)
	g.mu.Unlock()
}

// ErrDenied converts a denial into the cost-limit error the retry
// taxonomy treats as terminal.
func ErrDenied(decision model.CostDecision) error {
	return resilience.NewCostLimit("budget: " + decision.Reason)
}

func remaining(limit, spent int) int {
	if limit <= 0 {
		return 0
	}
	if spent >= limit {
		return 0
	}
	return limit - spent
}
