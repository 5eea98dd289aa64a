package hybrid

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasingborsen/pricelist-cli/internal/ai"
	"github.com/leasingborsen/pricelist-cli/internal/budget"
	"github.com/leasingborsen/pricelist-cli/internal/model"
	"github.com/leasingborsen/pricelist-cli/internal/pattern"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
)

// fakeAI scripts the AI pass.
type fakeAI struct {
	result ai.Result
	err    error
	calls  int
}

func (f *fakeAI) Extract(_ context.Context, _ model.Document) (ai.Result, error) {
	f.calls++
	if f.err != nil {
		return ai.Result{}, f.err
	}
	return f.result, nil
}

func aiCandidate(name string, monthly int) model.CandidateVariant {
	return model.CandidateVariant{
		Model:       "AYGO X",
		VariantName: name,
		Horsepower:  72,
		CO2Emission: 110,
		PricingOptions: []model.PricingOption{{
			MileagePerYear: 10000, PeriodMonths: 36, MonthlyPrice: monthly, Deposit: 4999,
		}},
		ConfidenceScore: 0.85,
		SourceMethod:    model.MethodAI,
		ProvenanceTag:   "ai",
	}
}

// Fixtures. The structured one resolves with pattern rules at high
// confidence; the walker one lands in hybrid territory; the prose one
// has nothing for the free pass.
const structuredDoc = `AYGO X PRIVATLEASING
Active 1.0 benzin 72 hk
CO2-udledning: 110 g/km
10.000 km/år 36 mdr. 102.163 kr. 4.999 kr. 2.699 kr./md.
15.000 km/år 36 mdr. 108.463 kr. 4.999 kr. 2.874 kr./md.`

const walkerDoc = `PROACE CITY PRIVATLEASING
Dynamic 1.5 diesel 102 hk
10.000 km/år 48 mdr. 132.163 kr. 4.999 kr. 2.649 kr./md.
Comfort 1.2 benzin 110 hk`

const proseDoc = `Toyota tilbyder attraktive elbiler til private.
Kontakt din forhandler for et godt tilbud paa en ny bil.`

type testRig struct {
	orch   *Orchestrator
	aiEx   *fakeAI
	ledger *budget.MemoryLedger
}

func newRig(t *testing.T, aiEx *fakeAI, caps budget.Caps) *testRig {
	t.Helper()
	ledger := budget.NewMemoryLedger()
	return &testRig{
		orch: New(
			pattern.NewExtractor(nil),
			aiEx,
			budget.NewGovernor(ledger, caps),
			budget.NewEstimator(budget.Rates{}),
			"claude-haiku-4-5-20251001",
		),
		aiEx:   aiEx,
		ledger: ledger,
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	rig := newRig(t, &fakeAI{}, budget.DefaultCaps())
	_, err := rig.orch.Extract(context.Background(), model.Document{Text: " \n "})
	require.Error(t, err)
	assert.Equal(t, resilience.KindValidation, resilience.KindOf(err))
}

func TestExtractConfidentPatternSkipsAI(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{result: ai.Result{Candidates: []model.CandidateVariant{aiCandidate("Active", 2699)}}}
	rig := newRig(t, aiEx, budget.DefaultCaps())

	outcome, err := rig.orch.Extract(context.Background(), model.Document{Text: structuredDoc})
	require.NoError(t, err)

	assert.Equal(t, model.MethodPattern, outcome.MethodUsed)
	assert.Zero(t, outcome.AICostCents)
	assert.Zero(t, aiEx.calls)
	require.NotEmpty(t, outcome.Variants)
	assert.Equal(t, "AYGO X", outcome.Variants[0].Model)
}

func TestExtractProseGoesToAI(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{result: ai.Result{
		Candidates: []model.CandidateVariant{aiCandidate("Active 72 hk", 2699)},
		Usage:      model.TokenUsage{InputTokens: 5000, OutputTokens: 800},
		CostCents:  3,
	}}
	rig := newRig(t, aiEx, budget.DefaultCaps())

	outcome, err := rig.orch.Extract(context.Background(), model.Document{Text: proseDoc, DealerHint: "Toyota Hvidovre"})
	require.NoError(t, err)

	assert.Equal(t, model.MethodAI, outcome.MethodUsed)
	assert.Equal(t, 1, aiEx.calls)
	assert.Equal(t, 3, outcome.AICostCents)
	assert.Equal(t, 5800, outcome.AITokensUsed)

	// The actual spend landed in the ledger, with the session.
	daily, err := rig.ledger.DailyTotalCents(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, daily)

	sessions, err := rig.ledger.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, model.MethodAI, sessions[0].MethodUsed)
	assert.Equal(t, "Toyota Hvidovre", sessions[0].DealerHint)
}

func TestExtractHybridMergesBothPasses(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{result: ai.Result{
		Candidates: []model.CandidateVariant{{
			Model:       "PROACE CITY",
			VariantName: "Comfort 1.2 benzin 110 hk",
			Horsepower:  110,
			PricingOptions: []model.PricingOption{{
				MileagePerYear: 10000, PeriodMonths: 48, MonthlyPrice: 2749, Deposit: 4999,
			}},
			ConfidenceScore: 0.85,
			SourceMethod:    model.MethodAI,
			ProvenanceTag:   "ai",
		}},
		CostCents: 2,
	}}
	rig := newRig(t, aiEx, budget.DefaultCaps())

	outcome, err := rig.orch.Extract(context.Background(), model.Document{Text: walkerDoc})
	require.NoError(t, err)

	assert.Equal(t, model.MethodHybrid, outcome.MethodUsed)
	assert.Equal(t, 1, aiEx.calls)

	// The placeholder-only walker variant gained real pricing from the
	// AI side and survives the confidence floor.
	var comfort *model.CandidateVariant
	for i := range outcome.Variants {
		if outcome.Variants[i].Horsepower == 110 {
			comfort = &outcome.Variants[i]
		}
	}
	require.NotNil(t, comfort)
	assert.Positive(t, comfort.RealPricingCount())
}

func TestExtractBudgetDenialFallsBackToPattern(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{result: ai.Result{Candidates: []model.CandidateVariant{aiCandidate("Comfort", 2749)}}}
	rig := newRig(t, aiEx, budget.Caps{PerDocumentCents: 50, DailyCents: 10, MonthlyCents: 10})
	require.NoError(t, rig.ledger.RecordSpend(context.Background(), time.Now(), 10))

	outcome, err := rig.orch.Extract(context.Background(), model.Document{Text: walkerDoc})
	require.NoError(t, err)

	assert.Equal(t, model.MethodPattern, outcome.MethodUsed)
	assert.Zero(t, aiEx.calls)
	assert.Zero(t, outcome.AICostCents)
}

func TestExtractBudgetDenialWithoutFallbackFails(t *testing.T) {
	t.Parallel()

	rig := newRig(t, &fakeAI{}, budget.Caps{PerDocumentCents: 50, DailyCents: 10, MonthlyCents: 10})
	require.NoError(t, rig.ledger.RecordSpend(context.Background(), time.Now(), 10))

	_, err := rig.orch.Extract(context.Background(), model.Document{Text: proseDoc})
	require.Error(t, err)
	assert.Equal(t, resilience.KindCostLimit, resilience.KindOf(err))
}

func TestExtractAIFailureFallsBackToPattern(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{err: resilience.NewProvider(eris.New("api down"), false)}
	rig := newRig(t, aiEx, budget.DefaultCaps())

	outcome, err := rig.orch.Extract(context.Background(), model.Document{Text: walkerDoc})
	require.NoError(t, err)

	assert.Equal(t, model.MethodPattern, outcome.MethodUsed)
	assert.Equal(t, 1, aiEx.calls)

	// The reservation was released: a full-estimate session authorizes.
	g := budget.NewGovernor(rig.ledger, budget.DefaultCaps())
	decision, err := g.Authorize(context.Background(), "probe", 50)
	require.NoError(t, err)
	assert.True(t, decision.CanAfford)
}

func TestExtractAIFailureWithoutFallbackPropagates(t *testing.T) {
	t.Parallel()

	aiEx := &fakeAI{err: resilience.NewProvider(eris.New("api down"), false)}
	rig := newRig(t, aiEx, budget.DefaultCaps())

	_, err := rig.orch.Extract(context.Background(), model.Document{Text: proseDoc})
	require.Error(t, err)
	assert.Equal(t, resilience.KindProvider, resilience.KindOf(err))
}

func TestChooseStrategy(t *testing.T) {
	t.Parallel()

	confident := pattern.Result{
		Candidates: []model.CandidateVariant{{VariantName: "Active"}},
		Confidence: 0.9,
	}
	moderate := pattern.Result{
		Candidates: []model.CandidateVariant{{VariantName: "Active"}},
		Confidence: 0.6,
	}
	empty := pattern.Result{}

	cases := []struct {
		name    string
		profile model.StructureProfile
		result  pattern.Result
		want    model.Strategy
	}{
		{"confident pattern wins regardless of profile",
			model.StructureProfile{RecommendedStrategy: model.StrategyAI}, confident, model.StrategyPattern},
		{"ai recommendation with weak pattern",
			model.StructureProfile{RecommendedStrategy: model.StrategyAI}, moderate, model.StrategyAI},
		{"hybrid recommendation with candidates",
			model.StructureProfile{RecommendedStrategy: model.StrategyHybrid}, moderate, model.StrategyHybrid},
		{"hybrid recommendation without candidates",
			model.StructureProfile{RecommendedStrategy: model.StrategyHybrid}, empty, model.StrategyAI},
		{"useful confidence forces hybrid",
			model.StructureProfile{RecommendedStrategy: model.StrategyPattern}, moderate, model.StrategyHybrid},
		{"nothing useful goes to ai",
			model.StructureProfile{RecommendedStrategy: model.StrategyPattern}, empty, model.StrategyAI},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, chooseStrategy(tc.profile, tc.result))
		})
	}
}

func TestFinalConfidence(t *testing.T) {
	t.Parallel()

	variants := []model.CandidateVariant{
		{ConfidenceScore: 0.8},
		{ConfidenceScore: 0.6},
	}

	assert.Zero(t, finalConfidence(nil, model.MethodPattern, 0))

	base := finalConfidence(variants, model.MethodPattern, 0)
	assert.InDelta(t, 0.7, base, 0.0001)

	withAI := finalConfidence(variants, model.MethodAI, 0)
	assert.InDelta(t, 0.8, withAI, 0.0001)

	withHybrid := finalConfidence(variants, model.MethodHybrid, 0)
	assert.InDelta(t, 0.75, withHybrid, 0.0001)

	// Two variants against an estimate of two meets the coverage target.
	withCoverage := finalConfidence(variants, model.MethodPattern, 2)
	assert.InDelta(t, 0.8, withCoverage, 0.0001)

	// Far below the estimate, no bonus.
	withoutCoverage := finalConfidence(variants, model.MethodPattern, 10)
	assert.InDelta(t, 0.7, withoutCoverage, 0.0001)

	// Capped.
	high := []model.CandidateVariant{{ConfidenceScore: 0.98}}
	assert.InDelta(t, 1.0, finalConfidence(high, model.MethodAI, 1), 0.0001)
}
