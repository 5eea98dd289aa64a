// Package hybrid orchestrates the extraction pipeline: analyze the
// document, run the free pattern pass, decide whether the AI pass is
// worth its cost, and merge whatever was produced.
package hybrid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasingborsen/pricelist-cli/internal/ai"
	"github.com/leasingborsen/pricelist-cli/internal/analyzer"
	"github.com/leasingborsen/pricelist-cli/internal/budget"
	"github.com/leasingborsen/pricelist-cli/internal/merge"
	"github.com/leasingborsen/pricelist-cli/internal/model"
	"github.com/leasingborsen/pricelist-cli/internal/pattern"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
)

// state names the orchestrator's phases, for logging and tests.
type state string

const (
	stateAnalyzing state = "analyzing"
	statePattern   state = "pattern_attempt"
	stateDeciding  state = "strategy_decision"
	stateAIPass    state = "ai_pass"
	stateMerging   state = "merging"
	stateDone      state = "done"
	stateFailed    state = "failed"
)

// Confidence thresholds steering the strategy decision.
const (
	patternSufficientConfidence = 0.8
	patternUsefulConfidence     = 0.3
)

// AIExtractor is the slice of the AI package the orchestrator needs,
// an interface so tests can script it.
type AIExtractor interface {
	Extract(ctx context.Context, doc model.Document) (ai.Result, error)
}

// Orchestrator wires the passes together. Safe for concurrent use; all
// per-run data lives on the stack.
type Orchestrator struct {
	patternEx *pattern.Extractor
	aiEx      AIExtractor
	governor  *budget.Governor
	estimator *budget.Estimator
	modelID   string
}

// New builds an orchestrator. Pattern extractor, governor and estimator
// must be non-nil; aiEx may be nil to run pattern-only.
func New(patternEx *pattern.Extractor, aiEx AIExtractor, governor *budget.Governor, estimator *budget.Estimator, modelID string) *Orchestrator {
	return &Orchestrator{
		patternEx: patternEx,
		aiEx:      aiEx,
		governor:  governor,
		estimator: estimator,
		modelID:   modelID,
	}
}

// Extract runs one document through the pipeline.
func (o *Orchestrator) Extract(ctx context.Context, doc model.Document) (*model.ExtractionOutcome, error) {
	if doc.Empty() {
		return nil, resilience.NewValidation("hybrid: empty document")
	}

	sessionID := uuid.New().String()
	started := time.Now()
	log := zap.L().With(zap.String("session_id", sessionID))

	log.Info("extraction started",
		zap.String("state", string(stateAnalyzing)),
		zap.Int("text_len", len(doc.Text)),
		zap.String("dealer_hint", doc.DealerHint))
	profile := analyzer.Analyze(doc.Text)

	log.Debug("pattern pass", zap.String("state", string(statePattern)))
	patternResult := o.patternEx.Extract(doc.Text)

	strategy, decision, err := o.decide(ctx, sessionID, doc, profile, patternResult)
	if err != nil {
		log.Warn("extraction failed", zap.String("state", string(stateFailed)), zap.Error(err))
		return nil, err
	}
	log.Info("strategy decided",
		zap.String("state", string(stateDeciding)),
		zap.String("strategy", string(strategy)),
		zap.Float64("pattern_confidence", patternResult.Confidence),
		zap.Int("pattern_candidates", len(patternResult.Candidates)),
		zap.Int("estimated_vehicles", profile.EstimatedVehicleCount))

	var aiResult ai.Result
	usedAI := false
	if strategy == model.StrategyAI || strategy == model.StrategyHybrid {
		log.Debug("ai pass", zap.String("state", string(stateAIPass)))
		aiResult, err = o.aiEx.Extract(ctx, doc)
		if err != nil {
			o.governor.Release(sessionID)
			if len(patternResult.Candidates) == 0 {
				log.Warn("extraction failed", zap.String("state", string(stateFailed)), zap.Error(err))
				return nil, err
			}
			// The free pass still produced something usable.
			log.Warn("ai pass failed, falling back to pattern results", zap.Error(err))
			strategy = model.StrategyPattern
		} else {
			usedAI = true
		}
	}

	log.Debug("merging", zap.String("state", string(stateMerging)))
	var variants []model.CandidateVariant
	methodUsed := model.MethodPattern
	switch strategy {
	case model.StrategyPattern:
		variants = merge.MergeSingle(patternResult.Candidates)
	case model.StrategyAI:
		variants = merge.MergeSingle(aiResult.Candidates)
		methodUsed = model.MethodAI
	case model.StrategyHybrid:
		variants = merge.MergeHybrid(patternResult.Candidates, aiResult.Candidates)
		methodUsed = model.MethodHybrid
	}
	variants = merge.Finalize(variants)

	outcome := &model.ExtractionOutcome{
		SessionID:        sessionID,
		Variants:         variants,
		MethodUsed:       methodUsed,
		ConfidenceScore:  finalConfidence(variants, methodUsed, profile.EstimatedVehicleCount),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
	if usedAI {
		outcome.AICostCents = aiResult.CostCents
		outcome.AITokensUsed = aiResult.Usage.Total()
	}

	session := model.Session{
		ID:           sessionID,
		DealerHint:   doc.DealerHint,
		MethodUsed:   methodUsed,
		VariantCount: len(variants),
		CostCents:    outcome.AICostCents,
		TokensUsed:   outcome.AITokensUsed,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.governor.Commit(ctx, session); err != nil {
		log.Error("session commit failed", zap.Error(err))
	}

	log.Info("extraction finished",
		zap.String("state", string(stateDone)),
		zap.String("method", string(methodUsed)),
		zap.Int("variants", len(variants)),
		zap.Float64("confidence", outcome.ConfidenceScore),
		zap.Int("ai_cost_cents", outcome.AICostCents),
		zap.Int64("elapsed_ms", outcome.ProcessingTimeMs),
		zap.Int("remaining_daily_cents", decision.RemainingDailyBudgetCents))

	return outcome, nil
}

// decide picks the strategy and, when AI is on the table, clears it
// with the governor. A denial with usable pattern results degrades to
// pattern-only; a denial with nothing to fall back on is terminal.
func (o *Orchestrator) decide(ctx context.Context, sessionID string, doc model.Document, profile model.StructureProfile, patternResult pattern.Result) (model.Strategy, model.CostDecision, error) {
	strategy := chooseStrategy(profile, patternResult)
	if strategy == model.StrategyPattern || o.aiEx == nil {
		return model.StrategyPattern, model.CostDecision{}, nil
	}

	calls := (len(doc.Text) / 12_000) + 1
	estimate := o.estimator.DocumentCostCents(o.modelID, len(doc.Text), calls)

	decision, err := o.governor.Authorize(ctx, sessionID, estimate)
	if err != nil {
		return "", model.CostDecision{}, err
	}
	if !decision.CanAfford {
		if len(patternResult.Candidates) > 0 {
			return model.StrategyPattern, decision, nil
		}
		return "", decision, budget.ErrDenied(decision)
	}
	return strategy, decision, nil
}

// chooseStrategy is the pure decision rule.
func chooseStrategy(profile model.StructureProfile, patternResult pattern.Result) model.Strategy {
	hasCandidates := len(patternResult.Candidates) > 0

	switch {
	case hasCandidates && patternResult.Confidence > patternSufficientConfidence:
		return model.StrategyPattern
	case profile.RecommendedStrategy == model.StrategyAI:
		return model.StrategyAI
	case profile.RecommendedStrategy == model.StrategyHybrid || patternResult.Confidence > patternUsefulConfidence:
		if hasCandidates {
			return model.StrategyHybrid
		}
		return model.StrategyAI
	default:
		return model.StrategyAI
	}
}

// coverageTarget is the fraction of the analyzer's vehicle estimate
// that must be present for the coverage bonus.
const coverageTarget = 0.7

// finalConfidence grades the outcome: the mean variant confidence, a
// method bonus, and a coverage bonus when the result set is at least
// 70% of the analyzer's vehicle estimate. Capped at 1.0.
func finalConfidence(variants []model.CandidateVariant, method model.SourceMethod, estimatedVehicles int) float64 {
	if len(variants) == 0 {
		return 0
	}

	var sum float64
	for _, v := range variants {
		sum += v.ConfidenceScore
	}
	score := sum / float64(len(variants))

	switch method {
	case model.MethodAI:
		score += 0.1
	case model.MethodHybrid:
		score += 0.05
	}

	if estimatedVehicles > 0 && float64(len(variants)) >= coverageTarget*float64(estimatedVehicles) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
