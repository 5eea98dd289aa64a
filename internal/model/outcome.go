package model

import "time"

// CostDecision is the governor's verdict on one AI-invocation attempt.
type CostDecision struct {
	CanAfford                   bool   `json:"can_afford"`
	Reason                      string `json:"reason,omitempty"`
	EstimatedCostCents          int    `json:"estimated_cost_cents"`
	RemainingDailyBudgetCents   int    `json:"remaining_daily_budget_cents"`
	RemainingMonthlyBudgetCents int    `json:"remaining_monthly_budget_cents"`
}

// TokenUsage tracks token consumption across AI calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ExtractionOutcome is the engine's sole output, owned by the caller.
type ExtractionOutcome struct {
	SessionID        string             `json:"session_id"`
	Variants         []CandidateVariant `json:"variants"`
	MethodUsed       SourceMethod       `json:"method_used"`
	ConfidenceScore  float64            `json:"confidence_score"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	AICostCents      int                `json:"ai_cost_cents,omitempty"`
	AITokensUsed     int                `json:"ai_tokens_used,omitempty"`
}

// Session is the persisted record of one extraction run, kept alongside
// the cost ledger for spend attribution.
type Session struct {
	ID           string       `json:"id"`
	DealerHint   string       `json:"dealer_hint,omitempty"`
	MethodUsed   SourceMethod `json:"method_used"`
	VariantCount int          `json:"variant_count"`
	CostCents    int          `json:"cost_cents"`
	TokensUsed   int          `json:"tokens_used"`
	CreatedAt    time.Time    `json:"created_at"`
}
