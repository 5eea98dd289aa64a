// Package budget enforces AI spend limits. An estimator prices a
// document before any request is made, a ledger persists what was
// actually spent, and the governor decides whether a session may
// proceed under the configured caps.
package budget

import (
	"math"
)

// Rates holds per-model token pricing in USD per million tokens.
type Rates struct {
	Models map[string]ModelRate `yaml:"models" mapstructure:"models"`
}

// ModelRate prices one model.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// DefaultRates returns the built-in pricing table.
func DefaultRates() Rates {
	return Rates{Models: map[string]ModelRate{
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
	}}
}

// Token estimation constants. Danish price-list text runs close to four
// characters per token; output is bounded by the reply schema.
const (
	charsPerToken        = 4
	promptOverheadTokens = 700
	outputTokensPerCall  = 2_000
)

// Estimator prices extraction calls before they happen.
type Estimator struct {
	rates Rates
}

// NewEstimator creates an Estimator. Empty rates get the defaults.
func NewEstimator(rates Rates) *Estimator {
	if len(rates.Models) == 0 {
		rates = DefaultRates()
	}
	return &Estimator{rates: rates}
}

// DocumentCostCents estimates the cost of extracting a document of the
// given size in the given number of calls. Rounds up; the governor must
// never under-reserve. Unknown models estimate at the most expensive
// known rate so they are gated, not waved through.
func (e *Estimator) DocumentCostCents(model string, textLen, calls int) int {
	if calls < 1 {
		calls = 1
	}

	rate, ok := e.rates.Models[model]
	if !ok {
		rate = e.mostExpensive()
	}

	inputTokens := float64(textLen)/charsPerToken + float64(calls*promptOverheadTokens)
	outputTokens := float64(calls * outputTokensPerCall)

	usd := (inputTokens/1e6)*rate.Input + (outputTokens/1e6)*rate.Output
	return ceilCents(usd)
}

// ActualCostCents prices real token usage after a call completed.
func (e *Estimator) ActualCostCents(model string, inputTokens, outputTokens int64) int {
	rate, ok := e.rates.Models[model]
	if !ok {
		return 0
	}
	usd := (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
	return ceilCents(usd)
}

// ceilCents converts a USD amount to whole cents, rounding up. The
// amount is snapped to a nanodollar first so a value that is exact in
// cents does not ceil up a cent on float drift.
func ceilCents(usd float64) int {
	return int(math.Ceil(math.Round(usd*1e9) / 1e7))
}

func (e *Estimator) mostExpensive() ModelRate {
	var max ModelRate
	for _, r := range e.rates.Models {
		if r.Input+r.Output > max.Input+max.Output {
			max = r
		}
	}
	return max
}
