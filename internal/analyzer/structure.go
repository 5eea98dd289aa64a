// Package analyzer inspects raw price-list text and profiles how
// table-like it is, so the orchestrator can pick an extraction strategy
// before spending anything.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// Danish price-list tables repeat a small vocabulary of column headers.
var tableHeaderTokens = []string{
	"km/år",
	"mdr",
	"måneder",
	"pr. måned",
	"kr./md",
	"ydelse",
	"førstegangsydelse",
	"udbetaling",
	"totalpris",
	"totalomkostninger",
}

// priceTokenRe matches Danish thousands-formatted amounts ("2.699", "102.163").
var priceTokenRe = regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})+\b`)

// optionsPerVehicle is the rough number of price tokens one variant row
// contributes (monthly, deposit, total, and one spec figure).
const optionsPerVehicle = 4

// Analyze profiles the document text. Pure, never fails: unstructured
// text simply yields an AI recommendation.
func Analyze(text string) model.StructureProfile {
	lines := strings.Split(text, "\n")

	headerLines := 0
	headerSeen := make(map[string]int)
	numericHeavy := 0
	nonEmpty := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++

		lower := strings.ToLower(trimmed)
		tokens := 0
		for _, h := range tableHeaderTokens {
			if strings.Contains(lower, h) {
				tokens++
			}
		}
		if tokens >= 2 {
			headerLines++
			headerSeen[lower]++
		}

		if isNumericHeavy(trimmed) {
			numericHeavy++
		}
	}

	repeatedHeaders := false
	for _, n := range headerSeen {
		if n > 1 {
			repeatedHeaders = true
			break
		}
	}

	numericRatio := 0.0
	if nonEmpty > 0 {
		numericRatio = float64(numericHeavy) / float64(nonEmpty)
	}

	priceTokens := PriceTokenCount(text)
	estimated := priceTokens / optionsPerVehicle

	profile := model.StructureProfile{
		HasTableFormat:        headerLines > 0 && (repeatedHeaders || headerLines >= 2),
		IsStructured:          headerLines > 0 && numericRatio >= 0.15,
		EstimatedVehicleCount: estimated,
	}

	switch {
	case profile.IsStructured && profile.HasTableFormat:
		profile.RecommendedStrategy = model.StrategyPattern
	case profile.IsStructured || priceTokens > 0:
		profile.RecommendedStrategy = model.StrategyHybrid
	default:
		profile.RecommendedStrategy = model.StrategyAI
	}

	return profile
}

// PriceTokenCount counts Danish-formatted price tokens in text. Shared
// with the AI chunker's relevance filter.
func PriceTokenCount(text string) int {
	return len(priceTokenRe.FindAllString(text, -1))
}

// LikelyVehicleText reports whether a text block plausibly contains
// vehicle pricing data at all.
func LikelyVehicleText(text string) bool {
	if PriceTokenCount(text) > 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, h := range tableHeaderTokens {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// isNumericHeavy reports whether digits make up at least 30% of the
// line's non-space characters.
func isNumericHeavy(line string) bool {
	digits, chars := 0, 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			continue
		}
		chars++
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return chars > 0 && float64(digits)/float64(chars) >= 0.30
}
