// Package merge reconciles candidate variants from the pattern and AI
// passes into one deduplicated result set.
package merge

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// danishLower folds names case-insensitively under Danish rules, so
// "BZ4X Executive" and "bz4x executive" collide.
var danishLower = cases.Lower(language.Danish)

// looseKey is the fuzzy identity used when matching across methods.
// Horsepower is deliberately absent: the two passes routinely disagree
// on it (the AI side may omit or misread the figure), and the loose key
// exists to reconcile exactly those disagreements.
type looseKey struct {
	model   string
	variant string
}

func looseKeyOf(v model.CandidateVariant) looseKey {
	return looseKey{
		model:   danishLower.String(collapse(v.Model)),
		variant: danishLower.String(collapse(v.VariantName)),
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MergeSingle deduplicates candidates from one method by the strict
// identity key, unioning pricing options. First occurrence wins field
// values; later duplicates only contribute missing pricing and specs.
func MergeSingle(candidates []model.CandidateVariant) []model.CandidateVariant {
	byKey := make(map[model.VariantKey]int, len(candidates))
	var out []model.CandidateVariant

	for _, c := range candidates {
		idx, ok := byKey[c.Key()]
		if !ok {
			byKey[c.Key()] = len(out)
			out = append(out, c.Clone())
			continue
		}

		kept := out[idx]
		kept.PricingOptions = unionPricing(kept.PricingOptions, c.PricingOptions)
		if kept.RangeKM == 0 {
			kept.RangeKM = c.RangeKM
		}
		if kept.CO2Emission == 0 {
			kept.CO2Emission = c.CO2Emission
		}
		if c.ConfidenceScore > kept.ConfidenceScore {
			kept.ConfidenceScore = c.ConfidenceScore
		}
		if c.ProvenanceTag != "" && !strings.Contains(kept.ProvenanceTag, c.ProvenanceTag) {
			kept.ProvenanceTag += "+" + c.ProvenanceTag
		}
		out[idx] = kept
	}

	return out
}

// MergeHybrid reconciles the two passes. Candidates sharing a loose key
// are resolved toward the side with strictly more real pricing options;
// on a tie the higher confidence wins. Candidates unique to either side
// pass through unchanged.
func MergeHybrid(patternCandidates, aiCandidates []model.CandidateVariant) []model.CandidateVariant {
	patternCandidates = MergeSingle(patternCandidates)
	aiCandidates = MergeSingle(aiCandidates)

	aiByKey := make(map[looseKey]int, len(aiCandidates))
	for i, c := range aiCandidates {
		aiByKey[looseKeyOf(c)] = i
	}

	var out []model.CandidateVariant
	matchedAI := make(map[int]bool)

	for _, p := range patternCandidates {
		idx, ok := aiByKey[looseKeyOf(p)]
		if !ok {
			out = append(out, p.Clone())
			continue
		}
		matchedAI[idx] = true
		out = append(out, resolve(p, aiCandidates[idx]))
	}

	for i, a := range aiCandidates {
		if !matchedAI[i] {
			out = append(out, a.Clone())
		}
	}

	return out
}

// resolve picks a winner between two views of the same variant and
// absorbs whatever the loser adds.
func resolve(p, a model.CandidateVariant) model.CandidateVariant {
	winner, loser := p, a
	if a.RealPricingCount() > p.RealPricingCount() ||
		(a.RealPricingCount() == p.RealPricingCount() && a.ConfidenceScore > p.ConfidenceScore) {
		winner, loser = a, p
	}

	merged := winner.Clone()
	merged.PricingOptions = unionPricing(merged.PricingOptions, realOptions(loser.PricingOptions))
	// Real quotes from either side supersede a placeholder.
	if real := realOptions(merged.PricingOptions); len(real) > 0 {
		merged.PricingOptions = real
	}
	if merged.Horsepower == 0 {
		merged.Horsepower = loser.Horsepower
	}
	if merged.RangeKM == 0 {
		merged.RangeKM = loser.RangeKM
	}
	if merged.CO2Emission == 0 {
		merged.CO2Emission = loser.CO2Emission
	}

	loserContributed := merged.RealPricingCount() > winner.RealPricingCount() ||
		merged.Horsepower != winner.Horsepower ||
		merged.RangeKM != winner.RangeKM || merged.CO2Emission != winner.CO2Emission
	merged.SourceMethod = model.MethodHybrid
	if loserContributed {
		merged.ProvenanceTag = "pattern+ai"
	} else {
		merged.ProvenanceTag = string(winner.SourceMethod) + "-only"
	}

	if loser.ConfidenceScore > merged.ConfidenceScore {
		merged.ConfidenceScore = loser.ConfidenceScore
	}
	return merged
}

// minConfidence is the floor below which a candidate is dropped from
// the final result.
const minConfidence = 0.5

// Finalize drops low-confidence candidates and orders the rest by
// confidence, highest first. The sort is stable so candidates with the
// same score keep their extraction order.
func Finalize(candidates []model.CandidateVariant) []model.CandidateVariant {
	out := make([]model.CandidateVariant, 0, len(candidates))
	for _, c := range candidates {
		if c.ConfidenceScore >= minConfidence {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ConfidenceScore > out[j].ConfidenceScore
	})
	return out
}

func realOptions(options []model.PricingOption) []model.PricingOption {
	out := make([]model.PricingOption, 0, len(options))
	for _, o := range options {
		if !o.IsPlaceholder() {
			out = append(out, o)
		}
	}
	return out
}

func unionPricing(a, b []model.PricingOption) []model.PricingOption {
	seen := make(map[model.PricingKey]bool, len(a)+len(b))
	out := make([]model.PricingOption, 0, len(a)+len(b))
	for _, list := range [][]model.PricingOption{a, b} {
		for _, opt := range list {
			if seen[opt.Key()] {
				continue
			}
			seen[opt.Key()] = true
			out = append(out, opt)
		}
	}
	return out
}
