package pattern

import "github.com/leasingborsen/pricelist-cli/internal/model"

// Score grades one candidate on field completeness. The weights sum to
// 1.0 for a candidate with model, variant name, horsepower, four or
// more real pricing options, and an environment figure. Placeholder
// options earn nothing.
func Score(v model.CandidateVariant) float64 {
	var score float64

	if v.Model != "" {
		score += 0.2
	}
	if v.VariantName != "" {
		score += 0.2
	}
	if v.Horsepower > 0 {
		score += 0.15
	}

	if n := v.RealPricingCount(); n > 0 {
		bonus := 0.1 * float64(n) / 4
		if bonus > 0.1 {
			bonus = 0.1
		}
		score += 0.25 + bonus
	}

	if v.IsElectric && v.RangeKM > 0 {
		score += 0.1
	} else if !v.IsElectric && v.CO2Emission > 0 {
		score += 0.1
	}

	return score
}
