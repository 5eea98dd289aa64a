package ai

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leasingborsen/pricelist-cli/internal/model"
	"github.com/leasingborsen/pricelist-cli/internal/pattern"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
)

// Wire types for the model's JSON reply.
type vehiclesPayload struct {
	Vehicles []vehiclePayload `json:"vehicles"`
}

type vehiclePayload struct {
	Model          string           `json:"model"`
	Variant        string           `json:"variant"`
	Horsepower     int              `json:"horsepower"`
	IsElectric     bool             `json:"is_electric"`
	RangeKM        int              `json:"range_km"`
	CO2Emission    int              `json:"co2_emission"`
	Confidence     float64          `json:"confidence"`
	PricingOptions []pricingPayload `json:"pricing_options"`
}

type pricingPayload struct {
	MileagePerYear int `json:"mileage_per_year"`
	PeriodMonths   int `json:"period_months"`
	TotalCost      int `json:"total_cost"`
	Deposit        int `json:"deposit"`
	MonthlyPrice   int `json:"monthly_price"`
}

// cleanJSON strips markdown code fences the model sometimes wraps its
// reply in, then trims to the outermost object.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// parseVehicles converts a model reply into candidates. A reply that is
// not the agreed JSON shape is a validation error, not a provider one,
// so it is never retried.
func parseVehicles(reply string) ([]model.CandidateVariant, error) {
	var payload vehiclesPayload
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &payload); err != nil {
		return nil, &resilience.Error{Kind: resilience.KindValidation, Err: eris.Wrap(err, "ai: parse reply")}
	}

	candidates := make([]model.CandidateVariant, 0, len(payload.Vehicles))
	for _, v := range payload.Vehicles {
		name := normalizeVariantName(v.Variant)
		if v.Model == "" && name == "" {
			continue
		}

		options := make([]model.PricingOption, 0, len(v.PricingOptions))
		for _, p := range v.PricingOptions {
			opt := model.PricingOption{
				MileagePerYear: p.MileagePerYear,
				PeriodMonths:   p.PeriodMonths,
				TotalCost:      p.TotalCost,
				Deposit:        p.Deposit,
				MonthlyPrice:   p.MonthlyPrice,
			}
			if !opt.IsPlaceholder() {
				opt.MinPrice12Months = opt.Deposit + 12*opt.MonthlyPrice
			}
			options = append(options, opt)
		}

		candidate := model.CandidateVariant{
			Model:          strings.ToUpper(strings.TrimSpace(v.Model)),
			VariantName:    name,
			Horsepower:     v.Horsepower,
			IsElectric:     v.IsElectric,
			RangeKM:        v.RangeKM,
			CO2Emission:    v.CO2Emission,
			PricingOptions: options,
			SourceMethod:   model.MethodAI,
			ProvenanceTag:  "ai",
		}
		candidate.ConfidenceScore = candidateConfidence(v.Confidence, candidate)
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// candidateConfidence takes the model's self-reported certainty, clamped
// to [0,1]. A reply that omits the field falls back to the completeness
// heuristic so the candidate is not zeroed out of the final result.
func candidateConfidence(reported float64, candidate model.CandidateVariant) float64 {
	if reported > 1 {
		return 1
	}
	if reported > 0 {
		return reported
	}
	return pattern.Score(candidate)
}

// normalizeVariantName collapses whitespace and strips decoration the
// model occasionally copies from the source layout.
func normalizeVariantName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -•:.,")
}
