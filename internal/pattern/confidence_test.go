package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

func fullCandidate() model.CandidateVariant {
	return model.CandidateVariant{
		Model:       "AYGO X",
		VariantName: "Active 1.0 benzin 72 hk",
		Horsepower:  72,
		CO2Emission: 110,
		PricingOptions: []model.PricingOption{
			{MileagePerYear: 10000, PeriodMonths: 36, MonthlyPrice: 2699},
			{MileagePerYear: 15000, PeriodMonths: 36, MonthlyPrice: 2874},
			{MileagePerYear: 20000, PeriodMonths: 36, MonthlyPrice: 3049},
			{MileagePerYear: 25000, PeriodMonths: 36, MonthlyPrice: 3224},
		},
	}
}

func TestScoreCompleteCandidate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Score(fullCandidate()), 0.0001)
}

func TestScoreGrowsWithCompleteness(t *testing.T) {
	t.Parallel()

	v := model.CandidateVariant{VariantName: "Active"}
	base := Score(v)

	v.Model = "AYGO X"
	withModel := Score(v)
	assert.Greater(t, withModel, base)

	v.Horsepower = 72
	withHP := Score(v)
	assert.Greater(t, withHP, withModel)

	v.PricingOptions = []model.PricingOption{{MileagePerYear: 10000, PeriodMonths: 36, MonthlyPrice: 2699}}
	withPricing := Score(v)
	assert.Greater(t, withPricing, withHP)
}

func TestScorePricingBonusCapped(t *testing.T) {
	t.Parallel()

	v := fullCandidate()
	capped := Score(v)

	v.PricingOptions = append(v.PricingOptions,
		model.PricingOption{MileagePerYear: 30000, PeriodMonths: 36, MonthlyPrice: 3399})
	assert.InDelta(t, capped, Score(v), 0.0001)
}

func TestScoreIgnoresPlaceholderPricing(t *testing.T) {
	t.Parallel()

	v := model.CandidateVariant{
		Model:          "AYGO X",
		VariantName:    "Active",
		Horsepower:     72,
		PricingOptions: []model.PricingOption{{}},
	}
	withPlaceholder := Score(v)

	v.PricingOptions = nil
	assert.InDelta(t, Score(v), withPlaceholder, 0.0001)
}

func TestScoreEnvironmentFigureMatchesPowertrain(t *testing.T) {
	t.Parallel()

	electric := model.CandidateVariant{IsElectric: true, RangeKM: 446}
	assert.InDelta(t, 0.1, Score(electric), 0.0001)

	// Range on a combustion car earns nothing.
	combustion := model.CandidateVariant{RangeKM: 446}
	assert.Zero(t, Score(combustion))
}
