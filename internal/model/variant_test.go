package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingOptionKey(t *testing.T) {
	t.Parallel()

	a := PricingOption{MileagePerYear: 15000, PeriodMonths: 36, MonthlyPrice: 2699, Deposit: 4999}
	b := PricingOption{MileagePerYear: 15000, PeriodMonths: 36, MonthlyPrice: 2699, Deposit: 9999}
	c := PricingOption{MileagePerYear: 20000, PeriodMonths: 36, MonthlyPrice: 2699}

	assert.Equal(t, a.Key(), b.Key(), "deposit is not part of the identity tuple")
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestPricingOptionIsPlaceholder(t *testing.T) {
	t.Parallel()

	assert.True(t, PricingOption{}.IsPlaceholder())
	assert.False(t, PricingOption{MonthlyPrice: 2699}.IsPlaceholder())
	assert.False(t, PricingOption{MileagePerYear: 10000}.IsPlaceholder())
}

func TestVariantKey(t *testing.T) {
	t.Parallel()

	v := CandidateVariant{Model: "AYGO X", VariantName: "Active", Horsepower: 72}
	w := CandidateVariant{Model: "AYGO X", VariantName: "Active", Horsepower: 116}

	assert.Equal(t, VariantKey{Model: "AYGO X", VariantName: "Active", Horsepower: 72}, v.Key())
	assert.NotEqual(t, v.Key(), w.Key(), "horsepower disambiguates variants")
}

func TestRealPricingCount(t *testing.T) {
	t.Parallel()

	v := CandidateVariant{PricingOptions: []PricingOption{
		{},
		{MileagePerYear: 15000, PeriodMonths: 36, MonthlyPrice: 2699},
		{MileagePerYear: 20000, PeriodMonths: 36, MonthlyPrice: 2899},
	}}
	assert.Equal(t, 2, v.RealPricingCount())
}

func TestCloneDoesNotAliasPricing(t *testing.T) {
	t.Parallel()

	v := CandidateVariant{
		Model:          "BZ4X",
		PricingOptions: []PricingOption{{MonthlyPrice: 3999, MileagePerYear: 15000, PeriodMonths: 36}},
	}
	c := v.Clone()
	c.PricingOptions[0].MonthlyPrice = 1

	assert.Equal(t, 3999, v.PricingOptions[0].MonthlyPrice)
}

func TestTokenUsageAdd(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 100, OutputTokens: 20}
	u.Add(TokenUsage{InputTokens: 50, OutputTokens: 5})

	assert.Equal(t, 150, u.InputTokens)
	assert.Equal(t, 25, u.OutputTokens)
	assert.Equal(t, 175, u.Total())
}

func TestDocumentEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Document{}.Empty())
	assert.True(t, Document{Text: "  \n\t "}.Empty())
	assert.False(t, Document{Text: "AYGO X PRIVATLEASING"}.Empty())
}
