package model

// SourceMethod identifies which extraction path produced a candidate.
type SourceMethod string

const (
	MethodPattern SourceMethod = "pattern"
	MethodAI      SourceMethod = "ai"
	MethodHybrid  SourceMethod = "hybrid"
)

// PricingOption is one leasing-term quote attached to a variant.
// All amounts are in DKK.
type PricingOption struct {
	MileagePerYear   int `json:"mileage_per_year"`
	PeriodMonths     int `json:"period_months"`
	TotalCost        int `json:"total_cost"`
	MinPrice12Months int `json:"min_price_12_months,omitempty"`
	Deposit          int `json:"deposit"`
	MonthlyPrice     int `json:"monthly_price"`
}

// PricingKey is the identity tuple used to deduplicate pricing options.
type PricingKey struct {
	MileagePerYear int
	PeriodMonths   int
	MonthlyPrice   int
}

// Key returns the dedup identity of the option.
func (p PricingOption) Key() PricingKey {
	return PricingKey{
		MileagePerYear: p.MileagePerYear,
		PeriodMonths:   p.PeriodMonths,
		MonthlyPrice:   p.MonthlyPrice,
	}
}

// IsPlaceholder reports whether the option is the zero-valued placeholder
// attached to variants that closed without any recognized pricing lines.
func (p PricingOption) IsPlaceholder() bool {
	return p.MonthlyPrice == 0 && p.TotalCost == 0 && p.MileagePerYear == 0
}

// CandidateVariant is one extracted trim/configuration of a model.
// Instances are never mutated after creation; merging builds new ones.
type CandidateVariant struct {
	Model           string          `json:"model"`
	VariantName     string          `json:"variant_name"`
	Horsepower      int             `json:"horsepower"`
	IsElectric      bool            `json:"is_electric"`
	RangeKM         int             `json:"range_km,omitempty"`
	CO2Emission     int             `json:"co2_emission,omitempty"`
	PricingOptions  []PricingOption `json:"pricing_options"`
	ConfidenceScore float64         `json:"confidence_score"`
	SourceMethod    SourceMethod    `json:"source_method"`
	ProvenanceTag   string          `json:"provenance_tag"`
}

// VariantKey is the strict composite identity used for deduplication.
type VariantKey struct {
	Model       string
	VariantName string
	Horsepower  int
}

// Key returns the strict dedup identity of the candidate.
func (v CandidateVariant) Key() VariantKey {
	return VariantKey{Model: v.Model, VariantName: v.VariantName, Horsepower: v.Horsepower}
}

// RealPricingCount counts non-placeholder pricing options.
func (v CandidateVariant) RealPricingCount() int {
	n := 0
	for _, p := range v.PricingOptions {
		if !p.IsPlaceholder() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so merge steps never alias the original's
// pricing slice.
func (v CandidateVariant) Clone() CandidateVariant {
	out := v
	out.PricingOptions = make([]PricingOption, len(v.PricingOptions))
	copy(out.PricingOptions, v.PricingOptions)
	return out
}
