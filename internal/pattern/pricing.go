package pattern

import (
	"regexp"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// pricingLineRe matches one leasing-quote line:
//
//	10.000 km/år 36 mdr. 102.163 kr. 4.999 kr. 2.699 kr./md.
//
// Captures: mileage, period months, total cost, deposit, monthly price.
var pricingLineRe = regexp.MustCompile(
	`(?mi)^\s*(\d{1,3}(?:\.\d{3})*)\s*km(?:/år)?\.?\s+` +
		`(\d{1,3})\s*(?:mdr|måneder)\.?\s+` +
		`(\d{1,3}(?:\.\d{3})*)\s*kr\.?\s+` +
		`(\d{1,3}(?:\.\d{3})*)\s*kr\.?\s+` +
		`(\d{1,3}(?:\.\d{3})*)\s*kr\.?(?:\s*/\s*md\.?|/md\.?)?\s*$`)

// Plausibility bounds for a monthly leasing price in DKK. Lines outside
// the range are table noise (spec figures, option codes), not quotes.
const (
	minMonthlyDKK = 1000
	maxMonthlyDKK = 25000
)

// ParsePricingLines collects every pricing-line occurrence in the span,
// deduplicated by the (mileage, period, monthly) identity tuple.
func ParsePricingLines(span string) []model.PricingOption {
	matches := pricingLineRe.FindAllStringSubmatch(span, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[model.PricingKey]bool, len(matches))
	var options []model.PricingOption

	for _, m := range matches {
		opt := model.PricingOption{
			MileagePerYear: parseDanishInt(m[1]),
			PeriodMonths:   parseDanishInt(m[2]),
			TotalCost:      parseDanishInt(m[3]),
			Deposit:        parseDanishInt(m[4]),
			MonthlyPrice:   parseDanishInt(m[5]),
		}
		if opt.MonthlyPrice < minMonthlyDKK || opt.MonthlyPrice > maxMonthlyDKK {
			continue
		}
		// Danish ads must state the minimum cost over the first year.
		opt.MinPrice12Months = opt.Deposit + 12*opt.MonthlyPrice

		key := opt.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, opt)
	}

	return options
}

// mergePricing unions two option lists under the tuple-identity rule,
// preserving first-seen order.
func mergePricing(a, b []model.PricingOption) []model.PricingOption {
	seen := make(map[model.PricingKey]bool, len(a)+len(b))
	out := make([]model.PricingOption, 0, len(a)+len(b))
	for _, lists := range [][]model.PricingOption{a, b} {
		for _, opt := range lists {
			if seen[opt.Key()] {
				continue
			}
			seen[opt.Key()] = true
			out = append(out, opt)
		}
	}
	return out
}
