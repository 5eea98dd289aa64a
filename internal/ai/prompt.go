package ai

import "fmt"

// systemPrompt steers the model toward strict JSON output. The schema
// mirrors the candidate type one to one so parsing stays mechanical.
const systemPrompt = `You are a data extraction engine for Danish vehicle leasing price lists.
Extract every vehicle variant with its leasing offers from the document text.

Rules:
- Danish number format: "102.163" means 102163, "2.699 kr./md." means 2699 DKK per month.
- "km/år" is annual mileage, "mdr." is the contract period in months.
- "Førstegangsydelse" is the deposit, "Totalpris" the total contract cost.
- A variant sold with both manual and "Automatgear" is two separate variants.
- An electric trim sold with several battery/power combinations ("57,7 kWh 167 hk",
  "73,1 kWh 224 hk") is one variant per combination.
- Never invent prices. A variant without visible offers gets an empty pricing_options array.
- confidence is your certainty, 0.0 to 1.0, that the variant's fields and prices are read correctly.

Respond with JSON only, no prose, matching:
{"vehicles":[{"model":"string","variant":"string","horsepower":0,"is_electric":false,
"range_km":0,"co2_emission":0,"confidence":0.0,
"pricing_options":[{"mileage_per_year":0,"period_months":0,"total_cost":0,"deposit":0,"monthly_price":0}]}]}`

// userPrompt wraps one document or chunk for extraction.
func userPrompt(dealerHint, text string) string {
	if dealerHint != "" {
		return fmt.Sprintf("Dealer: %s\n\nDocument:\n%s", dealerHint, text)
	}
	return "Document:\n" + text
}
