package pattern

import (
	"regexp"
	"strings"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// The walker is the rule-less fallback: it scans a section line by line,
// opens a variant at every line that names a powertrain, and attaches
// the pricing and environment lines that follow until the next opening.

var (
	// openingRe finds the horsepower figure that marks a variant line.
	openingRe = regexp.MustCompile(`(?i)\b(\d{2,3})\s*hk\b`)

	co2Re   = regexp.MustCompile(`(?i)CO2[^\d]{0,12}(\d{1,3})\s*g/km`)
	rangeRe = regexp.MustCompile(`(?i)rækkevidde[^\d]{0,20}(\d{2,3}(?:\.\d{3})?)\s*km`)

	electricHintRe = regexp.MustCompile(`(?i)\bkWh\b|\bel(?:bil|ektrisk)\b`)
)

// isVariantOpening reports whether a line starts a new variant span. A
// pricing line never opens a variant, and the line must carry a name,
// not just figures.
func isVariantOpening(line string) bool {
	if !openingRe.MatchString(line) {
		return false
	}
	if pricingLineRe.MatchString(line) {
		return false
	}
	return strings.IndexFunc(line, isLetter) >= 0
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x00C0
}

// spanUntilNextOpening joins lines[start:] up to (excluding) the next
// variant-opening line.
func spanUntilNextOpening(lines []string, start int) string {
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isVariantOpening(lines[i]) {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

// findCO2 returns the first CO2 figure (g/km) in the span, 0 if absent.
func findCO2(span string) int {
	m := co2Re.FindStringSubmatch(span)
	if m == nil {
		return 0
	}
	return parseDanishInt(m[1])
}

// findRange returns the first stated electric range (km), 0 if absent.
func findRange(span string) int {
	m := rangeRe.FindStringSubmatch(span)
	if m == nil {
		return 0
	}
	return parseDanishInt(m[1])
}

// WalkSection extracts variants from a section with no matching rules.
// Variants that close with no pricing lines get a single placeholder
// option so downstream consumers still see the variant.
func WalkSection(section model.SectionBlock) []model.CandidateVariant {
	lines := section.RawLines

	var variants []model.CandidateVariant
	for i, line := range lines {
		if !isVariantOpening(line) {
			continue
		}
		m := openingRe.FindStringSubmatch(line)
		name := variantNameFromLine(line)
		if name == "" {
			continue
		}

		span := spanUntilNextOpening(lines, i+1)
		options := ParsePricingLines(span)
		if len(options) == 0 {
			options = []model.PricingOption{{}}
		}

		variants = append(variants, model.CandidateVariant{
			VariantName:    name,
			Horsepower:     parseDanishInt(m[1]),
			IsElectric:     electricHintRe.MatchString(line),
			RangeKM:        findRange(span),
			CO2Emission:    findCO2(span),
			PricingOptions: options,
			SourceMethod:   model.MethodPattern,
			ProvenanceTag:  "pattern:walker",
		})
	}

	return variants
}

// variantNameFromLine normalizes an opening line into a variant name by
// trimming trailing price fragments and list punctuation.
func variantNameFromLine(line string) string {
	name := collapseSpaces(line)
	// Drop anything after a "fra 2.699 kr" style tail.
	if idx := strings.Index(strings.ToLower(name), " fra "); idx > 0 {
		name = name[:idx]
	}
	name = strings.Trim(name, " -•:.,")
	if strings.IndexFunc(name, isLetter) < 0 {
		return ""
	}
	return name
}
