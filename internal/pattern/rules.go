package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// Rule is a named, pure extraction rule. Apply scans one section's text
// and returns zero or more candidates. A rule matching the same variant
// several times (the same trim repeated across pages) must aggregate the
// matches into a single candidate per variant identity.
type Rule struct {
	Name  string
	Apply func(sectionText string) []model.CandidateVariant
}

// RuleSpec is the declarative form of a rule, loadable from YAML so new
// brands can be added without touching the orchestrator.
type RuleSpec struct {
	Name string `yaml:"name"`
	// Trim is the literal trim-level name the rule anchors on ("Active").
	Trim string `yaml:"trim"`
	// EnginePattern is a regex matched against the variant-opening line;
	// its first capture group must be the horsepower figure. Ignored for
	// electric rules, which use the shared battery/power pattern.
	EnginePattern string `yaml:"engine_pattern,omitempty"`
	// RequireMarker / ExcludeMarkers gate on marker words so manual and
	// automatic trims, or a trim and its longer-named sibling ("Active"
	// vs "Active Safety"), stay distinct.
	RequireMarker  string   `yaml:"require_marker,omitempty"`
	ExcludeMarkers []string `yaml:"exclude_markers,omitempty"`
	Electric       bool     `yaml:"electric,omitempty"`
}

// electricSpecRe matches battery/power combos: "57,7 kWh, 167 hk",
// "73.1 kWh 343 hk AWD".
var electricSpecRe = regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d)?)\s*kWh[,\s]+(\d{2,3})\s*hk(\s*AWD)?`)

// Build compiles the spec into an executable Rule.
func (s RuleSpec) Build() (Rule, error) {
	if s.Name == "" || s.Trim == "" {
		return Rule{}, eris.New("pattern: rule spec needs name and trim")
	}

	trimRe, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(s.Trim) + `\b`)
	if err != nil {
		return Rule{}, eris.Wrapf(err, "pattern: rule %s: trim", s.Name)
	}

	if s.Electric {
		return buildElectricRule(s, trimRe), nil
	}

	if s.EnginePattern == "" {
		return Rule{}, eris.Errorf("pattern: rule %s: engine_pattern required for non-electric rules", s.Name)
	}
	engineRe, err := regexp.Compile(`(?i)` + s.EnginePattern)
	if err != nil {
		return Rule{}, eris.Wrapf(err, "pattern: rule %s: engine_pattern", s.Name)
	}

	return buildCombustionRule(s, trimRe, engineRe), nil
}

// MustBuild compiles a built-in spec, panicking on programmer error.
func (s RuleSpec) MustBuild() Rule {
	r, err := s.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// buildCombustionRule anchors on lines carrying the trim literal plus the
// engine pattern, gated by transmission markers. All matches collapse
// into one candidate whose pricing options are the union of the spans'.
func buildCombustionRule(s RuleSpec, trimRe, engineRe *regexp.Regexp) Rule {
	apply := func(sectionText string) []model.CandidateVariant {
		lines := strings.Split(sectionText, "\n")

		var variant *model.CandidateVariant
		for i, line := range lines {
			if !trimRe.MatchString(line) {
				continue
			}
			m := engineRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !s.markersAllow(line) {
				continue
			}

			span := spanUntilNextOpening(lines, i+1)
			options := ParsePricingLines(span)

			if variant == nil {
				name := collapseSpaces(s.Trim + " " + strings.TrimSpace(m[0]))
				if s.RequireMarker != "" && !containsFold(name, s.RequireMarker) {
					name += " " + s.RequireMarker
				}
				v := model.CandidateVariant{
					VariantName:    name,
					Horsepower:     parseDanishInt(m[1]),
					PricingOptions: options,
					CO2Emission:    findCO2(span),
					SourceMethod:   model.MethodPattern,
					ProvenanceTag:  "pattern:" + s.Name,
				}
				variant = &v
				continue
			}
			// Repeat occurrence of the same trim on a later page.
			variant.PricingOptions = mergePricing(variant.PricingOptions, options)
			if variant.CO2Emission == 0 {
				variant.CO2Emission = findCO2(span)
			}
		}

		if variant == nil {
			return nil
		}
		return []model.CandidateVariant{*variant}
	}

	return Rule{Name: s.Name, Apply: apply}
}

// buildElectricRule groups occurrences by their battery/power combo, so a
// trim sold with several powertrain configurations yields one candidate
// per configuration.
func buildElectricRule(s RuleSpec, trimRe *regexp.Regexp) Rule {
	apply := func(sectionText string) []model.CandidateVariant {
		lines := strings.Split(sectionText, "\n")

		type comboKey struct {
			battery float64
			hp      int
			awd     bool
		}
		byCombo := make(map[comboKey]*model.CandidateVariant)
		var order []comboKey

		for i, line := range lines {
			if !trimRe.MatchString(line) {
				continue
			}
			m := electricSpecRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !s.markersAllow(line) {
				continue
			}
			hp := parseDanishInt(m[2])
			key := comboKey{
				battery: parseDanishFloat(m[1]),
				hp:      hp,
				awd:     strings.TrimSpace(m[3]) != "",
			}

			span := spanUntilNextOpening(lines, i+1)
			options := ParsePricingLines(span)
			rangeKM := findRange(span)

			if v, ok := byCombo[key]; ok {
				v.PricingOptions = mergePricing(v.PricingOptions, options)
				if v.RangeKM == 0 {
					v.RangeKM = rangeKM
				}
				continue
			}

			name := fmt.Sprintf("%s %g kWh %d hk", s.Trim, key.battery, hp)
			if key.awd {
				name = fmt.Sprintf("%s AWD %g kWh %d hk", s.Trim, key.battery, hp)
			}
			byCombo[key] = &model.CandidateVariant{
				VariantName:    name,
				Horsepower:     hp,
				IsElectric:     true,
				RangeKM:        rangeKM,
				PricingOptions: options,
				SourceMethod:   model.MethodPattern,
				ProvenanceTag:  "pattern:" + s.Name,
			}
			order = append(order, key)
		}

		out := make([]model.CandidateVariant, 0, len(order))
		for _, key := range order {
			out = append(out, *byCombo[key])
		}
		return out
	}

	return Rule{Name: s.Name, Apply: apply}
}

// markersAllow applies the require/exclude marker gates to one line.
func (s RuleSpec) markersAllow(line string) bool {
	if s.RequireMarker != "" && !containsFold(line, s.RequireMarker) {
		return false
	}
	for _, marker := range s.ExcludeMarkers {
		if containsFold(line, marker) {
			return false
		}
	}
	return true
}

// containsFold is a case-insensitive substring check.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
