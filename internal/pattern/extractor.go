package pattern

import (
	"go.uber.org/zap"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// Result is what a pattern pass produces: the candidates and the mean
// per-candidate confidence.
type Result struct {
	Candidates []model.CandidateVariant
	Confidence float64
}

// Extractor runs the deterministic pass: split the document into model
// sections, apply the registered rules for each section's family, and
// fall back to the line walker for sections no rule set covers.
type Extractor struct {
	registry *Registry
}

// NewExtractor builds an extractor over the given registry. A nil
// registry gets the built-in rule sets.
func NewExtractor(registry *Registry) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Extractor{registry: registry}
}

// Extract runs every section independently. A panic inside one
// section's rules is contained to that section; the remaining sections
// still extract.
func (e *Extractor) Extract(text string) Result {
	sections := SplitSections(text)

	var candidates []model.CandidateVariant
	for _, section := range sections {
		candidates = append(candidates, e.extractSection(section)...)
	}

	var sum float64
	for i := range candidates {
		candidates[i].ConfidenceScore = Score(candidates[i])
		sum += candidates[i].ConfidenceScore
	}

	result := Result{Candidates: candidates}
	if len(candidates) > 0 {
		result.Confidence = sum / float64(len(candidates))
	}
	return result
}

func (e *Extractor) extractSection(section model.SectionBlock) (out []model.CandidateVariant) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("section extraction panicked",
				zap.String("model", section.ModelName),
				zap.Any("panic", r))
			out = nil
		}
	}()

	rules := e.registry.RulesFor(section.ModelName)

	var found []model.CandidateVariant
	text := section.Text()
	for _, rule := range rules {
		for _, v := range rule.Apply(text) {
			v.Model = section.ModelName
			found = append(found, v)
		}
	}

	if len(found) == 0 {
		for _, v := range WalkSection(section) {
			v.Model = section.ModelName
			found = append(found, v)
		}
	}

	return found
}
