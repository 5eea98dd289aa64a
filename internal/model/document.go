package model

import "strings"

// Document is the engine's input: the flattened text of one price-list
// document plus an optional dealer/brand hint from the upload flow.
type Document struct {
	Text       string `json:"text"`
	DealerHint string `json:"dealer_hint,omitempty"`
}

// Empty reports whether the document carries no extractable text.
func (d Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// SectionBlock is a contiguous slice of the document belonging to one
// vehicle model. Created by section splitting; consumed once per pass.
type SectionBlock struct {
	ModelName   string
	RawLines    []string
	StartOffset int
}

// Text returns the section's lines joined back into a single block.
func (s SectionBlock) Text() string {
	return strings.Join(s.RawLines, "\n")
}

// Strategy is the analyzer's recommendation for how to extract a document.
type Strategy string

const (
	StrategyPattern Strategy = "pattern"
	StrategyAI      Strategy = "ai"
	StrategyHybrid  Strategy = "hybrid"
)

// StructureProfile describes how table-like a document's text is.
// Derived, read-only, scoped to one extraction call.
type StructureProfile struct {
	IsStructured          bool     `json:"is_structured"`
	HasTableFormat        bool     `json:"has_table_format"`
	RecommendedStrategy   Strategy `json:"recommended_strategy"`
	EstimatedVehicleCount int      `json:"estimated_vehicle_count"`
}
