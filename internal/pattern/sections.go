package pattern

import (
	"strings"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// sectionMarkers are the header words that terminate a model-header line
// in the source documents ("AYGO X PRIVATLEASING").
var sectionMarkers = []string{
	"PRIVATLEASING",
	"ERHVERVSLEASING",
	"FINANSIERING",
}

// SplitSections scans the document line by line and starts a new
// SectionBlock at every model-header line. Lines before the first header
// are discarded.
func SplitSections(text string) []model.SectionBlock {
	lines := strings.Split(text, "\n")

	var sections []model.SectionBlock
	var current *model.SectionBlock

	for i, line := range lines {
		if name, ok := matchModelHeader(line); ok {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &model.SectionBlock{ModelName: name, StartOffset: i}
			continue
		}
		if current != nil {
			current.RawLines = append(current.RawLines, line)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	return sections
}

// matchModelHeader reports whether a line is a model header, returning
// the model name (the line minus the trailing marker word).
func matchModelHeader(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}

	last := strings.ToUpper(strings.Trim(fields[len(fields)-1], ".:"))
	for _, marker := range sectionMarkers {
		if last == marker {
			name := collapseSpaces(strings.Join(fields[:len(fields)-1], " "))
			if name == "" {
				return "", false
			}
			return name, true
		}
	}
	return "", false
}
