// Package pattern implements deterministic, zero-cost extraction of
// vehicle variants from Danish price-list text: section splitting,
// declarative per-model-family rules, pricing-line parsing, and a
// fallback line walker.
package pattern

import (
	"strconv"
	"strings"
)

// parseDanishInt parses a Danish thousands-formatted amount ("2.699",
// "102.163") or a plain integer. Returns 0 on malformed input.
func parseDanishInt(s string) int {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseDanishFloat parses a decimal using the Danish comma separator
// ("57,7") as well as the dot form ("57.7").
func parseDanishFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// collapseSpaces normalizes runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
