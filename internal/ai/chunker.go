package ai

import (
	"strings"

	"github.com/leasingborsen/pricelist-cli/internal/analyzer"
)

// Chunking bounds in characters. Documents under directThreshold go to
// the model in one request; larger ones split at paragraph boundaries
// with an overlap so a variant straddling a cut appears whole in at
// least one chunk.
const (
	directThreshold  = 15_000
	chunkSize        = 12_000
	chunkOverlap     = 1_000
	minChunkResidual = 500
)

// chunkDocument splits text into overlapping chunks, dropping chunks
// that carry no vehicle signal at all.
func chunkDocument(text string) []string {
	if len(text) <= directThreshold {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = splitPoint(text, end)
		}

		chunk := text[start:end]
		if analyzer.LikelyVehicleText(chunk) {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}
		next := end - chunkOverlap
		if next <= start {
			next = end
		}
		start = next

		if len(text)-start < minChunkResidual {
			tail := text[start:]
			if analyzer.LikelyVehicleText(tail) && (len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], tail)) {
				chunks = append(chunks, tail)
			}
			break
		}
	}

	return chunks
}

// splitPoint moves a cut position back to the nearest paragraph break,
// or line break, so pricing tables are not severed mid line.
func splitPoint(text string, pos int) int {
	window := text[:pos]
	if idx := strings.LastIndex(window, "\n\n"); idx > pos-chunkOverlap {
		return idx + 2
	}
	if idx := strings.LastIndex(window, "\n"); idx > pos-chunkOverlap {
		return idx + 1
	}
	return pos
}
