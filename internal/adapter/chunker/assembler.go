// Package chunker turns ordered document elements into persisted chunks:
// a one-to-one assembly step, an optional small-chunk merge pass, and the
// overlap stitcher that duplicates trailing context across chunk seams.
package chunker

import (
	"fmt"

	"docrag/internal/domain"
)

// Assemble maps each element to exactly one chunk, in order. Chunk ids are
// deterministic: the same document content under the same label reproduces
// byte-identical ids on every run. No merging or splitting happens here, so
// table elements stay atomic.
func Assemble(elements []domain.Element, label, sourceName string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(elements))
	for i, el := range elements {
		chunks = append(chunks, domain.Chunk{
			ID:   fmt.Sprintf("%s_p%d_%s_%d", label, el.PageNumber, el.Kind, i),
			Text: fmt.Sprintf("[Page %d | Section: %s]\n\n%s", el.PageNumber, el.Section, el.Body),
			Metadata: domain.ChunkMetadata{
				SourceName:   sourceName,
				PageNumber:   el.PageNumber,
				SectionTitle: el.Section,
				IsTable:      el.Kind == domain.KindTable,
			},
		})
	}
	return chunks
}
