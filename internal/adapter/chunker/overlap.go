package chunker

import (
	"strings"

	"docrag/internal/domain"
)

// MinOverlapChars is the floor on the overlap snippet length.
const MinOverlapChars = 50

// ApplyOverlap prefixes each chunk after the first with the trailing
// fragment of the previous chunk's body, so consecutive chunks keep context
// across their seam. The snippet length is max(MinOverlapChars,
// floor(len(prevBody)*ratio)); the previous body is the previous output
// text with its leading header line stripped. Overlap is computed against
// the already-stitched previous output, not the original chunk, so
// snippets can compound across runs of short chunks.
func ApplyOverlap(chunks []domain.Chunk, ratio float64) []domain.Chunk {
	if ratio <= 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]domain.Chunk, 0, len(chunks))
	out = append(out, chunks[0])
	for _, c := range chunks[1:] {
		body := chunkBody(out[len(out)-1].Text)
		n := int(float64(len(body)) * ratio)
		if n < MinOverlapChars {
			n = MinOverlapChars
		}
		if start := len(body) - n; start > 0 {
			c.Text = "... " + strings.TrimSpace(body[start:]) + "\n\n" + c.Text
		}
		out = append(out, c)
	}
	return out
}

// chunkBody strips the "[Page N | Section: ...]" header line and its
// trailing blank line from a chunk's text.
func chunkBody(text string) string {
	if i := strings.Index(text, "\n\n"); i >= 0 {
		return text[i+2:]
	}
	return text
}
