package chunker

import "docrag/internal/domain"

// MergeSmall folds text chunks whose body is shorter than minChars into the
// preceding text chunk. Table chunks are never merged, in either direction:
// a table stays exactly one chunk. Run this before ApplyOverlap; it keeps
// the surviving chunk's id and metadata, so ids remain deterministic.
// minChars <= 0 disables the pass.
func MergeSmall(chunks []domain.Chunk, minChars int) []domain.Chunk {
	if minChars <= 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(out) > 0 && !c.Metadata.IsTable {
			prev := &out[len(out)-1]
			if !prev.Metadata.IsTable && len(chunkBody(c.Text)) < minChars {
				prev.Text += "\n\n" + chunkBody(c.Text)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
