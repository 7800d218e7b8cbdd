package port

import "docrag/internal/domain"

// CorpusIndex is the id -> chunk lookup built at ingestion time and read-only
// at query time.
type CorpusIndex interface {
	// Get returns the chunk text for an id. Unknown ids return ok=false,
	// never an error: a stale neighbor id is the caller's concern.
	Get(id string) (text string, ok bool)

	// Put stores one chunk.
	Put(chunk domain.Chunk) error

	// Count returns the number of chunks in the corpus.
	Count() (int, error)
}
