package port

import "docrag/internal/domain"

// Filter restricts a neighbor search to vectors whose metadata value under
// Namespace is one of the allowed tokens.
type Filter struct {
	Namespace string
	Allow     []string
}

// VectorIndex stores embedding vectors and answers nearest-neighbor queries.
type VectorIndex interface {
	// Upsert adds or updates vectors in the index.
	Upsert(items []VectorItem) error

	// FindNeighbors returns the k nearest vectors to the query, best first.
	// A nil filter searches the whole index.
	FindNeighbors(query []float32, k int, filter *Filter) ([]domain.Neighbor, error)

	// Delete removes vectors by their IDs.
	Delete(ids []string) error

	// Clear removes all vectors from the index.
	Clear() error

	// Count returns the number of vectors in the index.
	Count() (int, error)
}

// VectorItem is a vector to be stored, keyed by chunk ID.
type VectorItem struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}
