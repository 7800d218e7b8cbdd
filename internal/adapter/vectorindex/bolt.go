// Package vectorindex provides the vector-similarity collaborator: a local
// bbolt-backed brute-force index for self-contained deployments, and a
// Qdrant REST client for deployments with a real search service.
package vectorindex

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
	"docrag/internal/port"
)

var bucketVectors = []byte("vectors")

// BoltIndex persists vectors in bbolt and searches them brute-force over an
// in-memory cache. Fine for corpora in the tens of thousands of chunks.
type BoltIndex struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	vectors map[string]boltEntry
}

type boltEntry struct {
	vector   []float32
	metadata map[string]string
}

type storedVector struct {
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
}

// NewBoltIndex opens (and loads) the vector bucket in an existing database,
// typically the one shared with the corpus store.
func NewBoltIndex(db *bbolt.DB, dimension int) (*BoltIndex, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	idx := &BoltIndex{
		db:        db,
		dimension: dimension,
		vectors:   make(map[string]boltEntry),
	}
	if err := idx.load(); err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return idx, nil
}

func (s *BoltIndex) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			if len(stored.Vector) != s.dimension {
				return nil // written under a different embedding dimension
			}
			s.vectors[string(k)] = boltEntry{vector: stored.Vector, metadata: stored.Metadata}
			return nil
		})
	})
}

func (s *BoltIndex) Upsert(items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, item := range items {
			if len(item.Vector) != s.dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
			}
			data, err := json.Marshal(storedVector{Vector: item.Vector, Metadata: item.Metadata})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}
			s.vectors[item.ID] = boltEntry{vector: item.Vector, metadata: item.Metadata}
		}
		return nil
	})
}

func (s *BoltIndex) FindNeighbors(query []float32, k int, filter *port.Filter) ([]domain.Neighbor, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]domain.Neighbor, 0, len(s.vectors))
	for id, entry := range s.vectors {
		if !matches(entry.metadata, filter) {
			continue
		}
		scored = append(scored, domain.Neighbor{ID: id, Score: cosine(query, entry.vector)})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Rank = i
	}
	return scored, nil
}

func (s *BoltIndex) Delete(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			delete(s.vectors, id)
		}
		return nil
	})
}

func (s *BoltIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// Clear drops all vectors.
func (s *BoltIndex) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketVectors)
		return err
	})
	if err != nil {
		return err
	}
	s.vectors = make(map[string]boltEntry)
	return nil
}

func matches(metadata map[string]string, filter *port.Filter) bool {
	if filter == nil {
		return true
	}
	value, ok := metadata[filter.Namespace]
	if !ok {
		return false
	}
	for _, tok := range filter.Allow {
		if value == tok {
			return true
		}
	}
	return false
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
