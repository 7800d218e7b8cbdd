package corpus

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
)

var (
	bucketChunks = []byte("chunks")
	bucketStats  = []byte("stats")
	keyStats     = []byte("corpus_stats")
)

// BoltStore is the bbolt-backed corpus index: chunk records keyed by id,
// plus corpus stats. It is the query-time CorpusIndex for local deployments.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// DB exposes the underlying database so the local vector index can share
// one file with the corpus.
func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func (s *BoltStore) Put(chunk domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putChunk(tx, chunk)
	})
}

// PutAll stores all chunks in one transaction.
func (s *BoltStore) PutAll(chunks []domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, c := range chunks {
			if err := putChunk(tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func putChunk(tx *bbolt.Tx, chunk domain.Chunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk %s: %w", chunk.ID, err)
	}
	return tx.Bucket(bucketChunks).Put([]byte(chunk.ID), data)
}

func (s *BoltStore) Get(id string) (string, bool) {
	var text string
	found := false
	s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return nil
		}
		var c domain.Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			return nil // treat a corrupt record as a miss
		}
		text = c.Text
		found = true
		return nil
	})
	return text, found
}

// GetChunk returns the full chunk record for an id.
func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var c domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk not found: %s", id)
		}
		return json.Unmarshal(data, &c)
	})
	return c, err
}

// All returns every chunk in the corpus in key order.
func (s *BoltStore) All() ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var c domain.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("corrupt chunk record %s: %w", k, err)
			}
			chunks = append(chunks, c)
			return nil
		})
	})
	return chunks, err
}

func (s *BoltStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketChunks).Stats().KeyN
		return nil
	})
	return count, err
}

// Clear drops all chunks and stats. Ingestion replaces a corpus wholesale,
// so every run starts here.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketStats} {
			if err := tx.DeleteBucket(b); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
