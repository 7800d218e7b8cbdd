package vectorindex

import (
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"docrag/internal/port"
)

func openTestIndex(t *testing.T, dimension int) *BoltIndex {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "vectors.db"), 0600, nil)
	if err != nil {
		t.Fatalf("bbolt.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	idx, err := NewBoltIndex(db, dimension)
	if err != nil {
		t.Fatalf("NewBoltIndex: %v", err)
	}
	return idx
}

func TestBoltIndexFindNeighbors(t *testing.T) {
	idx := openTestIndex(t, 3)

	items := []port.VectorItem{
		{ID: "close", Vector: []float32{1, 0, 0}},
		{ID: "mid", Vector: []float32{1, 1, 0}},
		{ID: "far", Vector: []float32{0, 0, 1}},
	}
	if err := idx.Upsert(items); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	neighbors, err := idx.FindNeighbors([]float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].ID != "close" || neighbors[1].ID != "mid" {
		t.Errorf("order = %s, %s", neighbors[0].ID, neighbors[1].ID)
	}
	if neighbors[0].Rank != 0 || neighbors[1].Rank != 1 {
		t.Errorf("ranks = %d, %d", neighbors[0].Rank, neighbors[1].Rank)
	}
	if neighbors[0].Score <= neighbors[1].Score {
		t.Errorf("scores not descending: %f, %f", neighbors[0].Score, neighbors[1].Score)
	}
}

func TestBoltIndexTiesBreakByID(t *testing.T) {
	idx := openTestIndex(t, 2)

	if err := idx.Upsert([]port.VectorItem{
		{ID: "beta", Vector: []float32{1, 0}},
		{ID: "alpha", Vector: []float32{2, 0}},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	neighbors, err := idx.FindNeighbors([]float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	// Both vectors have cosine 1 against the query; order falls back to id.
	if neighbors[0].ID != "alpha" || neighbors[1].ID != "beta" {
		t.Errorf("tie order = %s, %s", neighbors[0].ID, neighbors[1].ID)
	}
}

func TestBoltIndexNamespaceFilter(t *testing.T) {
	idx := openTestIndex(t, 2)

	if err := idx.Upsert([]port.VectorItem{
		{ID: "tagged", Vector: []float32{1, 0}, Metadata: map[string]string{"source": "doc-pipeline"}},
		{ID: "other", Vector: []float32{1, 0}, Metadata: map[string]string{"source": "scratch"}},
		{ID: "untagged", Vector: []float32{1, 0}},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	filter := &port.Filter{Namespace: "source", Allow: []string{"doc-pipeline"}}
	neighbors, err := idx.FindNeighbors([]float32{1, 0}, 10, filter)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].ID != "tagged" {
		t.Errorf("filter result = %+v", neighbors)
	}

	unfiltered, err := idx.FindNeighbors([]float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(unfiltered) != 3 {
		t.Errorf("nil filter should match everything, got %d", len(unfiltered))
	}
}

func TestBoltIndexDimensionMismatch(t *testing.T) {
	idx := openTestIndex(t, 3)

	if err := idx.Upsert([]port.VectorItem{{ID: "bad", Vector: []float32{1, 0}}}); err == nil {
		t.Error("expected upsert dimension error")
	}
	if _, err := idx.FindNeighbors([]float32{1, 0}, 5, nil); err == nil {
		t.Error("expected query dimension error")
	}
}

func TestBoltIndexDeleteAndCount(t *testing.T) {
	idx := openTestIndex(t, 2)

	if err := idx.Upsert([]port.VectorItem{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Delete([]string{"a", "never-existed"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := idx.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestBoltIndexClear(t *testing.T) {
	idx := openTestIndex(t, 2)

	if err := idx.Upsert([]port.VectorItem{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := idx.Count(); n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}
	neighbors, err := idx.FindNeighbors([]float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("cleared index returned %v", neighbors)
	}

	if err := idx.Upsert([]port.VectorItem{{ID: "c", Vector: []float32{1, 1}}}); err != nil {
		t.Fatalf("Upsert after Clear: %v", err)
	}
	if n, _ := idx.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestBoltIndexIgnoresMismatchedStoredVectors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.db")

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("bbolt.Open: %v", err)
	}
	idx, err := NewBoltIndex(db, 3)
	if err != nil {
		t.Fatalf("NewBoltIndex: %v", err)
	}
	if err := idx.Upsert([]port.VectorItem{{ID: "old", Vector: []float32{1, 0, 0}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	db.Close()

	// Reopen under a different embedding dimension, as after a model change.
	db, err = bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	reloaded, err := NewBoltIndex(db, 4)
	if err != nil {
		t.Fatalf("NewBoltIndex: %v", err)
	}

	neighbors, err := reloaded.FindNeighbors([]float32{1, 0, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("stored vector of the wrong dimension should be ignored, got %v", neighbors)
	}
	if n, _ := reloaded.Count(); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestBoltIndexReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.db")

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("bbolt.Open: %v", err)
	}
	idx, err := NewBoltIndex(db, 2)
	if err != nil {
		t.Fatalf("NewBoltIndex: %v", err)
	}
	if err := idx.Upsert([]port.VectorItem{{ID: "persisted", Vector: []float32{0, 1}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	db.Close()

	db, err = bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	reloaded, err := NewBoltIndex(db, 2)
	if err != nil {
		t.Fatalf("NewBoltIndex: %v", err)
	}
	neighbors, err := reloaded.FindNeighbors([]float32{0, 1}, 1, nil)
	if err != nil {
		t.Fatalf("FindNeighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].ID != "persisted" {
		t.Errorf("reload result = %+v", neighbors)
	}
}
