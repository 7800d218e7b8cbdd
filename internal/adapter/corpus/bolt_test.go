package corpus

import (
	"path/filepath"
	"testing"

	"docrag/internal/domain"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStorePutGet(t *testing.T) {
	store := openTestStore(t)

	chunk := sampleChunk("doc_p1_text_0")
	if err := store.Put(chunk); err != nil {
		t.Fatalf("Put: %v", err)
	}

	text, ok := store.Get("doc_p1_text_0")
	if !ok || text != chunk.Text {
		t.Errorf("Get = %q, %v", text, ok)
	}
	if _, ok := store.Get("absent"); ok {
		t.Error("missing id should not resolve")
	}

	got, err := store.GetChunk("doc_p1_text_0")
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if got != chunk {
		t.Errorf("GetChunk = %+v, want %+v", got, chunk)
	}
	if _, err := store.GetChunk("absent"); err == nil {
		t.Error("expected error for missing chunk")
	}
}

func TestBoltStorePutAllAndCount(t *testing.T) {
	store := openTestStore(t)

	chunks := []domain.Chunk{
		sampleChunk("a_p1_text_0"),
		sampleChunk("a_p1_text_1"),
		sampleChunk("a_p2_table_2"),
	}
	if err := store.PutAll(chunks); err != nil {
		t.Fatalf("PutAll: %v", err)
	}

	n, err := store.Count()
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v, want 3", n, err)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d chunks", len(all))
	}
	// bbolt iterates in key order.
	if all[0].ID != "a_p1_text_0" || all[2].ID != "a_p2_table_2" {
		t.Errorf("unexpected order: %s, %s", all[0].ID, all[2].ID)
	}
}

func TestBoltStoreClear(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutAll([]domain.Chunk{sampleChunk("x_p1_text_0")}); err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if err := store.UpdateStats(domain.Stats{TotalChunks: 1}); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := store.Count(); n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}
	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalChunks != 0 {
		t.Errorf("stats should reset with the corpus, got %+v", stats)
	}
}

func TestBoltStoreStatsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	want := domain.Stats{TotalDocs: 2, TotalChunks: 40, TableChunks: 6, AvgChunkLen: 812.5}
	if err := store.UpdateStats(want); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}
	got, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}
