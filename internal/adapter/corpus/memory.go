package corpus

import (
	"fmt"
	"os"

	"docrag/internal/domain"
)

// MemoryIndex is an in-memory id -> text lookup loaded from a corpus JSONL
// file. It serves deployments where the JSONL export is the only artifact
// at hand (the database stayed on the ingestion host).
type MemoryIndex struct {
	texts map[string]string
}

// LoadFile reads a corpus JSONL file into a MemoryIndex.
func LoadFile(path string) (*MemoryIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	records, err := ReadJSONL(f)
	if err != nil {
		return nil, err
	}
	idx := &MemoryIndex{texts: make(map[string]string, len(records))}
	for _, rec := range records {
		idx.texts[rec.Chunk.ID] = rec.Chunk.Text
	}
	return idx, nil
}

// NewMemoryIndex builds an index directly from chunks.
func NewMemoryIndex(chunks []domain.Chunk) *MemoryIndex {
	idx := &MemoryIndex{texts: make(map[string]string, len(chunks))}
	for _, c := range chunks {
		idx.texts[c.ID] = c.Text
	}
	return idx
}

func (m *MemoryIndex) Get(id string) (string, bool) {
	text, ok := m.texts[id]
	return text, ok
}

func (m *MemoryIndex) Put(chunk domain.Chunk) error {
	m.texts[chunk.ID] = chunk.Text
	return nil
}

func (m *MemoryIndex) Count() (int, error) {
	return len(m.texts), nil
}
