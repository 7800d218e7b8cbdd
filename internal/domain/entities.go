package domain

// ElementKind distinguishes the two element types produced by layout
// collection.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindTable ElementKind = "table"
)

// Element is one unit of document content in reading order: a paragraph,
// block, line group, or serialized table, tagged with the page it came from
// and the section heading in force at that point. Elements are transient;
// they exist only between collection and chunk assembly.
type Element struct {
	PageNumber int
	Kind       ElementKind
	Body       string
	Section    string
}

// Chunk is the persisted, independently retrievable unit of document text.
// Text always begins with a "[Page N | Section: ...]" header line followed
// by a blank line and the body.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the retrieval-time attributes of a chunk.
type ChunkMetadata struct {
	SourceName   string `json:"source_name"`
	PageNumber   int    `json:"page_number"`
	SectionTitle string `json:"section_title"`
	IsTable      bool   `json:"is_table"`
}

// Neighbor is one result from the vector similarity index, ordered by rank.
type Neighbor struct {
	ID    string
	Rank  int
	Score float64
}

// RetrievalContext is the assembled, budget-bounded answer context for one
// query. Diagnostic is set when the result is empty for a reason the caller
// should surface (no neighbors, or a corpus/index mismatch).
type RetrievalContext struct {
	Passages   []string
	TotalChars int
	Truncated  bool
	Diagnostic string
}

// Stats summarizes an ingested corpus.
type Stats struct {
	TotalDocs   int
	TotalChunks int
	TableChunks int
	AvgChunkLen float64
}
