package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/corpus"
	"docrag/internal/adapter/fs"
	"docrag/internal/adapter/layout"
	"docrag/internal/domain"
)

// IngestOptions tunes one ingestion run.
type IngestOptions struct {
	// OverlapRatio is the fraction of a chunk's body duplicated into the
	// next chunk. Zero disables overlap.
	OverlapRatio float64
	// MergeMinChars folds undersized text chunks into their predecessor
	// before overlap. Zero disables the pass.
	MergeMinChars int
	// CorpusPath, when set, receives the JSONL export of all chunks.
	CorpusPath string
}

// IngestUseCase turns a directory of layout-analysis JSON into a chunk
// corpus. Each document is chunked independently; a malformed document
// fails only itself, never the batch.
type IngestUseCase struct {
	store     *corpus.BoltStore
	walker    *fs.Walker
	collector *layout.Collector
	opts      IngestOptions
}

func NewIngestUseCase(store *corpus.BoltStore, walker *fs.Walker, opts IngestOptions) *IngestUseCase {
	return &IngestUseCase{
		store:     store,
		walker:    walker,
		collector: layout.NewCollector(),
		opts:      opts,
	}
}

// IngestResult reports one ingestion run.
type IngestResult struct {
	DocsIngested  int
	DocsSkipped   int
	ChunksCreated int
	TableChunks   int
	Errors        []string
}

// Ingest rebuilds the corpus from the layout JSON under root. A run
// replaces the corpus wholesale: chunk ids are deterministic per document,
// so an unchanged document reproduces its previous ids exactly. progress
// may be nil.
func (u *IngestUseCase) Ingest(root string, progress func(done, total int, label string)) (*IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	docs := groupDocuments(root, files)
	if len(docs) == 0 {
		return nil, fmt.Errorf("no layout JSON found under %s", root)
	}

	if err := u.store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear corpus: %w", err)
	}

	result := &IngestResult{}
	var allChunks []domain.Chunk
	totalLen := 0

	for i, doc := range docs {
		chunks, err := u.ingestDocument(doc)
		if err != nil {
			result.DocsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.label, err))
			continue
		}
		if err := u.store.PutAll(chunks); err != nil {
			return nil, fmt.Errorf("failed to store chunks for %s: %w", doc.label, err)
		}
		result.DocsIngested++
		result.ChunksCreated += len(chunks)
		for _, c := range chunks {
			if c.Metadata.IsTable {
				result.TableChunks++
			}
			totalLen += len(c.Text)
		}
		allChunks = append(allChunks, chunks...)
		if progress != nil {
			progress(i+1, len(docs), doc.label)
		}
	}

	avg := 0.0
	if result.ChunksCreated > 0 {
		avg = float64(totalLen) / float64(result.ChunksCreated)
	}
	stats := domain.Stats{
		TotalDocs:   result.DocsIngested,
		TotalChunks: result.ChunksCreated,
		TableChunks: result.TableChunks,
		AvgChunkLen: avg,
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	if u.opts.CorpusPath != "" && len(allChunks) > 0 {
		if err := writeCorpusFile(u.opts.CorpusPath, allChunks); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ingestDocument runs the full chunking pipeline for one document.
func (u *IngestUseCase) ingestDocument(doc documentSource) ([]domain.Chunk, error) {
	data, err := os.ReadFile(doc.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	parsed, err := layout.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	elements := u.collector.Collect(parsed)
	if len(elements) == 0 {
		return nil, fmt.Errorf("no elements extracted")
	}

	chunks := chunker.Assemble(elements, doc.label, doc.label)
	chunks = chunker.MergeSmall(chunks, u.opts.MergeMinChars)
	chunks = chunker.ApplyOverlap(chunks, u.opts.OverlapRatio)
	return chunks, nil
}

type documentSource struct {
	label string
	path  string
}

// groupDocuments maps discovered files to documents. A JSON file directly
// under root is its own document, labeled by file stem. Files in a
// subdirectory belong to one document labeled by the top-level directory
// name, since batch layout output writes one folder per source document;
// "document.json" is preferred when the folder holds several files.
func groupDocuments(root string, files []string) []documentSource {
	groups := make(map[string][]string)
	var order []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			continue
		}
		parts := strings.Split(rel, string(filepath.Separator))
		label := parts[0]
		if len(parts) == 1 {
			label = strings.TrimSuffix(label, filepath.Ext(label))
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], f)
	}

	docs := make([]documentSource, 0, len(order))
	for _, label := range order {
		candidates := groups[label]
		chosen := candidates[0]
		for _, c := range candidates {
			if filepath.Base(c) == "document.json" {
				chosen = c
				break
			}
		}
		docs = append(docs, documentSource{label: label, path: chosen})
	}
	return docs
}

func writeCorpusFile(path string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create corpus dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer f.Close()
	if err := corpus.WriteJSONL(f, corpus.NewRecords(chunks)); err != nil {
		return fmt.Errorf("failed to write corpus file: %w", err)
	}
	return f.Close()
}
