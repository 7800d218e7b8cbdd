package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docrag/config"
	"docrag/internal/adapter/corpus"
	"docrag/internal/adapter/fs"
	"docrag/internal/port"
	"docrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk layout-analysis JSON into a retrievable corpus",
	Long: `Ingest walks a directory of layout-analysis JSON files, chunks each
document, and rebuilds the corpus under .docrag/ in the target directory.
When embeddings are enabled the chunks are also embedded and upserted into
the configured vector index.

Examples:
  docrag ingest .                  # Ingest parsed documents in cwd
  docrag ingest /data/parsed       # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var ingestSkipEmbed bool

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestSkipEmbed, "skip-embeddings", false, "chunk only, do not embed or index vectors")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .docrag directory: %w", err)
	}

	store, err := corpus.NewBoltStore(config.CorpusDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open corpus store: %w", err)
	}
	defer store.Close()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	ingestUC := usecase.NewIngestUseCase(store, walker, usecase.IngestOptions{
		OverlapRatio:  cfg.Ingest.OverlapRatio,
		MergeMinChars: cfg.Ingest.MergeMinChars,
		CorpusPath:    config.CorpusFilePath(path),
	})

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	progress := func(done, total int, label string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Chunking[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	result, err := ingestUC.Ingest(path, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	var embedded int
	if !ingestSkipEmbed {
		embedded, err = embedCorpus(store, cfg)
		if err != nil {
			fmt.Printf("\nWarning: embedding failed: %v\n", err)
		}
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents ingested: %d\n", result.DocsIngested)
	fmt.Printf("  Documents skipped:  %d\n", result.DocsSkipped)
	fmt.Printf("  Chunks created:     %d (%d tables)\n", result.ChunksCreated, result.TableChunks)
	if embedded > 0 {
		fmt.Printf("  Vectors indexed:    %d\n", embedded)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nCorpus stored at: %s\n", config.CorpusDBPath(path))
	fmt.Printf("Corpus export:    %s\n", config.CorpusFilePath(path))
	return nil
}

// embedCorpus embeds all chunks in batches and upserts them into the
// vector index, tagged with the source token the query-time filter expects.
func embedCorpus(store *corpus.BoltStore, cfg *config.Config) (int, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return 0, err
	}
	index, err := newVectorIndex(cfg, store, embedder.Dimension())
	if err != nil {
		return 0, err
	}
	// The corpus was rebuilt wholesale; stale vectors would otherwise
	// survive as unresolvable neighbor ids.
	if err := index.Clear(); err != nil {
		return 0, fmt.Errorf("failed to clear vector index: %w", err)
	}

	chunks, err := store.All()
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	fmt.Printf("\nEmbedding %d chunks (model %s)...\n", len(chunks), embedder.ModelName())
	bar := progressbar.NewOptions(len(chunks),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	indexed := 0
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}
		vectors, err := embedder.Embed(texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding batch failed: %w", err)
		}

		items := make([]port.VectorItem, len(batch))
		for j, c := range batch {
			items[j] = port.VectorItem{
				ID:     c.ID,
				Vector: vectors[j],
				Metadata: map[string]string{
					cfg.Vector.SourceNamespace: cfg.Vector.SourceToken,
				},
			}
		}
		if err := index.Upsert(items); err != nil {
			return indexed, fmt.Errorf("failed to store vectors: %w", err)
		}
		indexed += len(batch)
		bar.Set(indexed)
	}
	return indexed, nil
}
