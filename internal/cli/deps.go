package cli

import (
	"fmt"
	"os"

	"docrag/config"
	"docrag/internal/adapter/corpus"
	"docrag/internal/adapter/embedding"
	"docrag/internal/adapter/retriever"
	"docrag/internal/adapter/vectorindex"
	"docrag/internal/port"
	"docrag/internal/usecase"
)

// newEmbedder builds the configured embedding client.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMock(cfg.Embedding.Dimension), nil
	case "openai", "ollama":
		return embedding.New(embedding.Config{
			Provider:  cfg.Embedding.Provider,
			Model:     cfg.Embedding.Model,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newVectorIndex builds the configured vector index. The bolt provider
// shares the corpus database file.
func newVectorIndex(cfg *config.Config, store *corpus.BoltStore, dimension int) (port.VectorIndex, error) {
	switch cfg.Vector.Provider {
	case "bolt":
		return vectorindex.NewBoltIndex(store.DB(), dimension)
	case "qdrant":
		q := vectorindex.NewQdrant(vectorindex.QdrantConfig{
			URL:        cfg.Vector.URL,
			APIKey:     os.Getenv(cfg.Vector.APIKeyEnv),
			Collection: cfg.Vector.Collection,
		})
		if err := q.Init(dimension); err != nil {
			return nil, fmt.Errorf("failed to init qdrant collection: %w", err)
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unsupported vector provider: %s", cfg.Vector.Provider)
	}
}

// sourceFilter builds the namespace filter restricting searches to this
// pipeline's vectors. An empty source token disables filtering.
func sourceFilter(cfg *config.Config) *port.Filter {
	if cfg.Vector.SourceToken == "" {
		return nil
	}
	return &port.Filter{
		Namespace: cfg.Vector.SourceNamespace,
		Allow:     []string{cfg.Vector.SourceToken},
	}
}

// buildSearch wires the full retrieval stack for query-time commands. The
// returned closer owns the corpus database.
func buildSearch(cfg *config.Config, dir string) (*usecase.SearchUseCase, func() error, error) {
	dbPath := config.CorpusDBPath(dir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("no corpus found at %s. Run 'docrag ingest' first", dbPath)
	}
	store, err := corpus.NewBoltStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	index, err := newVectorIndex(cfg, store, embedder.Dimension())
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	expander := retriever.NewExpanderWithMappings(cfg.Search.Expansions)
	search := usecase.NewSearchUseCase(embedder, index, store, expander, usecase.SearchOptions{
		TopK:            cfg.Search.TopK,
		VariantTopK:     cfg.Search.VariantTopK,
		MaxContextChars: cfg.Search.MaxContextChars,
		Filter:          sourceFilter(cfg),
	})
	return search, store.Close, nil
}
