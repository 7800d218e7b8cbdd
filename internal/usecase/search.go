package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"docrag/internal/adapter/retriever"
	"docrag/internal/domain"
	"docrag/internal/port"
)

// PassageSeparator joins assembled passages in a retrieval context.
const PassageSeparator = "\n\n---\n\n"

// dedupPrefixLen is how much of a passage identifies it for cross-query
// deduplication. Overlap stitching gives passages distinct heads even when
// their tails repeat, so a bounded prefix is enough.
const dedupPrefixLen = 200

// SearchOptions tunes the retrieval assembler.
type SearchOptions struct {
	// TopK is the neighbor count per plain search.
	TopK int
	// VariantTopK is the neighbor count per query variant in comprehensive
	// search.
	VariantTopK int
	// MaxContextChars bounds the total assembled context length.
	MaxContextChars int
	// Filter restricts neighbor searches to this corpus source; nil
	// searches unfiltered from the start.
	Filter *port.Filter
}

// SearchUseCase assembles a bounded, citation-ready context from vector
// search results: embed the query, find neighbors, resolve their ids
// against the corpus, and append passages until the budget is hit.
type SearchUseCase struct {
	embedder port.Embedder
	index    port.VectorIndex
	corpus   port.CorpusIndex
	expander *retriever.Expander
	opts     SearchOptions
}

func NewSearchUseCase(embedder port.Embedder, index port.VectorIndex, corpusIndex port.CorpusIndex, expander *retriever.Expander, opts SearchOptions) *SearchUseCase {
	if opts.TopK <= 0 {
		opts.TopK = 50
	}
	if opts.VariantTopK <= 0 {
		opts.VariantTopK = 30
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 80000
	}
	return &SearchUseCase{
		embedder: embedder,
		index:    index,
		corpus:   corpusIndex,
		expander: expander,
		opts:     opts,
	}
}

// Search runs one query through the full lifecycle: embed, search with the
// source filter, retry unfiltered if the filtered call came back empty,
// resolve ids, assemble under the character budget. Neighbor ids missing
// from the corpus are dropped; if neighbors existed but none resolved, the
// diagnostic flags the likely corpus/index mismatch.
func (u *SearchUseCase) Search(query string, topK int) (domain.RetrievalContext, error) {
	if topK <= 0 {
		topK = u.opts.TopK
	}
	vectors, err := u.embedder.Embed([]string{query})
	if err != nil {
		return domain.RetrievalContext{}, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return domain.RetrievalContext{}, fmt.Errorf("embedder returned no vector")
	}

	neighbors, err := u.index.FindNeighbors(vectors[0], topK, u.opts.Filter)
	if err != nil {
		return domain.RetrievalContext{}, fmt.Errorf("neighbor search failed: %w", err)
	}
	if len(neighbors) == 0 && u.opts.Filter != nil {
		// A missing or mis-tagged filter must not make retrieval blind;
		// retry once unfiltered and swallow a retry failure.
		if unfiltered, retryErr := u.index.FindNeighbors(vectors[0], topK, nil); retryErr == nil {
			neighbors = unfiltered
		}
	}

	var passages []string
	total := 0
	truncated := false
	for _, n := range neighbors {
		text, ok := u.corpus.Get(n.ID)
		if !ok || text == "" {
			continue
		}
		if total+len(text) > u.opts.MaxContextChars {
			truncated = true
			break
		}
		passages = append(passages, text)
		total += len(text)
	}

	ctx := domain.RetrievalContext{
		Passages:   passages,
		TotalChars: total,
		Truncated:  truncated,
	}
	if len(passages) == 0 {
		if len(neighbors) > 0 {
			ctx.Diagnostic = fmt.Sprintf(
				"vector search returned %d neighbors but none matched corpus chunk ids; the corpus and the vector index were likely built from different ingestion runs", len(neighbors))
		} else {
			ctx.Diagnostic = "vector search returned no neighbors, with and without the source filter"
		}
	}
	return ctx, nil
}

// ComprehensiveSearch runs the query plus its keyword-derived variants and
// unions the passages, deduplicated by a hash of each passage's first 200
// characters in first-seen order, then applies the character budget to the
// union. Variants run in a fixed sequence, so the result is reproducible.
func (u *SearchUseCase) ComprehensiveSearch(question string) (domain.RetrievalContext, error) {
	variants := u.expander.Expand(question)

	seen := make(map[string]struct{})
	var union []string
	for _, q := range variants {
		res, err := u.Search(q, u.opts.VariantTopK)
		if err != nil {
			continue // one failed variant must not sink the rest
		}
		for _, p := range res.Passages {
			key := passageKey(p)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, p)
		}
	}

	var passages []string
	total := 0
	truncated := false
	for _, p := range union {
		if total+len(p) > u.opts.MaxContextChars {
			truncated = true
			break
		}
		passages = append(passages, p)
		total += len(p)
	}

	ctx := domain.RetrievalContext{
		Passages:   passages,
		TotalChars: total,
		Truncated:  truncated,
	}
	if len(passages) == 0 {
		ctx.Diagnostic = fmt.Sprintf("no passages retrieved across %d query variants", len(variants))
	}
	return ctx, nil
}

// JoinContext renders a retrieval context as one string for the answerer.
func JoinContext(ctx domain.RetrievalContext) string {
	return strings.Join(ctx.Passages, PassageSeparator)
}

func passageKey(p string) string {
	if len(p) > dedupPrefixLen {
		p = p[:dedupPrefixLen]
	}
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:8])
}
