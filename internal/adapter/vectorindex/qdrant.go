package vectorindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// Qdrant is a minimal REST client to a Qdrant collection. It assumes cosine
// distance and creates the collection on Init if missing. Chunk ids live in
// the point payload; Qdrant's own point ids are derived hashes, which keeps
// upserts idempotent.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// QdrantConfig configures the REST client.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init ensures the collection exists with the given dimension.
func (q *Qdrant) Init(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	q.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.do("PUT", fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil)
}

func (q *Qdrant) Upsert(items []port.VectorItem) error {
	points := make([]map[string]any, len(items))
	for i, item := range items {
		payload := map[string]any{"chunk_id": item.ID}
		for k, v := range item.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      pointID(item.ID),
			"vector":  item.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	return q.do("PUT", url, body, nil)
}

func (q *Qdrant) FindNeighbors(query []float32, k int, filter *port.Filter) ([]domain.Neighbor, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": []string{"chunk_id"},
	}
	if filter != nil {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": filter.Namespace, "match": map[string]any{"any": filter.Allow}},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				ChunkID string `json:"chunk_id"`
			} `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.do("POST", url, body, &resp); err != nil {
		return nil, err
	}

	neighbors := make([]domain.Neighbor, 0, len(resp.Result))
	for i, r := range resp.Result {
		neighbors = append(neighbors, domain.Neighbor{
			ID:    r.Payload.ChunkID,
			Rank:  i,
			Score: r.Score,
		})
	}
	return neighbors, nil
}

func (q *Qdrant) Delete(ids []string) error {
	points := make([]uint64, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection)
	return q.do("POST", url, body, nil)
}

// Clear removes all points from the collection via a match-all filter.
func (q *Qdrant) Clear() error {
	body := map[string]any{"filter": map[string]any{}}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection)
	return q.do("POST", url, body, nil)
}

func (q *Qdrant) Count() (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", q.url, q.collection)
	if err := q.do("POST", url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (q *Qdrant) do(method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal qdrant request: %w", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse qdrant response: %w", err)
		}
	}
	return nil
}

// pointID derives a stable numeric Qdrant point id from a chunk id.
func pointID(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
