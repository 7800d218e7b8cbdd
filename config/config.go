package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for docrag.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Search    SearchConfig    `yaml:"search"`
	Serve     ServeConfig     `yaml:"serve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig holds chunking configuration.
type IngestConfig struct {
	Includes      []string `yaml:"includes"`
	Excludes      []string `yaml:"excludes"`
	OverlapRatio  float64  `yaml:"overlap_ratio"`
	MergeMinChars int      `yaml:"merge_min_chars"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for the API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// VectorConfig holds vector index configuration.
type VectorConfig struct {
	Provider        string `yaml:"provider"` // "bolt" or "qdrant"
	URL             string `yaml:"url"`
	APIKeyEnv       string `yaml:"api_key_env"`
	Collection      string `yaml:"collection"`
	SourceNamespace string `yaml:"source_namespace"`
	SourceToken     string `yaml:"source_token"`
}

// SearchConfig holds retrieval configuration.
type SearchConfig struct {
	TopK            int                 `yaml:"top_k"`
	VariantTopK     int                 `yaml:"variant_top_k"`
	MaxContextChars int                 `yaml:"max_context_chars"`
	Expansions      map[string][]string `yaml:"expansions"` // extra keyword rephrasings
}

// ServeConfig holds HTTP server configuration.
type ServeConfig struct {
	Addr      string `yaml:"addr"`
	APIKeyEnv string `yaml:"api_key_env"` // empty disables auth
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration. The defaults run fully
// local: mock embeddings, bbolt vector index, no auth.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes:     []string{"**/*.json"},
			Excludes:     []string{"**/.docrag/**"},
			OverlapRatio: 0.12,
		},
		Embedding: EmbeddingConfig{
			Provider:  "mock",
			Model:     "nomic-embed-text",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 768,
			BatchSize: 100,
		},
		Vector: VectorConfig{
			Provider:        "bolt",
			Collection:      "docrag",
			APIKeyEnv:       "QDRANT_API_KEY",
			SourceNamespace: "source",
			SourceToken:     "doc-pipeline",
		},
		Search: SearchConfig{
			TopK:            50,
			VariantTopK:     30,
			MaxContextChars: 80000,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory, probing docrag.yaml
// then .docrag/config.yaml before falling back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	path = filepath.Join(dir, ".docrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CorpusDBPath returns the path to the corpus database.
func CorpusDBPath(dir string) string {
	return filepath.Join(dir, ".docrag", "corpus.db")
}

// CorpusFilePath returns the path to the JSONL corpus export.
func CorpusFilePath(dir string) string {
	return filepath.Join(dir, ".docrag", "corpus.jsonl")
}

// EnsureDataDir ensures the .docrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docrag"), 0755)
}
