// Package file loads the application configuration from a TOML file.
//
// Configuration is an immutable struct handed to constructors at
// startup. Secrets never live in the file; each provider section
// names the environment variable its API key is read from.
package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
)

// Provider identifiers accepted in [llm].
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Index modes and backends accepted in [index].
const (
	ModeEphemeral  = "ephemeral"
	ModePersistent = "persistent"

	BackendChromem = "chromem"
	BackendMemory  = "memory"
)

// Config is the full application configuration.
type Config struct {
	Corpus    CorpusConfig    `toml:"corpus"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Index     IndexConfig     `toml:"index"`
	Audit     AuditConfig     `toml:"audit"`
}

// CorpusConfig locates the documents and their display names.
type CorpusConfig struct {
	// Dir is the directory walked for .pdf and .csv files.
	Dir string `toml:"dir"`

	// SourceNames maps a filename to its human-readable display name,
	// used in citations. Files not listed fall back to the filename.
	SourceNames map[string]string `toml:"source_names"`

	// DatasetName is the display name for tabular sources.
	DatasetName string `toml:"dataset_name"`
}

// ChunkingConfig controls the word-window chunker.
type ChunkingConfig struct {
	Size         int `toml:"size"`
	Overlap      int `toml:"overlap"`
	MinPageChars int `toml:"min_page_chars"`
	MinRowChars  int `toml:"min_row_chars"`
}

// RetrievalConfig controls search depth and the confidence gate.
type RetrievalConfig struct {
	TopK             int     `toml:"top_k"`
	SimilarityCutoff float64 `toml:"similarity_cutoff"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	APIKeyEnv  string `toml:"api_key_env"`
}

// LLMConfig selects the language model provider.
type LLMConfig struct {
	Provider  string `toml:"provider"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
	APIKeyEnv string `toml:"api_key_env"`
}

// IndexConfig selects the vector index realization.
type IndexConfig struct {
	// Mode is "persistent" or "ephemeral". Ephemeral indexes are
	// rebuilt on every start.
	Mode string `toml:"mode"`

	// Backend is "chromem" or "memory".
	Backend string `toml:"backend"`

	// Path is the on-disk location used in persistent mode.
	Path string `toml:"path"`

	// Collection names the chromem collection.
	Collection string `toml:"collection"`
}

// AuditConfig controls the query audit trail.
type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when a field is absent from
// the file.
func Default() Config {
	return Config{
		Corpus: CorpusConfig{
			Dir: "corpus",
		},
		Chunking: ChunkingConfig{
			Size:         600,
			Overlap:      100,
			MinPageChars: 80,
			MinRowChars:  40,
		},
		Retrieval: RetrievalConfig{
			TopK:             5,
			SimilarityCutoff: 0.65,
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			APIKeyEnv:  "OPENAI_API_KEY",
		},
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 1024,
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		Index: IndexConfig{
			Mode:       ModePersistent,
			Backend:    BackendChromem,
			Path:       "index",
			Collection: "corpus",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "logs/audit.jsonl",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates
// the result. A missing file yields the pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Corpus.Dir == "" {
		return fmt.Errorf("%w: corpus.dir must be set", domain.ErrInvalidConfig)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrInvalidConfig)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidConfig)
	}
	if c.Retrieval.SimilarityCutoff < 0 || c.Retrieval.SimilarityCutoff > 1 {
		return fmt.Errorf("%w: retrieval.similarity_cutoff must be in [0, 1]", domain.ErrInvalidConfig)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding.model must be set", domain.ErrInvalidConfig)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding.dimensions must be positive", domain.ErrInvalidConfig)
	}
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: llm.provider must be %q or %q", domain.ErrInvalidConfig, ProviderAnthropic, ProviderOpenAI)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model must be set", domain.ErrInvalidConfig)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("%w: llm.max_tokens must be positive", domain.ErrInvalidConfig)
	}
	switch c.Index.Mode {
	case ModeEphemeral, ModePersistent:
	default:
		return fmt.Errorf("%w: index.mode must be %q or %q", domain.ErrInvalidConfig, ModeEphemeral, ModePersistent)
	}
	switch c.Index.Backend {
	case BackendChromem, BackendMemory:
	default:
		return fmt.Errorf("%w: index.backend must be %q or %q", domain.ErrInvalidConfig, BackendChromem, BackendMemory)
	}
	if c.Index.Mode == ModePersistent && c.Index.Path == "" {
		return fmt.Errorf("%w: index.path must be set in persistent mode", domain.ErrInvalidConfig)
	}
	if c.Index.Backend == BackendChromem && c.Index.Collection == "" {
		return fmt.Errorf("%w: index.collection must be set", domain.ErrInvalidConfig)
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		return fmt.Errorf("%w: audit.path must be set when audit is enabled", domain.ErrInvalidConfig)
	}
	return nil
}

// APIKey resolves a provider's key from the environment variable the
// section names.
func APIKey(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("%w: api_key_env must be set", domain.ErrInvalidConfig)
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", domain.ErrInvalidConfig, envVar)
	}
	return key, nil
}
