package cli

import (
	"fmt"
	"path/filepath"

	"github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/audit/jsonl"
	"github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/config/file"
	openaiembed "github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/embedding/openai"
	"github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/llm/openai"
	"github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/vector/chromem"
	"github.com/evidentia-labs/corpusqa-cli/internal/adapters/driven/vector/memory"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/services"
	"github.com/evidentia-labs/corpusqa-cli/internal/ingest"
)

// buildPipeline constructs the full pipeline from the config file.
// The caller owns the returned pipeline and must Close it.
func buildPipeline() (*services.Pipeline, error) {
	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	llm, err := newLLM(cfg)
	if err != nil {
		return nil, err
	}

	index, err := newIndex(cfg)
	if err != nil {
		return nil, err
	}

	var audit driven.AuditSink
	if cfg.Audit.Enabled {
		audit, err = jsonl.New(cfg.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("open audit sink: %w", err)
		}
	}

	loader := ingest.New(
		ingest.WithChunkSize(cfg.Chunking.Size),
		ingest.WithChunkOverlap(cfg.Chunking.Overlap),
		ingest.WithMinPageChars(cfg.Chunking.MinPageChars),
		ingest.WithMinRowChars(cfg.Chunking.MinRowChars),
		ingest.WithSourceNames(cfg.Corpus.SourceNames),
		ingest.WithDatasetName(cfg.Corpus.DatasetName),
	)

	return services.NewPipeline(services.PipelineParams{
		Loader:    loader,
		Embedder:  embedder,
		Index:     index,
		LLM:       llm,
		Audit:     audit,
		CorpusDir: cfg.Corpus.Dir,
		TopK:      cfg.Retrieval.TopK,
		Cutoff:    cfg.Retrieval.SimilarityCutoff,
	})
}

func newEmbedder(cfg file.Config) (driven.EmbeddingService, error) {
	key, err := file.APIKey(cfg.Embedding.APIKeyEnv)
	if err != nil {
		return nil, err
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     key,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
}

func newLLM(cfg file.Config) (driven.LLMService, error) {
	key, err := file.APIKey(cfg.LLM.APIKeyEnv)
	if err != nil {
		return nil, err
	}

	switch cfg.LLM.Provider {
	case file.ProviderAnthropic:
		return anthropic.NewLLMService(anthropic.Config{
			APIKey:    key,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
	case file.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:    key,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newIndex(cfg file.Config) (driven.VectorIndex, error) {
	switch cfg.Index.Backend {
	case file.BackendChromem:
		path := ""
		if cfg.Index.Mode == file.ModePersistent {
			path = cfg.Index.Path
		}
		return chromem.New(chromem.Config{
			Path:       path,
			Collection: cfg.Index.Collection,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case file.BackendMemory:
		var opts []memory.Option
		if cfg.Index.Mode == file.ModePersistent {
			snapshot := filepath.Join(cfg.Index.Path, "index.gob")
			opts = append(opts, memory.WithSnapshot(snapshot, cfg.Embedding.Model))
		}
		return memory.New(cfg.Embedding.Dimensions, opts...)
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
}
