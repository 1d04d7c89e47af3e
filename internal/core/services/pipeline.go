package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
	"github.com/evidentia-labs/corpusqa-cli/internal/ingest"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// DefaultEmbedBatchSize bounds how many chunk texts are sent to the
// embedding service per request during indexing.
const DefaultEmbedBatchSize = 128

// answerPreviewRunes caps the answer excerpt stored in audit records.
const answerPreviewRunes = 300

// State is the pipeline lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateIndexing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIndexing:
		return "indexing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// PipelineParams collects the dependencies of a Pipeline. Audit is
// optional; everything else is required.
type PipelineParams struct {
	Loader    *ingest.Loader
	Embedder  driven.EmbeddingService
	Index     driven.VectorIndex
	LLM       driven.LLMService
	Audit     driven.AuditSink
	CorpusDir string
	TopK      int
	Cutoff    float64
	BatchSize int
}

// Pipeline orchestrates ingest, indexing, retrieval, generation and
// audit. Queries are served concurrently; BuildIndex is exclusive, so
// readers never observe a half-built index.
type Pipeline struct {
	mu        sync.RWMutex
	state     State
	loader    *ingest.Loader
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	llm       driven.LLMService
	retriever *Retriever
	generator *Generator
	audit     driven.AuditSink
	corpusDir string
	topK      int
	batchSize int
}

// NewPipeline validates params and wires the retriever and generator.
// The pipeline starts uninitialized; call BuildIndex before Query.
func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Loader == nil {
		return nil, fmt.Errorf("%w: pipeline requires a corpus loader", domain.ErrInvalidConfig)
	}
	if params.CorpusDir == "" {
		return nil, fmt.Errorf("%w: pipeline requires a corpus directory", domain.ErrInvalidConfig)
	}

	retriever, err := NewRetriever(params.Embedder, params.Index, params.TopK, params.Cutoff)
	if err != nil {
		return nil, err
	}
	generator, err := NewGenerator(params.LLM)
	if err != nil {
		return nil, err
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}

	return &Pipeline{
		state:     StateUninitialized,
		loader:    params.Loader,
		embedder:  params.Embedder,
		index:     params.Index,
		llm:       params.LLM,
		retriever: retriever,
		generator: generator,
		audit:     params.Audit,
		corpusDir: params.CorpusDir,
		topK:      params.TopK,
		batchSize: batchSize,
	}, nil
}

// State returns the current lifecycle phase.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ChunkCount returns the number of indexed chunks.
func (p *Pipeline) ChunkCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.Count()
}

// BuildIndex loads the corpus, embeds every chunk and rebuilds the
// vector index. When the index already holds chunks and force is
// false, the existing index is reused and no embedding happens.
func (p *Pipeline) BuildIndex(ctx context.Context, force bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.index.Count() > 0 {
		logger.Debug("index already holds %d chunks, skipping rebuild", p.index.Count())
		p.state = StateReady
		return nil
	}

	previous := p.state
	p.state = StateIndexing

	if err := p.buildIndexLocked(ctx); err != nil {
		p.state = previous
		return err
	}

	p.state = StateReady
	logger.Info("index ready with %d chunks", p.index.Count())
	return nil
}

func (p *Pipeline) buildIndexLocked(ctx context.Context) error {
	logger.Section("Indexing")

	chunks, err := p.loader.LoadCorpus(p.corpusDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no usable documents in %s", domain.ErrEmptyCorpus, p.corpusDir)
	}
	logger.Info("loaded %d chunks from %s", len(chunks), p.corpusDir)

	entries := make([]driven.VectorEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return &domain.TransportError{Service: "embedding", Err: err}
		}
		if len(vectors) != len(batch) {
			return &domain.TransportError{
				Service: "embedding",
				Err:     fmt.Errorf("expected %d vectors, got %d", len(batch), len(vectors)),
			}
		}

		for i, c := range batch {
			entries = append(entries, driven.VectorEntry{Chunk: c, Vector: vectors[i]})
		}
		logger.Debug("embedded %d/%d chunks", end, len(chunks))
	}

	if err := p.index.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// Query answers question from the indexed corpus. The audit record is
// written best-effort; a sink failure degrades to a warning and never
// fails the query.
func (p *Pipeline) Query(ctx context.Context, question string) (domain.QueryResult, error) {
	return p.QueryTopK(ctx, question, p.topK)
}

// QueryTopK is Query with an explicit search depth. A non-positive k
// falls back to the configured top-k.
func (p *Pipeline) QueryTopK(ctx context.Context, question string, k int) (domain.QueryResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != StateReady {
		return domain.QueryResult{}, fmt.Errorf("%w: pipeline is %s", domain.ErrNotReady, p.state)
	}

	start := time.Now()

	chunks, err := p.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return domain.QueryResult{}, err
	}

	result, err := p.generator.Generate(ctx, question, chunks)
	if err != nil {
		return domain.QueryResult{}, err
	}
	result.Latency = time.Since(start)

	p.recordAudit(ctx, result)
	return result, nil
}

// Close releases every held resource.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errs := []error{
		p.embedder.Close(),
		p.llm.Close(),
		p.index.Close(),
	}
	if p.audit != nil {
		errs = append(errs, p.audit.Close())
	}
	return errors.Join(errs...)
}

func (p *Pipeline) recordAudit(ctx context.Context, result domain.QueryResult) {
	if p.audit == nil {
		return
	}

	entry := driven.AuditEntry{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Question:      result.Question,
		AnswerPreview: truncateRunes(result.Answer, answerPreviewRunes),
		IsFallback:    result.IsFallback(),
		Sources:       auditSources(result.Retrieved),
		ChunkCount:    len(result.Retrieved),
		ModelID:       result.ModelID,
		InputTokens:   result.InputTokens,
		OutputTokens:  result.OutputTokens,
		LatencyMS:     float64(result.Latency.Microseconds()) / 1000.0,
	}

	if err := p.audit.Record(ctx, entry); err != nil {
		logger.Warn("audit record failed: %v", err)
	}
}

// auditSources deduplicates (source, page) pairs in first-encounter
// order, keeping the first similarity seen for each pair.
func auditSources(chunks []domain.RetrievedChunk) []driven.AuditSource {
	type key struct {
		source string
		page   int
	}
	seen := make(map[key]struct{}, len(chunks))
	out := make([]driven.AuditSource, 0, len(chunks))
	for _, chunk := range chunks {
		k := key{chunk.SourceName, chunk.Page}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, driven.AuditSource{
			Source:     chunk.SourceName,
			Page:       chunk.Page,
			Similarity: chunk.Similarity,
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
