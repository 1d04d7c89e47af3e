package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// Retriever embeds a question and searches the vector index, then
// applies the confidence gate. Chunks below the similarity cutoff are
// dropped rather than passed to generation.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
	cutoff   float64
}

// NewRetriever wires an embedding service and a vector index.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, topK int, cutoff float64) (*Retriever, error) {
	if embedder == nil || index == nil {
		return nil, fmt.Errorf("%w: retriever requires an embedder and an index", domain.ErrInvalidConfig)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidConfig)
	}
	if cutoff < 0 || cutoff > 1 {
		return nil, fmt.Errorf("%w: similarity_cutoff must be in [0, 1]", domain.ErrInvalidConfig)
	}

	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		cutoff:   cutoff,
	}, nil
}

// Retrieve returns the chunks most similar to question that clear the
// confidence gate, ordered by descending similarity. A non-positive k
// falls back to the configured top-k.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = r.topK
	}

	vectors, err := r.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, &domain.TransportError{Service: "embedding", Err: err}
	}
	if len(vectors) != 1 {
		return nil, &domain.TransportError{
			Service: "embedding",
			Err:     fmt.Errorf("expected 1 vector, got %d", len(vectors)),
		}
	}

	query := vectors[0]
	if len(query) != r.index.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), r.index.Dimensions())
	}

	hits, err := r.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	kept := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < r.cutoff {
			logger.Debug("dropped %s (page %d) below cutoff: %.3f < %.3f",
				hit.SourceName, hit.Page, hit.Similarity, r.cutoff)
			continue
		}
		kept = append(kept, hit)
	}

	logger.Debug("retrieved %d chunks, %d passed the confidence gate", len(hits), len(kept))
	return kept, nil
}
