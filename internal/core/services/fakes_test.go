package services

import (
	"context"
	"fmt"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

type stubEmbedder struct {
	dims    int
	err     error
	batches [][]string
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, texts)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, s.dims)
		v[0] = 1
		vectors[i] = v
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int   { return s.dims }
func (s *stubEmbedder) ModelName() string { return "stub-embed" }
func (s *stubEmbedder) Close() error      { return nil }

type stubLLM struct {
	completion driven.Completion
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (s *stubLLM) Complete(_ context.Context, system, user string) (driven.Completion, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return driven.Completion{}, s.err
	}
	return s.completion, nil
}

func (s *stubLLM) ModelName() string { return "stub-llm" }
func (s *stubLLM) Close() error      { return nil }

// stubIndex returns canned hits and records rebuilds.
type stubIndex struct {
	dims       int
	hits       []domain.RetrievedChunk
	entries    []driven.VectorEntry
	preCount   int
	rebuilds   int
	rebuildErr error
	searchErr  error
}

func (s *stubIndex) Rebuild(_ context.Context, entries []driven.VectorEntry) error {
	if s.rebuildErr != nil {
		return s.rebuildErr
	}
	s.rebuilds++
	s.entries = entries
	return nil
}

func (s *stubIndex) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(query), s.dims)
	}
	if k > len(s.hits) {
		k = len(s.hits)
	}
	return s.hits[:k], nil
}

func (s *stubIndex) Count() int {
	if len(s.entries) > 0 {
		return len(s.entries)
	}
	return s.preCount
}

func (s *stubIndex) Dimensions() int { return s.dims }
func (s *stubIndex) Close() error    { return nil }

type stubAudit struct {
	entries []driven.AuditEntry
	err     error
}

func (s *stubAudit) Record(_ context.Context, entry driven.AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAudit) Close() error { return nil }

func retrieved(source string, page int, kind domain.DocKind, sim float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			Text:       fmt.Sprintf("content from %s page %d", source, page),
			SourceName: source,
			OriginID:   source,
			Page:       page,
			Kind:       kind,
		},
		Similarity: sim,
	}
}
