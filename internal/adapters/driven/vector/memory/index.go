// Package memory provides a flat, exact in-memory vector index.
//
// Vectors are L2-normalised at storage and query time so the inner
// product used during search is exactly cosine similarity. Search is
// brute force over every entry, which is the right trade-off for a
// corpus of thousands of chunks: exact recall, no build tuning.
//
// An optional on-disk snapshot lets a persistent deployment skip
// re-embedding across restarts; the snapshot is keyed by embedding
// model identity and dimension and is discarded on mismatch.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat exact-search vector index.
type Index struct {
	dims         int
	snapshotPath string
	model        string

	// store is swapped wholesale on rebuild. Readers that loaded the
	// old pointer keep searching the old contents; there is no
	// partially-populated state to observe.
	store atomic.Pointer[store]
}

type store struct {
	entries []driven.VectorEntry
}

// Option configures the index.
type Option func(*Index)

// WithSnapshot enables on-disk persistence at path. The model name
// is recorded alongside the vectors; a snapshot written by a
// different model or dimension is ignored at load time.
func WithSnapshot(path, model string) Option {
	return func(idx *Index) {
		idx.snapshotPath = path
		idx.model = model
	}
}

// New creates an index for vectors of the given dimension. When a
// snapshot is configured and a matching one exists on disk, it is
// loaded so the caller can skip re-embedding.
func New(dims int, opts ...Option) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrInvalidConfig, dims)
	}

	idx := &Index{dims: dims}
	for _, opt := range opts {
		opt(idx)
	}
	idx.store.Store(&store{})

	if idx.snapshotPath != "" {
		if err := idx.loadSnapshot(); err != nil {
			// A stale or corrupt snapshot costs a rebuild, nothing more.
			logger.Warn("Ignoring vector snapshot %s: %v", idx.snapshotPath, err)
		}
	}

	return idx, nil
}

// Rebuild atomically replaces the index contents.
func (idx *Index) Rebuild(ctx context.Context, entries []driven.VectorEntry) error {
	next := &store{entries: make([]driven.VectorEntry, len(entries))}

	for i, e := range entries {
		if len(e.Vector) != idx.dims {
			return fmt.Errorf("%w: entry %s has %d dimensions, index wants %d",
				domain.ErrDimensionMismatch, e.Chunk.ID(), len(e.Vector), idx.dims)
		}
		next.entries[i] = driven.VectorEntry{
			Chunk:  e.Chunk,
			Vector: normalize(e.Vector),
		}
	}

	idx.store.Store(next)

	if idx.snapshotPath != "" {
		if err := idx.saveSnapshot(next); err != nil {
			logger.Warn("Failed to write vector snapshot: %v", err)
		}
	}
	return nil
}

// Search returns the k best cosine matches, descending, ties broken
// by insertion order. k is clamped to the entry count; an empty index
// yields an empty result.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	s := idx.store.Load()
	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index wants %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if k > len(s.entries) {
		k = len(s.entries)
	}

	q := normalize(query)

	scores := make([]float64, len(s.entries))
	order := make([]int, len(s.entries))
	for i, e := range s.entries {
		scores[i] = dot(q, e.Vector)
		order[i] = i
	}

	// Stable sort keeps corpus order on equal scores, which makes
	// retrieval deterministic.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]domain.RetrievedChunk, k)
	for i := 0; i < k; i++ {
		j := order[i]
		results[i] = domain.RetrievedChunk{
			Chunk:      s.entries[j].Chunk,
			Similarity: scores[j],
		}
	}
	return results, nil
}

// Count returns the number of indexed entries.
func (idx *Index) Count() int {
	return len(idx.store.Load().entries)
}

// Dimensions returns the configured vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// normalize returns the L2-normalised copy of v. A zero vector is
// returned unchanged; it matches nothing.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return append([]float32(nil), v...)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the inner product in float64 to limit rounding drift.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
