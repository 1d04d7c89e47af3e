package memory

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

func entry(origin string, pos int, vec ...float32) driven.VectorEntry {
	return driven.VectorEntry{
		Chunk: domain.Chunk{
			Text:       "text for " + origin,
			SourceName: origin,
			OriginID:   origin,
			Page:       1,
			Position:   pos,
			Kind:       domain.KindPaginated,
		},
		Vector: vec,
	}
}

func TestIndex_SearchOrdering(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		entry("a.pdf", 0, 1, 0, 0),
		entry("b.pdf", 1, 0, 1, 0),
		entry("c.pdf", 2, 0.9, 0.1, 0),
	}))

	results, err := idx.Search(ctx, []float32{0.95, 0.05, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "c.pdf", results[0].OriginID)
	assert.Equal(t, "a.pdf", results[1].OriginID)
	assert.Equal(t, "b.pdf", results[2].OriginID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestIndex_CosineNotRawDot(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	ctx := context.Background()
	// Under a raw dot product the long vector would dominate even
	// though it points away from the query.
	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		entry("long.pdf", 0, 100, 100),
		entry("aligned.pdf", 1, 0.99, 0.01),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "aligned.pdf", results[0].OriginID)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
	assert.InDelta(t, math.Sqrt2/2, results[1].Similarity, 0.001)
}

func TestIndex_TiesKeepCorpusOrder(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		entry("first.pdf", 0, 1, 0),
		entry("second.pdf", 1, 2, 0), // same direction, same cosine
		entry("third.pdf", 2, 3, 0),
	}))

	for i := 0; i < 5; i++ {
		results, err := idx.Search(ctx, []float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, "first.pdf", results[0].OriginID)
		assert.Equal(t, "second.pdf", results[1].OriginID)
		assert.Equal(t, "third.pdf", results[2].OriginID)
	}
}

func TestIndex_ClampAndEmpty(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	// Empty index: no results, no error.
	results, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		entry("a.pdf", 0, 1, 0),
		entry("b.pdf", 1, 0, 1),
		entry("c.pdf", 2, 1, 1),
	}))

	// k larger than the index clamps, no padding.
	results, err = idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	ctx := context.Background()

	err = idx.Rebuild(ctx, []driven.VectorEntry{entry("a.pdf", 0, 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{entry("a.pdf", 0, 1, 0, 0)}))
	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_RebuildAtomicity(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	old := []driven.VectorEntry{entry("old1.pdf", 0, 1, 0), entry("old2.pdf", 1, 0, 1)}
	next := []driven.VectorEntry{
		entry("new1.pdf", 0, 1, 0), entry("new2.pdf", 1, 0, 1),
		entry("new3.pdf", 2, 1, 1), entry("new4.pdf", 3, 1, 2),
		entry("new5.pdf", 4, 2, 1),
	}
	require.NoError(t, idx.Rebuild(ctx, old))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			results, err := idx.Search(ctx, []float32{1, 1}, 10)
			if err != nil {
				t.Errorf("search during rebuild: %v", err)
				return
			}
			// Either fully old (2 entries) or fully new (5), never a mix.
			if len(results) != len(old) && len(results) != len(next) {
				t.Errorf("observed partially built index: %d results", len(results))
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, idx.Rebuild(ctx, old))
		require.NoError(t, idx.Rebuild(ctx, next))
	}
	close(stop)
	wg.Wait()
}

func TestIndex_SnapshotRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.gob")
	ctx := context.Background()

	idx, err := New(2, WithSnapshot(path, "text-embedding-3-small"))
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		entry("a.pdf", 0, 1, 0),
		entry("b.pdf", 1, 0, 1),
	}))

	// A fresh index with the same identity loads the snapshot and
	// skips re-embedding.
	reloaded, err := New(2, WithSnapshot(path, "text-embedding-3-small"))
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Count())

	results, err := reloaded.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].OriginID)

	// A different model identity discards the snapshot.
	other, err := New(2, WithSnapshot(path, "text-embedding-3-large"))
	require.NoError(t, err)
	assert.Equal(t, 0, other.Count())
}
