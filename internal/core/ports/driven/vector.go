package driven

import (
	"context"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
)

// VectorIndex stores embedded chunks and provides exact
// nearest-neighbour search by cosine similarity.
//
// Implementations must L2-normalise vectors before storage and before
// query so a plain inner product equals cosine similarity; a raw dot
// product over un-normalised vectors is not an acceptable stand-in.
//
// Two realisations exist, selected by configuration:
//   - a flat in-memory exact index with an optional on-disk snapshot
//   - a durable chromem-go backed store
type VectorIndex interface {
	// Rebuild atomically replaces the index contents with the given
	// entries. Readers concurrent with Rebuild observe either the
	// fully-old or fully-new index, never a mix. Entries whose vector
	// dimension differs from the index dimension are an error.
	Rebuild(ctx context.Context, entries []VectorEntry) error

	// Search returns the k best matches by cosine similarity, ordered
	// by descending score with ties broken by insertion order. k is
	// clamped to the item count; an empty index yields an empty result,
	// never an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)

	// Count returns the number of indexed entries.
	Count() int

	// Dimensions returns the configured vector dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorEntry is one chunk prepared for indexing: the chunk's text and
// provenance plus its embedding. The index keeps its own copy of the
// provenance so it survives independently of the loaded chunk list.
type VectorEntry struct {
	Chunk  domain.Chunk
	Vector []float32
}
