// Package chromem provides a durable vector index backed by chromem-go.
//
// This is the persistent realisation of the VectorIndex port: vectors
// and provenance survive process restarts, so an unchanged corpus is
// never re-embedded. The ephemeral mode keeps the same engine fully
// in memory for deployments without a writable filesystem.
package chromem

import (
	"context"
	"fmt"
	"math"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// addBatchSize bounds how many entries go into one chromem add call.
const addBatchSize = 128

// Config holds configuration for the chromem index.
type Config struct {
	// Path is the on-disk database directory. Empty means ephemeral:
	// the store lives in memory and is rebuilt every process start.
	Path string

	// Collection is the collection name (required).
	Collection string

	// Dimensions is the expected vector dimension (required).
	Dimensions int
}

// Index is a chromem-go backed vector index.
type Index struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
	dims       int
}

// New opens or creates the index. A persistent path reloads whatever
// was indexed before; the caller decides whether that is fresh enough
// or forces a rebuild.
func New(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidConfig)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrInvalidConfig, cfg.Dimensions)
	}

	var db *chromemgo.DB
	if cfg.Path == "" {
		db = chromemgo.NewDB()
	} else {
		var err error
		db, err = chromemgo.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open vector db: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, collectionMetadata(), nil)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &Index{
		db:         db,
		collection: collection,
		name:       cfg.Collection,
		dims:       cfg.Dimensions,
	}, nil
}

func collectionMetadata() map[string]string {
	return map[string]string{"hnsw:space": "cosine"}
}

// Rebuild drops the collection and re-adds every entry. The
// orchestrator serialises Rebuild against Search, so readers never
// observe the intermediate state.
func (idx *Index) Rebuild(ctx context.Context, entries []driven.VectorEntry) error {
	if err := idx.db.DeleteCollection(idx.name); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	collection, err := idx.db.CreateCollection(idx.name, collectionMetadata(), nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	idx.collection = collection

	for start := 0; start < len(entries); start += addBatchSize {
		end := start + addBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		ids := make([]string, len(batch))
		vectors := make([][]float32, len(batch))
		metadatas := make([]map[string]string, len(batch))
		contents := make([]string, len(batch))

		for i, e := range batch {
			if len(e.Vector) != idx.dims {
				return fmt.Errorf("%w: entry %s has %d dimensions, index wants %d",
					domain.ErrDimensionMismatch, e.Chunk.ID(), len(e.Vector), idx.dims)
			}
			ids[i] = e.Chunk.ID()
			vectors[i] = normalize(e.Vector)
			contents[i] = e.Chunk.Text
			metadatas[i] = map[string]string{
				"source_name": e.Chunk.SourceName,
				"origin_id":   e.Chunk.OriginID,
				"page":        strconv.Itoa(e.Chunk.Page),
				"position":    strconv.Itoa(e.Chunk.Position),
				"kind":        string(e.Chunk.Kind),
			}
		}

		if err := idx.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
			return fmt.Errorf("add batch: %w", err)
		}
	}

	return nil
}

// Search returns the k best cosine matches.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	count := idx.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index wants %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if k > count {
		k = count
	}

	hits, err := idx.collection.QueryEmbedding(ctx, normalize(query), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		page, _ := strconv.Atoi(hit.Metadata["page"])
		position, _ := strconv.Atoi(hit.Metadata["position"])
		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				Text:       hit.Content,
				SourceName: hit.Metadata["source_name"],
				OriginID:   hit.Metadata["origin_id"],
				Page:       page,
				Position:   position,
				Kind:       domain.DocKind(hit.Metadata["kind"]),
			},
			Similarity: float64(hit.Similarity),
		})
	}
	return results, nil
}

// Count returns the number of indexed entries.
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Dimensions returns the configured vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Close releases resources. chromem persists on every write, so there
// is nothing to flush.
func (idx *Index) Close() error {
	return nil
}

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
