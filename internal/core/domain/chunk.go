package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// DocKind distinguishes the two corpus document families.
type DocKind string

const (
	// KindPaginated is page-oriented text (PDF reports).
	KindPaginated DocKind = "paginated"

	// KindTabular is row-oriented survey data (CSV datasets).
	// Tabular chunks carry page 0 as a "no page" sentinel.
	KindTabular DocKind = "tabular"
)

// Chunk is an immutable, retrievable unit of corpus text.
// Chunks are created once during corpus loading and replaced
// wholesale on rebuild; they are never mutated in place.
type Chunk struct {
	// Text is the chunk content. Always non-empty: fragments below
	// the minimum viability threshold are discarded at creation.
	Text string

	// SourceName is the human-readable document name used in citations.
	SourceName string

	// OriginID is the stable per-document key, typically the filename.
	OriginID string

	// Page is the 1-based page number for paginated sources,
	// 0 for tabular sources.
	Page int

	// Position is the 0-based chunk index within the page (paginated)
	// or the row index within the dataset (tabular).
	Position int

	// Kind is the document family the chunk came from.
	Kind DocKind
}

// ID returns the deterministic content-derived chunk identifier.
// Identical (origin, page, position) triples always hash to the same
// ID, which makes re-indexing idempotent: rebuilding from the same
// corpus produces the same IDs and safely replaces prior entries.
func (c Chunk) ID() string {
	key := fmt.Sprintf("%s|%d|%d", c.OriginID, c.Page, c.Position)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Citation returns the chunk's citation reference.
func (c Chunk) Citation() Citation {
	return Citation{Source: c.SourceName, Page: c.Page}
}

// RetrievedChunk is a chunk paired with its cosine similarity to a
// query. Sequences of retrieved chunks are ordered by descending
// similarity, ties broken by original corpus order.
type RetrievedChunk struct {
	Chunk

	// Similarity is the cosine similarity in [-1, 1]; practically
	// [0, 1] for normalised positive embeddings. Higher is better.
	Similarity float64
}

// Citation is a (source, page) reference to corpus material.
// Page 0 means the source is an unpaginated dataset.
type Citation struct {
	Source string
	Page   int
}

// String renders the citation the way answers reference sources.
func (c Citation) String() string {
	if c.Page == 0 {
		return fmt.Sprintf("[Source: %s]", c.Source)
	}
	return fmt.Sprintf("[Source: %s, Page %d]", c.Source, c.Page)
}
