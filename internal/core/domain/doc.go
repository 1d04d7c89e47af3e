// Package domain defines the core business entities for corpusqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Chunk: An immutable, retrievable unit of corpus text with provenance
//   - RetrievedChunk: A chunk paired with its query similarity score
//   - Citation: A deduplicated (source, page) reference
//   - QueryResult: The full outcome of one pipeline query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
