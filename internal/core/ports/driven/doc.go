// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Generates vector embeddings. The same model
//     identity must serve both index build and query time.
//   - LLMService: Produces grounded completions with token accounting.
//   - VectorIndex: Stores embedded chunks and performs exact
//     nearest-neighbour search by cosine similarity.
//
// # Optional Interfaces
//
//   - AuditSink: Append-only per-query audit trail. When nil, queries
//     still succeed; a write failure only ever degrades to a warning.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or ingest package
package driven
