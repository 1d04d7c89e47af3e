package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The pipeline calls EmbedBatch with bounded batches during index
// build and with a single-element batch per query. Build-time and
// query-time calls must go through the same service instance so the
// model identity and dimension cannot drift between the two.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - OpenAI-compatible local servers (Ollama, LM Studio) via base URL
type EmbeddingService interface {
	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result preserves input order and has one vector per text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This must match the VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
