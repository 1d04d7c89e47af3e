package driven

import "context"

// AuditSink durably records one entry per query for traceability.
// Records are append-only and never rewritten. A sink failure must
// never fail the user-visible query; the orchestrator degrades it
// to a warning.
type AuditSink interface {
	// Record appends one audit entry.
	Record(ctx context.Context, entry AuditEntry) error

	// Close releases resources.
	Close() error
}

// AuditEntry is the serialised projection of a query result.
type AuditEntry struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Timestamp is the query time in UTC, ISO-8601.
	Timestamp string `json:"timestamp"`

	// Question is the user's question as asked.
	Question string `json:"question"`

	// AnswerPreview is the answer truncated for log compactness.
	AnswerPreview string `json:"answer_preview"`

	// IsFallback is derived by exact-prefix match against the
	// fallback sentence.
	IsFallback bool `json:"is_fallback"`

	// Sources lists the distinct sources sent to the model.
	Sources []AuditSource `json:"sources"`

	// ChunkCount is the number of chunks that passed the gate.
	ChunkCount int `json:"chunk_count"`

	// ModelID is the language model used.
	ModelID string `json:"model"`

	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	LatencyMS    float64 `json:"latency_ms"`
}

// AuditSource is one cited source within an audit entry.
type AuditSource struct {
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
}
