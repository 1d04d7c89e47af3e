package domain

import (
	"strings"
	"time"
)

// FallbackAnswer is the exact refusal sentence returned when the
// corpus does not contain sufficient evidence. Downstream consumers
// string-match against it, so it must never vary.
const FallbackAnswer = "The answer cannot be determined from the provided documents."

// QueryResult is the full outcome of one pipeline query.
// It is transient; only the audit sink's serialised projection
// outlives the call.
type QueryResult struct {
	// Question is the user's question as asked.
	Question string

	// Answer is the generated answer text, or FallbackAnswer when
	// the evidence was insufficient.
	Answer string

	// Citations lists the distinct (source, page) pairs of the chunks
	// that were sent to the model, in first-encounter order. Empty for
	// fallback answers.
	Citations []Citation

	// Retrieved holds the chunks that passed the confidence gate,
	// ordered by descending similarity.
	Retrieved []RetrievedChunk

	// ModelID is the language model that produced the answer.
	ModelID string

	// InputTokens and OutputTokens are the model's token counts.
	// Both are zero for fallback answers, which make no model call.
	InputTokens  int
	OutputTokens int

	// Latency is the wall-clock duration of retrieval plus generation.
	Latency time.Duration
}

// IsFallback reports whether the answer is the refusal sentence.
// A prefix match is used so that a model echoing the sentence with
// trailing whitespace still counts as a refusal.
func (r QueryResult) IsFallback() bool {
	return strings.HasPrefix(r.Answer, FallbackAnswer)
}
