package driven

import "context"

// LLMService produces chat completions for grounded answer generation.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT family) or OpenAI-compatible local servers
type LLMService interface {
	// Complete sends one system prompt plus one user message and
	// returns the completion with token accounting. Errors are
	// surfaced as-is; callers wrap them into their own taxonomy.
	Complete(ctx context.Context, systemPrompt, userMessage string) (Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// Completion is the result of a single LLM call.
type Completion struct {
	// Text is the generated completion text.
	Text string

	// InputTokens is the prompt token count reported by the service.
	InputTokens int

	// OutputTokens is the completion token count reported by the service.
	OutputTokens int
}
