package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

// systemPrompt constrains the model to the supplied excerpts and pins
// the exact refusal sentence. Answers must carry a Sources section.
var systemPrompt = `You are a precise, document-grounded research assistant.

STRICT RULES:
1. Answer ONLY using information explicitly present in the document excerpts provided below the user question.
2. If the provided excerpts do not contain sufficient information to answer the question, you MUST respond with EXACTLY this sentence and nothing else:
   "` + domain.FallbackAnswer + `"
3. Do NOT add external knowledge, personal opinions, or inferences that go beyond what the documents state.
4. Be concise, factual, and professional.
5. After your answer, include a "Sources:" section listing every excerpt you drew upon, in the format:
   - <Document Name>, Page <N>   (omit the page if the source is a dataset)

RESPONSE FORMAT:
<your answer>

Sources:
- <Document Name>, Page <N>
- ...`

// excerptDelimiter separates excerpts inside the user message.
var excerptDelimiter = "\n\n" + strings.Repeat("-", 60) + "\n\n"

// Generator turns retrieved chunks into a grounded answer. With no
// chunks it returns the fallback sentence without calling the model.
type Generator struct {
	llm driven.LLMService
}

// NewGenerator wires a language model service.
func NewGenerator(llm driven.LLMService) (*Generator, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: generator requires a language model", domain.ErrInvalidConfig)
	}
	return &Generator{llm: llm}, nil
}

// Generate answers question from chunks. The returned result carries
// the retrieved chunks, deduplicated citations, and token usage;
// latency is left for the caller to fill in.
func (g *Generator) Generate(ctx context.Context, question string, chunks []domain.RetrievedChunk) (domain.QueryResult, error) {
	result := domain.QueryResult{
		Question:  question,
		Retrieved: chunks,
		ModelID:   g.llm.ModelName(),
	}

	if len(chunks) == 0 {
		result.Answer = domain.FallbackAnswer
		return result, nil
	}

	completion, err := g.llm.Complete(ctx, systemPrompt, g.userMessage(question, chunks))
	if err != nil {
		return domain.QueryResult{}, &domain.GenerationError{Err: err}
	}

	result.Answer = completion.Text
	result.InputTokens = completion.InputTokens
	result.OutputTokens = completion.OutputTokens

	// A model that echoes the refusal sentence cites nothing.
	if !result.IsFallback() {
		result.Citations = citations(chunks)
	}
	return result, nil
}

// userMessage assembles the question and the labelled excerpt block.
func (g *Generator) userMessage(question string, chunks []domain.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		var header string
		if chunk.Kind == domain.KindTabular {
			header = fmt.Sprintf("[Excerpt %d | Source: %s | Relevance: %.2f]",
				i+1, chunk.SourceName, chunk.Similarity)
		} else {
			header = fmt.Sprintf("[Excerpt %d | Source: %s, Page %d | Relevance: %.2f]",
				i+1, chunk.SourceName, chunk.Page, chunk.Similarity)
		}
		parts[i] = header + "\n" + chunk.Text
	}

	return fmt.Sprintf(
		"Question: %s\n\nDocument excerpts:\n\n%s\n\nPlease answer the question based strictly on the excerpts above.",
		question, strings.Join(parts, excerptDelimiter))
}

// citations deduplicates (source, page) pairs in first-encounter order.
func citations(chunks []domain.RetrievedChunk) []domain.Citation {
	seen := make(map[domain.Citation]struct{}, len(chunks))
	out := make([]domain.Citation, 0, len(chunks))
	for _, chunk := range chunks {
		c := domain.Citation{Source: chunk.SourceName, Page: chunk.Page}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
