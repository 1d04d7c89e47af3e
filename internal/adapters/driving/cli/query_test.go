package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
)

func sampleResult() domain.QueryResult {
	return domain.QueryResult{
		Question: "What was account ownership in 2021?",
		Answer:   "Account ownership reached 77% in 2021.",
		Citations: []domain.Citation{
			{Source: "Annual Report 2021", Page: 3},
		},
		Retrieved: []domain.RetrievedChunk{
			{
				Chunk: domain.Chunk{
					Text:       "Account   ownership\nreached 77% of adults in 2021.",
					SourceName: "Annual Report 2021",
					Page:       3,
					Kind:       domain.KindPaginated,
				},
				Similarity: 0.912,
			},
		},
		ModelID:      "claude-haiku-4-5-20251001",
		InputTokens:  812,
		OutputTokens: 41,
		Latency:      1042 * time.Millisecond,
	}
}

func TestFormatResult(t *testing.T) {
	out := formatResult(sampleResult(), true)

	assert.Contains(t, out, "QUESTION: What was account ownership in 2021?")
	assert.Contains(t, out, "ANSWER:\nAccount ownership reached 77% in 2021.")
	assert.Contains(t, out, "[1042 ms | 812 in / 41 out tokens]")
	assert.Contains(t, out, "[1] Annual Report 2021 | Page 3 | sim=0.912")
	assert.Contains(t, out, "Account ownership reached 77% of adults in 2021.")
}

func TestFormatResult_NoContext(t *testing.T) {
	out := formatResult(sampleResult(), false)
	assert.NotContains(t, out, "RETRIEVED CONTEXT")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n  b\tc", 220))

	long := strings.Repeat("word ", 100)
	got := snippet(long, 20)
	assert.True(t, strings.HasSuffix(got, " ..."))
	assert.Len(t, []rune(got), 24)
}

func TestQueryCmd_Flags(t *testing.T) {
	assert.NotNil(t, queryCmd.Flags().Lookup("top-k"))
	assert.NotNil(t, queryCmd.Flags().Lookup("json"))
	assert.NotNil(t, queryCmd.Flags().Lookup("no-context"))
}
