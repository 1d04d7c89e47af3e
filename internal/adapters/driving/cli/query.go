package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
)

var (
	queryTopK      int
	queryJSON      bool
	queryNoContext bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from the indexed corpus",
	Long: `Retrieves the most relevant corpus chunks for the question and asks
the language model to answer strictly from them. Builds the index
first if it does not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (0 uses the configured value)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	queryCmd.Flags().BoolVar(&queryNoContext, "no-context", false, "omit the retrieved context from the output")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	pipeline, err := buildPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ctx := context.Background()
	if err := pipeline.BuildIndex(ctx, false); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	result, err := pipeline.QueryTopK(ctx, args[0], queryTopK)
	if err != nil {
		return err
	}

	if queryJSON {
		return outputResultJSON(cmd, result)
	}
	cmd.Println(formatResult(result, !queryNoContext))
	return nil
}

// jsonResult is the machine-readable projection of a query result.
type jsonResult struct {
	Question     string            `json:"question"`
	Answer       string            `json:"answer"`
	IsFallback   bool              `json:"is_fallback"`
	Citations    []jsonCitation    `json:"citations"`
	Model        string            `json:"model"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
	LatencyMS    float64           `json:"latency_ms"`
	Context      []jsonContextItem `json:"context,omitempty"`
}

type jsonCitation struct {
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
}

type jsonContextItem struct {
	Source     string  `json:"source"`
	Page       int     `json:"page,omitempty"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

func outputResultJSON(cmd *cobra.Command, result domain.QueryResult) error {
	out := jsonResult{
		Question:     result.Question,
		Answer:       result.Answer,
		IsFallback:   result.IsFallback(),
		Citations:    make([]jsonCitation, 0, len(result.Citations)),
		Model:        result.ModelID,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		LatencyMS:    float64(result.Latency.Microseconds()) / 1000.0,
	}
	for _, c := range result.Citations {
		out.Citations = append(out.Citations, jsonCitation{Source: c.Source, Page: c.Page})
	}
	if !queryNoContext {
		for _, chunk := range result.Retrieved {
			out.Context = append(out.Context, jsonContextItem{
				Source:     chunk.SourceName,
				Page:       chunk.Page,
				Similarity: chunk.Similarity,
				Text:       chunk.Text,
			})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// formatResult renders a query result for the terminal.
func formatResult(result domain.QueryResult, showContext bool) string {
	rule := strings.Repeat("=", 70)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nQUESTION: %s\n%s\n\nANSWER:\n%s\n", rule, result.Question, rule, result.Answer)
	fmt.Fprintf(&b, "\n[%d ms | %d in / %d out tokens]\n", result.Latency.Milliseconds(), result.InputTokens, result.OutputTokens)

	if showContext && len(result.Retrieved) > 0 {
		b.WriteString("\nRETRIEVED CONTEXT:\n")
		for i, chunk := range result.Retrieved {
			fmt.Fprintf(&b, "\n  [%d] %s | Page %d | sim=%.3f\n", i+1, chunk.SourceName, chunk.Page, chunk.Similarity)
			fmt.Fprintf(&b, "  %s\n", snippet(chunk.Text, 220))
		}
	}
	return b.String()
}

// snippet flattens text to one line and truncates it for display.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + " ..."
}
