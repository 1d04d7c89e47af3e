package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Starts an interactive prompt reading one question per line.
Type "quit" to exit or "rebuild" to force a fresh index build.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	pipeline, err := buildPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ctx := context.Background()
	if err := pipeline.BuildIndex(ctx, false); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	cmd.Printf("Corpus ready with %d chunks. Type 'quit' to exit, 'rebuild' to re-index.\n", pipeline.ChunkCount())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "quit"), strings.EqualFold(line, "exit"):
			return scanner.Err()
		case strings.EqualFold(line, "rebuild"):
			if err := pipeline.BuildIndex(ctx, true); err != nil {
				cmd.PrintErrf("rebuild failed: %v\n", err)
				continue
			}
			cmd.Printf("Index rebuilt with %d chunks.\n", pipeline.ChunkCount())
			continue
		}

		result, err := pipeline.Query(ctx, line)
		if err != nil {
			cmd.PrintErrf("query failed: %v\n", err)
			continue
		}
		cmd.Println(formatResult(result, false))
	}
	return scanner.Err()
}
