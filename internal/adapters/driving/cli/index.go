package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the corpus directory",
	Long: `Loads every PDF and CSV document from the configured corpus
directory, chunks and embeds them, and rebuilds the vector index.
An existing index is reused unless --force is given.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "rebuild even if the index is already populated")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	pipeline, err := buildPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if err := pipeline.BuildIndex(context.Background(), indexForce); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	cmd.Printf("Index ready with %d chunks.\n", pipeline.ChunkCount())
	return nil
}
