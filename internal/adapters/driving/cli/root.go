// Package cli implements the corpusqa command-line interface.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "corpusqa",
	Short: "Question answering grounded strictly in a local document corpus",
	Long: `corpusqa indexes a directory of PDF and CSV documents and answers
questions using only the evidence found there. When the corpus does
not contain enough evidence, it refuses with a fixed sentence rather
than guessing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)

		// API keys may come from a .env file; its absence is fine.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to load .env: %v", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "corpusqa.toml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
