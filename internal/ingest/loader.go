package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// Loader reads a corpus directory and produces chunks.
type Loader struct {
	chunkSize    int
	chunkOverlap int
	minPageChars int
	minRowChars  int

	// sourceNames maps filenames to human-readable document names.
	// Files without an entry fall back to their filename.
	sourceNames map[string]string

	// datasetName is the display name assigned to CSV sources.
	datasetName string
}

// Option configures the loader.
type Option func(*Loader)

// WithChunkSize sets the window size in words.
func WithChunkSize(size int) Option {
	return func(l *Loader) {
		if size > 0 {
			l.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap between windows in words.
func WithChunkOverlap(overlap int) Option {
	return func(l *Loader) {
		if overlap >= 0 {
			l.chunkOverlap = overlap
		}
	}
}

// WithMinPageChars sets the viability threshold for page windows.
func WithMinPageChars(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.minPageChars = n
		}
	}
}

// WithMinRowChars sets the viability threshold for tabular rows.
func WithMinRowChars(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.minRowChars = n
		}
	}
}

// WithSourceNames sets the filename to display-name mapping.
func WithSourceNames(names map[string]string) Option {
	return func(l *Loader) {
		l.sourceNames = names
	}
}

// WithDatasetName sets the display name for tabular sources.
func WithDatasetName(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.datasetName = name
		}
	}
}

// New creates a corpus loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		minPageChars: DefaultMinPageChars,
		minRowChars:  DefaultMinRowChars,
		datasetName:  "Tabular dataset",
	}

	for _, opt := range opts {
		opt(l)
	}

	// Stride must stay positive.
	if l.chunkOverlap >= l.chunkSize {
		l.chunkOverlap = l.chunkSize / 4
	}

	return l
}

// LoadCorpus loads every supported document under dir, in sorted
// filename order, and returns the flat chunk list. Unsupported
// extensions are ignored. A single unreadable file is logged and
// skipped; only an unreadable directory is an error.
func (l *Loader) LoadCorpus(dir string) ([]domain.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	logger.Info("Loading corpus from %s", dir)

	var all []domain.Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var chunks []domain.Chunk
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf":
			chunks, err = l.LoadPDF(path)
		case ".csv":
			chunks, err = l.LoadCSV(path)
		default:
			logger.Debug("Skipping unsupported file %s", entry.Name())
			continue
		}

		if err != nil {
			logger.Warn("Failed to load %s: %v", entry.Name(), err)
			continue
		}
		all = append(all, chunks...)
	}

	logger.Info("Total chunks in corpus: %d", len(all))
	return all, nil
}

// sourceName returns the display name for a filename.
func (l *Loader) sourceName(filename string) string {
	if name, ok := l.sourceNames[filename]; ok {
		return name
	}
	return filename
}
