// Package jsonl provides an append-only audit sink writing one JSON
// record per line.
//
// The file is opened with O_APPEND and records are never rewritten,
// so the trail stays machine-parseable line by line and safe to tail.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.AuditSink = (*Sink)(nil)

// Sink appends audit entries to a JSONL file.
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// New opens (or creates) the audit file at path for appending.
func New(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}

	return &Sink{file: f}, nil
}

// Record appends one audit entry as a single JSON line.
func (s *Sink) Record(ctx context.Context, entry driven.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
