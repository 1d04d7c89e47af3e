package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
)

func testEntry(id, question string) driven.AuditEntry {
	return driven.AuditEntry{
		ID:            id,
		Timestamp:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC).Format(time.RFC3339),
		Question:      question,
		AnswerPreview: "Answer preview text.",
		IsFallback:    false,
		Sources: []driven.AuditSource{
			{Source: "Annual Report", Page: 12, Similarity: 0.91},
		},
		ChunkCount:   3,
		ModelID:      "claude-haiku-4-5-20251001",
		InputTokens:  812,
		OutputTokens: 41,
		LatencyMS:    1042,
	}
}

func readLines(t *testing.T, path string) []driven.AuditEntry {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []driven.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e driven.AuditEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestSink_RecordAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	sink, err := New(path)
	require.NoError(t, err)

	require.NoError(t, sink.Record(context.Background(), testEntry("a-1", "What was revenue in 2021?")))
	require.NoError(t, sink.Record(context.Background(), testEntry("a-2", "Who is the CEO?")))
	require.NoError(t, sink.Close())

	entries := readLines(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "a-1", entries[0].ID)
	assert.Equal(t, "What was revenue in 2021?", entries[0].Question)
	assert.Equal(t, "a-2", entries[1].ID)
	assert.Equal(t, 12, entries[0].Sources[0].Page)
	assert.InDelta(t, 0.91, entries[0].Sources[0].Similarity, 1e-9)
}

func TestSink_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	sink, err := New(path)
	require.NoError(t, err)
	require.NoError(t, sink.Record(context.Background(), testEntry("a-1", "first")))
	require.NoError(t, sink.Close())

	sink, err = New(path)
	require.NoError(t, err)
	require.NoError(t, sink.Record(context.Background(), testEntry("a-2", "second")))
	require.NoError(t, sink.Close())

	entries := readLines(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "a-1", entries[0].ID)
	assert.Equal(t, "a-2", entries[1].ID)
}

func TestSink_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "audit.jsonl")

	sink, err := New(path)
	require.NoError(t, err)
	require.NoError(t, sink.Record(context.Background(), testEntry("a-1", "q")))
	require.NoError(t, sink.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSink_ConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	sink, err := New(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := sink.Record(context.Background(), testEntry("id", "concurrent")); err != nil {
				t.Errorf("record: %v", err)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	// Every line must still be valid JSON: writes may interleave in
	// any order but never mid-record.
	entries := readLines(t, path)
	assert.Len(t, entries, 20)
}
