package memory

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/ports/driven"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

// snapshot is the on-disk representation of the index. The embedding
// model identity and dimension travel with the vectors so a snapshot
// can never be silently reused across a model change.
type snapshot struct {
	Model      string
	Dimensions int
	Entries    []driven.VectorEntry
}

func (idx *Index) loadSnapshot() error {
	f, err := os.Open(idx.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	if snap.Model != idx.model || snap.Dimensions != idx.dims {
		return fmt.Errorf("snapshot was built with model %q (%d dims), index wants %q (%d dims)",
			snap.Model, snap.Dimensions, idx.model, idx.dims)
	}

	idx.store.Store(&store{entries: snap.Entries})
	logger.Info("Loaded %d vectors from snapshot %s", len(snap.Entries), idx.snapshotPath)
	return nil
}

// saveSnapshot writes to a temp file and renames so a crashed write
// never leaves a truncated snapshot behind.
func (idx *Index) saveSnapshot(s *store) error {
	if err := os.MkdirAll(filepath.Dir(idx.snapshotPath), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.snapshotPath), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	snap := snapshot{
		Model:      idx.model,
		Dimensions: idx.dims,
		Entries:    s.entries,
	}
	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), idx.snapshotPath)
}
