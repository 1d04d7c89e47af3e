package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "survey.csv", surveyCSV)
	writeFile(t, dir, "notes.txt", "unsupported extensions are ignored")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	l := New(WithDatasetName("IMF Financial Access Survey"))
	chunks, err := l.LoadCorpus(dir)
	require.NoError(t, err, "a single unreadable file must not abort corpus loading")

	// Only the CSV contributes; the txt is ignored and the fake PDF
	// is skipped with a warning.
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, "survey.csv", c.OriginID)
	}
}

func TestLoadCorpus_MissingDir(t *testing.T) {
	_, err := New().LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadCorpus_EmptyDirYieldsNoChunks(t *testing.T) {
	chunks, err := New().LoadCorpus(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, chunks, "zero chunks is the caller's fatal condition, not the loader's")
}

func TestSourceName(t *testing.T) {
	l := New(WithSourceNames(map[string]string{
		"law_2021.pdf": "Payment System Law No. 061/2021",
	}))
	assert.Equal(t, "Payment System Law No. 061/2021", l.sourceName("law_2021.pdf"))
	assert.Equal(t, "unknown.pdf", l.sourceName("unknown.pdf"))
}
