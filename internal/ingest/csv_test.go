package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const surveyCSV = "INDICATOR,Country,Unit,2021,2022,2023\n" +
	"Number of registered mobile money accounts,Rwanda,Thousands,4200,5100,6050\n" +
	"Depositors with commercial banks,Rwanda,Per 1000 adults,410,,455\n" +
	"x,,,,,\n"

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fas_rwanda.csv", surveyCSV)

	l := New(WithDatasetName("IMF Financial Access Survey"))
	chunks, err := l.LoadCSV(path)
	require.NoError(t, err)

	// The near-empty third row falls below the viability threshold.
	require.Len(t, chunks, 2)

	first := chunks[0]
	assert.Equal(t, domain.KindTabular, first.Kind)
	assert.Equal(t, "IMF Financial Access Survey", first.SourceName)
	assert.Equal(t, "fas_rwanda.csv", first.OriginID)
	assert.Equal(t, 0, first.Page, "tabular chunks carry the no-page sentinel")
	assert.Equal(t, 0, first.Position)

	assert.Contains(t, first.Text, "Indicator: Number of registered mobile money accounts")
	assert.Contains(t, first.Text, "Country: Rwanda")
	assert.Contains(t, first.Text, "Unit: Thousands")
	assert.Contains(t, first.Text, "Annual values: 2021=4200, 2022=5100, 2023=6050")

	// Empty year cells are omitted rather than serialised as blanks.
	second := chunks[1]
	assert.Equal(t, 1, second.Position)
	assert.Contains(t, second.Text, "Annual values: 2021=410, 2023=455")
	assert.NotContains(t, second.Text, "2022=")
}

func TestLoadCSV_BOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.csv", "\uFEFF"+surveyCSV)

	chunks, err := New().LoadCSV(path)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "Indicator: Number of registered mobile money accounts")
}

func TestLoadCSV_NoIndicatorColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.csv",
		"Metric,Region,2020\nAgent outlets per 100000 adults,Kigali,118\n")

	chunks, err := New().LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Indicator: Row 0")
	assert.Contains(t, chunks[0].Text, "Metric: Agent outlets per 100000 adults")
}

func TestLoadCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().LoadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	path := writeFile(t, dir, "headeronly.csv", "INDICATOR,2020\n")
	_, err = New().LoadCSV(path)
	assert.Error(t, err, "a header without data rows is unreadable, not empty")
}
