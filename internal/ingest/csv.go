package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evidentia-labs/corpusqa-cli/internal/core/domain"
	"github.com/evidentia-labs/corpusqa-cli/internal/logger"
)

var yearColumnRE = regexp.MustCompile(`^\d{4}$`)

// indicatorColumns are the header names recognised as the row label,
// in preference order.
var indicatorColumns = []string{"INDICATOR", "Indicator Name"}

// LoadCSV converts a tabular survey dataset into one chunk per row.
// Each row serialises as an "Indicator:" header, the identifier
// columns as key/value lines, and the 4-digit-year columns condensed
// into a single "Annual values" list. Rows below the minimum viable
// length are dropped.
func (l *Loader) LoadCSV(path string) ([]domain.Chunk, error) {
	filename := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	// Survey exports commonly carry a UTF-8 BOM.
	text := strings.TrimPrefix(string(data), "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv %s: no data rows", filename)
	}

	header := records[0]
	logger.Info("Loading %q (%d rows)", l.datasetName, len(records)-1)

	var yearCols, idCols []int
	for i, col := range header {
		if yearColumnRE.MatchString(strings.TrimSpace(col)) {
			yearCols = append(yearCols, i)
		} else {
			idCols = append(idCols, i)
		}
	}

	indicatorIdx := -1
	for _, name := range indicatorColumns {
		for i, col := range header {
			if strings.TrimSpace(col) == name {
				indicatorIdx = i
				break
			}
		}
		if indicatorIdx >= 0 {
			break
		}
	}

	var chunks []domain.Chunk
	for rowNo, row := range records[1:] {
		indicator := fmt.Sprintf("Row %d", rowNo)
		if indicatorIdx >= 0 && indicatorIdx < len(row) && strings.TrimSpace(row[indicatorIdx]) != "" {
			indicator = strings.TrimSpace(row[indicatorIdx])
		}

		parts := []string{"Indicator: " + indicator}

		for _, i := range idCols {
			if i >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[i])
			if val != "" {
				parts = append(parts, fmt.Sprintf("  %s: %s", header[i], val))
			}
		}

		var years []string
		for _, i := range yearCols {
			if i >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[i])
			if val != "" {
				years = append(years, fmt.Sprintf("%s=%s", header[i], val))
			}
		}
		if len(years) > 0 {
			parts = append(parts, "  Annual values: "+strings.Join(years, ", "))
		}

		rowText := strings.Join(parts, "\n")
		if len(rowText) <= l.minRowChars {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			Text:       rowText,
			SourceName: l.datasetName,
			OriginID:   filename,
			Page:       0,
			Position:   rowNo,
			Kind:       domain.KindTabular,
		})
	}

	logger.Info("  %d chunks from %s", len(chunks), filename)
	return chunks, nil
}
