package quality

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
)

// Column names with special handling in the variant summary TSV.
const (
	ColumnVariationID          = "VariationID"
	ColumnConflicting          = "ConflictingInterpretations"
	ColumnClinicalSignificance = "ClinicalSignificance"
	ColumnReviewStatus         = "ReviewStatus"
)

// integerColumns are coerced to int64 when present; a non-empty cell
// that fails to parse is fatal.
var integerColumns = []string{ColumnVariationID, ColumnConflicting}

// Load reads a tab-separated variant summary file into a VariantTable.
// Rows shorter than the header are padded with empty cells and rows
// longer than the header are truncated, so the table is rectangular.
func Load(path string) (*models.VariantTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.NotFoundError{Path: path}
		}
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &models.VariantTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	table := &models.VariantTable{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		} else if len(record) > len(header) {
			record = record[:len(header)]
		}
		table.Rows = append(table.Rows, record)
	}

	if err := coerceIntegerColumns(table); err != nil {
		return nil, err
	}

	slog.Info("loaded variant data",
		slog.String("path", path),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))
	return table, nil
}

func coerceIntegerColumns(table *models.VariantTable) error {
	for _, column := range integerColumns {
		col := table.ColumnIndex(column)
		if col < 0 {
			continue
		}
		for i, row := range table.Rows {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			parsed, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return &models.MalformedDataError{Column: column, Row: i + 1, Value: row[col]}
			}
			// Normalize so downstream sums and duplicate detection see
			// the canonical form.
			row[col] = strconv.FormatInt(parsed, 10)
		}
	}
	return nil
}
