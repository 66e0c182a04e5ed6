package quality

import (
	"math"
	"strconv"
	"strings"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
)

// Metrics is the intermediate result of a pass over a variant table,
// before it is wrapped into a QualityReport.
type Metrics struct {
	RowCount             int
	ColumnCount          int
	NullPercentage       float64
	DuplicateCount       int
	ConflictingCount     int64
	ClinicalSignificance map[string]int
	ReviewStatus         map[string]int
}

// ComputeMetrics calculates the descriptive statistics for a table in a
// single deterministic pass. Absent columns yield empty distributions
// and zero counts, never an error.
func ComputeMetrics(table *models.VariantTable) Metrics {
	m := Metrics{
		RowCount:             table.RowCount(),
		ColumnCount:          table.ColumnCount(),
		ClinicalSignificance: map[string]int{},
		ReviewStatus:         map[string]int{},
	}

	clinCol := table.ColumnIndex(ColumnClinicalSignificance)
	reviewCol := table.ColumnIndex(ColumnReviewStatus)
	conflictCol := table.ColumnIndex(ColumnConflicting)

	nullCells := 0
	seen := make(map[string]struct{}, m.RowCount)

	for _, row := range table.Rows {
		for _, cell := range row {
			if isMissing(cell) {
				nullCells++
			}
		}

		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			m.DuplicateCount++
		} else {
			seen[key] = struct{}{}
		}

		if conflictCol >= 0 && !isMissing(row[conflictCol]) {
			if value, err := strconv.ParseInt(strings.TrimSpace(row[conflictCol]), 10, 64); err == nil {
				m.ConflictingCount += value
			}
		}

		if clinCol >= 0 && !isMissing(row[clinCol]) {
			m.ClinicalSignificance[row[clinCol]]++
		}

		if reviewCol >= 0 {
			m.ReviewStatus[StarBucket(row[reviewCol], !isMissing(row[reviewCol]))]++
		}
	}

	if totalCells := m.RowCount * m.ColumnCount; totalCells > 0 {
		m.NullPercentage = round2(float64(nullCells) / float64(totalCells) * 100)
	}

	return m
}

func isMissing(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
