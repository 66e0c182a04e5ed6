package quality

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

// Checker runs quality assessments and persists their reports.
type Checker struct {
	outputDir string
}

// NewChecker creates a checker writing reports into the configured
// output directory.
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{outputDir: cfg.Quality.OutputDir}
}

// BuildReport turns a variant table into an immutable quality report,
// stamped with the current UTC time.
func BuildReport(table *models.VariantTable) *models.QualityReport {
	metrics := ComputeMetrics(table)

	fourStarPct := 0.0
	if metrics.RowCount > 0 {
		fourStarPct = float64(metrics.ReviewStatus["4-star"]) / float64(metrics.RowCount) * 100
	}

	report := &models.QualityReport{
		Timestamp:                        time.Now().UTC().Format(time.RFC3339),
		RowCount:                         metrics.RowCount,
		ColumnCount:                      metrics.ColumnCount,
		NullPercentageAvg:                metrics.NullPercentage,
		DuplicateCount:                   metrics.DuplicateCount,
		ConflictingCount:                 metrics.ConflictingCount,
		FourStarPercentage:               fourStarPct,
		ClinicalSignificanceDistribution: metrics.ClinicalSignificance,
		ReviewStatusDistribution:         metrics.ReviewStatus,
	}

	score := Score(ScoreInput{
		RowCount:           report.RowCount,
		NullPercentageAvg:  report.NullPercentageAvg,
		ConflictingCount:   report.ConflictingCount,
		FourStarPercentage: report.FourStarPercentage,
	})
	report.QualityScore = &score

	slog.Info("generated quality report", slog.Float64("quality_score", score))
	return report
}

// SaveReport serializes the report as indented JSON to
// <dir>/quality_report_<YYYY-MM-DD>.json. The date comes from the
// report's own timestamp so the filename is reproducible for a given
// report; an existing file for the same date is overwritten.
func (c *Checker) SaveReport(report *models.QualityReport) (string, error) {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(c.outputDir, fmt.Sprintf("quality_report_%s.json", reportDate(report)))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write quality report: %w", err)
	}

	slog.Info("quality report saved", slog.String("path", outputPath))
	return outputPath, nil
}

// Assess is the quality engine's entry point: load the variant table,
// build the report and persist it. It fails fast on the first error.
func (c *Checker) Assess(dataPath string) (*models.QualityReport, string, error) {
	slog.Info("starting quality assessment", slog.String("path", dataPath))

	table, err := Load(dataPath)
	if err != nil {
		return nil, "", err
	}

	report := BuildReport(table)

	reportPath, err := c.SaveReport(report)
	if err != nil {
		return nil, "", err
	}

	slog.Info("quality assessment complete")
	return report, reportPath, nil
}

// LoadReport reads a previously saved quality report from disk.
func LoadReport(path string) (*models.QualityReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.NotFoundError{Path: path}
		}
		return nil, err
	}

	report := &models.QualityReport{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("failed to parse quality report %s: %w", path, err)
	}
	return report, nil
}

func reportDate(report *models.QualityReport) string {
	ts := report.Timestamp
	if ts == "" {
		return time.Now().UTC().Format("2006-01-02")
	}
	if i := strings.Index(ts, "T"); i > 0 {
		ts = ts[:i]
	}
	return ts
}
