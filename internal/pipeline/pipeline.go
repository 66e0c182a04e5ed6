package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/lfaller/clinvar-data-monitor/internal/fetcher"
	"github.com/lfaller/clinvar-data-monitor/internal/history"
	"github.com/lfaller/clinvar-data-monitor/internal/models"
	"github.com/lfaller/clinvar-data-monitor/internal/packager"
	"github.com/lfaller/clinvar-data-monitor/internal/quality"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

// Pipeline sequences the download, quality assessment and packaging
// steps. Execution is strictly sequential; each step either succeeds
// fully or fails the run.
type Pipeline struct {
	cfg      *config.Config
	fetcher  *fetcher.Fetcher
	checker  *quality.Checker
	packager *packager.Packager
	store    *history.Store
}

// Result summarizes a successful pipeline run.
type Result struct {
	DataFile   string
	ReportPath string
	Report     *models.QualityReport
	Package    *packager.Package
	Drift      float64
	Duration   time.Duration
}

// New wires up all pipeline modules. The history store is optional and
// skipped when no database path is configured.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	f, err := fetcher.New(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		fetcher:  f,
		checker:  quality.NewChecker(cfg),
		packager: packager.New(cfg),
	}

	if cfg.History.DatabasePath != "" {
		store, err := history.Open(ctx, cfg.History.DatabasePath, cfg.History.DebugSQL)
		if err != nil {
			return nil, err
		}
		p.store = store
	}

	return p, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Run executes the complete pipeline: fetch, assess, publish, record.
// Errors are logged where they surface and returned; nothing is retried
// above the fetcher's own network-level retry.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	slog.Info("pipeline started", slog.Time("timestamp", start))

	result, err := p.run(ctx)
	if err != nil {
		slog.Error("pipeline failed", slog.String("error", err.Error()))
		slog.Info("pipeline finished",
			slog.String("status", "failed"),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	result.Duration = time.Since(start)
	slog.Info("pipeline finished",
		slog.String("status", "completed"),
		slog.Float64("quality_score", result.Report.Score()),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	slog.Info("step 1: downloading ClinVar data")
	dataFile, err := p.fetcher.FetchAndVerify(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("step 2: assessing data quality")
	report, reportPath, err := p.checker.Assess(dataFile)
	if err != nil {
		return nil, err
	}

	drift, err := p.recordHistory(ctx, report, dataFile)
	if err != nil {
		return nil, err
	}
	p.checkThresholds(report, drift)

	slog.Info("step 3: creating package")
	pkg, err := p.packager.Publish(ctx, dataFile, reportPath, report)
	if err != nil {
		return nil, err
	}

	return &Result{
		DataFile:   dataFile,
		ReportPath: reportPath,
		Report:     report,
		Package:    pkg,
		Drift:      drift,
	}, nil
}

func (p *Pipeline) recordHistory(ctx context.Context, report *models.QualityReport, dataFile string) (float64, error) {
	if p.store == nil {
		return 0, nil
	}

	previous, err := p.store.Latest(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := p.store.Record(ctx, report, dataFile); err != nil {
		return 0, err
	}

	if previous == nil {
		return 0, nil
	}
	return history.Drift(report.RowCount, previous.RowCount), nil
}

// checkThresholds logs advisory warnings for configured quality bounds.
// Thresholds never gate the run.
func (p *Pipeline) checkThresholds(report *models.QualityReport, drift float64) {
	t := p.cfg.Quality.Thresholds

	if t.MinQualityScore > 0 && report.Score() < t.MinQualityScore {
		slog.Warn("quality score below threshold",
			slog.Float64("score", report.Score()),
			slog.Float64("threshold", t.MinQualityScore))
	}
	if t.MaxNullPercentage > 0 && report.NullPercentageAvg > t.MaxNullPercentage {
		slog.Warn("null percentage above threshold",
			slog.Float64("null_percentage", report.NullPercentageAvg),
			slog.Float64("threshold", t.MaxNullPercentage))
	}
	if t.MaxConflictRate > 0 && report.RowCount > 0 {
		conflictRate := float64(report.ConflictingCount) / float64(report.RowCount) * 100
		if conflictRate > t.MaxConflictRate {
			slog.Warn("conflict rate above threshold",
				slog.Float64("conflict_rate", conflictRate),
				slog.Float64("threshold", t.MaxConflictRate))
		}
	}
	if t.MaxDriftPercentage > 0 && drift > t.MaxDriftPercentage {
		slog.Warn("row count drift above threshold",
			slog.Float64("drift", drift),
			slog.Float64("threshold", t.MaxDriftPercentage))
	}
}
