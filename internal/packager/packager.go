package packager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

// defaultNamespace is used when the configured package name carries no
// namespace separator.
const defaultNamespace = "biodata"

// requiredReportFields must all be present on a report before it can be
// attached to a package.
var requiredReportFields = []string{"timestamp", "row_count", "column_count", "quality_score"}

// Packager wraps a data file and its quality report into a versioned,
// content-addressed package and optionally pushes it to a remote
// registry.
type Packager struct {
	cfg       *config.Config
	namespace string
	name      string
	client    *registryClient
}

// New creates a packager from the registry configuration.
func New(cfg *config.Config) *Packager {
	namespace, name := splitPackageName(cfg.Registry.PackageName)

	p := &Packager{
		cfg:       cfg,
		namespace: namespace,
		name:      name,
	}
	if cfg.Registry.URL != "" {
		p.client = newRegistryClient(cfg)
	}
	return p
}

// PackageName returns the fully qualified "namespace/name".
func (p *Packager) PackageName() string {
	return p.namespace + "/" + p.name
}

// Publish validates its inputs, builds the package locally and pushes it
// to the registry when pushing is enabled. A disabled push is a
// successful no-op.
func (p *Packager) Publish(ctx context.Context, dataFile, reportFile string, report *models.QualityReport) (*Package, error) {
	if err := validateDataFile(dataFile); err != nil {
		return nil, err
	}
	if err := ValidateReport(report); err != nil {
		return nil, err
	}

	files := map[string]string{
		filepath.Base(dataFile): dataFile,
	}
	if reportFile != "" {
		files[filepath.Base(reportFile)] = reportFile
	}

	pkg, err := BuildPackage(p.PackageName(), files, FlattenReport(report))
	if err != nil {
		return nil, err
	}
	pkg.Message = fmt.Sprintf("Automated ClinVar release %s", p.PackageName())

	slog.Info("package created",
		slog.String("package", pkg.Name),
		slog.String("top_hash", pkg.TopHash),
		slog.Int("entries", len(pkg.Entries)))

	if !p.cfg.Registry.PushEnabled {
		slog.Info("push to registry is disabled in configuration")
		return pkg, nil
	}

	if p.client == nil {
		return nil, fmt.Errorf("registry push enabled but registry url is not configured")
	}

	if err := p.client.PushPackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to push package to registry: %w", err)
	}

	slog.Info("package pushed to registry", slog.String("registry", p.cfg.Registry.URL))
	return pkg, nil
}

// ListRemote returns the packages known to the registry. Failures are
// not fatal: they are logged and an empty list is returned.
func (p *Packager) ListRemote(ctx context.Context) []PackageInfo {
	if p.client == nil {
		return nil
	}

	packages, err := p.client.ListPackages(ctx)
	if err != nil {
		slog.Warn("could not list registry packages", slog.String("error", err.Error()))
		return nil
	}
	return packages
}

// ValidateReport checks that the scalar fields required for publishing
// are present on the report.
func ValidateReport(report *models.QualityReport) error {
	if report == nil {
		return &models.IncompleteReportError{Missing: requiredReportFields}
	}

	var missing []string
	if strings.TrimSpace(report.Timestamp) == "" {
		missing = append(missing, "timestamp")
	}
	if report.RowCount < 0 {
		missing = append(missing, "row_count")
	}
	if report.ColumnCount < 0 {
		missing = append(missing, "column_count")
	}
	if report.QualityScore == nil {
		missing = append(missing, "quality_score")
	}

	if len(missing) > 0 {
		return &models.IncompleteReportError{Missing: missing}
	}
	return nil
}

// FlattenReport maps a quality report to flat, searchable package
// metadata: scalar fields copied as-is, one entry per distribution
// bucket with a normalized key.
func FlattenReport(report *models.QualityReport) map[string]interface{} {
	metadata := map[string]interface{}{
		"timestamp":            report.Timestamp,
		"quality_score":        report.Score(),
		"row_count":            report.RowCount,
		"column_count":         report.ColumnCount,
		"null_percentage_avg":  report.NullPercentageAvg,
		"duplicate_count":      report.DuplicateCount,
		"conflicting_count":    report.ConflictingCount,
		"four_star_percentage": report.FourStarPercentage,
	}

	for significance, count := range report.ClinicalSignificanceDistribution {
		key := "clin_sig_" + strings.ReplaceAll(strings.ToLower(significance), " ", "_")
		metadata[key] = count
	}
	for bucket, count := range report.ReviewStatusDistribution {
		key := "review_" + strings.ReplaceAll(strings.ToLower(bucket), "-", "_")
		metadata[key] = count
	}

	return metadata
}

func validateDataFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.NotFoundError{Path: path}
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is not a file: %s", path)
	}
	return nil
}

func splitPackageName(full string) (namespace, name string) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1]
	}
	return defaultNamespace, full
}
