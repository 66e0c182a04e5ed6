package packager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

func validReport() *models.QualityReport {
	score := 92.5
	return &models.QualityReport{
		Timestamp:          "2026-03-14T10:00:00Z",
		RowCount:           150,
		ColumnCount:        5,
		NullPercentageAvg:  2.5,
		DuplicateCount:     3,
		ConflictingCount:   10,
		FourStarPercentage: 40.0,
		ClinicalSignificanceDistribution: map[string]int{
			"Pathogenic":        60,
			"Likely benign":     50,
			"Uncertain significance": 40,
		},
		ReviewStatusDistribution: map[string]int{
			"4-star":    60,
			"2-star":    70,
			"no-review": 20,
		},
		QualityScore: &score,
	}
}

func newTestPackager(t *testing.T, mutate func(*config.Config)) *Packager {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Registry.PackageName = "biodata/clinvar-variant-summary"
	cfg.Registry.PushEnabled = false
	cfg.Registry.URL = ""
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func TestSplitPackageName(t *testing.T) {
	tests := []struct {
		name          string
		full          string
		wantNamespace string
		wantName      string
	}{
		{
			name:          "namespaced",
			full:          "biodata/clinvar-variant-summary",
			wantNamespace: "biodata",
			wantName:      "clinvar-variant-summary",
		},
		{
			name:          "bare name gets default namespace",
			full:          "clinvar-variant-summary",
			wantNamespace: "biodata",
			wantName:      "clinvar-variant-summary",
		},
		{
			name:          "empty namespace falls back",
			full:          "/clinvar",
			wantNamespace: "biodata",
			wantName:      "/clinvar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namespace, name := splitPackageName(tt.full)
			if namespace != tt.wantNamespace || name != tt.wantName {
				t.Errorf("splitPackageName(%q) = %q, %q, want %q, %q",
					tt.full, namespace, name, tt.wantNamespace, tt.wantName)
			}
		})
	}
}

func TestValidateReport(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*models.QualityReport)
		wantMissing []string
	}{
		{
			name:   "complete report",
			mutate: func(r *models.QualityReport) {},
		},
		{
			name:        "missing timestamp",
			mutate:      func(r *models.QualityReport) { r.Timestamp = "  " },
			wantMissing: []string{"timestamp"},
		},
		{
			name:        "missing quality score",
			mutate:      func(r *models.QualityReport) { r.QualityScore = nil },
			wantMissing: []string{"quality_score"},
		},
		{
			name: "multiple fields missing",
			mutate: func(r *models.QualityReport) {
				r.Timestamp = ""
				r.QualityScore = nil
			},
			wantMissing: []string{"timestamp", "quality_score"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validReport()
			tt.mutate(report)

			err := ValidateReport(report)
			if len(tt.wantMissing) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var incomplete *models.IncompleteReportError
			if !errors.As(err, &incomplete) {
				t.Fatalf("expected IncompleteReportError, got %T", err)
			}
			if len(incomplete.Missing) != len(tt.wantMissing) {
				t.Fatalf("expected missing %v, got %v", tt.wantMissing, incomplete.Missing)
			}
			for i, field := range tt.wantMissing {
				if incomplete.Missing[i] != field {
					t.Errorf("expected missing[%d] = %q, got %q", i, field, incomplete.Missing[i])
				}
			}
		})
	}
}

func TestValidateReportNil(t *testing.T) {
	err := ValidateReport(nil)
	var incomplete *models.IncompleteReportError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteReportError, got %T", err)
	}
	if len(incomplete.Missing) != len(requiredReportFields) {
		t.Errorf("expected all required fields missing, got %v", incomplete.Missing)
	}
}

func TestFlattenReport(t *testing.T) {
	metadata := FlattenReport(validReport())

	if got := metadata["quality_score"]; got != 92.5 {
		t.Errorf("quality_score = %v, want 92.5", got)
	}
	if got := metadata["row_count"]; got != 150 {
		t.Errorf("row_count = %v, want 150", got)
	}
	if got := metadata["timestamp"]; got != "2026-03-14T10:00:00Z" {
		t.Errorf("timestamp = %v", got)
	}

	// Distribution keys are lowercased with separators normalized.
	if got := metadata["clin_sig_likely_benign"]; got != 50 {
		t.Errorf("clin_sig_likely_benign = %v, want 50", got)
	}
	if got := metadata["clin_sig_uncertain_significance"]; got != 40 {
		t.Errorf("clin_sig_uncertain_significance = %v, want 40", got)
	}
	if got := metadata["review_4_star"]; got != 60 {
		t.Errorf("review_4_star = %v, want 60", got)
	}
	if got := metadata["review_no_review"]; got != 20 {
		t.Errorf("review_no_review = %v, want 20", got)
	}
}

func TestPublishPushDisabled(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\tType\n1\tSNV\n")

	p := newTestPackager(t, nil)
	pkg, err := p.Publish(context.Background(), dataPath, "", validReport())
	if err != nil {
		t.Fatalf("Publish with push disabled should succeed, got %v", err)
	}
	if pkg == nil || pkg.TopHash == "" {
		t.Fatal("expected a built package")
	}
	wantMessage := "Automated ClinVar release biodata/clinvar-variant-summary"
	if pkg.Message != wantMessage {
		t.Errorf("message = %q, want %q", pkg.Message, wantMessage)
	}
}

func TestPublishIncompleteReportSkipsRegistry(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\n1\n")

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.PushEnabled = true
		cfg.Registry.URL = server.URL
	})

	report := validReport()
	report.QualityScore = nil

	_, err := p.Publish(context.Background(), dataPath, "", report)
	var incomplete *models.IncompleteReportError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteReportError, got %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("registry was contacted %d times before validation", requests.Load())
	}
}

func TestPublishMissingDataFile(t *testing.T) {
	p := newTestPackager(t, nil)
	_, err := p.Publish(context.Background(), "/nonexistent/variant_summary.txt", "", validReport())
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestPublishPushSuccess(t *testing.T) {
	var gotPath string
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\n1\n")

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.PushEnabled = true
		cfg.Registry.URL = server.URL
	})

	pkg, err := p.Publish(context.Background(), dataPath, "", validReport())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("registry request method = %s, want PUT", gotMethod)
	}
	wantPath := "/packages/" + pkg.Name
	if gotPath != wantPath {
		t.Errorf("registry request path = %q, want %q", gotPath, wantPath)
	}
}

func TestPublishPushRetriesTransientFailure(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\n1\n")

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.PushEnabled = true
		cfg.Registry.URL = server.URL
	})

	if _, err := p.Publish(context.Background(), dataPath, "", validReport()); err != nil {
		t.Fatalf("Publish should recover from a transient 503, got %v", err)
	}
	if requests.Load() < 2 {
		t.Errorf("expected at least 2 registry requests, got %d", requests.Load())
	}
}

func TestPublishPushPermanentFailure(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\n1\n")

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.PushEnabled = true
		cfg.Registry.URL = server.URL
	})

	_, err := p.Publish(context.Background(), dataPath, "", validReport())
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the registry status: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("a 403 must not be retried, got %d requests", requests.Load())
	}
}

func TestPublishPushEnabledWithoutURL(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "variant_summary.txt", "VariationID\n1\n")

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.PushEnabled = true
	})

	if _, err := p.Publish(context.Background(), dataPath, "", validReport()); err == nil {
		t.Fatal("expected an error when push is enabled without a registry url")
	}
}

func TestListRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/packages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `[{"name":"biodata/clinvar-variant-summary","top_hash":"abc","revision":"r1","updated_at":"2026-03-14"}]`)
	}))
	defer server.Close()

	p := newTestPackager(t, func(cfg *config.Config) {
		cfg.Registry.URL = server.URL
	})

	packages := p.ListRemote(context.Background())
	if len(packages) != 1 {
		t.Fatalf("expected 1 package, got %d", len(packages))
	}
	if packages[0].Name != "biodata/clinvar-variant-summary" {
		t.Errorf("unexpected package name %q", packages[0].Name)
	}
}

func TestListRemoteNoClient(t *testing.T) {
	p := newTestPackager(t, nil)
	if got := p.ListRemote(context.Background()); got != nil {
		t.Errorf("expected nil without a configured registry, got %v", got)
	}
}
