package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func useConfig(t *testing.T, yaml string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	original := cfgPath
	cfgPath = path
	t.Cleanup(func() {
		cfgPath = original
	})
}

func writeTSV(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("VariationID\tClinicalSignificance\tReviewStatus\tConflictingInterpretations\tType\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "%d\tPathogenic\t★★★★\t0\tSNV\n", i)
	}

	path := filepath.Join(dir, "variant_summary.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, NewVersionCmd())
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("output missing version %q: %s", version, out)
	}
	if !strings.Contains(out, runtime.Version()) {
		t.Errorf("output missing go version: %s", out)
	}
}

func TestAssessCmd(t *testing.T) {
	dir := t.TempDir()
	reportDir := filepath.Join(dir, "reports")
	useConfig(t, fmt.Sprintf("quality:\n  output_dir: %q\n", reportDir))

	dataFile := writeTSV(t, dir, 150)

	out, err := execute(t, NewAssessCmd(), dataFile)
	if err != nil {
		t.Fatalf("assess command failed: %v", err)
	}

	if !strings.Contains(out, "Rows:          150") {
		t.Errorf("output missing row count: %s", out)
	}
	if !strings.Contains(out, "Quality score: 100.00") {
		t.Errorf("output missing quality score: %s", out)
	}

	reports, err := os.ReadDir(reportDir)
	if err != nil {
		t.Fatalf("failed to read report dir: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report file, got %d", len(reports))
	}
	if !strings.HasPrefix(reports[0].Name(), "quality_report_") {
		t.Errorf("unexpected report file name %q", reports[0].Name())
	}
}

func TestAssessCmdMissingDataFile(t *testing.T) {
	useConfig(t, "quality:\n  output_dir: "+filepath.Join(t.TempDir(), "reports")+"\n")

	if _, err := execute(t, NewAssessCmd(), "/nonexistent/variant_summary.txt"); err == nil {
		t.Fatal("expected an error for a missing data file")
	}
}

func TestAssessCmdRequiresArgument(t *testing.T) {
	if _, err := execute(t, NewAssessCmd()); err == nil {
		t.Fatal("expected an argument-count error")
	}
}

func TestPublishCmdPushDisabled(t *testing.T) {
	dir := t.TempDir()
	reportDir := filepath.Join(dir, "reports")
	useConfig(t, fmt.Sprintf(`
quality:
  output_dir: %q
registry:
  package_name: "biodata/clinvar-variant-summary"
  push_enabled: false
`, reportDir))

	dataFile := writeTSV(t, dir, 120)

	// A report must exist before publishing.
	if _, err := execute(t, NewAssessCmd(), dataFile); err != nil {
		t.Fatalf("assess step failed: %v", err)
	}
	reports, err := os.ReadDir(reportDir)
	if err != nil || len(reports) != 1 {
		t.Fatalf("expected 1 report file, got %d (err %v)", len(reports), err)
	}
	reportFile := filepath.Join(reportDir, reports[0].Name())

	out, err := execute(t, NewPublishCmd(), dataFile, reportFile)
	if err != nil {
		t.Fatalf("publish command failed: %v", err)
	}
	if !strings.Contains(out, "Package:  biodata/clinvar-variant-summary") {
		t.Errorf("output missing package name: %s", out)
	}
	if !strings.Contains(out, "Top hash: ") {
		t.Errorf("output missing top hash: %s", out)
	}
}

func TestPublishCmdMissingReport(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, "registry:\n  push_enabled: false\n")

	dataFile := writeTSV(t, dir, 10)

	if _, err := execute(t, NewPublishCmd(), dataFile, filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("expected an error for a missing report file")
	}
}

func TestHistoryCmdEmpty(t *testing.T) {
	dbPath := "file:" + filepath.Join(t.TempDir(), "history.db")
	useConfig(t, fmt.Sprintf("history:\n  database_path: %q\n", dbPath))

	out, err := execute(t, NewHistoryCmd())
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}
	if !strings.Contains(out, "no quality runs recorded") {
		t.Errorf("expected empty-history message, got: %s", out)
	}
}

func TestHistoryCmdDisabled(t *testing.T) {
	useConfig(t, "history:\n  database_path: \"\"\n")

	if _, err := execute(t, NewHistoryCmd()); err == nil {
		t.Fatal("expected an error when history tracking is disabled")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	original := cfgPath
	cfgPath = filepath.Join(t.TempDir(), "absent.yaml")
	t.Cleanup(func() {
		cfgPath = original
	})

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
