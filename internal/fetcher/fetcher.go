package fetcher

import (
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

const defaultTimeout = 30 * time.Second

// Fetcher downloads the ClinVar variant summary archive, validates it
// against its MD5 sidecar and decompresses it.
//
// An archive already present in the download directory is reused as-is;
// its checksum is not re-validated. That is a deliberate tradeoff: the
// filesystem acts as a cache keyed by filename, and a stale or corrupted
// cached copy must be removed manually to force a fresh download.
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retryConfig
}

// New creates a fetcher and ensures the download directory exists.
func New(cfg *config.Config) (*Fetcher, error) {
	if cfg.ClinVar.SourceURL == "" {
		return nil, fmt.Errorf("clinvar source_url is required")
	}
	if cfg.ClinVar.DownloadDir == "" {
		return nil, fmt.Errorf("clinvar download_dir is required")
	}
	if err := os.MkdirAll(cfg.ClinVar.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	limit := rate.Inf
	if cfg.ClinVar.RateLimit > 0 {
		limit = rate.Limit(cfg.ClinVar.RateLimit)
	}

	return &Fetcher{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: config.DurationOrDefault(cfg.ClinVar.Timeout, defaultTimeout),
		},
		limiter: rate.NewLimiter(limit, 1),
		retry:   retryConfig{maxAttempts: cfg.ClinVar.MaxRetries},
	}, nil
}

// FetchAndVerify downloads the source archive and its checksum sidecar,
// validates integrity and decompresses the archive. It returns the path
// to the decompressed data file.
func (f *Fetcher) FetchAndVerify(ctx context.Context) (string, error) {
	slog.Info("starting download and verification workflow",
		slog.String("source", f.cfg.ClinVar.SourceURL))

	archivePath, err := f.DownloadFile(ctx, f.cfg.ClinVar.SourceURL)
	if err != nil {
		return "", err
	}

	expected, err := f.FetchChecksum(ctx)
	if err != nil {
		return "", err
	}

	if err := VerifyChecksum(archivePath, expected); err != nil {
		return "", err
	}

	dataPath, err := Decompress(archivePath)
	if err != nil {
		return "", err
	}

	slog.Info("download and verification complete", slog.String("path", dataPath))
	return dataPath, nil
}

// DownloadFile downloads rawURL into the download directory, retrying
// transient failures. A file that already exists at the destination is
// returned without re-downloading.
func (f *Fetcher) DownloadFile(ctx context.Context, rawURL string) (string, error) {
	filename, err := filenameFromURL(rawURL)
	if err != nil {
		return "", err
	}
	destination := filepath.Join(f.cfg.ClinVar.DownloadDir, filename)

	if _, err := os.Stat(destination); err == nil {
		slog.Info("file already exists, skipping download", slog.String("path", destination))
		return destination, nil
	}

	slog.Info("downloading", slog.String("url", rawURL))

	attempts := 0
	err = executeWithRetry(ctx, f.retry, func() error {
		attempts++
		return f.downloadOnce(ctx, rawURL, destination)
	})
	if err != nil {
		return "", &models.TransientFetchError{URL: rawURL, Attempts: attempts, Err: err}
	}

	slog.Info("download complete", slog.String("path", destination))
	return destination, nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, rawURL, destination string) error {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	file, err := os.Create(destination)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(destination)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(destination)
		return err
	}
	return nil
}

// FetchChecksum downloads the checksum sidecar and returns its first
// whitespace-delimited token.
func (f *Fetcher) FetchChecksum(ctx context.Context) (string, error) {
	checksumURL := f.cfg.ClinVar.ChecksumURL
	if checksumURL == "" {
		return "", fmt.Errorf("clinvar checksum_url is required")
	}

	slog.Info("downloading checksum", slog.String("url", checksumURL))

	var body []byte
	attempts := 0
	err := executeWithRetry(ctx, f.retry, func() error {
		attempts++
		resp, err := f.get(ctx, checksumURL)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return "", &models.TransientFetchError{URL: checksumURL, Attempts: attempts, Err: err}
	}

	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("checksum file from %s is empty", checksumURL)
	}
	return fields[0], nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &httpStatusError{status: resp.StatusCode, url: rawURL}
	}
	return resp, nil
}

// VerifyChecksum streams an MD5 over the file and compares it to the
// expected hex digest, case-insensitively.
func VerifyChecksum(filePath, expected string) error {
	actual, err := ChecksumMD5(filePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, expected) {
		slog.Error("checksum mismatch",
			slog.String("path", filePath),
			slog.String("expected", expected),
			slog.String("actual", actual))
		return &models.IntegrityError{Path: filePath, Expected: expected, Actual: actual}
	}

	slog.Info("checksum validation passed", slog.String("path", filePath))
	return nil
}

// ChecksumMD5 computes the hex MD5 digest of a file.
func ChecksumMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &models.NotFoundError{Path: filePath}
		}
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Decompress gunzips the archive next to itself, stripping the .gz
// suffix from the output name.
func Decompress(gzPath string) (string, error) {
	outPath := strings.TrimSuffix(gzPath, ".gz")
	if outPath == gzPath {
		outPath = gzPath + ".out"
	}

	slog.Info("decompressing", slog.String("from", gzPath), slog.String("to", outPath))

	in, err := os.Open(gzPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &models.NotFoundError{Path: gzPath}
		}
		return "", err
	}
	defer func() {
		_ = in.Close()
	}()

	reader, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return "", fmt.Errorf("failed to decompress %s: %w", gzPath, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	return outPath, nil
}

func filenameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive filename from url %q", rawURL)
	}
	return name, nil
}
