package packager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

const defaultPushTimeout = 60 * time.Second

// PackageInfo is a registry catalog entry.
type PackageInfo struct {
	Name      string `json:"name"`
	TopHash   string `json:"top_hash"`
	Revision  string `json:"revision"`
	UpdatedAt string `json:"updated_at"`
}

// registryClient talks to the package registry's HTTP API.
type registryClient struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
}

func newRegistryClient(cfg *config.Config) *registryClient {
	return &registryClient{
		baseURL: cfg.Registry.URL,
		bucket:  cfg.Registry.Bucket,
		httpClient: &http.Client{
			Timeout: config.DurationOrDefault(cfg.Registry.Timeout, defaultPushTimeout),
		},
	}
}

// PushPackage uploads a package manifest. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff; other HTTP
// errors fail immediately.
func (c *registryClient) PushPackage(ctx context.Context, pkg *Package) error {
	body, err := json.Marshal(struct {
		*Package
		Bucket string `json:"bucket,omitempty"`
	}{Package: pkg, Bucket: c.bucket})
	if err != nil {
		return fmt.Errorf("failed to serialize package: %w", err)
	}

	pushURL := fmt.Sprintf("%s/packages/%s", c.baseURL, pkg.Name)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, pushURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		err = fmt.Errorf("registry returned status %d for %s", resp.StatusCode, pushURL)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 2 * time.Minute
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// ListPackages fetches the registry catalog.
func (c *registryClient) ListPackages(ctx context.Context) ([]PackageInfo, error) {
	listURL := c.baseURL + "/packages"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, listURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var packages []PackageInfo
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, fmt.Errorf("failed to parse registry catalog: %w", err)
	}
	return packages, nil
}
