package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = 1 * time.Second
)

var retryableErrorSubstrings = []string{
	"timeout",
	"i/o timeout",
	"tls handshake timeout",
	"eof",
	"unexpected eof",
	"broken pipe",
	"connection reset",
	"connection refused",
	"connection aborted",
	"connection closed",
	"use of closed network connection",
	"network is unreachable",
	"no route to host",
	"no such host",
}

// httpStatusError reports a non-2xx response from the remote server.
type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

func (e *httpStatusError) retryable() bool {
	return e.status == 429 || e.status >= 500
}

type retryConfig struct {
	maxAttempts int
	baseBackoff time.Duration
	sleep       func(context.Context, time.Duration) error
}

func (cfg retryConfig) normalized() retryConfig {
	if cfg.maxAttempts <= 0 {
		cfg.maxAttempts = defaultMaxAttempts
	}
	if cfg.baseBackoff <= 0 {
		cfg.baseBackoff = defaultBaseBackoff
	}
	if cfg.sleep == nil {
		cfg.sleep = sleepWithContext
	}
	return cfg
}

// executeWithRetry runs fn up to maxAttempts times, sleeping between
// attempts with attempt-indexed base-2 exponential backoff (base, 2x,
// 4x, ...). Non-retryable errors fail immediately.
func executeWithRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	cfg = cfg.normalized()

	var lastErr error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) || attempt == cfg.maxAttempts {
			return err
		}

		backoff := cfg.baseBackoff << (attempt - 1)
		if err := cfg.sleep(ctx, backoff); err != nil {
			return err
		}
	}

	return lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errText := strings.ToLower(err.Error())
	for _, marker := range retryableErrorSubstrings {
		if strings.Contains(errText, marker) {
			return true
		}
	}

	return false
}
