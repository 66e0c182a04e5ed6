package models

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a required input file is missing.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// IntegrityError indicates a downloaded file failed checksum validation.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// TransientFetchError indicates a download failed after exhausting all
// retry attempts.
type TransientFetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("download of %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// MalformedDataError indicates a required integer column failed type
// coercion while loading variant data.
type MalformedDataError struct {
	Column string
	Row    int
	Value  string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("column %s row %d: cannot parse %q as integer", e.Column, e.Row, e.Value)
}

// IncompleteReportError indicates a quality report is missing fields that
// are required before a package can be published.
type IncompleteReportError struct {
	Missing []string
}

func (e *IncompleteReportError) Error() string {
	return fmt.Sprintf("quality report missing required fields: %s", strings.Join(e.Missing, ", "))
}
