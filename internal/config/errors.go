package config

import "errors"

// Configuration validation errors.
//
// Design decision: Package-level sentinel errors rather than fresh error
// instances in Validate(). Callers can use errors.Is() for programmatic
// handling while the messages stay human-readable.
var (
	// ErrNoTarget is returned when the scan command is invoked without
	// any site URL.
	ErrNoTarget = errors.New("no target specified: provide at least one site URL")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRedirects is returned when the redirect bound is negative.
	ErrInvalidRedirects = errors.New("invalid redirect bound: must be non-negative")

	// ErrInvalidBatchSize is returned when the concurrent-scan count is
	// not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown, and --xlsx is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --json, --markdown, --xlsx")
)
