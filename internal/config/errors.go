package config

import "errors"

// Configuration validation errors, returned by Config.Validate and checked
// with errors.Is.
var (
	// ErrNoTarget is returned when `analyze` is run without a URL.
	ErrNoTarget = errors.New("no target specified: provide at least one URL")

	// ErrInvalidTimeout is returned when the collector timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid collector timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoListsDir is returned when the lists directory is empty.
	ErrNoListsDir = errors.New("lists directory must be set")

	// ErrNoDBDir is returned when the archive is enabled without a directory.
	ErrNoDBDir = errors.New("database directory must be set when the archive is enabled")

	// ErrInvalidTorStartupTimeout is returned when the embedded Tor
	// startup timeout is not positive.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")

	// ErrInvalidEnv is returned when a PHISHGUARD_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
