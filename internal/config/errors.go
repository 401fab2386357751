package config

import "errors"

// Errors returned by Config.Validate. Callers match them with errors.Is.
var (
	// ErrNoStoryID is returned when no story id is given.
	ErrNoStoryID = errors.New("no story id specified: use --story-id")

	// ErrInvalidStoryID is returned when a story id is not a positive number.
	ErrInvalidStoryID = errors.New("invalid story id: must be a positive number")

	// ErrNoOutput is returned when no output file is given.
	ErrNoOutput = errors.New("no output file specified: use --output")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the delay between actions is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidRandomCount is returned when the number of random walks is negative.
	ErrInvalidRandomCount = errors.New("invalid random walk count: must be non-negative")

	// ErrInvalidSkipRecent is returned when --skip-recent is negative.
	ErrInvalidSkipRecent = errors.New("invalid skip-recent duration: must be non-negative")

	// ErrInvalidMaxPageSize is returned when --max-page-size is not positive.
	ErrInvalidMaxPageSize = errors.New("invalid max page size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownEngine is returned for an engine other than chrome, http or replay.
	ErrUnknownEngine = errors.New("unknown engine: must be chrome, http or replay")

	// ErrReplayFileRequired is returned when the replay engine has no input file.
	ErrReplayFileRequired = errors.New("replay engine requires --replay <file>")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
