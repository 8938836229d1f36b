package codes

import (
	"context"
	"errors"
)

// Process exit codes returned by datacheck
const (
	Success          = 0
	ChecksFailed     = 1
	Configuration    = 2
	UnavailableInput = 3
	NotFound         = 4
	Internal         = 5
	Interrupted      = 130
)

var (
	// ErrConfiguration is returned when the input selection or options are invalid
	ErrConfiguration = errors.New("configuration error")

	// ErrUnavailableInput is returned when the input file cannot be read or the database cannot be reached
	ErrUnavailableInput = errors.New("input unavailable")

	// ErrNotFound is returned when a stored report was requested but none exists
	ErrNotFound = errors.New("not found")

	// ErrChecksFailed is returned when a run completed with failing checks
	ErrChecksFailed = errors.New("one or more checks failed")
)

// ErrorCodes maps datacheck exit codes to their descriptions
var ErrorCodes = map[int]string{
	Success:          "Success",
	ChecksFailed:     "One or more checks failed",
	Configuration:    "Invalid configuration",
	UnavailableInput: "Input file or database unavailable",
	NotFound:         "No stored results found",
	Internal:         "Internal error",
	Interrupted:      "Interrupted",
}

// IsSuccess returns true if the exit code indicates every check passed
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}

// ExitCode maps an error returned by a run to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrChecksFailed):
		return ChecksFailed
	case errors.Is(err, ErrConfiguration):
		return Configuration
	case errors.Is(err, ErrUnavailableInput):
		return UnavailableInput
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, context.Canceled):
		return Interrupted
	default:
		return Internal
	}
}
