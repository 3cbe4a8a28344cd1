package document

import (
	"context"
	"errors"
)

// Processing failures are classified into a small taxonomy. Callers match
// with errors.Is; failed results additionally carry the matching reason
// code from ReasonFor.
var (
	// ErrValidation marks malformed or empty input. Not retryable.
	ErrValidation = errors.New("document validation failed")
	// ErrConfiguration marks invalid strategy or counter options,
	// surfaced before chunking starts.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrExtraction marks a failure in the extraction collaborator.
	// Retryable with the same input.
	ErrExtraction = errors.New("extraction failed")
	// ErrTransient marks resource exhaustion during chunking. Safe for
	// the caller to retry.
	ErrTransient = errors.New("transient failure")
	// ErrDuplicateTask marks a process call reusing an in-flight or
	// retained task identifier. Fatal for the duplicate call only.
	ErrDuplicateTask = errors.New("duplicate task")
	// ErrNotFound marks a status query for an unknown task.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidInput marks text that is not valid UTF-8.
	ErrInvalidInput = errors.New("invalid input encoding")
	// ErrCancelled marks a task failed by caller cancellation.
	ErrCancelled = errors.New("processing cancelled")
)

// Reason codes recorded on failed results.
const (
	ReasonValidation    = "validation"
	ReasonConfiguration = "configuration"
	ReasonExtraction    = "extraction"
	ReasonTransient     = "transient"
	ReasonCancelled     = "cancelled"
	ReasonInternal      = "internal"
)

// ReasonFor maps an error to its machine-readable reason code.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return ReasonCancelled
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return ReasonValidation
	case errors.Is(err, ErrConfiguration):
		return ReasonConfiguration
	case errors.Is(err, ErrExtraction):
		return ReasonExtraction
	case errors.Is(err, ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return ReasonTransient
	default:
		return ReasonInternal
	}
}
