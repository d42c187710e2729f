package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Summarisation is disabled; entity extraction and compliance still work.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Pipeline Errors.

	// ErrPrecondition indicates the input was empty or too short to analyse.
	// It is reported before any concurrent work starts.
	ErrPrecondition = errors.New("precondition failed")

	// ErrCapabilityTimeout indicates a summarisation call or phase exceeded its deadline.
	ErrCapabilityTimeout = errors.New("summarisation timed out")

	// ErrCapabilityFailure indicates the summarisation capability failed for a reason other than timeout.
	ErrCapabilityFailure = errors.New("summarisation failed")

	// ErrUnexpected indicates any other failure during orchestration.
	ErrUnexpected = errors.New("unexpected failure")
)

// ErrorKind is a stable, machine-readable failure category.
type ErrorKind string

// Failure categories exposed in AnalysisResult.
const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindPrecondition      ErrorKind = "precondition_failure"
	ErrorKindCapabilityTimeout ErrorKind = "capability_timeout"
	ErrorKindCapabilityFailure ErrorKind = "capability_failure"
	ErrorKindUnexpected        ErrorKind = "unexpected_failure"
)

// KindOf classifies err into an ErrorKind.
// Context deadline errors count as capability timeouts.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedType):
		return ErrorKindPrecondition
	case errors.Is(err, ErrCapabilityTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCapabilityTimeout
	case errors.Is(err, ErrCapabilityFailure), errors.Is(err, ErrLLMUnavailable):
		return ErrorKindCapabilityFailure
	default:
		return ErrorKindUnexpected
	}
}
