package apperrors

import "errors"

// Standard application errors
var (
	// ErrInvalidInput is returned when input provided by the caller is invalid.
	ErrInvalidInput = errors.New("invalid input provided")

	// ErrExternalServiceFailure is returned when an interaction with an external service fails.
	ErrExternalServiceFailure = errors.New("external service interaction failed")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotConnected is returned when an endpoint fails its liveness check.
	ErrNotConnected = errors.New("endpoint not connected")

	// ErrBlockNotFound is returned when a block record could not be retrieved
	// for a block number the node itself reported.
	ErrBlockNotFound = errors.New("block not found")
)
