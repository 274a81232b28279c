// Package ovcerr defines the error kinds shared across this library's
// packages (spec.md §7). Each kind is a sentinel that callers can match
// with errors.Is; components wrap it with fmt.Errorf("...: %w", ...) to
// add local detail.
package ovcerr

import "errors"

var (
	// ErrInvalidArgument covers nulls, out-of-range sizes, and wrong
	// magic tags.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedInput covers parse errors, invalid UTF-8, invalid
	// escapes, duplicate object keys, and trailing garbage.
	ErrMalformedInput = errors.New("malformed input")

	// ErrCapacityExceeded covers output buffers too small and full
	// ring buffers.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrStateMismatch covers codec type mismatches at runtime and
	// node-reuse with the wrong variant.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrResourceFailure covers socket, mutex, dynamic-library, and
	// external-codec errors.
	ErrResourceFailure = errors.New("resource failure")

	// ErrNotFound covers unknown codec names and missing JSON pointer
	// paths.
	ErrNotFound = errors.New("not found")
)
