// errors.go: comprehensive error handling for catena cache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all cache operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for catena cache operations
const (
	// Configuration / call-boundary errors, InvalidArgument family (1xxx)
	ErrCodeInvalidMaximumSize   errors.ErrorCode = "CATENA_INVALID_MAXIMUM_SIZE"
	ErrCodeInvalidMaximumWeight errors.ErrorCode = "CATENA_INVALID_MAXIMUM_WEIGHT"
	ErrCodeInvalidDuration      errors.ErrorCode = "CATENA_INVALID_DURATION"
	ErrCodeNilKey               errors.ErrorCode = "CATENA_NIL_KEY"
	ErrCodeNilValue             errors.ErrorCode = "CATENA_NIL_VALUE"
	ErrCodeNegativeWeight       errors.ErrorCode = "CATENA_NEGATIVE_WEIGHT"

	// IllegalState errors (2xxx)
	ErrCodeReentrantCompute errors.ErrorCode = "CATENA_REENTRANT_COMPUTE"
	ErrCodeMissingWeigher   errors.ErrorCode = "CATENA_MISSING_WEIGHER"
	ErrCodeClosed           errors.ErrorCode = "CATENA_CLOSED"

	// Loader errors (3xxx)
	ErrCodeLoaderFailed    errors.ErrorCode = "CATENA_LOADER_FAILED"
	ErrCodeLoaderPanicked  errors.ErrorCode = "CATENA_LOADER_PANICKED"
	ErrCodeNoLoader        errors.ErrorCode = "CATENA_NO_LOADER"
	ErrCodeLoaderCancelled errors.ErrorCode = "CATENA_LOADER_CANCELLED"

	// Internal / listener errors (5xxx) — never returned to a caller,
	// only ever logged, per the ListenerFailure propagation rule.
	ErrCodeListenerPanicked errors.ErrorCode = "CATENA_LISTENER_PANICKED"
	ErrCodeInternalError    errors.ErrorCode = "CATENA_INTERNAL_ERROR"
)

// Common error messages
const (
	msgInvalidMaximumSize   = "maximum size must be greater than 0"
	msgInvalidMaximumWeight = "maximum weight must be greater than 0"
	msgInvalidDuration      = "duration must be non-negative"
	msgNilKey               = "key must not be nil"
	msgNilValue             = "value must not be nil"
	msgNegativeWeight       = "weigher returned a negative weight"
	msgReentrantCompute     = "reentrant compute call on a colliding bin"
	msgMissingWeigher       = "maximum weight configured without a weigher"
	msgClosed               = "cache is closed"
	msgLoaderFailed         = "loader function failed"
	msgLoaderPanicked       = "loader function panicked"
	msgNoLoader             = "read-through requested but no loader is configured"
	msgLoaderCancelled      = "loader function was cancelled"
	msgListenerPanicked     = "removal listener panicked"
	msgInternalError        = "internal cache error"
)

// =============================================================================
// CONFIGURATION / CALL-BOUNDARY ERRORS
// =============================================================================

// NewErrInvalidMaximumSize creates an error for a non-positive MaximumSize.
func NewErrInvalidMaximumSize(size int64) error {
	return errors.NewWithContext(ErrCodeInvalidMaximumSize, msgInvalidMaximumSize, map[string]interface{}{
		"provided_size": size,
	})
}

// NewErrInvalidMaximumWeight creates an error for a non-positive MaximumWeight.
func NewErrInvalidMaximumWeight(weight int64) error {
	return errors.NewWithContext(ErrCodeInvalidMaximumWeight, msgInvalidMaximumWeight, map[string]interface{}{
		"provided_weight": weight,
	})
}

// NewErrInvalidDuration creates an error for a negative TTL/refresh duration.
func NewErrInvalidDuration(field string, nanos int64) error {
	return errors.NewWithContext(ErrCodeInvalidDuration, msgInvalidDuration, map[string]interface{}{
		"field":          field,
		"provided_nanos": nanos,
	})
}

// NewErrNilKey creates an error for a nil key passed at a call boundary.
func NewErrNilKey(operation string) error {
	return errors.NewWithField(ErrCodeNilKey, msgNilKey, "operation", operation)
}

// NewErrNilValue creates an error for a nil value passed at a call boundary.
func NewErrNilValue(operation string) error {
	return errors.NewWithField(ErrCodeNilValue, msgNilValue, "operation", operation)
}

// NewErrNegativeWeight creates an error for a weigher returning a negative weight.
func NewErrNegativeWeight(weight int) error {
	return errors.NewWithField(ErrCodeNegativeWeight, msgNegativeWeight, "weight", weight)
}

// =============================================================================
// ILLEGAL STATE ERRORS
// =============================================================================

// NewErrReentrantCompute creates an error for a reentrant computeIfAbsent/
// compute/merge call detected on a shard the calling goroutine already holds.
func NewErrReentrantCompute(operation string) error {
	return errors.NewWithField(ErrCodeReentrantCompute, msgReentrantCompute, "operation", operation)
}

// NewErrMissingWeigher creates an error for MaximumWeight configured without a Weigher.
func NewErrMissingWeigher() error {
	return errors.New(ErrCodeMissingWeigher, msgMissingWeigher)
}

// NewErrClosed creates an error for an operation attempted after Close.
func NewErrClosed(operation string) error {
	return errors.NewWithField(ErrCodeClosed, msgClosed, "operation", operation)
}

// =============================================================================
// LOADER ERRORS
// =============================================================================

// NewErrLoaderFailed wraps a loader's own error for the read-through path.
func NewErrLoaderFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeLoaderFailed, msgLoaderFailed).AsRetryable()
}

// NewErrLoaderPanicked creates an error for a recovered panic inside a loader.
func NewErrLoaderPanicked(panicValue interface{}) error {
	return errors.NewWithContext(ErrCodeLoaderPanicked, msgLoaderPanicked, map[string]interface{}{
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// NewErrNoLoader creates an error for a read-through call with no loader configured.
func NewErrNoLoader() error {
	return errors.New(ErrCodeNoLoader, msgNoLoader)
}

// NewErrLoaderCancelled creates an error for a context cancellation during read-through.
func NewErrLoaderCancelled(cause error) error {
	return errors.Wrap(cause, ErrCodeLoaderCancelled, msgLoaderCancelled)
}

// =============================================================================
// INTERNAL / LISTENER ERRORS
// =============================================================================

// newErrListenerPanicked builds the log-only error recorded when a
// RemovalListener panics. It is never returned to a caller.
func newErrListenerPanicked(panicValue interface{}) error {
	return errors.NewWithContext(ErrCodeListenerPanicked, msgListenerPanicked, map[string]interface{}{
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("warning")
}

// newErrInternal wraps an unexpected internal failure caught at a drain
// boundary; always logged, never propagated to a mutator's caller.
func newErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsInvalidArgument reports whether err is one of the InvalidArgument-class
// configuration/call-boundary errors.
func IsInvalidArgument(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidMaximumSize, ErrCodeInvalidMaximumWeight, ErrCodeInvalidDuration,
		ErrCodeNilKey, ErrCodeNilValue, ErrCodeNegativeWeight:
		return true
	default:
		return false
	}
}

// IsIllegalState reports whether err is one of the IllegalState-class errors.
func IsIllegalState(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeReentrantCompute, ErrCodeMissingWeigher, ErrCodeClosed:
		return true
	default:
		return false
	}
}

// IsLoaderFailure reports whether err originated on the read-through path.
func IsLoaderFailure(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeLoaderFailed, ErrCodeLoaderPanicked, ErrCodeNoLoader, ErrCodeLoaderCancelled:
		return true
	default:
		return false
	}
}

// IsRetryable checks if the error can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var catenaErr *errors.Error
	if goerrors.As(err, &catenaErr) {
		return catenaErr.Context
	}
	return nil
}
