// errors_test.go: unit tests for structured error construction and
// classification helpers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"errors"
	"testing"
)

var errBoom = errors.New("boom")

func TestGetErrorCode(t *testing.T) {
	err := NewErrInvalidMaximumSize(-1)
	if GetErrorCode(err) != ErrCodeInvalidMaximumSize {
		t.Fatalf("expected ErrCodeInvalidMaximumSize, got %v", GetErrorCode(err))
	}
	if GetErrorCode(nil) != "" {
		t.Fatal("expected empty error code for a nil error")
	}
}

func TestIsInvalidArgument(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{NewErrInvalidMaximumSize(-1), true},
		{NewErrNilKey("Put"), true},
		{NewErrMissingWeigher(), false},
		{NewErrLoaderFailed(errBoom), false},
	}
	for _, c := range cases {
		if got := IsInvalidArgument(c.err); got != c.want {
			t.Errorf("IsInvalidArgument(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsIllegalState(t *testing.T) {
	if !IsIllegalState(NewErrReentrantCompute("Compute")) {
		t.Fatal("expected reentrant compute error to be IllegalState")
	}
	if !IsIllegalState(NewErrMissingWeigher()) {
		t.Fatal("expected missing weigher error to be IllegalState")
	}
	if IsIllegalState(NewErrNilKey("Put")) {
		t.Fatal("expected nil key error not to be IllegalState")
	}
}

func TestIsLoaderFailure(t *testing.T) {
	if !IsLoaderFailure(NewErrLoaderFailed(errBoom)) {
		t.Fatal("expected loader-failed error to be classified as a loader failure")
	}
	if !IsLoaderFailure(NewErrLoaderPanicked("boom")) {
		t.Fatal("expected loader-panicked error to be classified as a loader failure")
	}
	if IsLoaderFailure(NewErrReentrantCompute("Compute")) {
		t.Fatal("expected an IllegalState error not to be classified as a loader failure")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewErrLoaderFailed(errBoom)) {
		t.Fatal("expected a wrapped loader failure to be retryable")
	}
	if IsRetryable(NewErrNilKey("Put")) {
		t.Fatal("expected a nil-key error not to be retryable")
	}
	if IsRetryable(nil) {
		t.Fatal("expected IsRetryable(nil) to be false")
	}
}

func TestGetErrorContext(t *testing.T) {
	err := NewErrInvalidMaximumSize(-5)
	ctx := GetErrorContext(err)
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if ctx["provided_size"] != int64(-5) {
		t.Fatalf("expected provided_size=-5 in context, got %v", ctx["provided_size"])
	}
}
