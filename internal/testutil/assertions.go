package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "propfolio/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertFloatPtr checks that got is non-nil and within tolerance of want.
func AssertFloatPtr(t *testing.T, got *float64, want, tolerance float64) {
	t.Helper()

	if got == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if math.Abs(*got-want) > tolerance {
		t.Errorf("expected %v (±%v), got %v", want, tolerance, *got)
	}
}

// AssertNilFloatPtr checks that got is nil.
func AssertNilFloatPtr(t *testing.T, got *float64) {
	t.Helper()

	if got != nil {
		t.Errorf("expected nil, got %v", *got)
	}
}
