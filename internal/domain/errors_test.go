package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrTooManyCandidates,
			expected: "Too many people in a single comparison",
		},
		{
			name:     "error with wrapped error",
			appErr:   ErrBadRequest.WithError(errors.New("unexpected end of JSON input")),
			expected: "Invalid request: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("body too large")
	newErr := ErrBadRequest.WithError(underlying)

	if newErr.Code != ErrBadRequest.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrBadRequest.Code)
	}
	if newErr.StatusCode != ErrBadRequest.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrBadRequest.StatusCode)
	}
	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}
	if ErrBadRequest.Err != nil {
		t.Errorf("WithError must not mutate the predefined error")
	}

	var appErr *AppError
	if !errors.As(fmt.Errorf("handler: %w", newErr), &appErr) {
		t.Fatalf("errors.As should match AppError")
	}
	if appErr.Code != "BAD_REQUEST" {
		t.Errorf("Code = %v, want BAD_REQUEST", appErr.Code)
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       string
		statusCode int
	}{
		{ErrInternal, "INTERNAL_ERROR", 500},
		{ErrBadRequest, "BAD_REQUEST", 400},
		{ErrValidationFailed, "VALIDATION_FAILED", 422},
		{ErrTooManyCandidates, "TOO_MANY_CANDIDATES", 422},
		{ErrRateLimitExceeded, "RATE_LIMIT_EXCEEDED", 429},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", tt.err.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestPipelineErrorsAreDistinct(t *testing.T) {
	pipeline := []error{ErrFetch, ErrNoFaceDetected, ErrExtraction, ErrEngineInit, ErrEngineClosed}

	for i, a := range pipeline {
		for j, b := range pipeline {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v must not match %v", a, b)
			}
		}
	}

	wrapped := fmt.Errorf("candidate %d: %w", 3, ErrNoFaceDetected)
	if !errors.Is(wrapped, ErrNoFaceDetected) {
		t.Errorf("wrapped no-face error lost its identity")
	}
}
