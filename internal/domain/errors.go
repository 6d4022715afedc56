package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Request errors, rendered by the HTTP error handler.
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnsupportedMediaType = &AppError{
		Code:       "UNSUPPORTED_MEDIA_TYPE",
		Message:    "Expected request with Content-Type: application/json",
		StatusCode: 415,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrTooManyCandidates = &AppError{
		Code:       "TOO_MANY_CANDIDATES",
		Message:    "Too many people in a single comparison",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}
)

// Pipeline errors. Each one is recovered where it happens: the item is
// omitted from the result and a diagnostic is logged.
var (
	// ErrFetch covers transport failures, non-2xx responses and undecodable images.
	ErrFetch = errors.New("image fetch failed")

	// ErrNoFaceDetected is an expected outcome, not a fault.
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrExtraction is an engine-side fault during detection or embedding.
	ErrExtraction = errors.New("face extraction failed")

	// ErrEngineInit is fatal: the process must not start serving.
	ErrEngineInit = errors.New("face engine initialization failed")

	// ErrEngineClosed is returned when the engine was already torn down.
	ErrEngineClosed = errors.New("face engine closed")
)
