package deepface

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeepFaceUnavailable = errors.New("deepface service unavailable")
	ErrInvalidResponse     = errors.New("invalid response from deepface")
	ErrEmptyEmbedding      = errors.New("empty embedding in deepface response")
)

// noFaceMarker is the message DeepFace returns when enforce_detection is set
// and the detector finds nothing.
const noFaceMarker = "could not be detected"

// StatusError is a non-2xx answer from DeepFace
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepface returned status %d: %s", e.StatusCode, e.Body)
}

// isClientError reports whether err is a 4xx answer, which is never retried
func isClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// isNoFaceError reports whether err is DeepFace's "face could not be detected" answer
func isNoFaceError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode >= 500 {
		return false
	}
	return strings.Contains(strings.ToLower(statusErr.Body), noFaceMarker)
}
