package face

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/iris/internal/config"
	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name        string
		detect      func(ctx context.Context, img image.Image) (provider.Signature, error)
		wantSig     provider.Signature
		wantErrIs   error
		wantNotIs   error
		wantErrText string
	}{
		{
			name: "returns signature",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				return provider.Signature{0.1, 0.2}, nil
			},
			wantSig: provider.Signature{0.1, 0.2},
		},
		{
			name: "no face stays recoverable",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				return nil, fmt.Errorf("%w: detector found 0 faces", domain.ErrNoFaceDetected)
			},
			wantErrIs: domain.ErrNoFaceDetected,
			wantNotIs: domain.ErrExtraction,
		},
		{
			name: "engine fault becomes extraction error",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				return nil, errors.New("model exploded")
			},
			wantErrIs:   domain.ErrExtraction,
			wantNotIs:   domain.ErrNoFaceDetected,
			wantErrText: "model exploded",
		},
		{
			name: "empty signature is a fault",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				return provider.Signature{}, nil
			},
			wantErrIs: domain.ErrExtraction,
		},
		{
			name: "panic is a fault",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				panic("segfault in detector")
			},
			wantErrIs:   domain.ErrExtraction,
			wantErrText: "segfault in detector",
		},
		{
			name: "context errors pass through",
			detect: func(context.Context, image.Image) (provider.Signature, error) {
				return nil, context.Canceled
			},
			wantErrIs: context.Canceled,
			wantNotIs: domain.ErrExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(NewEngineGuard(&fakeEngine{detect: tt.detect}))

			sig, err := extractor.Extract(context.Background(), testImage())

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.Nil(t, sig)
				assert.ErrorIs(t, err, tt.wantErrIs)
				if tt.wantNotIs != nil {
					assert.NotErrorIs(t, err, tt.wantNotIs)
				}
				if tt.wantErrText != "" {
					assert.Contains(t, err.Error(), tt.wantErrText)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSig, sig)
		})
	}
}

func TestExtractor_ClosedEngine(t *testing.T) {
	guard := NewEngineGuard(&fakeEngine{})
	require.NoError(t, guard.Close())

	_, err := NewExtractor(guard).Extract(context.Background(), testImage())

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, domain.ErrEngineClosed)
}

func TestExtractor_DeepFaceFailureReleasesGuardWithoutBackoff(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	engine, err := NewFaceEngine(&config.Config{FaceEngine: "deepface", DeepFaceURL: server.URL})
	require.NoError(t, err)

	guard := NewEngineGuard(engine)
	defer func() { _ = guard.Close() }()

	start := time.Now()
	_, err = NewExtractor(guard).Extract(context.Background(), testImage())
	require.ErrorIs(t, err, domain.ErrExtraction)

	// A backoff sleep would cost at least one second under the guard
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	got, err := WithEngine(ctx, guard, func(provider.FaceEngine) (string, error) {
		return "acquired", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acquired", got)
}
