package face

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// Extractor turns decoded images into face signatures
type Extractor struct {
	guard *EngineGuard
}

func NewExtractor(guard *EngineGuard) *Extractor {
	return &Extractor{guard: guard}
}

// Extract returns the signature of the first detected face.
//
// Errors:
//   - domain.ErrNoFaceDetected when the image contains no face
//   - context errors when ctx ended while waiting for the engine
//   - domain.ErrExtraction for any engine fault, including empty signatures
func (x *Extractor) Extract(ctx context.Context, img image.Image) (provider.Signature, error) {
	sig, err := WithEngine(ctx, x.guard, func(engine provider.FaceEngine) (provider.Signature, error) {
		return engine.DetectAndEmbed(ctx, img)
	})

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoFaceDetected):
		return nil, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: engine returned an empty signature", domain.ErrExtraction)
	}

	return sig, nil
}
