package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

const (
	// jpegQuality is used when re-encoding decoded images for upload
	jpegQuality = 95
	// maxUploadSide caps the longest side sent to DeepFace
	maxUploadSide = 1920
)

// Engine implements provider.FaceEngine using the DeepFace API
type Engine struct {
	client *Client
}

// NewEngine creates a new DeepFace engine
func NewEngine(config Config) *Engine {
	return &Engine{
		client: NewClient(config),
	}
}

func (e *Engine) Name() string {
	return "deepface"
}

// DetectAndEmbed uploads the image and returns the embedding of the first face
func (e *Engine) DetectAndEmbed(ctx context.Context, img image.Image) (provider.Signature, error) {
	payload, err := encodeDataURI(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	resp, err := e.client.Represent(ctx, payload)
	if err != nil {
		if isNoFaceError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNoFaceDetected, err)
		}
		return nil, fmt.Errorf("represent: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	// Use first face found
	embedding := resp.Results[0].Embedding
	if len(embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	sig := make(provider.Signature, len(embedding))
	for i, v := range embedding {
		sig[i] = float32(v)
	}
	return sig, nil
}

// Compare calculates cosine similarity locally; DeepFace has no endpoint
// for comparing stored embeddings.
func (e *Engine) Compare(a, b provider.Signature) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("signature dimension mismatch: %d and %d", len(a), len(b))
	}
	return provider.CosineSimilarity(a, b), nil
}

func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func encodeDataURI(img image.Image) (string, error) {
	img = downscale(img, maxUploadSide)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale shrinks img so neither side exceeds maxSide, keeping aspect ratio
func downscale(img image.Image, maxSide int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSide && height <= maxSide {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSide
		newHeight = max(1, height*maxSide/width)
	} else {
		newHeight = maxSide
		newWidth = max(1, width*maxSide/height)
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// Ensure Engine implements provider.FaceEngine
var _ provider.FaceEngine = (*Engine)(nil)
