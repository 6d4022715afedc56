package provider

import (
	"context"
	"image"
	"math"
)

// Signature is the embedding of a single detected face.
type Signature []float32

// FaceEngine is the face detection and recognition capability.
//
// DetectAndEmbed mutates engine state and must only be called by one caller
// at a time; callers go through face.EngineGuard for that. Compare works on
// plain vectors and is safe for concurrent use.
type FaceEngine interface {
	// DetectAndEmbed returns the signature of the first face reported by the
	// detector, or an error wrapping domain.ErrNoFaceDetected when there is none.
	DetectAndEmbed(ctx context.Context, img image.Image) (Signature, error)

	// Compare returns a similarity score, higher is more similar.
	Compare(a, b Signature) (float64, error)

	// Name identifies the engine in logs and audit records.
	Name() string

	// Close releases models and connections. Called once at shutdown.
	Close() error
}

// CosineSimilarity calculates the cosine similarity between two signatures.
// Returns a value between -1.0 (opposite) and 1.0 (identical), or 0 when the
// vectors differ in length or one of them is all zeros.
func CosineSimilarity(a, b Signature) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales a signature to unit length. Zero vectors are returned as is.
func Normalize(sig Signature) Signature {
	var norm float64
	for _, v := range sig {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return sig
	}

	norm = math.Sqrt(norm)
	out := make(Signature, len(sig))
	for i, v := range sig {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
