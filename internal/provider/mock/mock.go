package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// SignatureDimension matches the SFace feature length.
const SignatureDimension = 128

// sampleGrid bounds how many pixels are hashed per axis.
const sampleGrid = 64

// Engine implementa provider.FaceEngine para testes e desenvolvimento.
// Uma imagem de cor uniforme não tem face; qualquer outra imagem recebe uma
// assinatura determinística derivada dos pixels.
type Engine struct{}

// New cria uma nova instância do mock engine
func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return "mock"
}

// DetectAndEmbed gera assinatura determinística baseada no hash da imagem
func (e *Engine) DetectAndEmbed(ctx context.Context, img image.Image) (provider.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}

	digest, uniform := hashPixels(img)
	if uniform {
		return nil, domain.ErrNoFaceDetected
	}

	return generateSignature(digest), nil
}

// Compare calcula similaridade coseno entre assinaturas
func (e *Engine) Compare(a, b provider.Signature) (float64, error) {
	if len(a) != SignatureDimension || len(b) != SignatureDimension {
		return 0, fmt.Errorf("signature dimension mismatch: %d and %d, want %d", len(a), len(b), SignatureDimension)
	}
	return provider.CosineSimilarity(a, b), nil
}

func (e *Engine) Close() error {
	return nil
}

// hashPixels hashes a sampled grid of pixels and reports whether every
// sampled pixel had the same color.
func hashPixels(img image.Image) ([sha256.Size]byte, bool) {
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/sampleGrid)
	stepY := max(1, bounds.Dy()/sampleGrid)

	h := sha256.New()
	var buf [16]byte
	var first [4]uint32
	uniform := true
	seen := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, a := img.At(x, y).RGBA()
			px := [4]uint32{r, g, b, a}
			if !seen {
				first, seen = px, true
			} else if px != first {
				uniform = false
			}
			for i, v := range px {
				binary.BigEndian.PutUint32(buf[i*4:], v)
			}
			_, _ = h.Write(buf[:])
		}
	}

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))
	return digest, uniform
}

// generateSignature expande o hash em um vetor unitário
func generateSignature(digest [sha256.Size]byte) provider.Signature {
	sig := make(provider.Signature, SignatureDimension)
	for i := range sig {
		sig[i] = (float32(digest[i%len(digest)])/255.0)*2 - 1
	}
	return provider.Normalize(sig)
}

var _ provider.FaceEngine = (*Engine)(nil)
