//go:build opencv

package opencv

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// Engine implements provider.FaceEngine with YuNet detection and SFace
// recognition running in-process. The detector and recognizer keep internal
// buffers, so DetectAndEmbed is not reentrant.
type Engine struct {
	detector   gocv.FaceDetectorYN
	recognizer gocv.FaceRecognizerSF
}

// NewEngine loads both ONNX models. Missing files fail fast instead of
// panicking inside OpenCV.
func NewEngine(config Config) (*Engine, error) {
	for _, path := range []string{config.DetectorModel, config.RecognizerModel} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("load model %s: %w", path, err)
		}
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		config.DetectorModel, "",
		image.Pt(detectorInputSize, detectorInputSize),
		scoreThreshold, nmsThreshold, topK,
		0, 0,
	)
	recognizer := gocv.NewFaceRecognizerSF(config.RecognizerModel, "")

	return &Engine{
		detector:   detector,
		recognizer: recognizer,
	}, nil
}

func (e *Engine) Name() string {
	return "opencv"
}

// DetectAndEmbed aligns the first detected face and extracts its SFace feature
func (e *Engine) DetectAndEmbed(ctx context.Context, img image.Image) (provider.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	e.detector.SetInputSize(image.Pt(src.Cols(), src.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	if n := e.detector.Detect(src, &faces); n == 0 || faces.Rows() == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	// Use first face found
	box := faces.RowRange(0, 1)
	defer box.Close()

	aligned := gocv.NewMat()
	defer aligned.Close()
	e.recognizer.AlignCrop(src, box, &aligned)
	if aligned.Empty() {
		return nil, fmt.Errorf("align face: empty crop")
	}

	feature := gocv.NewMat()
	defer feature.Close()
	e.recognizer.Feature(aligned, &feature)

	values, err := feature.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read feature: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("read feature: empty")
	}

	// The Mat owns values; copy before it is closed.
	sig := make(provider.Signature, len(values))
	copy(sig, values)
	return sig, nil
}

// Compare is the cosine score SFace uses for FR_COSINE matching
func (e *Engine) Compare(a, b provider.Signature) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("signature dimension mismatch: %d and %d", len(a), len(b))
	}
	return provider.CosineSimilarity(a, b), nil
}

func (e *Engine) Close() error {
	e.detector.Close()
	e.recognizer.Close()
	return nil
}

// toBGR round-trips through PNG so OpenCV decodes the pixels in its native
// channel order.
func toBGR(img image.Image) (gocv.Mat, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return gocv.Mat{}, fmt.Errorf("encode image: %w", err)
	}

	mat, err := gocv.IMDecode(buf.Bytes(), gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("decode image: empty matrix")
	}
	return mat, nil
}

var _ provider.FaceEngine = (*Engine)(nil)
