package opencv

import "errors"

// YuNet parameters. The input size is reset to the image size before each
// detection.
const (
	detectorInputSize = 320
	scoreThreshold    = 0.9
	nmsThreshold      = 0.3
	topK              = 5000
)

// ErrUnavailable is returned when the binary was built without the opencv tag
var ErrUnavailable = errors.New("opencv engine not compiled in (build with -tags opencv)")

// Config holds the model file locations
type Config struct {
	DetectorModel   string
	RecognizerModel string
}
