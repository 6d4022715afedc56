package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/iris/internal/config"
	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider/opencv"
)

// EngineType defines supported face engine types
type EngineType string

const (
	// EngineTypeDeepFace is the DeepFace REST engine (default)
	EngineTypeDeepFace EngineType = "deepface"
	// EngineTypeOpenCV runs YuNet and SFace in-process, requires -tags opencv
	EngineTypeOpenCV EngineType = "opencv"
	// EngineTypeMock is the deterministic engine for development and tests
	EngineTypeMock EngineType = "mock"
)

// NewFaceEngine creates the FaceEngine selected by configuration. Every
// failure wraps domain.ErrEngineInit; the caller must not serve without an engine.
//
// Environment variables:
//   - FACE_ENGINE: "deepface", "opencv" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_MODEL, DEEPFACE_DETECTOR, DEEPFACE_RETRY_COUNT: DeepFace settings
//   - OPENCV_DETECTOR_MODEL, OPENCV_RECOGNIZER_MODEL: ONNX model paths
func NewFaceEngine(cfg *config.Config) (provider.FaceEngine, error) {
	switch EngineType(cfg.FaceEngine) {
	case EngineTypeDeepFace, "":
		return createDeepFaceEngine(cfg), nil

	case EngineTypeOpenCV:
		engine, err := opencv.NewEngine(opencv.Config{
			DetectorModel:   cfg.OpenCVDetectorModel,
			RecognizerModel: cfg.OpenCVRecognizerModel,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: opencv: %w", domain.ErrEngineInit, err)
		}
		return engine, nil

	case EngineTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("%w: unknown engine type %q (supported: %s, %s, %s)",
			domain.ErrEngineInit, cfg.FaceEngine, EngineTypeDeepFace, EngineTypeOpenCV, EngineTypeMock)
	}
}

// createDeepFaceEngine creates a DeepFace engine, falling back to client
// defaults for unset fields
func createDeepFaceEngine(cfg *config.Config) provider.FaceEngine {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		deepfaceConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}
	deepfaceConfig.RetryCount = cfg.DeepFaceRetryCount

	return deepface.NewEngine(deepfaceConfig)
}
