package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3002"`
	Environment string `envconfig:"ENV" default:"development"`

	// Face engine
	FaceEngine     string  `envconfig:"FACE_ENGINE" default:"deepface"`
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.363"`

	DeepFaceURL      string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel    string `envconfig:"DEEPFACE_MODEL" default:"SFace"`
	DeepFaceDetector string `envconfig:"DEEPFACE_DETECTOR" default:"yunet"`

	// Retries back off while the engine guard is held
	DeepFaceRetryCount int `envconfig:"DEEPFACE_RETRY_COUNT" default:"0"`

	OpenCVDetectorModel   string `envconfig:"OPENCV_DETECTOR_MODEL" default:"face_detection_yunet_2023mar.onnx"`
	OpenCVRecognizerModel string `envconfig:"OPENCV_RECOGNIZER_MODEL" default:"face_recognition_sface_2021dec.onnx"`

	// Image fetching
	FetchUserAgent   string        `envconfig:"FETCH_USER_AGENT" default:"IrisAPI/1.0"`
	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	FetchMaxBytes    int64         `envconfig:"FETCH_MAX_BYTES" default:"10485760"`
	FetchRetryCount  int           `envconfig:"FETCH_RETRY_COUNT" default:"0"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"4"`

	// Comparison
	CompareTimeout time.Duration `envconfig:"COMPARE_TIMEOUT" default:"60s"`
	MaxCandidates  int           `envconfig:"MAX_CANDIDATES" default:"100"`

	// Rate limiting (per client IP)
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Database (optional, enables comparison audit)
	DatabaseURL         string `envconfig:"DATABASE_URL"`
	DatabaseMaxConns    int32  `envconfig:"DATABASE_MAX_CONNS" default:"5"`
	DatabaseAutoMigrate bool   `envconfig:"DATABASE_AUTO_MIGRATE" default:"false"`

	// Without a database, audits can still go to the structured log
	AuditLog bool `envconfig:"AUDIT_LOG" default:"false"`

	// Audit retention, zero keeps rows forever
	AuditRetention         time.Duration `envconfig:"AUDIT_RETENTION" default:"720h"`
	AuditRetentionInterval time.Duration `envconfig:"AUDIT_RETENTION_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("MAX_CANDIDATES must be at least 1, got %d", c.MaxCandidates)
	}
	if c.FetchRetryCount < 0 {
		return fmt.Errorf("FETCH_RETRY_COUNT must not be negative, got %d", c.FetchRetryCount)
	}
	if c.DeepFaceRetryCount < 0 {
		return fmt.Errorf("DEEPFACE_RETRY_COUNT must not be negative, got %d", c.DeepFaceRetryCount)
	}
	if c.AuditRetention < 0 {
		return fmt.Errorf("AUDIT_RETENTION must not be negative, got %s", c.AuditRetention)
	}
	if c.AuditRetention > 0 && c.AuditRetentionInterval <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_INTERVAL must be positive, got %s", c.AuditRetentionInterval)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuditEnabled reports whether comparison summaries are persisted.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

// RetentionEnabled reports whether old audit rows are pruned.
func (c *Config) RetentionEnabled() bool {
	return c.AuditEnabled() && c.AuditRetention > 0
}
