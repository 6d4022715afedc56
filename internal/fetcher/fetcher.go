package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
)

// Config holds the configuration for the image fetcher
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxBytes   int64
	RetryCount int
}

// DefaultConfig returns a Config matching the service defaults
func DefaultConfig() Config {
	return Config{
		UserAgent:  "IrisAPI/1.0",
		Timeout:    15 * time.Second,
		MaxBytes:   10 << 20,
		RetryCount: 0,
	}
}

// Fetcher downloads remote images and decodes them in memory. Nothing is
// cached or written to disk.
type Fetcher struct {
	httpClient *http.Client
	config     Config
}

func New(config Config) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// retryableError marks failures worth another attempt (transport errors, 5xx)
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// FetchAndDecode downloads rawURL and decodes it into an image. Every
// failure except context cancellation wraps domain.ErrFetch.
func (f *Fetcher) FetchAndDecode(ctx context.Context, rawURL string) (image.Image, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	data, err := f.downloadWithRetry(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", domain.ErrFetch, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has zero dimensions", domain.ErrFetch)
	}

	return img, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url has no host")
	}
	return nil
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 10 * time.Second

// calculateBackoff returns 500ms, 1s, 2s, ... capped at maxBackoff
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 500 * time.Millisecond
	}
	backoff := (500 * time.Millisecond) << min(attempt-1, 5)
	return min(backoff, maxBackoff)
}

func (f *Fetcher) downloadWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		data, err := f.download(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
	}

	return nil, lastErr
}

// download performs a single GET and reads at most MaxBytes of the body
func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: statusErr}
		}
		return nil, statusErr
	}

	if f.config.MaxBytes > 0 && resp.ContentLength > f.config.MaxBytes {
		return nil, fmt.Errorf("body of %d bytes exceeds limit of %d", resp.ContentLength, f.config.MaxBytes)
	}

	var reader io.Reader = resp.Body
	if f.config.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.config.MaxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("read body: %w", err)}
	}
	if f.config.MaxBytes > 0 && int64(len(data)) > f.config.MaxBytes {
		return nil, fmt.Errorf("body exceeds limit of %d bytes", f.config.MaxBytes)
	}

	return data, nil
}
