package face

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// fakeEngine records how many callers are inside DetectAndEmbed at once
type fakeEngine struct {
	detect  func(ctx context.Context, img image.Image) (provider.Signature, error)
	compare func(a, b provider.Signature) (float64, error)
	delay   time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
	closed    atomic.Int32
	mu        sync.Mutex
}

func (f *fakeEngine) DetectAndEmbed(ctx context.Context, img image.Image) (provider.Signature, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	f.calls.Add(1)

	f.mu.Lock()
	if n > f.maxActive.Load() {
		f.maxActive.Store(n)
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.detect != nil {
		return f.detect(ctx, img)
	}
	return provider.Signature{1, 0, 0}, nil
}

func (f *fakeEngine) Compare(a, b provider.Signature) (float64, error) {
	if f.compare != nil {
		return f.compare(a, b)
	}
	return provider.CosineSimilarity(a, b), nil
}

func (f *fakeEngine) Name() string {
	return "fake"
}

func (f *fakeEngine) Close() error {
	f.closed.Add(1)
	return nil
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}
