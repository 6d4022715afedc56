package face

import (
	"context"
	"fmt"
	"sync"

	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// EngineGuard serializes access to the process-wide FaceEngine. At most one
// caller holds the engine at a time; waiting callers give up when their
// context ends.
type EngineGuard struct {
	engine provider.FaceEngine
	slot   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewEngineGuard takes ownership of engine. The engine is closed through
// the guard, never directly.
func NewEngineGuard(engine provider.FaceEngine) *EngineGuard {
	return &EngineGuard{
		engine: engine,
		slot:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// EngineName returns the guarded engine's name without acquiring it
func (g *EngineGuard) EngineName() string {
	return g.engine.Name()
}

func (g *EngineGuard) acquire(ctx context.Context) error {
	select {
	case <-g.done:
		return domain.ErrEngineClosed
	default:
	}

	select {
	case g.slot <- struct{}{}:
		return nil
	case <-g.done:
		return domain.ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *EngineGuard) release() {
	<-g.slot
}

// Close waits for the current holder, then closes the engine. The slot is
// never released again, so later acquisitions fail with ErrEngineClosed.
func (g *EngineGuard) Close() error {
	var err error
	g.once.Do(func() {
		g.slot <- struct{}{}
		close(g.done)
		err = g.engine.Close()
	})
	return err
}

// WithEngine runs fn while holding exclusive access to the engine. The slot
// is released on every exit path, including a panic inside fn, which is
// returned as an error.
func WithEngine[T any](ctx context.Context, g *EngineGuard, fn func(provider.FaceEngine) (T, error)) (result T, err error) {
	if err := g.acquire(ctx); err != nil {
		return result, err
	}
	defer g.release()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()

	return fn(g.engine)
}
