//go:build !opencv

package opencv

import "github.com/saturnino-fabrica-de-software/iris/internal/provider"

// NewEngine always fails without the opencv build tag
func NewEngine(config Config) (provider.FaceEngine, error) {
	return nil, ErrUnavailable
}
