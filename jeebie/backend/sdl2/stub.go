//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// ErrUnavailable is returned when the binary was built without SDL2.
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available
type Backend struct{}

var _ backend.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	return ErrUnavailable
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

func (s *Backend) Cleanup() error {
	return nil
}
