package backend

import (
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Backend represents a complete emulator platform (rendering + input + audio).
// Backends render frames to their own output and translate platform events
// into input events; they never drive the emulator directly.
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config Config) error

	// Update renders the frame, polls platform events and returns them
	// translated to actions, in the order they happened.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases backend resources.
	Cleanup() error
}

// InputEvent is one action reported by a backend.
type InputEvent = input.Event

// AudioSink consumes the synthesizer's sample stream outside of a backend,
// e.g. a recorder.
type AudioSink interface {
	// Drain pulls every buffered sample from the provider.
	Drain(p audio.Provider) error
	Close() error
}

// DefaultScale is the window pixels per Game Boy pixel when Config.Scale is unset.
const DefaultScale = 4

// Config holds configuration for backends
type Config struct {
	Title     string
	Scale     int
	ShowDebug bool // Backends may ignore unsupported features

	// Audio is nil when the emulator runs silent.
	Audio audio.Provider
	// Debug feeds register and disassembly panels. Optional.
	Debug debug.Source
}
