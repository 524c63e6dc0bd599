package jeebie

import (
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Emulator is what backends drive: something that produces frames, takes
// button state and may produce sound.
type Emulator interface {
	RunUntilFrame() error
	FrameBuffer() *video.FrameBuffer
	SetButtons(held memory.Buttons)
	// Audio returns nil when there is nothing to play.
	Audio() audio.Provider
}

var (
	_ Emulator = (*DMG)(nil)
	_ Emulator = (*TestPatternEmulator)(nil)
)
