package jeebie

import (
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Pattern is one of the test images TestPatternEmulator can draw.
type Pattern int

const (
	Checkerboard Pattern = iota
	Gradient
	Stripes
	Diagonal

	patternCount = 4
)

// Pattern geometry, in pixels, and animation pacing, in frames per step.
const (
	patternTile   = 8
	stripeWidth   = 4
	stripeSpeed   = 2
	diagonalSpeed = 4
	framesPerStep = 30
)

// TestPatternEmulator draws test images instead of running a cartridge, for
// checking a backend's output path. Pressing Select cycles the pattern.
type TestPatternEmulator struct {
	frameBuffer *video.FrameBuffer
	pattern     Pattern
	frame       int
	held        memory.Buttons
}

func NewTestPatternEmulator() *TestPatternEmulator {
	e := &TestPatternEmulator{frameBuffer: video.NewFrameBuffer()}
	e.draw()
	return e
}

func (e *TestPatternEmulator) RunUntilFrame() error {
	e.frame++
	if e.frame%framesPerStep == 0 {
		e.draw()
	}
	return nil
}

func (e *TestPatternEmulator) FrameBuffer() *video.FrameBuffer { return e.frameBuffer }

func (e *TestPatternEmulator) SetButtons(held memory.Buttons) {
	pressed := held &^ e.held
	e.held = held
	if pressed.Pressed(memory.JoypadSelect) {
		e.CyclePattern()
	}
}

func (e *TestPatternEmulator) Audio() audio.Provider { return nil }

// Pattern returns the pattern on screen.
func (e *TestPatternEmulator) Pattern() Pattern { return e.pattern }

func (e *TestPatternEmulator) CyclePattern() {
	e.pattern = (e.pattern + 1) % patternCount
	e.draw()
}

func (e *TestPatternEmulator) draw() {
	step := e.frame / framesPerStep
	for y := range video.FramebufferHeight {
		for x := range video.FramebufferWidth {
			e.frameBuffer.SetShade(x, y, patternShade(e.pattern, x, y, step))
		}
	}
}

// patternShade gives the shade of pixel (x, y) at animation step.
// Shades run from 0 (white) to 3 (black).
func patternShade(p Pattern, x, y, step int) uint8 {
	switch p {
	case Checkerboard:
		if (x/patternTile+y/patternTile)%2 == 0 {
			return 0
		}
		return 3
	case Gradient:
		return uint8(3 - x*4/video.FramebufferWidth)
	case Stripes:
		if ((x+step*stripeSpeed)/stripeWidth)%2 == 0 {
			return 0
		}
		return 2
	default:
		if ((x+y+step*diagonalSpeed)/patternTile)%2 == 0 {
			return 1
		}
		return 2
	}
}
