// Package timing paces emulation to the DMG's native frame rate.
package timing

import (
	"fmt"
	"time"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (headless and turbo).
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// DMG clock figures. A frame is 154 lines of 456 clocks.
const (
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// TargetFPS is the native frame rate, about 59.73 Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter names accepted by ForName.
const (
	Adaptive = "adaptive"
	Ticker   = "ticker"
	None     = "none"
)

// ForName builds the limiter selected on the command line.
func ForName(name string) (Limiter, error) {
	switch name {
	case Adaptive, "":
		return NewAdaptiveLimiter(), nil
	case Ticker:
		return NewTickerLimiter(), nil
	case None:
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown limiter %q (want %s, %s or %s)", name, Adaptive, Ticker, None)
}
