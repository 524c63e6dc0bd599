package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is how close to the deadline we stop sleeping and spin.
	spinThreshold = 2 * time.Millisecond
	// maxLag is how far behind we fall before giving up on catching up.
	maxLag        = 5 * time.Millisecond
	driftWindow   = 60
	driftTolerate = 10 * time.Millisecond
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	windowStart     time.Time
	frameCounter    int64
	now             func() time.Time
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		now:             time.Now,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	sleepTime := a.nextFrameTime.Sub(now)

	switch {
	case sleepTime > spinThreshold:
		time.Sleep(sleepTime - time.Millisecond)
		a.spin()
	case sleepTime > 0:
		a.spin()
	case sleepTime < -maxLag:
		// too far behind, drop the debt instead of running fast to repay it
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%driftWindow == 0 {
		a.correctDrift()
	}
}

func (a *AdaptiveLimiter) spin() {
	for a.now().Before(a.nextFrameTime) {
	}
}

func (a *AdaptiveLimiter) correctDrift() {
	now := a.now()
	elapsed := now.Sub(a.windowStart)
	drift := elapsed - driftWindow*a.targetFrameTime
	a.windowStart = now

	if drift.Abs() > driftTolerate {
		a.nextFrameTime = a.nextFrameTime.Add(-drift / 10)
		slog.Debug("Frame timing drift correction",
			"drift_ms", drift.Milliseconds(),
			"fps", float64(driftWindow)/elapsed.Seconds())
	}
}

// Frames returns how many frames have been paced since the last Reset.
func (a *AdaptiveLimiter) Frames() int64 { return a.frameCounter }

func (a *AdaptiveLimiter) Reset() {
	now := a.now()
	a.nextFrameTime = now
	a.windowStart = now
	a.frameCounter = 0
}
