package jeebie

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/valerio/jeebie-core/jeebie/emuerr"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// PresentFunc receives each completed frame. Returning an error stops Run;
// return an emuerr.Quit error for a user-requested stop.
type PresentFunc func(frame *video.FrameBuffer) error

// Run emulates frame after frame, hands each one to present (which may be
// nil) and paces to the native frame rate unless pacing is off. It stops on
// context cancellation (emuerr.Quit), a present error, an emulation error
// such as an undefined opcode, a breakpoint, or when ProfileFrames have run
// (emuerr.Timeout).
func (d *DMG) Run(ctx context.Context, present PresentFunc) error {
	start := time.Now()
	d.limiter.Reset()

	for {
		select {
		case <-ctx.Done():
			return emuerr.Wrap(emuerr.Quit, context.Cause(ctx), "after %d frames", d.frames)
		default:
		}

		if !d.paused {
			if err := d.RunUntilFrame(); err != nil {
				return err
			}
		}

		if present != nil {
			if err := present(d.gpu.FrameBuffer()); err != nil {
				return err
			}
		}

		if n := d.opts.ProfileFrames; n > 0 && d.frames >= uint64(n) {
			elapsed := time.Since(start)
			slog.Info("Profile finished", "frames", d.frames, "duration", elapsed,
				"fps", float64(d.frames)/elapsed.Seconds())
			return emuerr.New(emuerr.Timeout, "%d frames in %s", d.frames, elapsed)
		}

		d.limiter.WaitForNextFrame()
	}
}

// Frames yields the frame buffer once per completed frame. The same buffer
// is yielded every time, overwritten in place. Iteration ends after the first
// error, which is yielded with a nil buffer.
func (d *DMG) Frames() iter.Seq2[*video.FrameBuffer, error] {
	return func(yield func(*video.FrameBuffer, error) bool) {
		for {
			if err := d.RunUntilFrame(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(d.gpu.FrameBuffer(), nil) {
				return
			}
		}
	}
}

// Paused reports whether Run is holding emulation.
func (d *DMG) Paused() bool { return d.paused }

// TogglePause pauses or resumes Run. Frames keep being presented while
// paused so backends can still poll input.
func (d *DMG) TogglePause() {
	d.paused = !d.paused
	if !d.paused {
		d.limiter.Reset()
	}
	slog.Info("Emulation paused", "paused", d.paused)
}

// StepFrame runs exactly one frame; meant for use while paused.
func (d *DMG) StepFrame() error {
	return d.RunUntilFrame()
}

// StepInstruction runs one CPU step and logs the state it left behind.
func (d *DMG) StepInstruction() error {
	if _, err := d.Step(); err != nil {
		return err
	}
	slog.Info("Stepped", "state", d.cpu.TraceLine())
	return nil
}
