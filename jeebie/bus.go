package jeebie

import (
	"github.com/valerio/jeebie-core/jeebie/emuerr"
)

// Step executes one CPU step and advances the rest of the machine by the
// clocks it took: memory (timer, serial, DMA, cartridge clock) first, then
// the pixel pipeline, then the sound unit. While the CPU is stopped the
// divider and the pixel pipeline are frozen.
func (d *DMG) Step() (int, error) {
	if err := d.checkBreakpoint(); err != nil {
		return 0, err
	}

	cycles, err := d.cpu.Step()
	if err != nil {
		return 0, err
	}
	d.instructions++

	if d.cpu.Stopped() {
		d.mem.TickStopped(cycles)
	} else {
		d.mem.Tick(cycles)
		d.gpu.Tick(cycles)
	}
	d.apu.Tick(cycles)
	return cycles, nil
}

// RunUntilFrame steps until the pixel pipeline completes a frame.
func (d *DMG) RunUntilFrame() error {
	for {
		if _, err := d.Step(); err != nil {
			return err
		}
		if d.gpu.TakeFrame() {
			d.frames++
			return nil
		}
	}
}

// checkBreakpoint fires once per arrival at a breakpoint address. Only a real
// fetch counts: idle steps while halted or stalled by DMA do not.
func (d *DMG) checkBreakpoint() error {
	if len(d.breakpoints) == 0 || d.cpu.Halted() || d.cpu.Stopped() || d.mem.DMAActive() {
		return nil
	}
	pc := d.cpu.PC()
	if d.resuming {
		d.resuming = false
		if pc == d.resumeAt {
			return nil
		}
	}
	if _, ok := d.breakpoints[pc]; !ok {
		return nil
	}
	d.resuming = true
	d.resumeAt = pc
	return emuerr.New(emuerr.Breakpoint, "pc=0x%04X", pc)
}
