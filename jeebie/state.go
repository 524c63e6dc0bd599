package jeebie

import (
	"fmt"
	"io"

	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/savestate"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// State is a complete snapshot of the machine.
type State struct {
	Title        string
	CPU          cpu.State
	Memory       memory.State
	Video        video.State
	Audio        audio.State
	Frames       uint64
	Instructions uint64
}

// State captures every subsystem.
func (d *DMG) State() State {
	return State{
		Title:        d.Title(),
		CPU:          d.cpu.State(),
		Memory:       d.mem.State(),
		Video:        d.gpu.State(),
		Audio:        d.apu.State(),
		Frames:       d.frames,
		Instructions: d.instructions,
	}
}

// SetState restores a snapshot taken from a DMG running the same cartridge.
// Nothing changes unless every part of the snapshot fits.
func (d *DMG) SetState(s State) error {
	if s.Title != d.Title() {
		return fmt.Errorf("save state is for %q, %q is loaded", s.Title, d.Title())
	}
	if err := d.mem.CheckState(s.Memory); err != nil {
		return err
	}
	if err := s.Video.Validate(); err != nil {
		return err
	}
	if err := d.mem.SetState(s.Memory); err != nil {
		return err
	}
	if err := d.gpu.SetState(s.Video); err != nil {
		return err
	}
	d.cpu.SetState(s.CPU)
	d.apu.SetState(s.Audio)
	d.frames = s.Frames
	d.instructions = s.Instructions
	d.resuming = false
	return nil
}

// SaveState writes a compressed snapshot to w.
func (d *DMG) SaveState(w io.Writer) error {
	return savestate.Encode(w, d.State())
}

// LoadState restores a snapshot written by SaveState. On error the machine
// is left untouched.
func (d *DMG) LoadState(r io.Reader) error {
	var s State
	if err := savestate.Decode(r, &s); err != nil {
		return err
	}
	return d.SetState(s)
}
