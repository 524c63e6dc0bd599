package jeebie

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/romfile"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// dividerSeed is the internal divider value the boot ROM leaves behind.
const dividerSeed = 0xABCC

// DebugOptions turns on debug-level tracing per subsystem.
type DebugOptions struct {
	CPU bool
	GPU bool
	APU bool
	RAM bool
}

// Any reports whether at least one subsystem traces.
func (d DebugOptions) Any() bool { return d.CPU || d.GPU || d.APU || d.RAM }

// Options configures a DMG. The zero value runs paced, with sound, without
// tracing and without battery persistence.
type Options struct {
	// Headless suppresses presentation. Run still returns every frame to
	// its callback, but pacing defaults to none.
	Headless bool
	// Silent stops audio from being exposed to backends.
	Silent bool
	// Turbo disables pacing.
	Turbo bool
	// ProfileFrames makes Run stop with emuerr.Timeout after this many frames.
	ProfileFrames int
	Debug         DebugOptions
	// Breakpoints stop Step with emuerr.Breakpoint before the instruction at
	// any of these addresses executes.
	Breakpoints []uint16
	// ExitOpcodes makes 0xFC and 0xFD end the run as a passed or failed test.
	ExitOpcodes bool
	// SavePath is the battery RAM file. Empty disables persistence unless the
	// DMG was built with NewWithFile, which defaults it to <rom>.sav.
	SavePath string
	// Limiter paces Run. Nil picks an AdaptiveLimiter, or no pacing when
	// Turbo, Headless or ProfileFrames is set.
	Limiter timing.Limiter
}

// DMG is the whole console: it owns the CPU, memory bus, pixel pipeline and
// sound unit and advances them in lock step.
type DMG struct {
	cpu *cpu.CPU
	mem *memory.MMU
	gpu *video.GPU
	apu *audio.APU

	opts        Options
	limiter     timing.Limiter
	breakpoints map[uint16]struct{}
	// resumeAt suppresses the breakpoint that just fired so the run can continue.
	resumeAt     uint16
	resuming     bool
	paused       bool
	frames       uint64
	instructions uint64
}

// New builds a DMG around a raw ROM image. Header problems and unsupported
// controllers are returned as emuerr load errors.
func New(rom []byte, opts Options) (*DMG, error) {
	cart, err := memory.NewCartridgeWithData(rom)
	if err != nil {
		return nil, err
	}

	apu := audio.New(audio.WithDebug(opts.Debug.APU))
	mem := memory.NewWithCartridge(cart,
		memory.WithAudio(apu),
		memory.WithDebug(opts.Debug.RAM),
	)
	mem.SetTimerSeed(dividerSeed)

	d := &DMG{
		cpu:         cpu.New(mem, cpu.WithTrace(opts.Debug.CPU), cpu.WithExitOpcodes(opts.ExitOpcodes)),
		mem:         mem,
		gpu:         video.NewGpu(mem, video.WithDebug(opts.Debug.GPU)),
		apu:         apu,
		opts:        opts,
		limiter:     opts.Limiter,
		breakpoints: make(map[uint16]struct{}, len(opts.Breakpoints)),
	}
	for _, bp := range opts.Breakpoints {
		d.breakpoints[bp] = struct{}{}
	}
	if d.limiter == nil {
		if opts.Turbo || opts.Headless || opts.ProfileFrames > 0 {
			d.limiter = timing.NewNoOpLimiter()
		} else {
			d.limiter = timing.NewAdaptiveLimiter()
		}
	}

	if err := d.loadBattery(); err != nil {
		return nil, err
	}

	h := cart.Header()
	slog.Info("Cartridge loaded", "title", h.Title, "mbc", cart.MBC().Kind(), "rom_banks", h.ROMBanks, "ram_bytes", h.RAMSize(), "battery", h.HasBattery)
	return d, nil
}

// NewWithFile loads the ROM at path (raw or archived) and builds a DMG.
// Battery RAM goes next to the ROM unless opts.SavePath is set.
func NewWithFile(path string, opts Options) (*DMG, error) {
	data, name, err := romfile.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded ROM", "file", name, "bytes", len(data))

	if opts.SavePath == "" {
		opts.SavePath = strings.TrimSuffix(path, filepath.Ext(path)) + ".sav"
	}
	return New(data, opts)
}

// FrameBuffer returns the frame being drawn. It is overwritten in place; a
// complete image is there right after RunUntilFrame returns.
func (d *DMG) FrameBuffer() *video.FrameBuffer { return d.gpu.FrameBuffer() }

// Audio returns the sample source for backends, or nil when Silent is set.
func (d *DMG) Audio() audio.Provider {
	if d.opts.Silent {
		return nil
	}
	return d.apu
}

// CPU exposes the processor for inspection.
func (d *DMG) CPU() *cpu.CPU { return d.cpu }

// MMU exposes the memory bus for inspection.
func (d *DMG) MMU() *memory.MMU { return d.mem }

// GPU exposes the pixel pipeline for inspection.
func (d *DMG) GPU() *video.GPU { return d.gpu }

// APU exposes the sound unit.
func (d *DMG) APU() *audio.APU { return d.apu }

// Options returns the configuration the DMG was built with.
func (d *DMG) Options() Options { return d.opts }

// Title is the cartridge title from the header.
func (d *DMG) Title() string { return d.mem.Cartridge().Title() }

// FrameCount counts the frames completed so far.
func (d *DMG) FrameCount() uint64 { return d.frames }

// Instructions counts the CPU steps executed so far.
func (d *DMG) Instructions() uint64 { return d.instructions }

// SerialOutput returns the text written to the link port, if the default
// logging port is attached.
func (d *DMG) SerialOutput() string {
	if sink, ok := d.mem.Serial().(*serial.LogSink); ok {
		return sink.Output()
	}
	return ""
}

// SetButtons replaces the set of held buttons. A newly pressed button raises
// the joypad interrupt.
func (d *DMG) SetButtons(held memory.Buttons) { d.mem.SetButtons(held) }

// Press holds one button down.
func (d *DMG) Press(key memory.JoypadKey) { d.mem.HandleKeyPress(key) }

// Release lets go of one button.
func (d *DMG) Release(key memory.JoypadKey) { d.mem.HandleKeyRelease(key) }

// Close writes battery RAM back to disk.
func (d *DMG) Close() error {
	return d.saveBattery()
}
