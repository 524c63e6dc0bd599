package jeebie

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-core/internal/romtest"
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/emuerr"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// spin is JR -2, an endless loop on itself.
var spin = []byte{0x18, 0xFE}

func newDMG(t *testing.T, program []byte, opts ...romtest.Option) *DMG {
	t.Helper()
	d, err := New(romtest.New(program, opts...), Options{Limiter: timing.NewNoOpLimiter()})
	require.NoError(t, err)
	return d
}

func TestLoadAndIncrement(t *testing.T) {
	d := newDMG(t, []byte{0x3E, 0x05, 0x3C})

	for range 2 {
		_, err := d.Step()
		require.NoError(t, err)
	}

	regs := d.CPU().Registers()
	assert.Equal(t, uint8(6), regs.A)
	assert.False(t, regs.Flags().Zero())
	assert.Equal(t, uint16(0x0103), d.CPU().PC())
	assert.Equal(t, uint64(2), d.Instructions())
}

func TestFrameIsExactly70224Clocks(t *testing.T) {
	d := newDMG(t, spin)

	// align to a frame boundary first
	require.NoError(t, d.RunUntilFrame())

	total := 0
	for frames := 0; frames < 10; {
		cycles, err := d.Step()
		require.NoError(t, err)
		total += cycles
		if d.GPU().TakeFrame() {
			frames++
		}
	}
	// each boundary can be overshot by at most one instruction
	assert.InDelta(t, 10*video.FrameCycles, total, 12)
}

func TestLoadErrorsStopBeforeRunning(t *testing.T) {
	testCases := []struct {
		name string
		rom  []byte
		kind emuerr.Kind
	}{
		{"unsupported controller", romtest.New(spin, romtest.WithType(0x22)), emuerr.UnsupportedCart},
		{"bad header checksum", romtest.New(spin, romtest.WithBadChecksum()), emuerr.HeaderChecksum},
		{"truncated image", romtest.New(spin, romtest.Truncated(0x120)), emuerr.RomTruncated},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.rom, Options{})
			assert.Nil(t, d)
			assert.Equal(t, tc.kind, emuerr.KindOf(err))
			assert.Equal(t, 4, emuerr.ExitCode(err))
		})
	}
}

func TestInvalidOpcodeStopsWithoutAdvancing(t *testing.T) {
	d := newDMG(t, []byte{0x00, 0xD3})

	_, err := d.Step()
	require.NoError(t, err)

	_, err = d.Step()
	require.Error(t, err)
	assert.ErrorIs(t, err, emuerr.Of(emuerr.InvalidOpcode))
	assert.Equal(t, 3, emuerr.ExitCode(err))
	assert.Equal(t, uint16(0x0101), d.CPU().PC())
}

func TestExitOpcodes(t *testing.T) {
	rom := romtest.New([]byte{0x00, 0xFD})

	d, err := New(rom, Options{ExitOpcodes: true})
	require.NoError(t, err)
	err = d.RunUntilFrame()
	assert.Equal(t, emuerr.UnitTestFailed, emuerr.KindOf(err))
	assert.Equal(t, 2, emuerr.ExitCode(err))

	d, err = New(romtest.New([]byte{0xFC}), Options{ExitOpcodes: true})
	require.NoError(t, err)
	_, err = d.Step()
	assert.Equal(t, emuerr.UnitTestPassed, emuerr.KindOf(err))
	assert.Zero(t, emuerr.ExitCode(err))
}

func TestBreakpointFiresOncePerArrival(t *testing.T) {
	d, err := New(romtest.New([]byte{0x00, 0x00, 0x00, 0x18, 0xFB}), Options{Breakpoints: []uint16{0x0102}})
	require.NoError(t, err)

	hits := 0
	for range 20 {
		if _, err := d.Step(); err != nil {
			require.ErrorIs(t, err, emuerr.Of(emuerr.Breakpoint))
			assert.Equal(t, uint16(0x0102), d.CPU().PC(), "the instruction has not run yet")
			hits++
		}
	}
	// 0x0100 0x0101 [0x0102] 0x0102 0x0103 -> 0x0100 ... : once per loop pass
	assert.GreaterOrEqual(t, hits, 3)
	assert.Less(t, hits, 10)
}

func TestStopFreezesPixelPipeline(t *testing.T) {
	d := newDMG(t, []byte{0x10, 0x00})

	_, err := d.Step()
	require.NoError(t, err)
	require.True(t, d.CPU().Stopped())

	line, div := d.GPU().Line(), d.MMU().Read(addr.DIV)
	for range 1000 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, line, d.GPU().Line())
	assert.Equal(t, div, d.MMU().Read(addr.DIV))

	d.Press(memory.JoypadStart)
	_, err = d.Step()
	require.NoError(t, err)
	assert.False(t, d.CPU().Stopped(), "a joypad press wakes the CPU")
}

func TestRunProfileStopsWithTimeout(t *testing.T) {
	d := newDMG(t, spin)
	d.opts.ProfileFrames = 3

	presented := 0
	err := d.Run(context.Background(), func(*video.FrameBuffer) error {
		presented++
		return nil
	})
	assert.ErrorIs(t, err, emuerr.Of(emuerr.Timeout))
	assert.Zero(t, emuerr.ExitCode(err))
	assert.Equal(t, 3, presented)
	assert.Equal(t, uint64(3), d.FrameCount())
}

func TestRunStopsOnCancel(t *testing.T) {
	d := newDMG(t, spin)
	ctx, cancel := context.WithCancel(context.Background())

	err := d.Run(ctx, func(*video.FrameBuffer) error {
		if d.FrameCount() == 2 {
			cancel()
		}
		return nil
	})
	assert.Equal(t, emuerr.Quit, emuerr.KindOf(err))
	assert.Equal(t, uint64(2), d.FrameCount())
}

func TestRunReturnsPresentError(t *testing.T) {
	d := newDMG(t, spin)
	boom := errors.New("window closed")

	err := d.Run(context.Background(), func(*video.FrameBuffer) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPausedRunKeepsPresenting(t *testing.T) {
	d := newDMG(t, spin)
	d.TogglePause()
	require.True(t, d.Paused())

	calls := 0
	err := d.Run(context.Background(), func(*video.FrameBuffer) error {
		calls++
		if calls == 5 {
			return emuerr.New(emuerr.Quit, "done")
		}
		return nil
	})
	assert.Equal(t, emuerr.Quit, emuerr.KindOf(err))
	assert.Zero(t, d.FrameCount())

	require.NoError(t, d.StepFrame())
	assert.Equal(t, uint64(1), d.FrameCount())
}

func TestFramesIterator(t *testing.T) {
	d := newDMG(t, spin)

	n := 0
	for fb, err := range d.Frames() {
		require.NoError(t, err)
		require.Same(t, d.FrameBuffer(), fb)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, uint64(3), d.FrameCount())
}

func TestFramesIteratorEndsOnError(t *testing.T) {
	d := newDMG(t, []byte{0xD3})

	var errs []error
	for fb, err := range d.Frames() {
		assert.Nil(t, fb)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Equal(t, emuerr.InvalidOpcode, emuerr.KindOf(errs[0]))
}

// tone triggers channel 2 at full volume, then spins.
var tone = []byte{
	0x3E, 0xF0, 0xE0, 0x17, // LD A,F0 ; LDH (NR22),A
	0x3E, 0x80, 0xE0, 0x16, // LD A,80 ; LDH (NR21),A  duty 50%
	0x3E, 0x00, 0xE0, 0x18, // LD A,00 ; LDH (NR23),A
	0x3E, 0x87, 0xE0, 0x19, // LD A,87 ; LDH (NR24),A  trigger
	0x18, 0xFE,
}

func drain(d *DMG) []int16 {
	var out []int16
	buf := make([]int16, 4096)
	for {
		n := d.APU().ReadSamples(buf)
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func record(t *testing.T, d *DMG, frames int) (pics [][]uint8, samples []int16) {
	t.Helper()
	for range frames {
		require.NoError(t, d.RunUntilFrame())
		pics = append(pics, d.FrameBuffer().Snapshot())
		samples = append(samples, drain(d)...)
	}
	return pics, samples
}

func TestSaveStateReplaysIdentically(t *testing.T) {
	d := newDMG(t, tone)
	for range 5 {
		require.NoError(t, d.RunUntilFrame())
	}
	drain(d)

	var buf bytes.Buffer
	require.NoError(t, d.SaveState(&buf))
	saved := d.State()

	pics, samples := record(t, d, 3)
	require.NotEmpty(t, samples)

	require.NoError(t, d.LoadState(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, saved.CPU, d.CPU().State())
	assert.Equal(t, saved.Memory, d.MMU().State())

	replayPics, replaySamples := record(t, d, 3)
	assert.Equal(t, pics, replayPics)
	assert.Equal(t, samples, replaySamples)
}

func TestLoadStateRejectsOtherCartridge(t *testing.T) {
	a := newDMG(t, spin, romtest.WithTitle("FIRST"))
	b := newDMG(t, spin, romtest.WithTitle("SECOND"))

	var buf bytes.Buffer
	require.NoError(t, a.SaveState(&buf))
	assert.ErrorContains(t, b.LoadState(&buf), "FIRST")
}

func TestSetStateRejectsBadSnapshotWithoutChanges(t *testing.T) {
	testCases := []struct {
		desc   string
		mangle func(s *State)
	}{
		{"line out of range", func(s *State) { s.Video.Line = 500 }},
		{"short frame", func(s *State) { s.Video.Frame = s.Video.Frame[:10] }},
		{"cartridge RAM size", func(s *State) { s.Memory.Cart.RAM = make([]byte, 3) }},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			d := newDMG(t, spin)
			d.MMU().Write(0xC000, 0x11)
			snap := d.State()
			snap.Memory.WRAM[0] = 0x22
			snap.CPU.Registers.A = 0x33
			tc.mangle(&snap)

			before := d.State()
			require.Error(t, d.SetState(snap))

			assert.Equal(t, uint8(0x11), d.MMU().Read(0xC000), "memory untouched")
			assert.Equal(t, before.CPU, d.CPU().State())
			assert.Equal(t, before.Video, d.GPU().State())
		})
	}
}

func TestBatteryRAMPersists(t *testing.T) {
	program := []byte{
		0x3E, 0x0A, 0xEA, 0x00, 0x00, // LD A,0A ; LD (0000),A  enable RAM
		0x3E, 0x42, 0xEA, 0x00, 0xA0, // LD A,42 ; LD (A000),A
		0x18, 0xFE,
	}
	rom := romtest.New(program, romtest.WithType(0x03), romtest.WithRAMSizeCode(0x02))
	save := filepath.Join(t.TempDir(), "game.sav")

	d, err := New(rom, Options{SavePath: save})
	require.NoError(t, err)
	require.NoError(t, d.RunUntilFrame())
	require.NoError(t, d.Close())

	data, err := os.ReadFile(save)
	require.NoError(t, err)
	require.Len(t, data, 0x2000)
	assert.Equal(t, byte(0x42), data[0])

	again, err := New(rom, Options{SavePath: save})
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), again.MMU().Cartridge().MBC().RAM()[0])
}

func TestNoBatteryNoSaveFile(t *testing.T) {
	save := filepath.Join(t.TempDir(), "game.sav")
	d, err := New(romtest.New(spin, romtest.WithType(0x02), romtest.WithRAMSizeCode(0x02)), Options{SavePath: save})
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.NoFileExists(t, save)
}

func TestNewWithFileDefaultsSavePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(path, romtest.New(spin), 0o644))

	d, err := NewWithFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "game.sav"), d.Options().SavePath)

	_, err = NewWithFile(filepath.Join(t.TempDir(), "missing.gb"), Options{})
	assert.Equal(t, emuerr.RomMissing, emuerr.KindOf(err))
}

func TestSilentHidesAudio(t *testing.T) {
	d, err := New(romtest.New(spin), Options{Silent: true})
	require.NoError(t, err)
	assert.Nil(t, d.Audio())

	d = newDMG(t, spin)
	assert.NotNil(t, d.Audio())
}

func TestTestPatternCyclesOnSelect(t *testing.T) {
	e := NewTestPatternEmulator()
	assert.Equal(t, Checkerboard, e.Pattern())
	assert.Equal(t, uint8(0), e.FrameBuffer().Shade(0, 0))
	assert.Equal(t, uint8(3), e.FrameBuffer().Shade(8, 0))

	e.SetButtons(memory.Of(memory.JoypadSelect))
	e.SetButtons(memory.Of(memory.JoypadSelect))
	assert.Equal(t, Gradient, e.Pattern(), "holding Select cycles once")

	e.SetButtons(0)
	e.SetButtons(memory.Of(memory.JoypadSelect))
	assert.Equal(t, Stripes, e.Pattern())
	require.NoError(t, e.RunUntilFrame())
	assert.Nil(t, e.Audio())
}
