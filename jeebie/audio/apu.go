package audio

import (
	"log/slog"
	"math"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// APU implements the Game Boy's Audio Processing Unit
// Reference: https://gbdev.io/pandocs/Audio.html
type APU struct {
	powered   bool
	registers [0x20]byte // FF10-FF2F as last written

	ch1, ch2 SquareChannel
	ch3      WaveChannel
	ch4      NoiseChannel
	channels [4]Channel
	muted    [4]bool

	// Frame sequencer state
	// Runs at 512 Hz, advancing every cyclesPerStep clocks.
	step       int
	stepCycles int

	// sampleAcc accumulates cycles*sampleRate; a frame is emitted each time
	// it passes clockRate, so the output never drifts.
	sampleRate int
	sampleAcc  uint64

	charge       float64
	left, right  highPass
	ring         *SampleRing
	bufferFrames int
	debug        bool
}

// Option configures an APU.
type Option func(*APU)

// WithSampleRate sets the output sample rate in Hz.
func WithSampleRate(rate int) Option {
	return func(a *APU) {
		if rate > 0 {
			a.sampleRate = rate
		}
	}
}

// WithBufferFrames bounds the output ring to the given number of stereo frames.
func WithBufferFrames(frames int) Option {
	return func(a *APU) {
		if frames > 0 {
			a.bufferFrames = frames
		}
	}
}

// WithDebug logs register writes.
func WithDebug(debug bool) Option {
	return func(a *APU) { a.debug = debug }
}

// New creates an APU in the state the boot ROM leaves it.
func New(opts ...Option) *APU {
	a := &APU{
		sampleRate:   DefaultSampleRate,
		bufferFrames: DefaultBufferFrames,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ring = NewSampleRing(a.bufferFrames)
	// The output stage capacitor discharges by 0.999958 per master clock.
	a.charge = math.Pow(0.999958, float64(clockRate)/float64(a.sampleRate))
	a.ch1.HasSweep = true
	a.bindChannels()
	a.initRegisters()
	return a
}

func (a *APU) bindChannels() {
	a.channels = [4]Channel{&a.ch1, &a.ch2, &a.ch3, &a.ch4}
}

// initRegisters applies the post-boot register values.
// Reference: https://gbdev.io/pandocs/Power_Up_Sequence.html#hardware-registers
func (a *APU) initRegisters() {
	a.powered = true
	boot := []struct {
		address uint16
		value   uint8
	}{
		{addr.NR10, 0x80}, {addr.NR11, 0xBF}, {addr.NR12, 0xF3}, {addr.NR14, 0xBF},
		{addr.NR21, 0x3F}, {addr.NR22, 0x00}, {addr.NR24, 0xBF},
		{addr.NR30, 0x7F}, {addr.NR31, 0xFF}, {addr.NR32, 0x9F}, {addr.NR34, 0xBF},
		{addr.NR41, 0xFF}, {addr.NR42, 0x00}, {addr.NR43, 0x00}, {addr.NR44, 0xBF},
		{addr.NR50, 0x77}, {addr.NR51, 0xF3},
	}
	for _, r := range boot {
		// Boot values must not retrigger the channels.
		a.WriteRegister(r.address, r.value&^triggerBit(r.address))
	}
	// The boot chime leaves channel 1 running with its envelope faded out.
	a.ch1.On = true
	a.ch1.Envelope.Volume = 0
}

// triggerBit is the trigger mask for NRx4 registers, zero elsewhere.
func triggerBit(address uint16) uint8 {
	switch address {
	case addr.NR14, addr.NR24, addr.NR34, addr.NR44:
		return 0x80
	}
	return 0
}

// Tick advances the APU by the given number of clocks.
func (a *APU) Tick(cycles int) {
	if a.powered {
		for _, ch := range a.channels {
			ch.tick(cycles)
		}
		a.stepCycles += cycles
		for a.stepCycles >= cyclesPerStep {
			a.stepCycles -= cyclesPerStep
			a.clockSequencer()
		}
	}

	a.sampleAcc += uint64(cycles) * uint64(a.sampleRate)
	for a.sampleAcc >= clockRate {
		a.sampleAcc -= clockRate
		a.mix()
	}
}

// clockSequencer runs the current frame sequencer step, then advances it.
//
//	Step   Length Ctr  Vol Env     Sweep
//	0      Clock       -           -
//	1      -           -           -
//	2      Clock       -           Clock
//	3      -           -           -
//	4      Clock       -           -
//	5      -           -           -
//	6      Clock       -           Clock
//	7      -           Clock       -
func (a *APU) clockSequencer() {
	switch a.step {
	case 0, 4:
		a.clockLengths()
	case 2, 6:
		a.clockLengths()
		a.ch1.clockSweep()
	case 7:
		a.ch1.Envelope.clock()
		a.ch2.Envelope.clock()
		a.ch4.Envelope.clock()
	}
	a.step = (a.step + 1) & 7
}

func (a *APU) clockLengths() {
	for _, ch := range a.channels {
		ch.clockLength()
	}
}

// mix produces one stereo frame from the channel DACs, NR51 panning and
// NR50 master volume.
func (a *APU) mix() {
	var left, right float64
	panning := a.registers[addr.NR51-addr.AudioStart]
	volume := a.registers[addr.NR50-addr.AudioStart]
	anyDAC := false

	for i, ch := range a.channels {
		if !ch.DAC() {
			continue
		}
		anyDAC = true
		if a.muted[i] {
			continue
		}
		// DAC maps digital 0-15 to analog -1..1.
		v := 1 - float64(ch.Output())/7.5
		if bit.IsSet(uint8(4+i), panning) {
			left += v
		}
		if bit.IsSet(uint8(i), panning) {
			right += v
		}
	}

	left *= float64((volume>>4)&0x07+1) / 8
	right *= float64(volume&0x07+1) / 8
	if anyDAC {
		left = a.left.filter(left, a.charge)
		right = a.right.filter(right, a.charge)
	}
	a.ring.Push(toSample(left/4), toSample(right/4))
}

// highPass models the output coupling capacitor that removes DC offset.
type highPass struct {
	Capacitor float64
}

func (h *highPass) filter(in, charge float64) float64 {
	out := in - h.Capacitor
	h.Capacitor = in - out*charge
	return out
}

func toSample(v float64) int16 {
	v = max(-1, min(1, v))
	return int16(v * math.MaxInt16)
}

// ReadRegister reads an audio register or wave RAM byte.
func (a *APU) ReadRegister(address uint16) uint8 {
	if address >= addr.WaveRAMStart {
		return a.ch3.RAM[address-addr.WaveRAMStart]
	}
	if address == addr.NR52 {
		status := readMasks[addr.NR52-addr.AudioStart]
		if a.powered {
			status |= 0x80
		}
		for i, ch := range a.channels {
			if ch.Active() {
				status |= 1 << i
			}
		}
		return status
	}
	i := address - addr.AudioStart
	return a.registers[i] | readMasks[i]
}

// WriteRegister writes an audio register or wave RAM byte. While powered
// off only NR52 and wave RAM accept writes.
func (a *APU) WriteRegister(address uint16, value uint8) {
	if a.debug {
		slog.Debug("APU write", "addr", address, "value", value)
	}
	if address >= addr.WaveRAMStart {
		a.ch3.RAM[address-addr.WaveRAMStart] = value
		return
	}
	if address == addr.NR52 {
		a.setPower(bit.IsSet(7, value))
		return
	}
	if !a.powered {
		return
	}

	a.registers[address-addr.AudioStart] = value
	switch {
	case address <= addr.NR14:
		a.writeSquare(&a.ch1, address-addr.NR10, value)
	case address <= addr.NR24:
		a.writeSquare(&a.ch2, address-addr.NR21+1, value)
	case address <= addr.NR34:
		a.writeWave(address, value)
	case address <= addr.NR44:
		a.writeNoise(address, value)
	}
}

// writeSquare handles NRx0-NRx4 for a square channel, reg being 0-4.
func (a *APU) writeSquare(ch *SquareChannel, reg uint16, value uint8) {
	switch reg {
	case 0:
		if ch.HasSweep {
			ch.Sweep.write(value)
		}
	case 1:
		ch.Duty = value >> 6
		ch.Length.load(squareLength, uint16(value&0x3F))
	case 2:
		ch.Envelope.write(value)
		ch.DACOn = value&0xF8 != 0
		if !ch.DACOn {
			ch.On = false
		}
	case 3:
		ch.Period = ch.Period&0x700 | uint16(value)
	case 4:
		ch.Period = ch.Period&0xFF | uint16(value&0x07)<<8
		ch.Length.Enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			ch.trigger()
		}
	}
}

func (a *APU) writeWave(address uint16, value uint8) {
	ch := &a.ch3
	switch address {
	case addr.NR30:
		ch.DACOn = bit.IsSet(7, value)
		if !ch.DACOn {
			ch.On = false
		}
	case addr.NR31:
		ch.Length.load(waveLength, uint16(value))
	case addr.NR32:
		ch.Level = (value >> 5) & 0x03
	case addr.NR33:
		ch.Period = ch.Period&0x700 | uint16(value)
	case addr.NR34:
		ch.Period = ch.Period&0xFF | uint16(value&0x07)<<8
		ch.Length.Enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			ch.trigger()
		}
	}
}

func (a *APU) writeNoise(address uint16, value uint8) {
	ch := &a.ch4
	switch address {
	case addr.NR41:
		ch.Length.load(noiseLength, uint16(value&0x3F))
	case addr.NR42:
		ch.Envelope.write(value)
		ch.DACOn = value&0xF8 != 0
		if !ch.DACOn {
			ch.On = false
		}
	case addr.NR43:
		ch.Shift = value >> 4
		ch.Narrow = bit.IsSet(3, value)
		ch.Divisor = value & 0x07
	case addr.NR44:
		ch.Length.Enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			ch.trigger()
		}
	}
}

// setPower handles NR52 bit 7. Powering off clears every register except
// wave RAM; powering on restarts the frame sequencer.
func (a *APU) setPower(on bool) {
	switch {
	case !on && a.powered:
		a.powered = false
		a.registers = [0x20]byte{}
		wave := a.ch3.RAM
		a.ch1 = SquareChannel{HasSweep: true}
		a.ch2 = SquareChannel{}
		a.ch3 = WaveChannel{RAM: wave}
		a.ch4 = NoiseChannel{}
		if a.debug {
			slog.Debug("APU powered off")
		}
	case on && !a.powered:
		a.powered = true
		a.step = 0
		a.stepCycles = 0
		if a.debug {
			slog.Debug("APU powered on")
		}
	}
}

// Powered reports NR52 bit 7.
func (a *APU) Powered() bool {
	return a.powered
}

// Channel returns channel n (1-4), or nil when out of range.
func (a *APU) Channel(n int) Channel {
	if n < 1 || n > 4 {
		return nil
	}
	return a.channels[n-1]
}

// Samples is the output ring.
func (a *APU) Samples() *SampleRing {
	return a.ring
}

// SampleRate is the output rate in Hz.
func (a *APU) SampleRate() int {
	return a.sampleRate
}

// State is a snapshot of the APU for save states. Buffered output samples
// and debug mutes are not part of it.
type State struct {
	Powered    bool
	Registers  [0x20]byte
	Ch1, Ch2   SquareChannel
	Ch3        WaveChannel
	Ch4        NoiseChannel
	Step       int
	StepCycles int
	SampleAcc  uint64
	Filter     [2]float64
}

// State captures the APU.
func (a *APU) State() State {
	return State{
		Powered:    a.powered,
		Registers:  a.registers,
		Ch1:        a.ch1,
		Ch2:        a.ch2,
		Ch3:        a.ch3,
		Ch4:        a.ch4,
		Step:       a.step,
		StepCycles: a.stepCycles,
		SampleAcc:  a.sampleAcc,
		Filter:     [2]float64{a.left.Capacitor, a.right.Capacitor},
	}
}

// SetState restores a snapshot taken by State.
func (a *APU) SetState(s State) {
	a.powered = s.Powered
	a.registers = s.Registers
	a.ch1, a.ch2, a.ch3, a.ch4 = s.Ch1, s.Ch2, s.Ch3, s.Ch4
	a.ch1.HasSweep = true
	a.ch2.HasSweep = false
	a.step = s.Step & 7
	a.stepCycles = s.StepCycles
	a.sampleAcc = s.SampleAcc
	a.left.Capacitor, a.right.Capacitor = s.Filter[0], s.Filter[1]
	a.bindChannels()
	a.ring.Reset()
}
