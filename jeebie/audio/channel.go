package audio

import "github.com/valerio/jeebie-core/jeebie/bit"

// Channel is one of the four sound generators. The set is closed: square
// (with or without sweep), wave and noise.
type Channel interface {
	// Active reports the NR52 status bit.
	Active() bool
	// Output is the current digital level, 0-15.
	Output() uint8
	// DAC reports whether the channel's DAC is powered.
	DAC() bool

	tick(cycles int)
	clockLength()
}

var (
	_ Channel = (*SquareChannel)(nil)
	_ Channel = (*WaveChannel)(nil)
	_ Channel = (*NoiseChannel)(nil)
)

// LengthCounter silences a channel after a programmed number of 256 Hz clocks.
type LengthCounter struct {
	Counter uint16
	Enabled bool
}

func (l *LengthCounter) load(max, value uint16) {
	l.Counter = max - value
}

func (l *LengthCounter) trigger(max uint16) {
	if l.Counter == 0 {
		l.Counter = max
	}
}

// clock reports whether the counter just expired.
func (l *LengthCounter) clock() bool {
	if !l.Enabled || l.Counter == 0 {
		return false
	}
	l.Counter--
	return l.Counter == 0
}

// Envelope ramps a channel's volume at 64 Hz.
type Envelope struct {
	Initial uint8
	Up      bool
	Period  uint8
	Volume  uint8
	Timer   uint8
}

func (e *Envelope) write(value uint8) {
	e.Initial = value >> 4
	e.Up = bit.IsSet(3, value)
	e.Period = value & 0x07
}

func (e *Envelope) trigger() {
	e.Volume = e.Initial
	e.Timer = e.Period
}

func (e *Envelope) clock() {
	if e.Period == 0 {
		return
	}
	if e.Timer > 0 {
		e.Timer--
	}
	if e.Timer != 0 {
		return
	}
	e.Timer = e.Period
	switch {
	case e.Up && e.Volume < 15:
		e.Volume++
	case !e.Up && e.Volume > 0:
		e.Volume--
	}
}

// Sweep periodically shifts channel 1's period at 128 Hz.
type Sweep struct {
	Period  uint8
	Negate  bool
	Shift   uint8
	Enabled bool
	Timer   uint8
	Shadow  uint16
}

func (s *Sweep) write(value uint8) {
	s.Period = (value >> 4) & 0x07
	s.Negate = bit.IsSet(3, value)
	s.Shift = value & 0x07
}

func (s *Sweep) reload() {
	s.Timer = s.Period
	if s.Timer == 0 {
		s.Timer = 8
	}
}

// next computes the swept period and whether it stays in range.
func (s *Sweep) next() (uint16, bool) {
	delta := s.Shadow >> s.Shift
	if s.Negate {
		return s.Shadow - delta, true
	}
	period := s.Shadow + delta
	return period, period <= maxPeriod
}

// trigger reports false when the initial overflow check disables the channel.
func (s *Sweep) trigger(period uint16) bool {
	s.Shadow = period
	s.reload()
	s.Enabled = s.Period != 0 || s.Shift != 0
	if s.Shift != 0 {
		_, ok := s.next()
		return ok
	}
	return true
}

// clock returns the new period when it changed, and false in ok when the
// channel overflowed.
func (s *Sweep) clock() (period uint16, changed, ok bool) {
	if s.Timer > 0 {
		s.Timer--
	}
	if s.Timer != 0 {
		return 0, false, true
	}
	s.reload()
	if !s.Enabled || s.Period == 0 {
		return 0, false, true
	}

	period, ok = s.next()
	if !ok {
		return 0, false, false
	}
	if s.Shift == 0 {
		return 0, false, true
	}
	s.Shadow = period
	_, ok = s.next()
	return period, true, ok
}

// SquareChannel is channels 1 and 2.
type SquareChannel struct {
	Length   LengthCounter
	Envelope Envelope
	Sweep    Sweep
	HasSweep bool

	On       bool
	DACOn    bool
	Duty     uint8
	DutyStep uint8
	Period   uint16
	Timer    int
}

func (s *SquareChannel) Active() bool { return s.On }
func (s *SquareChannel) DAC() bool    { return s.DACOn }

func (s *SquareChannel) Output() uint8 {
	if !s.On || !s.DACOn {
		return 0
	}
	if bit.IsSet(7-s.DutyStep, dutyPatterns[s.Duty&3]) {
		return s.Envelope.Volume
	}
	return 0
}

func (s *SquareChannel) reload() int { return (2048 - int(s.Period)) * 4 }

func (s *SquareChannel) tick(cycles int) {
	if !s.On {
		return
	}
	s.Timer -= cycles
	for s.Timer <= 0 {
		s.Timer += s.reload()
		s.DutyStep = (s.DutyStep + 1) & 7
	}
}

func (s *SquareChannel) clockLength() {
	if s.Length.clock() {
		s.On = false
	}
}

func (s *SquareChannel) clockSweep() {
	if !s.HasSweep {
		return
	}
	period, changed, ok := s.Sweep.clock()
	if changed {
		s.Period = period
	}
	if !ok {
		s.On = false
	}
}

func (s *SquareChannel) trigger() {
	s.On = s.DACOn
	s.Length.trigger(squareLength)
	s.Timer = s.reload()
	s.Envelope.trigger()
	if s.HasSweep && !s.Sweep.trigger(s.Period) {
		s.On = false
	}
}

// WaveChannel is channel 3, playing 32 4-bit samples from wave RAM.
type WaveChannel struct {
	Length LengthCounter

	On       bool
	DACOn    bool
	Level    uint8
	Period   uint16
	Timer    int
	Position uint8
	Sample   uint8
	RAM      [waveRAMSize]uint8
}

func (w *WaveChannel) Active() bool { return w.On }
func (w *WaveChannel) DAC() bool    { return w.DACOn }

func (w *WaveChannel) Output() uint8 {
	if !w.On || !w.DACOn {
		return 0
	}
	return w.Sample >> waveShift[w.Level&3]
}

func (w *WaveChannel) reload() int { return (2048 - int(w.Period)) * 2 }

func (w *WaveChannel) nibble(position uint8) uint8 {
	b := w.RAM[position/2]
	if position&1 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

func (w *WaveChannel) tick(cycles int) {
	if !w.On {
		return
	}
	w.Timer -= cycles
	for w.Timer <= 0 {
		w.Timer += w.reload()
		w.Position = (w.Position + 1) & 31
		w.Sample = w.nibble(w.Position)
	}
}

func (w *WaveChannel) clockLength() {
	if w.Length.clock() {
		w.On = false
	}
}

func (w *WaveChannel) trigger() {
	w.On = w.DACOn
	w.Length.trigger(waveLength)
	w.Timer = w.reload()
	w.Position = 0
}

// NoiseChannel is channel 4, a 15 or 7 bit LFSR.
type NoiseChannel struct {
	Length   LengthCounter
	Envelope Envelope

	On      bool
	DACOn   bool
	Shift   uint8
	Narrow  bool
	Divisor uint8
	LFSR    uint16
	Timer   int
}

func (n *NoiseChannel) Active() bool { return n.On }
func (n *NoiseChannel) DAC() bool    { return n.DACOn }

func (n *NoiseChannel) Output() uint8 {
	if !n.On || !n.DACOn || n.LFSR&1 != 0 {
		return 0
	}
	return n.Envelope.Volume
}

func (n *NoiseChannel) reload() int { return noiseDivisors[n.Divisor&7] << n.Shift }

func (n *NoiseChannel) tick(cycles int) {
	if !n.On {
		return
	}
	n.Timer -= cycles
	for n.Timer <= 0 {
		n.Timer += n.reload()
		n.shift()
	}
}

func (n *NoiseChannel) shift() {
	feedback := (n.LFSR ^ n.LFSR>>1) & 1
	n.LFSR = n.LFSR>>1 | feedback<<14
	if n.Narrow {
		n.LFSR = n.LFSR&^(1<<6) | feedback<<6
	}
}

func (n *NoiseChannel) clockLength() {
	if n.Length.clock() {
		n.On = false
	}
}

func (n *NoiseChannel) trigger() {
	n.On = n.DACOn
	n.Length.trigger(noiseLength)
	n.Timer = n.reload()
	n.Envelope.trigger()
	n.LFSR = lfsrSeed
}
