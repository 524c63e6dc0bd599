package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquareDutyPatterns(t *testing.T) {
	testCases := []struct {
		duty uint8
		want []uint8
	}{
		{0, []uint8{0, 0, 0, 0, 0, 0, 0, 15}},
		{1, []uint8{15, 0, 0, 0, 0, 0, 0, 15}},
		{2, []uint8{15, 0, 0, 0, 0, 15, 15, 15}},
		{3, []uint8{0, 15, 15, 15, 15, 15, 15, 0}},
	}
	for _, tc := range testCases {
		ch := SquareChannel{DACOn: true, Duty: tc.duty, Period: 2047}
		ch.Envelope.Initial = 15
		ch.trigger()

		got := make([]uint8, 0, 8)
		for range 8 {
			got = append(got, ch.Output())
			ch.tick(ch.reload())
		}
		assert.Equal(t, tc.want, got, "duty %d", tc.duty)
	}
}

func TestSquareTimerCarriesRemainder(t *testing.T) {
	ch := SquareChannel{DACOn: true, Period: 2047} // 4 clocks per step
	ch.trigger()

	ch.tick(3)
	assert.Equal(t, uint8(0), ch.DutyStep)
	ch.tick(6) // 9 clocks total
	assert.Equal(t, uint8(2), ch.DutyStep)
	assert.Equal(t, 3, ch.Timer)
}

func TestWaveChannelOutput(t *testing.T) {
	ch := WaveChannel{DACOn: true, Period: 2047, Level: 1}
	ch.RAM[0] = 0x9A
	ch.trigger()

	ch.tick(ch.reload())
	assert.Equal(t, uint8(1), ch.Position)
	assert.Equal(t, uint8(0xA), ch.Output())

	testCases := []struct {
		level uint8
		want  uint8
	}{
		{0, 0x0},
		{1, 0xA},
		{2, 0x5},
		{3, 0x2},
	}
	for _, tc := range testCases {
		ch.Level = tc.level
		assert.Equal(t, tc.want, ch.Output(), "level %d", tc.level)
	}
}

func TestWavePositionWraps(t *testing.T) {
	ch := WaveChannel{DACOn: true, Period: 2047}
	ch.trigger()
	ch.tick(32 * ch.reload())
	assert.Equal(t, uint8(0), ch.Position)
}

func TestNoiseLFSR(t *testing.T) {
	ch := NoiseChannel{DACOn: true}
	ch.trigger()
	assert.Equal(t, uint16(0x7FFF), ch.LFSR)

	ch.shift()
	assert.Equal(t, uint16(0x3FFF), ch.LFSR)

	narrow := NoiseChannel{DACOn: true, Narrow: true}
	narrow.trigger()
	narrow.shift()
	assert.Equal(t, uint16(0x3FBF), narrow.LFSR)
}

func TestNoiseWidePeriod(t *testing.T) {
	ch := NoiseChannel{DACOn: true}
	ch.trigger()
	seen := map[uint16]bool{}
	for range 1 << 15 {
		seen[ch.LFSR] = true
		ch.shift()
	}
	assert.Len(t, seen, 1<<15-1, "the 15-bit LFSR is maximal length")
}

func TestEnvelopeClock(t *testing.T) {
	e := Envelope{}
	e.write(0xE9) // 14, up, period 1
	e.trigger()
	e.clock()
	assert.Equal(t, uint8(15), e.Volume)
	e.clock()
	assert.Equal(t, uint8(15), e.Volume, "volume caps at 15")

	e.write(0x50) // period 0 freezes
	e.trigger()
	e.clock()
	assert.Equal(t, uint8(5), e.Volume)
}

func TestLengthCounter(t *testing.T) {
	l := LengthCounter{Enabled: true}
	l.load(squareLength, 62)
	assert.False(t, l.clock())
	assert.True(t, l.clock())
	assert.False(t, l.clock(), "an expired counter stays expired")

	l.trigger(squareLength)
	assert.Equal(t, uint16(squareLength), l.Counter)
}
