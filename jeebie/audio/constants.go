package audio

// Timing constants
// Reference: https://gbdev.io/pandocs/Audio_details.html
const (
	// clockRate is the master clock in Hz.
	clockRate = 4194304

	// cyclesPerStep is the number of clocks per frame sequencer tick.
	// The frame sequencer runs at 512 Hz: 4194304 Hz / 512 Hz = 8192 clocks
	cyclesPerStep = 8192

	// DefaultSampleRate is the output sample rate in Hz.
	DefaultSampleRate = 44100

	// DefaultBufferFrames bounds the sample ring to about half a second.
	DefaultBufferFrames = DefaultSampleRate / 2
)

// Channel constants
const (
	// waveRAMSize is the size of wave pattern RAM in bytes (16 bytes = 32 nibbles)
	waveRAMSize = 16

	squareLength = 64
	waveLength   = 256
	noiseLength  = 64

	maxPeriod = 2047
	lfsrSeed  = 0x7FFF
)

// dutyPatterns holds the 8-step waveforms for 12.5%, 25%, 50% and 75% duty,
// most significant bit first.
var dutyPatterns = [4]uint8{0b00000001, 0b10000001, 0b10000111, 0b01111110}

// waveShift maps NR32 output level to a right shift of the 4-bit sample.
var waveShift = [4]uint8{4, 0, 1, 2}

// noiseDivisors maps the NR43 divisor code to clocks.
var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// readMasks are ORed into register reads: write-only and unused bits read
// back as 1. Indexed from NR10.
var readMasks = [0x20]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // unused
}
