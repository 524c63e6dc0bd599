package addr

// Memory map region bounds (inclusive start, inclusive end).
// Reference: https://gbdev.io/pandocs/Memory_Map.html
const (
	ROMBank0Start     uint16 = 0x0000
	ROMBank0End       uint16 = 0x3FFF
	ROMBankNStart     uint16 = 0x4000
	ROMBankNEnd       uint16 = 0x7FFF
	VRAMStart         uint16 = 0x8000
	VRAMEnd           uint16 = 0x9FFF
	ExternalRAMStart  uint16 = 0xA000
	ExternalRAMEnd    uint16 = 0xBFFF
	WRAMStart         uint16 = 0xC000
	WRAMEnd           uint16 = 0xDFFF
	EchoStart         uint16 = 0xE000
	EchoEnd           uint16 = 0xFDFF
	OAMStart          uint16 = 0xFE00
	OAMEnd            uint16 = 0xFE9F
	UnusableStart     uint16 = 0xFEA0
	UnusableEnd       uint16 = 0xFEFF
	IOStart           uint16 = 0xFF00
	IOEnd             uint16 = 0xFF7F
	HRAMStart         uint16 = 0xFF80
	HRAMEnd           uint16 = 0xFFFE
	EchoOffset        uint16 = EchoStart - WRAMStart
	OAMSize                  = 0xA0
	ROMBankSize              = 0x4000
	ExternalRAMBankSz        = 0x2000
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// Audio registers.
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10 // Channel 1 sweep
	NR11 uint16 = 0xFF11 // Channel 1 length timer & duty cycle
	NR12 uint16 = 0xFF12 // Channel 1 volume & envelope
	NR13 uint16 = 0xFF13 // Channel 1 period low
	NR14 uint16 = 0xFF14 // Channel 1 period high & control

	NR21 uint16 = 0xFF16 // Channel 2 length timer & duty cycle
	NR22 uint16 = 0xFF17 // Channel 2 volume & envelope
	NR23 uint16 = 0xFF18 // Channel 2 period low
	NR24 uint16 = 0xFF19 // Channel 2 period high & control

	NR30 uint16 = 0xFF1A // Channel 3 DAC enable
	NR31 uint16 = 0xFF1B // Channel 3 length timer
	NR32 uint16 = 0xFF1C // Channel 3 output level
	NR33 uint16 = 0xFF1D // Channel 3 period low
	NR34 uint16 = 0xFF1E // Channel 3 period high & control

	NR41 uint16 = 0xFF20 // Channel 4 length timer
	NR42 uint16 = 0xFF21 // Channel 4 volume & envelope
	NR43 uint16 = 0xFF22 // Channel 4 frequency & randomness
	NR44 uint16 = 0xFF23 // Channel 4 control

	NR50 uint16 = 0xFF24 // Master volume & VIN panning
	NR51 uint16 = 0xFF25 // Sound panning
	NR52 uint16 = 0xFF26 // Sound on/off and channel status

	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData2 is the base of the signed tile data region (tile 0 at 0x9000)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte to be transmitted; after a transfer it holds the
	// received byte (0xFF when nothing is connected).
	SB uint16 = 0xFF01
	// SC bit 7 starts a transfer (cleared by hardware when done), bit 0
	// selects the internal clock.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt is a bit set over the five interrupt sources, laid out as in the
// IE and IF registers.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = 1 << iota
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt
	// TimerInterrupt is fired when the timer register (TIMA) overflows.
	TimerInterrupt
	// SerialInterrupt is fired when a serial transfer has completed.
	SerialInterrupt
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt

	// AllInterrupts masks the five implemented bits.
	AllInterrupts Interrupt = 0x1F
)

const baseInterruptVector uint16 = 0x40

// Highest returns the highest-priority source in the set (lowest bit), or
// zero when the set is empty.
func (i Interrupt) Highest() Interrupt {
	return i & -i & AllInterrupts
}

// Vector returns the handler address of a single interrupt source:
// 0x40, 0x48, 0x50, 0x58, 0x60.
func (i Interrupt) Vector() uint16 {
	v := baseInterruptVector
	for s := i.Highest(); s > 1; s >>= 1 {
		v += 8
	}
	return v
}

// Has reports whether every source in other is also set in i.
func (i Interrupt) Has(other Interrupt) bool {
	return i&other == other && other != 0
}

func (i Interrupt) String() string {
	switch i.Highest() {
	case VBlankInterrupt:
		return "vblank"
	case LCDSTATInterrupt:
		return "stat"
	case TimerInterrupt:
		return "timer"
	case SerialInterrupt:
		return "serial"
	case JoypadInterrupt:
		return "joypad"
	}
	return "none"
}
