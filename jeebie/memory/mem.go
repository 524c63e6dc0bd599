package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

const (
	dmaLength        = addr.OAMSize
	dmaClocksPerByte = 4
	// lcdModeTransfer is the STAT mode during which the PPU owns VRAM and OAM.
	lcdModeTransfer = 3
	// unusableRead is what the DMG returns for 0xFEA0-0xFEFF.
	unusableRead = 0x00
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

type statefulSerial interface {
	State() serial.State
	SetState(serial.State)
}

// AudioRegisters receives accesses to 0xFF10-0xFF3F. Writes go straight to
// the sound unit because trigger and length writes act at the moment they
// happen.
type AudioRegisters interface {
	ReadRegister(address uint16) byte
	WriteRegister(address uint16, value byte)
}

// DMAState is the OAM DMA progress.
type DMAState struct {
	Active   bool
	Starting bool
	Source   uint16
	Index    int
	Clocks   int
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	vram      [0x2000]byte
	wram      [0x2000]byte
	oam       [addr.OAMSize]byte
	io        [0x80]byte
	hram      [0x7F]byte
	ie        byte
	regionMap [256]memRegion

	audio  AudioRegisters
	serial SerialPort
	timer  Timer
	joypad *Joypad
	dma    DMAState

	debug bool
}

// Option configures an MMU at construction.
type Option func(*MMU)

// WithCartridge inserts cart.
func WithCartridge(cart *Cartridge) Option { return func(m *MMU) { m.cart = cart } }

// WithAudio routes 0xFF10-0xFF3F to the sound unit.
func WithAudio(a AudioRegisters) Option { return func(m *MMU) { m.audio = a } }

// WithSerial replaces the default logging serial device.
func WithSerial(s SerialPort) Option { return func(m *MMU) { m.serial = s } }

// WithDebug logs every write at debug level.
func WithDebug(on bool) Option { return func(m *MMU) { m.debug = on } }

// New creates a new memory unit. Without WithCartridge it behaves like a
// Gameboy turned on with no cartridge inserted.
func New(opts ...Option) *MMU {
	mmu := &MMU{
		cart:   NewCartridge(),
		joypad: NewJoypad(),
	}
	for _, opt := range opts {
		opt(mmu)
	}
	if mmu.serial == nil {
		mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	}
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge inserted.
func NewWithCartridge(cart *Cartridge, opts ...Option) *MMU {
	return New(append([]Option{WithCartridge(cart)}, opts...)...)
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// Cartridge returns the inserted cartridge.
func (m *MMU) Cartridge() *Cartridge { return m.cart }

// Serial returns the link port device.
func (m *MMU) Serial() SerialPort { return m.serial }

// Tick advances the timer, the link port, OAM DMA and the cartridge clock.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	m.serial.Tick(cycles)
	m.tickDMA(cycles)
	m.cart.Tick(cycles)
}

// TickStopped advances only what keeps running while the CPU is in STOP:
// the divider is frozen, the cartridge clock is not.
func (m *MMU) TickStopped(cycles int) {
	m.cart.Tick(cycles)
}

// SetTimerSeed initializes the internal timer divider.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// RequestInterrupt sets the IF bits of the given interrupts.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.io[addr.IF-addr.IOStart] |= uint8(interrupt & addr.AllInterrupts)
}

// PendingInterrupts returns the interrupts both requested and enabled.
func (m *MMU) PendingInterrupts() addr.Interrupt {
	return addr.Interrupt(m.io[addr.IF-addr.IOStart]&m.ie) & addr.AllInterrupts
}

// DMAActive reports whether an OAM DMA transfer is stalling the CPU.
func (m *MMU) DMAActive() bool { return m.dma.Active }

func (m *MMU) lcdTransferring() bool {
	return bit.IsSet(7, m.io[addr.LCDC-addr.IOStart]) && m.io[addr.STAT-addr.IOStart]&0x03 == lcdModeTransfer
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.cart.ReadROM(address)
	case regionVRAM:
		if m.lcdTransferring() {
			return 0xFF
		}
		return m.vram[address-addr.VRAMStart]
	case regionExtRAM:
		return m.cart.ReadRAM(address)
	case regionWRAM:
		return m.wram[address-addr.WRAMStart]
	case regionEcho:
		return m.wram[address-addr.EchoStart]
	case regionOAM:
		if address > addr.OAMEnd {
			return unusableRead
		}
		if m.lcdTransferring() {
			return 0xFF
		}
		return m.oam[address-addr.OAMStart]
	}

	switch {
	case address == addr.IE:
		return m.ie
	case address >= addr.HRAMStart:
		return m.hram[address-addr.HRAMStart]
	}
	return m.readIO(address)
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		// the upper 3 bits are unused and always read as 1
		return m.io[address-addr.IOStart] | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd && m.audio != nil:
		return m.audio.ReadRegister(address)
	case address == addr.STAT:
		return m.io[address-addr.IOStart] | 0x80
	}
	return m.io[address-addr.IOStart]
}

func (m *MMU) Write(address uint16, value byte) {
	if m.debug {
		slog.Debug("ram write", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	}

	switch m.regionMap[address>>8] {
	case regionROM:
		m.cart.WriteControl(address, value)
		return
	case regionVRAM:
		if !m.lcdTransferring() {
			m.vram[address-addr.VRAMStart] = value
		}
		return
	case regionExtRAM:
		m.cart.WriteRAM(address, value)
		return
	case regionWRAM:
		m.wram[address-addr.WRAMStart] = value
		return
	case regionEcho:
		m.wram[address-addr.EchoStart] = value
		return
	case regionOAM:
		if address <= addr.OAMEnd && !m.lcdTransferring() {
			m.oam[address-addr.OAMStart] = value
		}
		return
	}

	switch {
	case address == addr.IE:
		m.ie = value
	case address >= addr.HRAMStart:
		m.hram[address-addr.HRAMStart] = value
	default:
		m.writeIO(address, value)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	i := address - addr.IOStart
	switch {
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.io[i] = value & uint8(addr.AllInterrupts)
	case address >= addr.AudioStart && address <= addr.AudioEnd && m.audio != nil:
		m.audio.WriteRegister(address, value)
	case address == addr.STAT:
		// mode and coincidence bits belong to the PPU
		m.io[i] = m.io[i]&0x07 | value&0x78
	case address == addr.LY:
		// read-only
	case address == addr.DMA:
		m.io[i] = value
		m.startDMA(value)
	default:
		m.io[i] = value
	}
}

func (m *MMU) startDMA(value byte) {
	source := uint16(value) << 8
	if source >= addr.EchoStart {
		source -= addr.EchoOffset
	}
	m.dma = DMAState{Active: true, Starting: true, Source: source}
}

// tickDMA copies one byte every 4 clocks. The clocks of the instruction that
// wrote the DMA register do not count toward the transfer.
func (m *MMU) tickDMA(cycles int) {
	if !m.dma.Active {
		return
	}
	if m.dma.Starting {
		m.dma.Starting = false
		return
	}
	m.dma.Clocks += cycles
	for m.dma.Clocks >= dmaClocksPerByte && m.dma.Index < dmaLength {
		m.oam[m.dma.Index] = m.readRaw(m.dma.Source + uint16(m.dma.Index))
		m.dma.Index++
		m.dma.Clocks -= dmaClocksPerByte
	}
	if m.dma.Index == dmaLength {
		m.dma = DMAState{}
	}
}

// readRaw reads without PPU contention, for DMA.
func (m *MMU) readRaw(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionVRAM:
		return m.vram[address-addr.VRAMStart]
	case regionOAM, regionIO:
		return 0xFF
	}
	return m.Read(address)
}

// The methods below are the PPU's side of the bus: it owns LY and the STAT
// mode/coincidence bits, and it is never locked out of VRAM or OAM.

// VRAM returns the byte at a VRAM address without contention checks.
func (m *MMU) VRAM(address uint16) byte { return m.vram[address-addr.VRAMStart] }

// OAM returns the byte at an OAM address without contention checks.
func (m *MMU) OAM(address uint16) byte { return m.oam[address-addr.OAMStart] }

// SetLY stores the current scanline.
func (m *MMU) SetLY(line uint8) { m.io[addr.LY-addr.IOStart] = line }

// SetLCDMode stores the PPU mode in STAT bits 0-1.
func (m *MMU) SetLCDMode(mode uint8) {
	i := addr.STAT - addr.IOStart
	m.io[i] = m.io[i]&^0x03 | mode&0x03
}

// SetCoincidence stores the LY==LYC flag in STAT bit 2.
func (m *MMU) SetCoincidence(on bool) {
	i := addr.STAT - addr.IOStart
	m.io[i] = bit.SetTo(2, m.io[i], on)
}

// HandleKeyPress marks key as held; a new press raises the joypad interrupt.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.Press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// HandleKeyRelease marks key as released.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}

// SetButtons replaces the held keys at once; any newly pressed key raises
// the joypad interrupt.
func (m *MMU) SetButtons(held Buttons) {
	if m.joypad.Set(held) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// State is the serializable memory state.
type State struct {
	VRAM   [0x2000]byte
	WRAM   [0x2000]byte
	OAM    [addr.OAMSize]byte
	IO     [0x80]byte
	HRAM   [0x7F]byte
	IE     byte
	DMA    DMAState
	Timer  TimerState
	Joypad JoypadState
	Serial serial.State
	Cart   MBCState
}

// State captures the memory map, timer, joypad, link port and cartridge.
func (m *MMU) State() State {
	s := State{
		VRAM:   m.vram,
		WRAM:   m.wram,
		OAM:    m.oam,
		IO:     m.io,
		HRAM:   m.hram,
		IE:     m.ie,
		DMA:    m.dma,
		Timer:  m.timer.State(),
		Joypad: m.joypad.State(),
		Cart:   m.cart.MBC().Snapshot(),
	}
	if ser, ok := m.serial.(statefulSerial); ok {
		s.Serial = ser.State()
	}
	return s
}

// CheckState reports whether s fits the inserted cartridge, without
// changing anything.
func (m *MMU) CheckState(s State) error {
	mbc := m.cart.MBC()
	if got := mbc.Kind(); got != s.Cart.Kind {
		return fmt.Errorf("snapshot is for a %s cartridge, %s inserted", s.Cart.Kind, got)
	}
	if got, want := len(s.Cart.RAM), len(mbc.RAM()); got != want {
		return fmt.Errorf("snapshot has %d bytes of cartridge RAM, cartridge has %d", got, want)
	}
	return nil
}

// SetState restores a snapshot taken with State. The cartridge must be the
// same kind as the one the snapshot was taken with.
func (m *MMU) SetState(s State) error {
	if err := m.CheckState(s); err != nil {
		return err
	}
	m.vram = s.VRAM
	m.wram = s.WRAM
	m.oam = s.OAM
	m.io = s.IO
	m.hram = s.HRAM
	m.ie = s.IE
	m.dma = s.DMA
	m.timer.SetState(s.Timer)
	m.joypad.SetState(s.Joypad)
	if ser, ok := m.serial.(statefulSerial); ok {
		ser.SetState(s.Serial)
	}
	m.cart.MBC().Restore(s.Cart)
	return nil
}
