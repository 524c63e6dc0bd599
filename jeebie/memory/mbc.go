package memory

import "github.com/valerio/jeebie-core/jeebie/addr"

const (
	romBankSize = addr.ROMBankSize
	ramBankSize = addr.ExternalRAMBankSz
	mbc2RAMSize = 512
)

// MBC is the capability every bank controller variant shares. The set of
// variants is closed: NoMBC, MBC1, MBC2, MBC3 and MBC5, chosen once from
// the cartridge type byte.
type MBC interface {
	Kind() MBCKind
	// ReadROM reads 0x0000-0x7FFF through the active banks.
	ReadROM(address uint16) uint8
	// WriteControl interprets a write to 0x0000-0x7FFF as a controller command.
	WriteControl(address uint16, value uint8)
	// ReadRAM reads 0xA000-0xBFFF, 0xFF when RAM is disabled or absent.
	ReadRAM(address uint16) uint8
	// WriteRAM writes 0xA000-0xBFFF, dropped when RAM is disabled or absent.
	WriteRAM(address uint16, value uint8)
	// Tick advances clock-driven state by the given number of clocks.
	Tick(cycles int)
	// RAM exposes the battery-backable external RAM.
	RAM() []byte

	Snapshot() MBCState
	Restore(MBCState)

	base() *banks
}

// MBCState is the serializable controller state.
type MBCState struct {
	Kind       MBCKind
	ROMBank    uint16
	RAMBank    uint8
	RAMEnabled bool
	Mode       uint8
	RAM        []byte
	RTC        RTCState
}

// banks holds what every controller variant tracks.
type banks struct {
	rom        []uint8
	ram        []uint8
	romBank    uint16
	ramBank    uint8
	ramEnabled bool
	mode       uint8
}

func newBanks(rom []uint8, ramSize int) banks {
	return banks{
		rom:     rom,
		ram:     make([]uint8, ramSize),
		romBank: 1,
	}
}

func (b *banks) base() *banks { return b }

func (b *banks) RAM() []byte { return b.ram }

func (b *banks) Tick(int) {}

// readROMBank reads offset within the given 16KB bank. Banks past the end
// of the image wrap, as the unused address lines do on hardware.
func (b *banks) readROMBank(bank int, offset uint16) uint8 {
	if len(b.rom) == 0 {
		return 0xFF
	}
	index := (bank*romBankSize + int(offset)) % len(b.rom)
	return b.rom[index]
}

func (b *banks) ramIndex(bank int, address uint16) (int, bool) {
	if len(b.ram) == 0 {
		return 0, false
	}
	return (bank*ramBankSize + int(address-addr.ExternalRAMStart)) % len(b.ram), true
}

func (b *banks) readRAMBank(bank int, address uint16) uint8 {
	if !b.ramEnabled {
		return 0xFF
	}
	i, ok := b.ramIndex(bank, address)
	if !ok {
		return 0xFF
	}
	return b.ram[i]
}

func (b *banks) writeRAMBank(bank int, address uint16, value uint8) {
	if !b.ramEnabled {
		return
	}
	if i, ok := b.ramIndex(bank, address); ok {
		b.ram[i] = value
	}
}

func (b *banks) snapshot(kind MBCKind) MBCState {
	ram := make([]byte, len(b.ram))
	copy(ram, b.ram)
	return MBCState{
		Kind:       kind,
		ROMBank:    b.romBank,
		RAMBank:    b.ramBank,
		RAMEnabled: b.ramEnabled,
		Mode:       b.mode,
		RAM:        ram,
	}
}

func (b *banks) restore(s MBCState) {
	b.romBank = s.ROMBank
	b.ramBank = s.RAMBank
	b.ramEnabled = s.RAMEnabled
	b.mode = s.Mode
	copy(b.ram, s.RAM)
}

func ramEnableValue(value uint8) bool {
	return value&0x0F == 0x0A
}

// NoMBC maps a 32KB ROM directly. Types 0x08/0x09 add up to 8KB of RAM
// which is always enabled.
type NoMBC struct {
	banks
}

func newNoMBC(rom []uint8, ramSize int) *NoMBC {
	m := &NoMBC{banks: newBanks(rom, ramSize)}
	m.ramEnabled = true
	return m
}

func (m *NoMBC) Kind() MBCKind { return NoMBCKind }

func (m *NoMBC) ReadROM(address uint16) uint8 {
	if int(address) >= len(m.rom) {
		return 0xFF
	}
	return m.rom[address]
}

func (m *NoMBC) WriteControl(uint16, uint8) {}

func (m *NoMBC) ReadRAM(address uint16) uint8 { return m.readRAMBank(0, address) }

func (m *NoMBC) WriteRAM(address uint16, value uint8) { m.writeRAMBank(0, address, value) }

func (m *NoMBC) Snapshot() MBCState { return m.snapshot(NoMBCKind) }

func (m *NoMBC) Restore(s MBCState) {
	m.restore(s)
	m.ramEnabled = true
}

// MBC1 supports up to 2MB ROM and 32KB RAM.
//
//	0x0000-0x1FFF  RAM enable (0x0A in the low nibble)
//	0x2000-0x3FFF  BANK1: low 5 bits of the ROM bank, 0 reads as 1
//	0x4000-0x5FFF  BANK2: 2 bits, ROM bank bits 5-6 or the RAM bank
//	0x6000-0x7FFF  mode: 0 applies BANK2 to 0x4000-0x7FFF only,
//	               1 also applies it to 0x0000-0x3FFF and to RAM
//
// romBank holds BANK1 and ramBank holds BANK2.
type MBC1 struct {
	banks
}

func newMBC1(rom []uint8, ramSize int) *MBC1 {
	return &MBC1{banks: newBanks(rom, ramSize)}
}

func (m *MBC1) Kind() MBCKind { return MBC1Kind }

func (m *MBC1) ReadROM(address uint16) uint8 {
	if address < addr.ROMBankNStart {
		bank := 0
		if m.mode == 1 {
			bank = int(m.ramBank) << 5
		}
		return m.readROMBank(bank, address)
	}
	bank := int(m.ramBank)<<5 | int(m.romBank)
	return m.readROMBank(bank, address-addr.ROMBankNStart)
}

func (m *MBC1) WriteControl(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = uint16(bank)
	case address <= 0x5FFF:
		m.ramBank = value & 0x03
	default:
		m.mode = value & 0x01
	}
}

func (m *MBC1) currentRAMBank() int {
	if m.mode == 1 {
		return int(m.ramBank)
	}
	return 0
}

func (m *MBC1) ReadRAM(address uint16) uint8 {
	return m.readRAMBank(m.currentRAMBank(), address)
}

func (m *MBC1) WriteRAM(address uint16, value uint8) {
	m.writeRAMBank(m.currentRAMBank(), address, value)
}

func (m *MBC1) Snapshot() MBCState { return m.snapshot(MBC1Kind) }

func (m *MBC1) Restore(s MBCState) { m.restore(s) }

// MBC2 supports up to 256KB ROM and has 512 half-bytes of built-in RAM.
// Address bit 8 of a control write selects between RAM enable (clear) and
// ROM bank select (set). RAM echoes across 0xA000-0xBFFF and the upper
// nibble reads back as 1s.
type MBC2 struct {
	banks
}

func newMBC2(rom []uint8) *MBC2 {
	return &MBC2{banks: newBanks(rom, mbc2RAMSize)}
}

func (m *MBC2) Kind() MBCKind { return MBC2Kind }

func (m *MBC2) ReadROM(address uint16) uint8 {
	if address < addr.ROMBankNStart {
		return m.readROMBank(0, address)
	}
	return m.readROMBank(int(m.romBank), address-addr.ROMBankNStart)
}

func (m *MBC2) WriteControl(address uint16, value uint8) {
	if address > 0x3FFF {
		return
	}
	if address&0x0100 == 0 {
		m.ramEnabled = ramEnableValue(value)
		return
	}
	bank := value & 0x0F
	if bank == 0 {
		bank = 1
	}
	m.romBank = uint16(bank)
}

func (m *MBC2) ReadRAM(address uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	return 0xF0 | m.ram[address&0x01FF]
}

func (m *MBC2) WriteRAM(address uint16, value uint8) {
	if !m.ramEnabled {
		return
	}
	m.ram[address&0x01FF] = value & 0x0F
}

func (m *MBC2) Snapshot() MBCState { return m.snapshot(MBC2Kind) }

func (m *MBC2) Restore(s MBCState) { m.restore(s) }

// MBC3 supports up to 2MB ROM, 32KB RAM and an optional real-time clock.
//
//	0x0000-0x1FFF  RAM and RTC enable
//	0x2000-0x3FFF  7-bit ROM bank, 0 reads as 1
//	0x4000-0x5FFF  0x00-0x03 select a RAM bank, 0x08-0x0C an RTC register
//	0x6000-0x7FFF  writing 0x00 then 0x01 latches the clock
type MBC3 struct {
	banks
	hasRTC    bool
	rtc       RTC
	latchPrep bool
}

func newMBC3(rom []uint8, ramSize int, hasRTC bool) *MBC3 {
	return &MBC3{banks: newBanks(rom, ramSize), hasRTC: hasRTC}
}

func (m *MBC3) Kind() MBCKind { return MBC3Kind }

func (m *MBC3) ReadROM(address uint16) uint8 {
	if address < addr.ROMBankNStart {
		return m.readROMBank(0, address)
	}
	return m.readROMBank(int(m.romBank), address-addr.ROMBankNStart)
}

func (m *MBC3) WriteControl(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = uint16(bank)
	case address <= 0x5FFF:
		m.ramBank = value & 0x0F
	default:
		if m.latchPrep && value == 0x01 {
			m.rtc.Latch()
		}
		m.latchPrep = value == 0x00
	}
}

func (m *MBC3) rtcSelected() bool {
	return m.hasRTC && m.ramBank >= rtcSeconds && m.ramBank <= rtcDaysHigh
}

func (m *MBC3) ReadRAM(address uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if m.rtcSelected() {
		return m.rtc.Read(m.ramBank)
	}
	if m.ramBank > 0x03 {
		return 0xFF
	}
	return m.readRAMBank(int(m.ramBank), address)
}

func (m *MBC3) WriteRAM(address uint16, value uint8) {
	if !m.ramEnabled {
		return
	}
	if m.rtcSelected() {
		m.rtc.Write(m.ramBank, value)
		return
	}
	if m.ramBank > 0x03 {
		return
	}
	m.writeRAMBank(int(m.ramBank), address, value)
}

func (m *MBC3) Tick(cycles int) {
	if m.hasRTC {
		m.rtc.Tick(cycles)
	}
}

// RTC returns the cartridge clock, nil when the cartridge has none.
func (m *MBC3) RTC() *RTC {
	if !m.hasRTC {
		return nil
	}
	return &m.rtc
}

func (m *MBC3) Snapshot() MBCState {
	s := m.snapshot(MBC3Kind)
	s.RTC = m.rtc.State()
	if m.latchPrep {
		s.Mode = 1
	}
	return s
}

func (m *MBC3) Restore(s MBCState) {
	m.restore(s)
	m.rtc.SetState(s.RTC)
	m.latchPrep = s.Mode == 1
	m.mode = 0
}

// MBC5 supports up to 8MB ROM with a 9-bit bank number (bank 0 is
// selectable in the switchable area) and up to 128KB RAM. On rumble
// cartridges bit 3 of the RAM bank drives the motor instead.
type MBC5 struct {
	banks
	hasRumble bool
	rumbling  bool
}

func newMBC5(rom []uint8, ramSize int, hasRumble bool) *MBC5 {
	return &MBC5{banks: newBanks(rom, ramSize), hasRumble: hasRumble}
}

func (m *MBC5) Kind() MBCKind { return MBC5Kind }

func (m *MBC5) ReadROM(address uint16) uint8 {
	if address < addr.ROMBankNStart {
		return m.readROMBank(0, address)
	}
	return m.readROMBank(int(m.romBank), address-addr.ROMBankNStart)
}

func (m *MBC5) WriteControl(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = ramEnableValue(value)
	case address <= 0x2FFF:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address <= 0x3FFF:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case address <= 0x5FFF:
		if m.hasRumble {
			m.rumbling = value&0x08 != 0
			value &= 0x07
		}
		m.ramBank = value & 0x0F
	}
}

// Rumbling reports whether the rumble motor is on.
func (m *MBC5) Rumbling() bool { return m.rumbling }

func (m *MBC5) ReadRAM(address uint16) uint8 {
	return m.readRAMBank(int(m.ramBank), address)
}

func (m *MBC5) WriteRAM(address uint16, value uint8) {
	m.writeRAMBank(int(m.ramBank), address, value)
}

func (m *MBC5) Snapshot() MBCState { return m.snapshot(MBC5Kind) }

func (m *MBC5) Restore(s MBCState) { m.restore(s) }
