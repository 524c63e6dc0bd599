package memory

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/valerio/jeebie-core/jeebie/emuerr"
)

const titleLength = 16

// Header field offsets.
// Reference: https://gbdev.io/pandocs/The_Cartridge_Header.html
const (
	entryPointAddress      = 0x100
	titleAddress           = 0x134
	cgbFlagAddress         = 0x143
	cartridgeTypeAddress   = 0x147
	romSizeAddress         = 0x148
	ramSizeAddress         = 0x149
	versionNumberAddress   = 0x14C
	headerChecksumAddress  = 0x14D
	globalChecksumAddress  = 0x14E
	headerEnd              = 0x150
	minimumROMSize         = 0x8000
	maximumROMSizeCode     = 0x08
	headerChecksumFirstIdx = 0x134
	headerChecksumLastIdx  = 0x14C
)

// MBCKind identifies the bank controller found on a cartridge.
type MBCKind uint8

const (
	NoMBCKind MBCKind = iota
	MBC1Kind
	MBC2Kind
	MBC3Kind
	MBC5Kind
)

func (k MBCKind) String() string {
	switch k {
	case NoMBCKind:
		return "ROM"
	case MBC1Kind:
		return "MBC1"
	case MBC2Kind:
		return "MBC2"
	case MBC3Kind:
		return "MBC3"
	case MBC5Kind:
		return "MBC5"
	}
	return "unknown"
}

type cartFeatures struct {
	kind    MBCKind
	ram     bool
	battery bool
	rtc     bool
	rumble  bool
}

// cartTypes maps the type byte at 0x147 to the hardware it describes.
// Anything not listed is rejected at load time.
var cartTypes = map[uint8]cartFeatures{
	0x00: {kind: NoMBCKind},
	0x01: {kind: MBC1Kind},
	0x02: {kind: MBC1Kind, ram: true},
	0x03: {kind: MBC1Kind, ram: true, battery: true},
	0x05: {kind: MBC2Kind, ram: true},
	0x06: {kind: MBC2Kind, ram: true, battery: true},
	0x08: {kind: NoMBCKind, ram: true},
	0x09: {kind: NoMBCKind, ram: true, battery: true},
	0x0F: {kind: MBC3Kind, rtc: true, battery: true},
	0x10: {kind: MBC3Kind, rtc: true, ram: true, battery: true},
	0x11: {kind: MBC3Kind},
	0x12: {kind: MBC3Kind, ram: true},
	0x13: {kind: MBC3Kind, ram: true, battery: true},
	0x19: {kind: MBC5Kind},
	0x1A: {kind: MBC5Kind, ram: true},
	0x1B: {kind: MBC5Kind, ram: true, battery: true},
	0x1C: {kind: MBC5Kind, rumble: true},
	0x1D: {kind: MBC5Kind, rumble: true, ram: true},
	0x1E: {kind: MBC5Kind, rumble: true, ram: true, battery: true},
}

// ramBanksBySizeCode maps the RAM size byte at 0x149 to 8KB banks.
// Code 0x01 (2KB) is unofficial and treated as a single bank.
var ramBanksBySizeCode = map[uint8]int{
	0x00: 0,
	0x01: 1,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Header holds the parsed cartridge header.
type Header struct {
	Title          string
	CartType       uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16
	CGBFlag        uint8

	MBC        MBCKind
	ROMBanks   int
	RAMBanks   int
	HasRAM     bool
	HasBattery bool
	HasRTC     bool
	HasRumble  bool
}

// ROMSize returns the declared ROM size in bytes.
func (h Header) ROMSize() int { return h.ROMBanks * 0x4000 }

// RAMSize returns the external RAM size in bytes (512 for MBC2's built-in RAM).
func (h Header) RAMSize() int {
	if h.MBC == MBC2Kind {
		return mbc2RAMSize
	}
	return h.RAMBanks * 0x2000
}

// ComputeHeaderChecksum returns the checksum over 0x134-0x14C the boot ROM verifies.
func ComputeHeaderChecksum(data []byte) uint8 {
	var x uint8
	for i := headerChecksumFirstIdx; i <= headerChecksumLastIdx; i++ {
		x = x - data[i] - 1
	}
	return x
}

// ParseHeader decodes and validates the cartridge header of a ROM image.
// A checksum mismatch is always a load error.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerEnd {
		return Header{}, emuerr.New(emuerr.RomTruncated, "image is %d bytes, header needs %d", len(data), headerEnd)
	}

	n := titleLength
	if data[cgbFlagAddress]&0x80 != 0 {
		n--
	}

	h := Header{
		Title:          cleanGameboyTitle(data[titleAddress : titleAddress+n]),
		CartType:       data[cartridgeTypeAddress],
		ROMSizeCode:    data[romSizeAddress],
		RAMSizeCode:    data[ramSizeAddress],
		Version:        data[versionNumberAddress],
		HeaderChecksum: data[headerChecksumAddress],
		GlobalChecksum: uint16(data[globalChecksumAddress])<<8 | uint16(data[globalChecksumAddress+1]),
		CGBFlag:        data[cgbFlagAddress],
	}

	if got := ComputeHeaderChecksum(data); got != h.HeaderChecksum {
		return h, emuerr.New(emuerr.HeaderChecksum, "header says 0x%02X, computed 0x%02X", h.HeaderChecksum, got)
	}

	features, ok := cartTypes[h.CartType]
	if !ok {
		return h, emuerr.New(emuerr.UnsupportedCart, "cartridge type 0x%02X", h.CartType)
	}
	h.MBC = features.kind
	h.HasRAM = features.ram
	h.HasBattery = features.battery
	h.HasRTC = features.rtc
	h.HasRumble = features.rumble

	if h.ROMSizeCode > maximumROMSizeCode {
		return h, emuerr.New(emuerr.UnsupportedCart, "rom size code 0x%02X", h.ROMSizeCode)
	}
	h.ROMBanks = 2 << h.ROMSizeCode

	banks, ok := ramBanksBySizeCode[h.RAMSizeCode]
	if !ok {
		return h, emuerr.New(emuerr.UnsupportedCart, "ram size code 0x%02X", h.RAMSizeCode)
	}
	if h.HasRAM && h.MBC != MBC2Kind {
		h.RAMBanks = banks
	}

	if len(data) < h.ROMSize() {
		return h, emuerr.New(emuerr.RomTruncated, "header declares %d bytes, image has %d", h.ROMSize(), len(data))
	}

	return h, nil
}

// Cartridge is a loaded ROM image plus the bank controller that maps it.
type Cartridge struct {
	data   []byte
	header Header
	mbc    MBC
}

// NewCartridge creates an empty 32KB cartridge with no controller, useful
// for tests and for running without a game.
func NewCartridge() *Cartridge {
	data := make([]byte, minimumROMSize)
	return &Cartridge{
		data:   data,
		header: Header{Title: "(Empty)", ROMBanks: 2},
		mbc:    newNoMBC(data, 0),
	}
}

// NewCartridgeWithData validates a ROM image and builds its bank controller.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	header, err := ParseHeader(bytes)
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(bytes))
	copy(data, bytes)

	cart := &Cartridge{data: data, header: header}
	switch header.MBC {
	case NoMBCKind:
		cart.mbc = newNoMBC(data, header.RAMSize())
	case MBC1Kind:
		cart.mbc = newMBC1(data, header.RAMSize())
	case MBC2Kind:
		cart.mbc = newMBC2(data)
	case MBC3Kind:
		cart.mbc = newMBC3(data, header.RAMSize(), header.HasRTC)
	case MBC5Kind:
		cart.mbc = newMBC5(data, header.RAMSize(), header.HasRumble)
	default:
		return nil, emuerr.New(emuerr.UnsupportedCart, "controller %s", header.MBC)
	}

	slog.Info("Loaded cartridge",
		"title", header.Title,
		"mbc", header.MBC.String(),
		"type", fmt.Sprintf("0x%02X", header.CartType),
		"rom_banks", header.ROMBanks,
		"ram_bytes", header.RAMSize(),
		"battery", header.HasBattery,
		"rtc", header.HasRTC)

	return cart, nil
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() Header { return c.header }

// Title returns the cleaned-up game title.
func (c *Cartridge) Title() string { return c.header.Title }

// MBC returns the bank controller.
func (c *Cartridge) MBC() MBC { return c.mbc }

// ReadROM reads from 0x0000-0x7FFF through the active banks.
func (c *Cartridge) ReadROM(address uint16) uint8 { return c.mbc.ReadROM(address) }

// WriteControl forwards a ROM-region write to the controller as a command.
func (c *Cartridge) WriteControl(address uint16, value uint8) { c.mbc.WriteControl(address, value) }

// ReadRAM reads from 0xA000-0xBFFF.
func (c *Cartridge) ReadRAM(address uint16) uint8 { return c.mbc.ReadRAM(address) }

// WriteRAM writes to 0xA000-0xBFFF.
func (c *Cartridge) WriteRAM(address uint16, value uint8) { c.mbc.WriteRAM(address, value) }

// Tick advances time-dependent controller state (the MBC3 clock).
func (c *Cartridge) Tick(cycles int) { c.mbc.Tick(cycles) }

// cleanGameboyTitle turns the raw title bytes into printable text: the title
// ends at the first NUL, non-printable bytes become '?'.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		if b == 0 {
			break
		}
		r := rune(b)
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
