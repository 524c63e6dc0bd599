package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Mode is the PPU mode reported in STAT bits 0-1.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	PixelTransfer
)

func (m Mode) String() string {
	switch m {
	case HBlank:
		return "hblank"
	case VBlank:
		return "vblank"
	case OAMScan:
		return "oam"
	case PixelTransfer:
		return "transfer"
	}
	return "unknown"
}

// LCDControl is the LCDC register.
// Reference: https://gbdev.io/pandocs/LCDC.html
type LCDControl uint8

const (
	bgDisplay           uint8 = 0
	spriteDisplay       uint8 = 1
	spriteSize          uint8 = 2
	bgTileMapSelect     uint8 = 3
	tileDataSelect      uint8 = 4
	windowDisplay       uint8 = 5
	windowTileMapSelect uint8 = 6
	lcdDisplayEnable    uint8 = 7
)

func (l LCDControl) Enabled() bool       { return bit.IsSet(lcdDisplayEnable, uint8(l)) }
func (l LCDControl) BackgroundOn() bool  { return bit.IsSet(bgDisplay, uint8(l)) }
func (l LCDControl) SpritesOn() bool     { return bit.IsSet(spriteDisplay, uint8(l)) }
func (l LCDControl) WindowOn() bool      { return bit.IsSet(windowDisplay, uint8(l)) }
func (l LCDControl) UnsignedTiles() bool { return bit.IsSet(tileDataSelect, uint8(l)) }

// SpriteHeight is 16 in 8x16 mode, 8 otherwise.
func (l LCDControl) SpriteHeight() int {
	if bit.IsSet(spriteSize, uint8(l)) {
		return 16
	}
	return 8
}

// BackgroundMap returns the base address of the background tile map.
func (l LCDControl) BackgroundMap() uint16 {
	if bit.IsSet(bgTileMapSelect, uint8(l)) {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// WindowMap returns the base address of the window tile map.
func (l LCDControl) WindowMap() uint16 {
	if bit.IsSet(windowTileMapSelect, uint8(l)) {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// TileAddress resolves a tile index from a map to the address of its data,
// using unsigned 0x8000 addressing or signed 0x9000 addressing.
func (l LCDControl) TileAddress(index uint8) uint16 {
	if l.UnsignedTiles() {
		return addr.TileData0 + uint16(index)*16
	}
	return uint16(int32(addr.TileData2) + int32(int8(index))*16)
}

// LCDStatus is the STAT register.
type LCDStatus uint8

const (
	statCoincidence uint8 = 2
	statHBlankIRQ   uint8 = 3
	statVBlankIRQ   uint8 = 4
	statOAMIRQ      uint8 = 5
	statLYCIRQ      uint8 = 6
)

func (s LCDStatus) Mode() Mode        { return Mode(uint8(s) & 0x03) }
func (s LCDStatus) Coincidence() bool { return bit.IsSet(statCoincidence, uint8(s)) }

// ModeIRQ reports whether the interrupt source for mode m is enabled.
func (s LCDStatus) ModeIRQ(m Mode) bool {
	switch m {
	case HBlank:
		return bit.IsSet(statHBlankIRQ, uint8(s))
	case VBlank:
		return bit.IsSet(statVBlankIRQ, uint8(s))
	case OAMScan:
		return bit.IsSet(statOAMIRQ, uint8(s))
	}
	return false
}

func (s LCDStatus) LYCIRQ() bool { return bit.IsSet(statLYCIRQ, uint8(s)) }
