package video

import "github.com/valerio/jeebie-core/jeebie/bit"

// TileRow is one 8-pixel row of a tile in 2bpp bit-plane format:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// Bit 7 is the leftmost pixel. Color 0 is transparent for sprites.
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel returns the color index (0-3) of pixel x, 0 being leftmost.
func (t TileRow) GetPixel(x int) uint8 {
	return t.colorAt(uint8(7 - x))
}

// GetPixelFlipped is GetPixel for a horizontally mirrored row.
func (t TileRow) GetPixelFlipped(x int) uint8 {
	return t.colorAt(uint8(x))
}

func (t TileRow) colorAt(bitIndex uint8) uint8 {
	return bit.Value(bitIndex, t.High)<<1 | bit.Value(bitIndex, t.Low)
}

// VRAMReader reads video memory without bus contention.
type VRAMReader interface {
	VRAM(address uint16) byte
}

// FetchTileRow reads row y (0-7, or 0-15 across an 8x16 pair) of the tile
// whose data starts at base.
func FetchTileRow(mem VRAMReader, base uint16, y int) TileRow {
	address := base + uint16(y*2)
	return TileRow{Low: mem.VRAM(address), High: mem.VRAM(address + 1)}
}
