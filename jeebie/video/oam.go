package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

const (
	spriteCount    = 40
	spritesPerLine = 10
	spriteYOffset  = 16
	spriteXOffset  = 8
)

// Sprite is one OAM entry, with screen coordinates (offsets removed).
// X and Y may be negative for sprites partially off the left/top edge.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int

	PaletteOBP1 bool
	FlipX       bool
	FlipY       bool
	BehindBG    bool

	// Data is the tile row drawn on the scanline the sprite was selected for.
	Data TileRow

	// PixelMask marks the opaque pixels this sprite owns after
	// sprite-to-sprite priority resolution, bit 7 being the leftmost.
	PixelMask uint8
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// HasPriorityForPixel reports whether the sprite owns pixel x (0-7).
func (s *Sprite) HasPriorityForPixel(x int) bool {
	if x < 0 || x > 7 {
		return false
	}
	return s.PixelMask&(1<<(7-x)) != 0
}

// Row returns the tile row to draw for screen line ly, honoring FlipY and
// the 8x16 tile pairing.
func (s *Sprite) Row(ly int) (tile uint8, row int) {
	row = ly - s.Y
	if s.FlipY {
		row = s.Height - 1 - row
	}
	tile = s.TileIndex
	if s.Height == 16 {
		tile &^= 0x01
	}
	return tile, row
}

// ColorAt returns the color index of sprite pixel x (0-7), honoring FlipX.
func (s *Sprite) ColorAt(x int) uint8 {
	if s.FlipX {
		return s.Data.GetPixelFlipped(x)
	}
	return s.Data.GetPixel(x)
}

// OAMReader reads object attribute memory without bus contention.
type OAMReader interface {
	OAM(address uint16) byte
}

// SpriteMemory is what sprite selection reads: attributes and tile data.
type SpriteMemory interface {
	OAMReader
	VRAMReader
}

// OAM selects the sprites of a scanline.
type OAM struct {
	mem            SpriteMemory
	priorityBuffer SpritePriorityBuffer
	spriteBuffer   [spritesPerLine]Sprite
}

func NewOAM(mem SpriteMemory) *OAM {
	return &OAM{mem: mem}
}

// GetSpritesForScanline returns up to 10 sprites overlapping the scanline, in
// OAM order, with PixelMask resolved (lower X wins, then lower OAM index).
// Transparent pixels are never claimed, so a lower priority sprite shows
// through them. The returned slice is reused by the next call.
func (o *OAM) GetSpritesForScanline(scanline, height int) []Sprite {
	sprites := o.spriteBuffer[:0]
	o.priorityBuffer.Clear()

	for i := 0; i < spriteCount && len(sprites) < spritesPerLine; i++ {
		sprite := o.readSprite(i, height)
		if scanline < sprite.Y || scanline >= sprite.Y+height {
			continue
		}
		tile, row := sprite.Row(scanline)
		sprite.Data = FetchTileRow(o.mem, addr.TileData0+uint16(tile)*16, row)
		sprites = append(sprites, sprite)
		for px := range 8 {
			if sprite.ColorAt(px) != 0 {
				o.priorityBuffer.TryClaimPixel(sprite.X+px, sprite.OAMIndex, sprite.X)
			}
		}
	}

	for i := range sprites {
		var mask uint8
		for px := range 8 {
			if sprites[i].ColorAt(px) != 0 && o.priorityBuffer.GetOwner(sprites[i].X+px) == sprites[i].OAMIndex {
				mask |= 1 << (7 - px)
			}
		}
		sprites[i].PixelMask = mask
	}
	return sprites
}

func (o *OAM) readSprite(index, height int) Sprite {
	base := addr.OAMStart + uint16(index*4)
	sprite := Sprite{
		Y:         int(o.mem.OAM(base)) - spriteYOffset,
		X:         int(o.mem.OAM(base+1)) - spriteXOffset,
		TileIndex: o.mem.OAM(base + 2),
		Flags:     o.mem.OAM(base + 3),
		OAMIndex:  index,
		Height:    height,
	}
	sprite.parseFlags()
	return sprite
}

// GetSprite returns the sprite at index (0-39), or nil.
func (o *OAM) GetSprite(index, height int) *Sprite {
	if index < 0 || index >= spriteCount {
		return nil
	}
	sprite := o.readSprite(index, height)
	return &sprite
}
