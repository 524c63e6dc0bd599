package video

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileAddress(t *testing.T) {
	testCases := []struct {
		lcdc  LCDControl
		index uint8
		want  uint16
	}{
		{0x91, 0x00, 0x8000},
		{0x91, 0x01, 0x8010},
		{0x91, 0xFF, 0x8FF0},
		{0x81, 0x00, 0x9000},
		{0x81, 0x7F, 0x97F0},
		{0x81, 0x80, 0x8800},
		{0x81, 0xFF, 0x8FF0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.lcdc.TileAddress(tc.index), "lcdc %02X tile %02X", uint8(tc.lcdc), tc.index)
	}
}

func TestLCDControlBits(t *testing.T) {
	lcdc := LCDControl(0xFF)
	assert.True(t, lcdc.Enabled())
	assert.True(t, lcdc.BackgroundOn())
	assert.True(t, lcdc.SpritesOn())
	assert.True(t, lcdc.WindowOn())
	assert.Equal(t, 16, lcdc.SpriteHeight())
	assert.Equal(t, uint16(0x9C00), lcdc.BackgroundMap())
	assert.Equal(t, uint16(0x9C00), lcdc.WindowMap())

	lcdc = LCDControl(0x00)
	assert.False(t, lcdc.Enabled())
	assert.Equal(t, 8, lcdc.SpriteHeight())
	assert.Equal(t, uint16(0x9800), lcdc.BackgroundMap())
	assert.Equal(t, uint16(0x9800), lcdc.WindowMap())
}

func TestLCDStatusBits(t *testing.T) {
	stat := LCDStatus(0x7F)
	assert.Equal(t, PixelTransfer, stat.Mode())
	assert.True(t, stat.Coincidence())
	assert.True(t, stat.LYCIRQ())
	for _, m := range []Mode{HBlank, VBlank, OAMScan} {
		assert.True(t, stat.ModeIRQ(m), m.String())
	}
	assert.False(t, stat.ModeIRQ(PixelTransfer))

	assert.False(t, LCDStatus(0x00).ModeIRQ(OAMScan))
}

func TestPaletteShade(t *testing.T) {
	testCases := []struct {
		palette uint8
		index   uint8
		want    uint8
	}{
		{0xE4, 0, 0},
		{0xE4, 1, 1},
		{0xE4, 2, 2},
		{0xE4, 3, 3},
		{0x1B, 0, 3},
		{0x1B, 1, 2},
		{0x1B, 2, 1},
		{0x1B, 3, 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, paletteShade(tc.palette, tc.index), "palette %02X color %d", tc.palette, tc.index)
	}
}

func TestFrameBufferColors(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetShade(0, 0, 0)
	fb.SetShade(1, 0, 1)
	fb.SetShade(2, 0, 2)
	fb.SetShade(159, 143, 3)

	pixels := fb.ToSlice(nil)
	assert.Len(t, pixels, FramebufferSize)
	assert.Equal(t, uint32(WhiteColor), pixels[0])
	assert.Equal(t, uint32(LightGreyColor), pixels[1])
	assert.Equal(t, uint32(DarkGreyColor), pixels[2])
	assert.Equal(t, uint32(BlackColor), pixels[FramebufferSize-1])

	reused := fb.ToSlice(pixels)
	assert.Equal(t, &pixels[0], &reused[0])

	img := fb.Image()
	assert.Equal(t, color.RGBA{R: 0x98, G: 0x98, B: 0x98, A: 0xFF}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{A: 0xFF}, img.RGBAAt(159, 143))

	restored := NewFrameBuffer()
	restored.Restore(fb.Snapshot())
	assert.Equal(t, fb.Shades(), restored.Shades())

	fb.Clear()
	assert.Equal(t, uint8(0), fb.Shade(159, 143))
}

func TestTileRowPixels(t *testing.T) {
	row := TileRow{Low: 0x3C, High: 0x7E}
	want := []uint8{0, 2, 3, 3, 3, 3, 2, 0}
	for x, c := range want {
		assert.Equal(t, c, row.GetPixel(x), "pixel %d", x)
		assert.Equal(t, c, row.GetPixelFlipped(7-x), "flipped pixel %d", 7-x)
	}

	checkered := TileRow{Low: 0xAA}
	assert.Equal(t, uint8(1), checkered.GetPixel(0))
	assert.Equal(t, uint8(0), checkered.GetPixel(1))
}
