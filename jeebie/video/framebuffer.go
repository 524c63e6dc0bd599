package video

import (
	"image"
	"image/color"
)

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// GBColor is a 0xAARRGGBB display color.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

var shadeColors = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ByteToColor maps a shade (0 lightest, 3 darkest) to its display color.
func ByteToColor(shade uint8) GBColor {
	return shadeColors[shade&0x03]
}

// RGBA returns the color's channels.
func (c GBColor) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

// FrameBuffer holds one shade (0-3) per pixel, after palette mapping.
type FrameBuffer struct {
	pixels [FramebufferSize]uint8
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Shade returns the shade at (x, y).
func (fb *FrameBuffer) Shade(x, y int) uint8 {
	return fb.pixels[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetShade(x, y int, shade uint8) {
	fb.pixels[y*FramebufferWidth+x] = shade & 0x03
}

// GetPixel returns the display color at (x, y).
func (fb *FrameBuffer) GetPixel(x, y int) GBColor {
	return ByteToColor(fb.Shade(x, y))
}

// Clear sets every pixel to the lightest shade.
func (fb *FrameBuffer) Clear() {
	clear(fb.pixels[:])
}

// Shades exposes the raw shade plane.
func (fb *FrameBuffer) Shades() []uint8 {
	return fb.pixels[:]
}

// ToSlice converts the frame to 0xAARRGGBB colors, reusing dst when it is
// large enough.
func (fb *FrameBuffer) ToSlice(dst []uint32) []uint32 {
	if cap(dst) < FramebufferSize {
		dst = make([]uint32, FramebufferSize)
	}
	dst = dst[:FramebufferSize]
	for i, shade := range fb.pixels {
		dst[i] = uint32(shadeColors[shade])
	}
	return dst
}

// Image converts the frame to an RGBA image.
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FramebufferWidth, FramebufferHeight))
	for y := range FramebufferHeight {
		for x := range FramebufferWidth {
			img.SetRGBA(x, y, fb.GetPixel(x, y).RGBA())
		}
	}
	return img
}

// Snapshot copies the shade plane for save states.
func (fb *FrameBuffer) Snapshot() []uint8 {
	return append([]uint8(nil), fb.pixels[:]...)
}

// Restore loads a shade plane produced by Snapshot.
func (fb *FrameBuffer) Restore(shades []uint8) {
	copy(fb.pixels[:], shades)
}
