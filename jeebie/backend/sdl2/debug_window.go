//go:build sdl2

package sdl2

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	DebugWindowScale = 3
	DebugWindowTitle = "Game Boy VRAM Tiles"
)

// DebugWindow shows every tile pattern in video memory.
type DebugWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	visible  bool
}

func NewDebugWindow() *DebugWindow {
	return &DebugWindow{}
}

func (dw *DebugWindow) Init() error {
	w := debug.TilesPerRow * debug.TilePixelWidth
	h := debug.TileRows * debug.TilePixelHeight

	window, err := sdl.CreateWindow(
		DebugWindowTitle,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(w*DebugWindowScale),
		int32(h*DebugWindowScale),
		sdl.WINDOW_HIDDEN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		return err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return err
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return err
	}

	dw.window, dw.renderer, dw.texture = window, renderer, texture
	dw.pixels = make([]byte, w*h*bytesPerPixel)
	return nil
}

func (dw *DebugWindow) IsInitialized() bool { return dw.window != nil }

func (dw *DebugWindow) IsVisible() bool { return dw.visible }

// Owns reports whether id is this window's SDL id.
func (dw *DebugWindow) Owns(id uint32) bool {
	if dw.window == nil {
		return false
	}
	wid, err := dw.window.GetID()
	return err == nil && wid == id
}

func (dw *DebugWindow) SetVisible(visible bool) {
	if dw.window == nil {
		return
	}
	dw.visible = visible
	if visible {
		dw.window.Show()
	} else {
		dw.window.Hide()
	}
}

// Render redraws the tile sheet from mem when the window is visible.
func (dw *DebugWindow) Render(mem video.VRAMReader) error {
	if !dw.visible {
		return nil
	}
	sheet := debug.TileSheet(mem)
	fillImage(dw.pixels, sheet)
	if err := dw.texture.Update(nil, unsafe.Pointer(&dw.pixels[0]), sheet.Stride); err != nil {
		return fmt.Errorf("tile texture update: %w", err)
	}
	_ = dw.renderer.Clear()
	_ = dw.renderer.Copy(dw.texture, nil, nil)
	dw.renderer.Present()
	return nil
}

func (dw *DebugWindow) Cleanup() {
	if dw.texture != nil {
		dw.texture.Destroy()
	}
	if dw.renderer != nil {
		dw.renderer.Destroy()
	}
	if dw.window != nil {
		dw.window.Destroy()
	}
	*dw = DebugWindow{}
}
