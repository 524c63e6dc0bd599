package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

func newTestGPU(t *testing.T, lcdc uint8) (*GPU, *memory.MMU) {
	t.Helper()
	mmu := memory.New()
	mmu.Write(addr.LCDC, lcdc)
	mmu.Write(addr.BGP, 0xE4)
	mmu.Write(addr.OBP0, 0xE4)
	mmu.Write(addr.OBP1, 0x1B)
	return NewGpu(mmu), mmu
}

func lcdMode(mmu *memory.MMU) Mode {
	return Mode(mmu.Read(addr.STAT) & 0x03)
}

func requested(mmu *memory.MMU, irq addr.Interrupt) bool {
	return addr.Interrupt(mmu.Read(addr.IF)).Has(irq)
}

func TestScanlineTiming(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)

	for n := 1; n <= totalLines*2; n++ {
		for range lineCycles / 4 {
			gpu.Tick(4)
		}
		require.Equal(t, uint8(n%totalLines), mmu.Read(addr.LY), "after %d lines", n)
	}

	assert.Equal(t, uint64(2), gpu.Frames())
	assert.Equal(t, 70224, FrameCycles)
}

func TestLargeTickMatchesSmallTicks(t *testing.T) {
	big, bigMMU := newTestGPU(t, 0x91)
	small, smallMMU := newTestGPU(t, 0x91)

	big.Tick(FrameCycles + 1000)
	for range (FrameCycles + 1000) / 4 {
		small.Tick(4)
	}

	assert.Equal(t, small.State(), big.State())
	assert.Equal(t, smallMMU.Read(addr.LY), bigMMU.Read(addr.LY))
}

func TestModeSequence(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)

	gpu.Tick(79)
	assert.Equal(t, OAMScan, lcdMode(mmu))
	gpu.Tick(1)
	assert.Equal(t, PixelTransfer, lcdMode(mmu))
	gpu.Tick(171)
	assert.Equal(t, PixelTransfer, lcdMode(mmu))
	gpu.Tick(1)
	assert.Equal(t, HBlank, lcdMode(mmu))
	gpu.Tick(lineCycles - 80 - 172)
	assert.Equal(t, OAMScan, lcdMode(mmu))
	assert.Equal(t, uint8(1), mmu.Read(addr.LY))
}

func TestVBlank(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)

	gpu.Tick(visibleLines*lineCycles - 4)
	assert.False(t, requested(mmu, addr.VBlankInterrupt))
	assert.False(t, gpu.TakeFrame())

	gpu.Tick(4)
	assert.True(t, requested(mmu, addr.VBlankInterrupt))
	assert.Equal(t, VBlank, lcdMode(mmu))
	assert.True(t, gpu.TakeFrame())
	assert.False(t, gpu.TakeFrame(), "a frame is reported once")

	gpu.Tick(10 * lineCycles)
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, OAMScan, lcdMode(mmu))
}

func TestSTATInterrupts(t *testing.T) {
	testCases := []struct {
		desc   string
		stat   uint8
		before int
		at     int
	}{
		{"hblank", 0x08, 80 + 172 - 1, 80 + 172},
		{"oam scan", 0x20, lineCycles - 1, lineCycles},
		{"vblank", 0x10, visibleLines*lineCycles - 1, visibleLines * lineCycles},
		{"lyc", 0x40, 5*lineCycles - 1, 5 * lineCycles},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gpu, mmu := newTestGPU(t, 0x91)
			mmu.Write(addr.LYC, 5)
			mmu.Write(addr.STAT, tc.stat)
			gpu.Tick(1)
			mmu.Write(addr.IF, 0)

			gpu.Tick(tc.before - 1)
			assert.False(t, requested(mmu, addr.LCDSTATInterrupt))

			gpu.Tick(tc.at - tc.before)
			assert.True(t, requested(mmu, addr.LCDSTATInterrupt))
		})
	}
}

func TestLYCCoincidenceFlag(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)
	mmu.Write(addr.LYC, 2)

	gpu.Tick(lineCycles)
	assert.False(t, LCDStatus(mmu.Read(addr.STAT)).Coincidence())
	gpu.Tick(lineCycles)
	assert.True(t, LCDStatus(mmu.Read(addr.STAT)).Coincidence())
	gpu.Tick(lineCycles)
	assert.False(t, LCDStatus(mmu.Read(addr.STAT)).Coincidence())
}

func TestSTATLineFiresOnRisingEdgeOnly(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)
	mmu.Write(addr.LYC, 0)
	mmu.Write(addr.STAT, 0x48)
	gpu.Tick(1)
	require.True(t, requested(mmu, addr.LCDSTATInterrupt))
	mmu.Write(addr.IF, 0)

	// hblank begins while LYC already holds the line high
	gpu.Tick(80 + 172 - 1)
	assert.Equal(t, HBlank, lcdMode(mmu))
	assert.False(t, requested(mmu, addr.LCDSTATInterrupt))

	gpu.Tick(lineCycles - 80 - 172)
	assert.Equal(t, uint8(1), mmu.Read(addr.LY))
	assert.False(t, requested(mmu, addr.LCDSTATInterrupt))
	gpu.Tick(80 + 172)
	assert.True(t, requested(mmu, addr.LCDSTATInterrupt), "line 1 hblank is a new edge")
}

func TestTransferLength(t *testing.T) {
	tenSprites := make([]Sprite, spritesPerLine)
	for i := range tenSprites {
		tenSprites[i].X = 1
	}
	testCases := []struct {
		desc    string
		scx     uint8
		window  bool
		sprites []Sprite
		want    int
	}{
		{"plain", 0, false, nil, 172},
		{"fine scroll", 3, false, nil, 175},
		{"window", 0, true, nil, 178},
		{"aligned sprite", 0, false, []Sprite{{X: 0}}, 183},
		{"unaligned sprite", 0, false, []Sprite{{X: 6}}, 178},
		{"offscreen sprite", 0, false, []Sprite{{X: -3}}, 178},
		{"capped", 7, true, tenSprites, 289},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, transferLength(tc.scx, tc.window, tc.sprites), tc.desc)
	}
}

func TestLCDOff(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)
	gpu.Tick(3 * lineCycles)
	gpu.TakeFrame()
	mmu.Write(addr.IF, 0)

	mmu.Write(addr.LCDC, 0x11)
	gpu.Tick(4)
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, HBlank, lcdMode(mmu))

	gpu.Tick(FrameCycles)
	assert.True(t, gpu.TakeFrame(), "frames keep coming while the LCD is off")
	assert.False(t, requested(mmu, addr.VBlankInterrupt))
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))

	mmu.Write(addr.LCDC, 0x91)
	gpu.Tick(4)
	assert.Equal(t, OAMScan, lcdMode(mmu))
}

func TestGPUStateRoundTrip(t *testing.T) {
	gpu, mmu := newTestGPU(t, 0x91)
	writeSolidTile(mmu, addr.TileData0+16, 2)
	mmu.Write(addr.TileMap0, 1)
	gpu.Tick(FrameCycles + 12345)

	other := NewGpu(mmu)
	require.NoError(t, other.SetState(gpu.State()))
	assert.Equal(t, gpu.State(), other.State())
	assert.Equal(t, uint8(2), other.FrameBuffer().Shade(0, 0))

	gpu.Tick(5000)
	other.Tick(5000)
	assert.Equal(t, gpu.State(), other.State())

	bad := gpu.State()
	bad.Frame = bad.Frame[:10]
	assert.Error(t, other.SetState(bad))
}
