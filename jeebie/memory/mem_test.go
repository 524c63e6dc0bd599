package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-core/internal/romtest"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

func TestWRAMAndEcho(t *testing.T) {
	mmu := New()

	for a := uint32(addr.WRAMStart); a <= uint32(addr.WRAMEnd); a += 0x101 {
		v := uint8(a ^ a>>8)
		mmu.Write(uint16(a), v)
		assert.Equal(t, v, mmu.Read(uint16(a)))
		if a+uint32(addr.EchoOffset) <= uint32(addr.EchoEnd) {
			assert.Equal(t, v, mmu.Read(uint16(a)+addr.EchoOffset), "echo of 0x%04X", a)
		}
	}

	mmu.Write(0xFDFF, 0x5A)
	assert.Equal(t, uint8(0x5A), mmu.Read(0xDDFF), "echo writes land in WRAM")
}

func TestHRAMAndIE(t *testing.T) {
	mmu := New()
	mmu.Write(0xFF80, 0x11)
	mmu.Write(0xFFFE, 0x22)
	mmu.Write(addr.IE, 0x1F)

	assert.Equal(t, uint8(0x11), mmu.Read(0xFF80))
	assert.Equal(t, uint8(0x22), mmu.Read(0xFFFE))
	assert.Equal(t, uint8(0x1F), mmu.Read(addr.IE))
}

func TestROMWritesAreBankCommands(t *testing.T) {
	cart, err := NewCartridgeWithData(romtest.New(nil, romtest.WithType(0x01), romtest.WithROMSizeCode(2), romtest.WithBankMarkers()))
	require.NoError(t, err)
	mmu := NewWithCartridge(cart)

	before := mmu.Read(0x2000)
	mmu.Write(0x2000, 0x03)

	assert.Equal(t, before, mmu.Read(0x2000), "ROM content unchanged")
	assert.Equal(t, uint8(3), mmu.Read(0x4000), "bank 3 mapped")
}

func TestInterruptFlags(t *testing.T) {
	mmu := New()

	assert.Equal(t, uint8(0xE0), mmu.Read(addr.IF), "unused bits read as 1")

	mmu.RequestInterrupt(addr.TimerInterrupt)
	assert.Equal(t, uint8(0xE4), mmu.Read(addr.IF))
	assert.Equal(t, addr.Interrupt(0), mmu.PendingInterrupts(), "not enabled")

	mmu.Write(addr.IE, uint8(addr.TimerInterrupt))
	assert.Equal(t, addr.TimerInterrupt, mmu.PendingInterrupts())

	mmu.Write(addr.IF, 0xFF)
	assert.Equal(t, uint8(0xFF), mmu.Read(addr.IF))
	mmu.Write(addr.IF, 0x00)
	assert.Equal(t, uint8(0xE0), mmu.Read(addr.IF))
}

func TestSTATWritableBits(t *testing.T) {
	mmu := New()
	mmu.SetLCDMode(2)
	mmu.SetCoincidence(true)

	mmu.Write(addr.STAT, 0xFF)
	assert.Equal(t, uint8(0xFE), mmu.Read(addr.STAT), "mode and coincidence keep PPU values")

	mmu.Write(addr.STAT, 0x00)
	assert.Equal(t, uint8(0x86), mmu.Read(addr.STAT))
}

func TestLYIsReadOnly(t *testing.T) {
	mmu := New()
	mmu.SetLY(42)
	mmu.Write(addr.LY, 0)
	assert.Equal(t, uint8(42), mmu.Read(addr.LY))
}

func TestVRAMBlockedDuringTransfer(t *testing.T) {
	mmu := New()
	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(0x8000, 0x12)
	mmu.Write(addr.OAMStart, 0x34)

	mmu.SetLCDMode(3)
	assert.Equal(t, uint8(0xFF), mmu.Read(0x8000))
	assert.Equal(t, uint8(0xFF), mmu.Read(addr.OAMStart))
	mmu.Write(0x8000, 0x99)
	mmu.Write(addr.OAMStart, 0x99)
	assert.Equal(t, uint8(0x12), mmu.VRAM(0x8000), "PPU still sees VRAM")
	assert.Equal(t, uint8(0x34), mmu.OAM(addr.OAMStart))

	mmu.SetLCDMode(0)
	assert.Equal(t, uint8(0x12), mmu.Read(0x8000))

	mmu.Write(addr.LCDC, 0x11)
	mmu.SetLCDMode(3)
	assert.Equal(t, uint8(0x12), mmu.Read(0x8000), "no contention with the LCD off")
}

func TestUnusableArea(t *testing.T) {
	mmu := New()
	mmu.Write(0xFEA0, 0x55)
	assert.Equal(t, uint8(0x00), mmu.Read(0xFEA0))
}

func TestDMA(t *testing.T) {
	mmu := New()
	for i := range uint16(addr.OAMSize) {
		mmu.Write(0xC100+i, uint8(i)^0xA5)
	}

	mmu.Write(addr.DMA, 0xC1)
	assert.True(t, mmu.DMAActive())

	// clocks of the instruction that started the transfer
	mmu.Tick(12)
	assert.Equal(t, uint8(0), mmu.OAM(addr.OAMStart))

	steps := 0
	for mmu.DMAActive() {
		mmu.Tick(4)
		steps++
		require.LessOrEqual(t, steps, 200)
	}

	assert.Equal(t, 160, steps)
	for i := range uint16(addr.OAMSize) {
		assert.Equal(t, uint8(i)^0xA5, mmu.OAM(addr.OAMStart+i))
	}
	assert.Equal(t, uint8(0xC1), mmu.Read(addr.DMA))
}

func TestJoypad(t *testing.T) {
	mmu := New()

	mmu.Write(addr.P1, 0x20) // select d-pad
	assert.Equal(t, uint8(0xEF), mmu.Read(addr.P1))

	mmu.HandleKeyPress(JoypadDown)
	assert.Equal(t, uint8(0xE7), mmu.Read(addr.P1))
	assert.Equal(t, uint8(0xF0), mmu.Read(addr.IF)&0xF0, "press raises joypad interrupt")

	mmu.Write(addr.IF, 0)
	mmu.HandleKeyPress(JoypadDown)
	assert.Equal(t, uint8(0xE0), mmu.Read(addr.IF), "holding is not a new press")

	mmu.Write(addr.P1, 0x10) // select actions
	assert.Equal(t, uint8(0xDF), mmu.Read(addr.P1))

	mmu.SetButtons(Of(JoypadA, JoypadStart))
	assert.Equal(t, uint8(0xD6), mmu.Read(addr.P1))

	mmu.HandleKeyRelease(JoypadStart)
	assert.Equal(t, uint8(0xDE), mmu.Read(addr.P1))

	mmu.Write(addr.P1, 0x30)
	assert.Equal(t, uint8(0xFF), mmu.Read(addr.P1), "nothing selected")
}

func TestSerialRaisesInterrupt(t *testing.T) {
	mmu := New()
	mmu.Write(addr.SB, 'P')
	mmu.Write(addr.SC, 0x81)
	assert.Equal(t, uint8(0xE8), mmu.Read(addr.IF))
}

type fakeAudio struct {
	regs map[uint16]byte
}

func (f *fakeAudio) ReadRegister(address uint16) byte         { return f.regs[address] | 0x01 }
func (f *fakeAudio) WriteRegister(address uint16, value byte) { f.regs[address] = value }

func TestAudioRouting(t *testing.T) {
	audio := &fakeAudio{regs: map[uint16]byte{}}
	mmu := New(WithAudio(audio))

	mmu.Write(addr.NR12, 0xF0)
	assert.Equal(t, byte(0xF0), audio.regs[addr.NR12])
	assert.Equal(t, byte(0xF1), mmu.Read(addr.NR12))
}

func TestStateRoundTrip(t *testing.T) {
	cart, err := NewCartridgeWithData(romtest.New(nil, romtest.WithType(0x03), romtest.WithRAMSizeCode(2)))
	require.NoError(t, err)
	mmu := NewWithCartridge(cart)
	mmu.Write(0xC000, 1)
	mmu.Write(0x8000, 2)
	mmu.Write(0x0000, 0x0A)
	mmu.Write(0xA000, 3)
	mmu.Write(addr.TAC, 0x05)
	mmu.Tick(1000)
	mmu.HandleKeyPress(JoypadB)

	cart2, err := NewCartridgeWithData(romtest.New(nil, romtest.WithType(0x03), romtest.WithRAMSizeCode(2)))
	require.NoError(t, err)
	restored := NewWithCartridge(cart2)
	require.NoError(t, restored.SetState(mmu.State()))

	assert.Equal(t, mmu.State(), restored.State())
	assert.Equal(t, uint8(3), restored.Read(0xA000))
}

func TestStateRejectsOtherCartridgeKind(t *testing.T) {
	cart, err := NewCartridgeWithData(romtest.New(nil, romtest.WithType(0x13)))
	require.NoError(t, err)

	err = New().SetState(NewWithCartridge(cart).State())
	assert.Error(t, err)
}
