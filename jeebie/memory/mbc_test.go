package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bankedROM returns a ROM where every byte holds its bank number.
func bankedROM(banks int) []uint8 {
	rom := make([]uint8, banks*romBankSize)
	for i := range rom {
		rom[i] = uint8(i / romBankSize)
	}
	return rom
}

func TestMBC1(t *testing.T) {
	t.Run("ROM bank 0 is fixed", func(t *testing.T) {
		rom := make([]uint8, 0x8000)
		for i := range rom {
			rom[i] = uint8(i & 0xFF)
		}
		mbc := newMBC1(rom, 0)

		for a := uint16(0x0000); a < 0x4000; a += 0x111 {
			assert.Equal(t, uint8(a&0xFF), mbc.ReadROM(a))
		}
	})

	t.Run("ROM bank switching", func(t *testing.T) {
		mbc := newMBC1(bankedROM(4), 0)

		testCases := []struct {
			desc  string
			write uint8
			want  uint8
		}{
			{"bank 2", 2, 2},
			{"bank 3", 3, 3},
			{"bank 0 reads as 1", 0, 1},
			{"bank 0x20 low bits are zero, reads as 1", 0x20, 1},
			{"bank past the end wraps", 6, 2},
		}
		assert.Equal(t, uint8(1), mbc.ReadROM(0x4000), "default bank")
		for _, tc := range testCases {
			t.Run(tc.desc, func(t *testing.T) {
				mbc.WriteControl(0x2000, tc.write)
				assert.Equal(t, tc.want, mbc.ReadROM(0x4000))
			})
		}
	})

	t.Run("upper bits extend the ROM bank", func(t *testing.T) {
		mbc := newMBC1(bankedROM(64), 0)
		mbc.WriteControl(0x2000, 0x05)
		mbc.WriteControl(0x4000, 0x01)

		assert.Equal(t, uint8(0x25), mbc.ReadROM(0x4000))
		assert.Equal(t, uint8(0), mbc.ReadROM(0x0000), "mode 0 keeps bank 0 fixed")

		mbc.WriteControl(0x6000, 0x01)
		assert.Equal(t, uint8(0x20), mbc.ReadROM(0x0000), "mode 1 applies BANK2 to the low area")
	})

	t.Run("RAM gating", func(t *testing.T) {
		mbc := newMBC1(make([]uint8, 0x8000), 4*ramBankSize)

		assert.Equal(t, uint8(0xFF), mbc.ReadRAM(0xA000), "disabled by default")
		mbc.WriteRAM(0xA000, 0x42)
		mbc.WriteControl(0x0000, 0x0A)
		assert.Equal(t, uint8(0x00), mbc.ReadRAM(0xA000), "write while disabled was dropped")

		mbc.WriteRAM(0xA000, 0x42)
		assert.Equal(t, uint8(0x42), mbc.ReadRAM(0xA000))

		mbc.WriteControl(0x0000, 0x00)
		assert.Equal(t, uint8(0xFF), mbc.ReadRAM(0xA000))
	})

	t.Run("RAM banks in mode 1", func(t *testing.T) {
		mbc := newMBC1(make([]uint8, 0x8000), 4*ramBankSize)
		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteControl(0x6000, 0x01)

		for bank := uint8(0); bank < 4; bank++ {
			mbc.WriteControl(0x4000, bank)
			mbc.WriteRAM(0xA000, 0x40+bank)
		}
		for bank := uint8(0); bank < 4; bank++ {
			mbc.WriteControl(0x4000, bank)
			assert.Equal(t, 0x40+bank, mbc.ReadRAM(0xA000))
		}

		mbc.WriteControl(0x6000, 0x00)
		assert.Equal(t, uint8(0x40), mbc.ReadRAM(0xA000), "mode 0 always uses RAM bank 0")
	})

	t.Run("ROM writes never change ROM", func(t *testing.T) {
		rom := bankedROM(2)
		mbc := newMBC1(rom, 0)
		mbc.WriteControl(0x0100, 0xAA)
		mbc.WriteControl(0x7FFF, 0xAA)
		assert.Equal(t, uint8(0), rom[0x0100])
		assert.Equal(t, uint8(1), rom[0x7FFF])
	})
}

func TestMBC2(t *testing.T) {
	mbc := newMBC2(bankedROM(16))

	t.Run("bank select needs address bit 8", func(t *testing.T) {
		mbc.WriteControl(0x2000, 0x05)
		assert.Equal(t, uint8(1), mbc.ReadROM(0x4000))
		mbc.WriteControl(0x2100, 0x05)
		assert.Equal(t, uint8(5), mbc.ReadROM(0x4000))
		mbc.WriteControl(0x2100, 0x00)
		assert.Equal(t, uint8(1), mbc.ReadROM(0x4000))
	})

	t.Run("nibble RAM echoes", func(t *testing.T) {
		mbc.WriteControl(0x0100, 0x0A)
		assert.Equal(t, uint8(0xFF), mbc.ReadRAM(0xA000), "enable needs bit 8 clear")

		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteRAM(0xA001, 0xAB)
		assert.Equal(t, uint8(0xFB), mbc.ReadRAM(0xA001))
		assert.Equal(t, uint8(0xFB), mbc.ReadRAM(0xA201), "mirrors every 512 bytes")
	})
}

func TestMBC3(t *testing.T) {
	t.Run("7-bit ROM bank", func(t *testing.T) {
		mbc := newMBC3(bankedROM(128), 0, false)
		mbc.WriteControl(0x2000, 0x7F)
		assert.Equal(t, uint8(0x7F), mbc.ReadROM(0x4000))
		mbc.WriteControl(0x2000, 0x00)
		assert.Equal(t, uint8(0x01), mbc.ReadROM(0x4000))
	})

	t.Run("RTC registers need latch", func(t *testing.T) {
		mbc := newMBC3(bankedROM(2), 4*ramBankSize, true)
		mbc.WriteControl(0x0000, 0x0A)

		mbc.WriteControl(0x4000, 0x08)
		mbc.WriteRAM(0xA000, 30)
		assert.Equal(t, uint8(0), mbc.ReadRAM(0xA000), "not latched yet")

		mbc.Tick(rtcClocksPerSecond * 2)
		mbc.WriteControl(0x6000, 0x00)
		mbc.WriteControl(0x6000, 0x01)
		assert.Equal(t, uint8(32), mbc.ReadRAM(0xA000))

		mbc.Tick(rtcClocksPerSecond)
		assert.Equal(t, uint8(32), mbc.ReadRAM(0xA000), "latched value holds")
	})

	t.Run("latch needs 0 then 1", func(t *testing.T) {
		mbc := newMBC3(bankedROM(2), 0, true)
		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteControl(0x4000, 0x08)
		mbc.Tick(rtcClocksPerSecond * 5)

		mbc.WriteControl(0x6000, 0x01)
		assert.Equal(t, uint8(0), mbc.ReadRAM(0xA000))
	})

	t.Run("RAM banks", func(t *testing.T) {
		mbc := newMBC3(bankedROM(2), 4*ramBankSize, false)
		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteControl(0x4000, 0x02)
		mbc.WriteRAM(0xA123, 0x77)
		mbc.WriteControl(0x4000, 0x00)
		assert.Equal(t, uint8(0x00), mbc.ReadRAM(0xA123))
		mbc.WriteControl(0x4000, 0x02)
		assert.Equal(t, uint8(0x77), mbc.ReadRAM(0xA123))
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		mbc := newMBC3(bankedROM(8), ramBankSize, true)
		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteControl(0x2000, 0x05)
		mbc.WriteRAM(0xA000, 0x99)
		mbc.Tick(rtcClocksPerSecond * 61)

		other := newMBC3(bankedROM(8), ramBankSize, true)
		other.Restore(mbc.Snapshot())

		assert.Equal(t, mbc.Snapshot(), other.Snapshot())
		assert.Equal(t, uint8(5), other.ReadROM(0x4000))
		assert.Equal(t, uint8(0x99), other.ReadRAM(0xA000))
	})
}

func TestMBC5(t *testing.T) {
	mbc := newMBC5(bankedROM(512), 16*ramBankSize, false)

	t.Run("9-bit bank, 0 selectable", func(t *testing.T) {
		mbc.WriteControl(0x2000, 0x00)
		assert.Equal(t, uint8(0), mbc.ReadROM(0x4000))

		mbc.WriteControl(0x2000, 0x02)
		mbc.WriteControl(0x3000, 0x01)
		assert.Equal(t, uint8(0x02), mbc.ReadROM(0x4000), "bank 0x102 stores 0x102 truncated")
		assert.Equal(t, uint16(0x102), mbc.romBank)
	})

	t.Run("RAM banks", func(t *testing.T) {
		mbc.WriteControl(0x0000, 0x0A)
		mbc.WriteControl(0x4000, 0x0F)
		mbc.WriteRAM(0xBFFF, 0x12)
		mbc.WriteControl(0x4000, 0x00)
		assert.NotEqual(t, uint8(0x12), mbc.ReadRAM(0xBFFF))
		mbc.WriteControl(0x4000, 0x0F)
		assert.Equal(t, uint8(0x12), mbc.ReadRAM(0xBFFF))
	})

	t.Run("rumble bit", func(t *testing.T) {
		rumble := newMBC5(bankedROM(2), 4*ramBankSize, true)
		rumble.WriteControl(0x4000, 0x09)
		assert.True(t, rumble.Rumbling())
		assert.Equal(t, uint8(0x01), rumble.ramBank)
	})
}

func TestNoMBC(t *testing.T) {
	mbc := newNoMBC(bankedROM(2), 0)
	assert.Equal(t, uint8(1), mbc.ReadROM(0x4000))
	mbc.WriteControl(0x2000, 0x05)
	assert.Equal(t, uint8(1), mbc.ReadROM(0x4000))
	assert.Equal(t, uint8(0xFF), mbc.ReadRAM(0xA000), "no RAM present")

	withRAM := newNoMBC(bankedROM(2), ramBankSize)
	withRAM.WriteRAM(0xA010, 0x33)
	assert.Equal(t, uint8(0x33), withRAM.ReadRAM(0xA010))
}
