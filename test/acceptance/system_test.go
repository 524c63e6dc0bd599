package acceptance_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valerio/jeebie-core/internal/romtest"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/emuerr"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const lineClocks = 456

var _ = Describe("Pixel pipeline timing", func() {
	var (
		mmu *memory.MMU
		gpu *video.GPU
	)

	BeforeEach(func() {
		mmu = memory.New()
		mmu.Write(addr.LCDC, 0x91)
		gpu = video.NewGpu(mmu)
	})

	It("advances LY once per 456 clocks and wraps after line 153", func() {
		for line := 1; line <= 2*154; line++ {
			gpu.Tick(lineClocks - 4)
			Expect(mmu.Read(addr.LY)).To(Equal(uint8((line - 1) % 154)))
			gpu.Tick(4)
			Expect(mmu.Read(addr.LY)).To(Equal(uint8(line % 154)))
		}
	})

	It("completes a frame every 70224 clocks", func() {
		Expect(video.FrameCycles).To(Equal(70224))

		gpu.Tick(144 * lineClocks)
		Expect(gpu.TakeFrame()).To(BeTrue())

		gpu.Tick(video.FrameCycles - 4)
		Expect(gpu.TakeFrame()).To(BeFalse())
		gpu.Tick(4)
		Expect(gpu.TakeFrame()).To(BeTrue())
	})
})

var _ = Describe("Work RAM", func() {
	It("reads back writes through the echo mirror", func() {
		dmg := boot(spin)
		mem := dmg.MMU()

		mem.Write(0xC123, 0x5A)
		Expect(mem.Read(0xC123)).To(Equal(uint8(0x5A)))
		Expect(mem.Read(0xC123 + addr.EchoOffset)).To(Equal(uint8(0x5A)))

		mem.Write(0xE456, 0xA5)
		Expect(mem.Read(0xC456)).To(Equal(uint8(0xA5)))
	})
})

var _ = Describe("Cartridge loading", func() {
	It("rejects an unsupported controller type", func() {
		dmg, err := jeebie.New(romtest.New(spin, romtest.WithType(0x22)), jeebie.Options{})
		Expect(dmg).To(BeNil())
		Expect(emuerr.KindOf(err)).To(Equal(emuerr.UnsupportedCart))
		Expect(emuerr.ExitCode(err)).To(Equal(4))
	})

	It("rejects a bad header checksum", func() {
		_, err := jeebie.New(romtest.New(spin, romtest.WithBadChecksum()), jeebie.Options{})
		Expect(emuerr.KindOf(err)).To(Equal(emuerr.HeaderChecksum))
	})
})

var _ = Describe("Instruction execution", func() {
	It("runs LD A,5 then INC A", func() {
		dmg := boot([]byte{0x3E, 0x05, 0x3C})
		steps(dmg, 2)

		regs := dmg.CPU().Registers()
		Expect(regs.A).To(Equal(uint8(6)))
		Expect(regs.Flags().Zero()).To(BeFalse())
		Expect(dmg.CPU().PC()).To(Equal(uint16(0x0103)))
	})

	It("repeats the byte after HALT when IME is clear and an interrupt is pending", func() {
		// DI ; HALT ; INC A ; NOP
		dmg := boot([]byte{0xF3, 0x76, 0x3C, 0x00})
		dmg.MMU().Write(addr.IE, 0x04)
		dmg.MMU().Write(addr.IF, 0x04)
		a := dmg.CPU().Registers().A

		steps(dmg, 2)
		Expect(dmg.CPU().Halted()).To(BeFalse())

		steps(dmg, 1)
		Expect(dmg.CPU().PC()).To(Equal(uint16(0x0102)))
		steps(dmg, 1)
		Expect(dmg.CPU().PC()).To(Equal(uint16(0x0103)))
		Expect(dmg.CPU().Registers().A).To(Equal(a + 2))
	})

	It("stops on an undefined opcode without advancing", func() {
		dmg := boot([]byte{0x00, 0xD3})
		steps(dmg, 1)

		_, err := dmg.Step()
		Expect(err).To(MatchError(emuerr.Of(emuerr.InvalidOpcode)))
		Expect(dmg.CPU().PC()).To(Equal(uint16(0x0101)))
	})
})

var _ = Describe("OAM DMA", func() {
	It("copies 160 bytes while stalling the CPU for 640 clocks", func() {
		// LD A,C1 ; LDH (46),A ; JR -2
		dmg := boot([]byte{0x3E, 0xC1, 0xE0, 0x46, 0x18, 0xFE})
		for i := range uint16(addr.OAMSize) {
			dmg.MMU().Write(0xC100+i, uint8(i)^0x5A)
		}

		steps(dmg, 2)
		Expect(dmg.MMU().DMAActive()).To(BeTrue())

		stalled := 0
		for dmg.MMU().DMAActive() {
			cycles, err := dmg.Step()
			Expect(err).NotTo(HaveOccurred())
			stalled += cycles
			Expect(stalled).To(BeNumerically("<=", 1000))
		}

		Expect(stalled).To(Equal(640))
		Expect(dmg.CPU().PC()).To(Equal(uint16(0x0104)))
		for i := range uint16(addr.OAMSize) {
			Expect(dmg.MMU().OAM(addr.OAMStart + i)).To(Equal(uint8(i) ^ 0x5A))
		}
	})
})

var _ = Describe("Square channel length counter", func() {
	const sequencerStep = 8192

	It("silences the channel on the Nth length clock", func() {
		apu := audio.New()
		apu.WriteRegister(addr.NR22, 0xF0)
		apu.WriteRegister(addr.NR21, 60) // 4 length clocks
		apu.WriteRegister(addr.NR24, 0xC0)
		Expect(apu.Channel(2).Active()).To(BeTrue())

		// length is clocked on sequencer steps 0, 2, 4 and 6
		for i := 1; i <= 7; i++ {
			apu.Tick(sequencerStep)
			Expect(apu.Channel(2).Active()).To(Equal(i < 7), "after sequencer step %d", i)
		}
		Expect(apu.ReadRegister(addr.NR52) & 0x02).To(BeZero())
	})
})

var _ = Describe("Save states", func() {
	// tone triggers channel 2 then keeps bumping a WRAM counter.
	tone := []byte{
		0x3E, 0xF0, 0xE0, 0x17, // LD A,F0 ; LDH (NR22),A
		0x3E, 0x87, 0xE0, 0x19, // LD A,87 ; LDH (NR24),A
		0x21, 0x00, 0xC0, // LD HL,C000
		0x34,       // INC (HL)
		0x18, 0xFD, // JR -3
	}

	record := func(dmg *jeebie.DMG, frames int) (pics [][]uint8, samples []int16) {
		buf := make([]int16, 4096)
		for range frames {
			Expect(dmg.RunUntilFrame()).To(Succeed())
			pics = append(pics, dmg.FrameBuffer().Snapshot())
			for n := dmg.APU().ReadSamples(buf); n > 0; n = dmg.APU().ReadSamples(buf) {
				samples = append(samples, buf[:n]...)
			}
		}
		return pics, samples
	}

	It("replays bit-identical output after a restore", func() {
		dmg := boot(tone, romtest.WithTitle("REPLAY"))
		record(dmg, 4)

		var state bytes.Buffer
		Expect(dmg.SaveState(&state)).To(Succeed())
		counter := dmg.MMU().Read(0xC000)

		pics, samples := record(dmg, 3)
		Expect(samples).NotTo(BeEmpty())

		fresh := boot(tone, romtest.WithTitle("REPLAY"))
		Expect(fresh.LoadState(bytes.NewReader(state.Bytes()))).To(Succeed())
		Expect(fresh.MMU().Read(0xC000)).To(Equal(counter))

		replayPics, replaySamples := record(fresh, 3)
		Expect(replayPics).To(Equal(pics))
		Expect(replaySamples).To(Equal(samples))
		Expect(fresh.CPU().State()).To(Equal(dmg.CPU().State()))
	})

	It("refuses a state saved from another cartridge", func() {
		var state bytes.Buffer
		Expect(boot(spin, romtest.WithTitle("FIRST")).SaveState(&state)).To(Succeed())

		err := boot(spin, romtest.WithTitle("SECOND")).LoadState(&state)
		Expect(err).To(MatchError(ContainSubstring("FIRST")))
	})
})
