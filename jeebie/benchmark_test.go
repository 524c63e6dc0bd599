package jeebie

import (
	"testing"

	"github.com/valerio/jeebie-core/internal/romtest"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/timing"
)

// busyLoop turns the LCD on with a tile map, then loops over arithmetic,
// keeping every subsystem active.
var busyLoop = []byte{
	0x3E, 0x91, // LD A,$91
	0xE0, 0x40, // LDH (LCDC),A
	0x21, 0x00, 0xC0, // LD HL,$C000
	0x3C,       // INC A
	0x77,       // LD (HL),A
	0x2C,       // INC L
	0xCB, 0x27, // SLA A
	0x18, 0xF9, // JR -7
}

func BenchmarkEmulatorHeadless(b *testing.B) {
	for _, tc := range []struct {
		name   string
		frames int
	}{
		{"frames_100", 100},
		{"frames_1000", 1000},
	} {
		b.Run(tc.name, func(b *testing.B) {
			emu, err := New(romtest.New(busyLoop), Options{Headless: true, Limiter: timing.NewNoOpLimiter()})
			if err != nil {
				b.Fatalf("Failed to create emulator: %v", err)
			}

			hBackend := headless.New(0, headless.SnapshotConfig{})
			if err := hBackend.Init(backend.Config{Title: "Benchmark", Audio: emu.Audio()}); err != nil {
				b.Fatalf("Failed to initialize backend: %v", err)
			}
			defer hBackend.Cleanup()

			b.ReportAllocs()

			for b.Loop() {
				for range tc.frames {
					if err := emu.RunUntilFrame(); err != nil {
						b.Fatalf("emulation stopped: %v", err)
					}
					if _, err := hBackend.Update(emu.FrameBuffer()); err != nil {
						b.Fatalf("Backend update failed: %v", err)
					}
				}
			}
		})
	}
}
