package blargg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/timing"
)

// BlarggTestCase is one cpu_instrs ROM. The ROMs report over the serial
// port, ending with "Passed" or "Failed".
type BlarggTestCase struct {
	ROMPath   string
	MaxFrames int
	Name      string
}

func romDir() string {
	if dir := os.Getenv("BLARGG_ROMS"); dir != "" {
		return dir
	}
	return filepath.Join("..", "..", "test-roms", "blargg", "cpu_instrs", "individual")
}

func GetBlarggTests() []BlarggTestCase {
	baseDir := romDir()
	cases := []struct {
		name   string
		frames int
	}{
		{"01-special", 500},
		{"02-interrupts", 500},
		{"03-op sp,hl", 500},
		{"04-op r,imm", 500},
		{"05-op rp", 500},
		{"06-ld r,r", 500},
		{"07-jr,jp,call,ret,rst", 500},
		{"08-misc instrs", 500},
		{"09-op r,r", 1000},
		{"10-bit ops", 1000},
		{"11-op a,(hl)", 1500},
	}

	tests := make([]BlarggTestCase, 0, len(cases))
	for _, c := range cases {
		tests = append(tests, BlarggTestCase{
			ROMPath:   filepath.Join(baseDir, c.name+".gb"),
			MaxFrames: c.frames,
			Name:      c.name,
		})
	}
	return tests
}

func runBlarggTest(t *testing.T, tc BlarggTestCase) {
	if _, err := os.Stat(tc.ROMPath); os.IsNotExist(err) {
		t.Skipf("ROM file not found: %s", tc.ROMPath)
	}

	emu, err := jeebie.NewWithFile(tc.ROMPath, jeebie.Options{
		Headless: true,
		Silent:   true,
		Limiter:  timing.NewNoOpLimiter(),
		SavePath: filepath.Join(t.TempDir(), "unused.sav"),
	})
	require.NoError(t, err)

	var output string
	for range tc.MaxFrames {
		require.NoError(t, emu.RunUntilFrame())
		output = emu.SerialOutput()
		if strings.Contains(output, "Passed") || strings.Contains(output, "Failed") {
			break
		}
	}

	if !strings.Contains(output, "Passed") {
		path, err := debug.SaveFramePNG(emu.FrameBuffer(), t.TempDir(), tc.Name+"_actual")
		if err == nil {
			t.Logf("Screen saved to %s", path)
		}
		t.Errorf("%s did not pass after %d frames; serial output:\n%s", tc.Name, emu.FrameCount(), output)
	}
}

func TestBlarggCPUInstructions(t *testing.T) {
	for _, tc := range GetBlarggTests() {
		t.Run(tc.Name, func(t *testing.T) {
			runBlarggTest(t, tc)
		})
	}
}
