package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/timing"
)

const (
	backendTerminal = "terminal"
	backendSDL2     = "sdl2"
	backendHeadless = "headless"
)

var errNoROM = errors.New("no ROM path provided")

// config is everything the command line decides.
type config struct {
	ROMPath     string
	Backend     string
	Frames      int
	ShowDebug   bool
	Scale       int
	TestPattern bool

	WAVPath          string
	SnapshotInterval int
	SnapshotDir      string

	// StatePath is loaded at start. SaveStatePath is written at exit when
	// set; QuickSlot is where F5/F8 save and load.
	StatePath     string
	SaveStatePath string
	QuickSlot     string

	Options jeebie.Options
}

func configFromFlags(c *cli.Context) (config, error) {
	cfg := config{
		ROMPath:          c.String("rom"),
		Backend:          c.String("backend"),
		Frames:           c.Int("frames"),
		ShowDebug:        c.Bool("debug"),
		Scale:            c.Int("scale"),
		TestPattern:      c.Bool("test-pattern"),
		WAVPath:          c.String("wav"),
		SnapshotInterval: c.Int("snapshot-interval"),
		SnapshotDir:      c.String("snapshot-dir"),
		StatePath:        c.String("state"),
		SaveStatePath:    c.String("save-state"),
	}
	if cfg.ROMPath == "" && c.NArg() > 0 {
		cfg.ROMPath = c.Args().First()
	}
	if cfg.ROMPath == "" && !cfg.TestPattern {
		return cfg, errNoROM
	}

	if c.Bool("headless") || (c.Int("profile") > 0 && !c.IsSet("backend")) {
		cfg.Backend = backendHeadless
	}
	switch cfg.Backend {
	case backendTerminal, backendSDL2, backendHeadless:
	default:
		return cfg, fmt.Errorf("unknown backend %q (want %s, %s or %s)", cfg.Backend, backendTerminal, backendSDL2, backendHeadless)
	}

	cfg.QuickSlot = cfg.SaveStatePath
	if cfg.QuickSlot == "" {
		cfg.QuickSlot = cfg.ROMPath + ".state"
	}

	breakpoints, err := parseAddresses(c.StringSlice("break"))
	if err != nil {
		return cfg, err
	}

	cfg.Options = jeebie.Options{
		Headless:      cfg.Backend == backendHeadless,
		Silent:        c.Bool("silent"),
		Turbo:         c.Bool("turbo"),
		ProfileFrames: c.Int("profile"),
		Debug: jeebie.DebugOptions{
			CPU: c.Bool("debug-cpu"),
			GPU: c.Bool("debug-gpu"),
			APU: c.Bool("debug-apu"),
			RAM: c.Bool("debug-ram"),
		},
		Breakpoints: breakpoints,
		ExitOpcodes: c.Bool("exit-opcodes"),
		SavePath:    c.String("save"),
	}
	if c.IsSet("limiter") {
		l, err := timing.ForName(c.String("limiter"))
		if err != nil {
			return cfg, err
		}
		cfg.Options.Limiter = l
	}
	return cfg, nil
}

// parseAddresses accepts hex addresses written as 0x0150, $0150 or 0150.
func parseAddresses(values []string) ([]uint16, error) {
	var out []uint16
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			s := strings.TrimSpace(part)
			if s == "" {
				continue
			}
			s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
			a, err := strconv.ParseUint(s, 16, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid breakpoint %q: %w", part, err)
			}
			out = append(out, uint16(a))
		}
	}
	return out, nil
}

// setupLogging installs a text handler on stderr, at debug level when any
// subsystem trace is on.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
