package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/jeebie-core/jeebie/emuerr"
	"github.com/valerio/jeebie-core/jeebie/input"
)

func main() {
	err := newApp().Run(os.Args)
	code := emuerr.ExitCode(err)
	switch {
	case err == nil:
	case code == 0:
		slog.Info("Emulator stopped", "reason", err)
	default:
		slog.Error("Error running emulator", "error", err, "exit_code", code)
	}
	os.Exit(code)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A simple gameboy emulator\n\nKEYS:\n" + input.Help()
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file (raw, zip, gzip, 7z or rar)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Presentation backend: terminal, sdl2 or headless",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface (same as --backend headless)",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (0 = until the program stops)",
		},
		cli.BoolFlag{
			Name:  "silent",
			Usage: "Disable audio output",
		},
		cli.BoolFlag{
			Name:  "turbo",
			Usage: "Run as fast as possible",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none",
		},
		cli.IntFlag{
			Name:  "profile",
			Usage: "Run exactly N frames unpaced, then report timing and exit",
		},
		cli.BoolFlag{Name: "debug-cpu", Usage: "Trace every instruction"},
		cli.BoolFlag{Name: "debug-gpu", Usage: "Log pixel pipeline events"},
		cli.BoolFlag{Name: "debug-apu", Usage: "Log sound register writes"},
		cli.BoolFlag{Name: "debug-ram", Usage: "Log memory bus events"},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panel on start",
		},
		cli.StringSliceFlag{
			Name:  "break",
			Usage: "Stop when PC reaches this address, e.g. 0x0150 (repeatable)",
		},
		cli.BoolFlag{
			Name:  "exit-opcodes",
			Usage: "Treat opcodes FC and FD as test passed and test failed",
		},
		cli.StringFlag{
			Name:  "wav",
			Usage: "Record audio to this WAV file",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "state",
			Usage: "Load this save state after starting",
		},
		cli.StringFlag{
			Name:  "save-state",
			Usage: "Save state to this file on exit; also the F5/F8 quick slot (default: <rom>.state)",
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "Battery RAM file (default: <rom>.sav)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for the sdl2 backend",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern instead of emulation (for debugging display)",
		},
	}
	app.Action = runEmulator
	// exit codes are handled by main
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func runEmulator(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		if errors.Is(err, errNoROM) {
			_ = cli.ShowAppHelp(c)
		}
		return err
	}
	setupLogging(cfg.Options.Debug.Any())
	return run(cfg)
}
