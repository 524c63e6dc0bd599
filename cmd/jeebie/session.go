package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/backend/sdl2"
	"github.com/valerio/jeebie-core/jeebie/backend/terminal"
	"github.com/valerio/jeebie-core/jeebie/backend/wavsink"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/emuerr"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// session ties one emulator to one backend for the life of the process.
type session struct {
	cfg      config
	emu      jeebie.Emulator
	dmg      *jeebie.DMG // nil in test pattern mode
	backend  backend.Backend
	input    *input.Manager
	recorder *wavsink.Recorder
	tee      *teeAudio
	quit     bool
}

func run(cfg config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	s := &session{cfg: cfg, backend: b}
	if cfg.TestPattern {
		s.emu = jeebie.NewTestPatternEmulator()
	} else {
		dmg, err := jeebie.NewWithFile(cfg.ROMPath, cfg.Options)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := dmg.Close(); cerr != nil {
				slog.Error("Failed to save battery RAM", "error", cerr)
			}
		}()
		if cfg.StatePath != "" {
			if err := loadStateFile(dmg, cfg.StatePath); err != nil {
				return err
			}
		}
		s.emu, s.dmg = dmg, dmg
	}

	provider := s.emu.Audio()
	if cfg.WAVPath != "" && provider != nil {
		rec, err := wavsink.Create(cfg.WAVPath, provider.SampleRate())
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, rec.Close()) }()
		s.recorder = rec
		s.tee = &teeAudio{Provider: provider, rec: rec}
		provider = s.tee
	}

	bcfg := backend.Config{Title: "Jeebie", Scale: cfg.Scale, ShowDebug: cfg.ShowDebug, Audio: provider}
	if s.dmg != nil {
		bcfg.Title = s.dmg.Title()
		bcfg.Debug = s.dmg
	}
	if err := s.backend.Init(bcfg); err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.backend.Cleanup()) }()

	s.input = input.NewManager(s.emu)
	s.bindActions()

	if s.dmg == nil {
		return s.runTestPattern(ctx)
	}
	runErr := s.dmg.Run(ctx, s.present)
	if cfg.SaveStatePath != "" {
		if err := saveStateFile(s.dmg, cfg.SaveStatePath); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func newBackend(cfg config) (backend.Backend, error) {
	switch cfg.Backend {
	case backendHeadless:
		sc, err := headless.CreateSnapshotConfig(cfg.SnapshotInterval, cfg.SnapshotDir, cfg.ROMPath)
		if err != nil {
			return nil, err
		}
		return headless.New(cfg.Frames, sc), nil
	case backendSDL2:
		return sdl2.New(), nil
	default:
		return terminal.New(), nil
	}
}

// present hands the frame to the backend and dispatches its input.
func (s *session) present(frame *video.FrameBuffer) error {
	events, err := s.backend.Update(frame)
	if err != nil {
		return err
	}
	s.input.Dispatch(events)

	if s.recorder != nil {
		if err := errors.Join(s.tee.err, s.recorder.Drain(s.emu.Audio())); err != nil {
			return err
		}
	}
	if s.quit {
		return emuerr.New(emuerr.Quit, "quit requested")
	}
	return nil
}

func (s *session) runTestPattern(ctx context.Context) error {
	limiter := s.cfg.Options.Limiter
	if limiter == nil {
		limiter = timing.NewAdaptiveLimiter()
		if s.cfg.Backend == backendHeadless {
			limiter = timing.NewNoOpLimiter()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return emuerr.Wrap(emuerr.Quit, context.Cause(ctx), "test pattern")
		default:
		}
		if err := s.emu.RunUntilFrame(); err != nil {
			return err
		}
		if err := s.present(s.emu.FrameBuffer()); err != nil {
			return err
		}
		limiter.WaitForNextFrame()
	}
}

func (s *session) bindActions() {
	on := func(act action.Action, fn func()) { s.input.On(act, event.Press, fn) }

	on(action.EmulatorQuit, func() { s.quit = true })
	on(action.EmulatorSnapshot, func() { debug.TakeSnapshot(s.emu.FrameBuffer()) })

	if h, ok := s.backend.(backend.ActionHandler); ok {
		for _, act := range []action.Action{action.EmulatorDebugToggle, action.DebugLogLevelIncrease, action.DebugLogLevelDecrease} {
			on(act, func() { h.HandleAction(act) })
		}
	}

	if a := s.emu.Audio(); a != nil {
		for ch := 1; ch <= 4; ch++ {
			on(action.AudioToggleChannel1+action.Action(ch-1), func() { a.ToggleChannel(ch) })
			on(action.AudioSoloChannel1+action.Action(ch-1), func() { a.SoloChannel(ch) })
		}
	}

	if s.dmg == nil {
		return
	}
	dmg := s.dmg
	on(action.AudioUnmuteAll, dmg.APU().UnmuteAll)
	on(action.EmulatorPauseToggle, dmg.TogglePause)
	on(action.EmulatorStepFrame, func() {
		if err := dmg.StepFrame(); err != nil {
			slog.Warn("Step frame stopped", "error", err)
		}
	})
	on(action.EmulatorStepInstruction, func() {
		if err := dmg.StepInstruction(); err != nil {
			slog.Warn("Step instruction stopped", "error", err)
		}
	})
	on(action.EmulatorSaveState, func() {
		if err := saveStateFile(dmg, s.cfg.QuickSlot); err != nil {
			slog.Error("Save state failed", "error", err)
		}
	})
	on(action.EmulatorLoadState, func() {
		if err := loadStateFile(dmg, s.cfg.QuickSlot); err != nil {
			slog.Error("Load state failed", "error", err)
		}
	})
}

func saveStateFile(dmg *jeebie.DMG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := dmg.SaveState(f); err != nil {
		f.Close()
		return fmt.Errorf("save state: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	slog.Info("State saved", "path", path)
	return nil
}

func loadStateFile(dmg *jeebie.DMG, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	defer f.Close()
	if err := dmg.LoadState(f); err != nil {
		return fmt.Errorf("load state %s: %w", path, err)
	}
	slog.Info("State loaded", "path", path)
	return nil
}

// teeAudio copies whatever a backend plays into the recorder.
type teeAudio struct {
	audio.Provider
	rec *wavsink.Recorder
	err error
}

func (t *teeAudio) ReadSamples(dst []int16) int {
	n := t.Provider.ReadSamples(dst)
	if err := t.rec.Write(dst[:n]); err != nil && t.err == nil {
		t.err = err
	}
	return n
}
