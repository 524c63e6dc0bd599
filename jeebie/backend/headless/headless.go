package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Backend runs without any output, for automated testing and batch
// processing. It requests a quit once maxFrames frames were presented.
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	lastSnapshot   string
}

var _ backend.Backend = (*Backend)(nil)

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// New creates a headless backend. maxFrames <= 0 runs until the emulator
// stops on its own.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

// Update counts the frame, saves snapshots and drains audio so the sample
// ring never backs up.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++
	h.drainAudio()

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		if err := h.saveSnapshot(frame); err != nil {
			return nil, err
		}
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames <= 0 || h.frameCount < h.maxFrames {
		return nil, nil
	}

	// final frame, unless the interval just covered it
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		if err := h.saveSnapshot(frame); err != nil {
			return nil, err
		}
	}
	if h.snapshotConfig.Enabled {
		slog.Info("Headless execution completed", "frames", h.frameCount, "png_snapshots_saved_to", h.snapshotConfig.Directory)
	} else {
		slog.Info("Headless execution completed", "frames", h.frameCount)
	}
	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns how many frames were presented so far.
func (h *Backend) Frames() int { return h.frameCount }

// LastSnapshot returns the path of the most recent PNG, if any.
func (h *Backend) LastSnapshot() string { return h.lastSnapshot }

func (h *Backend) drainAudio() {
	if h.config.Audio == nil {
		return
	}
	var buf [1024]int16
	for h.config.Audio.ReadSamples(buf[:]) == len(buf) {
	}
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters.
// An empty directory means a fresh temporary one.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	return config, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) error {
	name := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)
	path, err := debug.SaveFramePNG(frame, h.snapshotConfig.Directory, name)
	if err != nil {
		return fmt.Errorf("snapshot at frame %d: %w", h.frameCount, err)
	}
	h.lastSnapshot = path
	return nil
}
