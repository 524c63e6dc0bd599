package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/jeebie-core/jeebie/video"
)

// TakeSnapshot writes the frame to the working directory under a
// timestamped name.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}
	name := fmt.Sprintf("jeebie_snapshot_%s", time.Now().Format("20060102_150405"))
	if _, err := SaveFramePNG(frame, "", name); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// SaveFramePNG writes frame as <directory>/<baseName>.png and returns the
// path. An empty directory means the working directory.
func SaveFramePNG(frame *video.FrameBuffer, directory, baseName string) (string, error) {
	return SavePNG(frame.Image(), directory, baseName)
}

// SavePNG writes img as <directory>/<baseName>.png.
func SavePNG(img image.Image, directory, baseName string) (string, error) {
	if directory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		directory = cwd
	}

	path := filepath.Join(directory, baseName+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	b := img.Bounds()
	slog.Info("Snapshot saved", "path", path, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	return path, nil
}
