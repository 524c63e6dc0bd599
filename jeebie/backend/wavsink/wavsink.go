// Package wavsink records the synthesizer's output to a WAV file.
package wavsink

import (
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/backend"
)

const (
	bitDepth  = 16
	channels  = 2
	pcmFormat = 1
	chunk     = 2048
)

// Recorder streams 16-bit stereo PCM to disk as it is drained.
type Recorder struct {
	path    string
	file    *os.File
	enc     *wav.Encoder
	scratch []int16
	buf     *goaudio.IntBuffer
	frames  int
}

var _ backend.AudioSink = (*Recorder)(nil)

// Create opens path for writing. The header is finalized by Close.
func Create(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavsink: %w", err)
	}

	return &Recorder{
		path:    path,
		file:    f,
		enc:     wav.NewEncoder(f, sampleRate, bitDepth, channels, pcmFormat),
		scratch: make([]int16, chunk),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           make([]int, 0, chunk),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Drain writes everything the provider has buffered.
func (r *Recorder) Drain(p audio.Provider) error {
	for {
		n := p.ReadSamples(r.scratch)
		if err := r.Write(r.scratch[:n]); err != nil {
			return err
		}
		if n < len(r.scratch) {
			return nil
		}
	}
}

// Write appends interleaved stereo samples. A trailing odd sample is
// dropped.
func (r *Recorder) Write(samples []int16) error {
	n := len(samples) - len(samples)%channels
	if n == 0 {
		return nil
	}

	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples[:n] {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wavsink: %w", err)
	}
	r.frames += n / channels
	return nil
}

// Frames returns how many stereo sample frames were written.
func (r *Recorder) Frames() int { return r.frames }

// Close finalizes the header and closes the file.
func (r *Recorder) Close() error {
	encErr := r.enc.Close()
	fileErr := r.file.Close()
	if encErr != nil {
		return fmt.Errorf("wavsink: %w", encErr)
	}
	if fileErr != nil {
		return fmt.Errorf("wavsink: %w", fileErr)
	}
	slog.Info("Audio recording saved", "path", r.path, "frames", r.frames)
	return nil
}
