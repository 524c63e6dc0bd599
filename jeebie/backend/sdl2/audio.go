//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/jeebie-core/jeebie/audio"
)

const (
	deviceSamples = 1024
	// maxLatency is the most audio, in seconds, kept queued on the device.
	maxLatency = 0.1
)

// audioOut feeds the synthesizer's ring to an SDL queued-audio device.
type audioOut struct {
	id      sdl.AudioDeviceID
	src     audio.Provider
	limit   uint32
	samples []int16
	bytes   []byte
	dropped int
}

func openAudio(src audio.Provider) (*audioOut, error) {
	spec := &sdl.AudioSpec{
		Freq:     int32(src.SampleRate()),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  deviceSamples,
	}
	var actual sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	sdl.PauseAudioDevice(id, false)

	slog.Debug("Audio device opened", "freq", actual.Freq, "samples", actual.Samples)
	return &audioOut{
		id:      id,
		src:     src,
		limit:   queueLimit(src.SampleRate(), maxLatency),
		samples: make([]int16, 4096),
	}, nil
}

// pump moves buffered samples to the device. When the device is backed up
// (emulation running ahead) the samples are drained and discarded.
func (a *audioOut) pump() error {
	for {
		n := a.src.ReadSamples(a.samples)
		if n == 0 {
			return nil
		}
		if sdl.GetQueuedAudioSize(a.id) > a.limit {
			a.dropped += n
		} else {
			a.bytes = samplesToBytes(a.bytes, a.samples[:n])
			if err := sdl.QueueAudio(a.id, a.bytes); err != nil {
				return fmt.Errorf("queue audio: %w", err)
			}
		}
		if n < len(a.samples) {
			return nil
		}
	}
}

func (a *audioOut) close() {
	sdl.CloseAudioDevice(a.id)
	if a.dropped > 0 {
		slog.Debug("Audio samples dropped at device", "count", a.dropped)
	}
}
