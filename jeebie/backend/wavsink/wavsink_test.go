package wavsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceProvider struct{ samples []int16 }

func (s *sliceProvider) ReadSamples(dst []int16) int {
	n := copy(dst, s.samples)
	s.samples = s.samples[n:]
	return n
}
func (s *sliceProvider) SampleRate() int                            { return 44100 }
func (s *sliceProvider) ToggleChannel(int)                          {}
func (s *sliceProvider) SoloChannel(int)                            {}
func (s *sliceProvider) GetChannelStatus() (bool, bool, bool, bool) { return true, true, true, true }

func TestRecorderWritesStereoPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := Create(path, 44100)
	require.NoError(t, err)

	// more than one scratch chunk
	samples := make([]int16, 5000)
	for i := range samples {
		samples[i] = int16(i*7 - 2500)
	}
	src := &sliceProvider{samples: append([]int16(nil), samples...)}

	require.NoError(t, rec.Drain(src))
	require.NoError(t, rec.Drain(src))
	assert.Equal(t, 2500, rec.Frames())
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(44100), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, len(samples))
	for i, s := range samples {
		if buf.Data[i] != int(s) {
			t.Fatalf("sample %d: got %d want %d", i, buf.Data[i], s)
		}
	}
}

func TestRecorderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silent.wav")
	rec, err := Create(path, 22050)
	require.NoError(t, err)
	require.NoError(t, rec.Drain(&sliceProvider{}))
	require.NoError(t, rec.Close())
	assert.Zero(t, rec.Frames())
}

func TestCreateFailsOnBadPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "x.wav"), 44100)
	assert.Error(t, err)
}

func TestRecorderWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.wav")
	rec, err := Create(path, 44100)
	require.NoError(t, err)

	require.NoError(t, rec.Write([]int16{1, 2, 3}))
	require.NoError(t, rec.Write(nil))
	assert.Equal(t, 1, rec.Frames())
	require.NoError(t, rec.Close())
}
