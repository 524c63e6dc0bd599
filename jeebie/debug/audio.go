package debug

import (
	"math"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/audio"
)

type ChannelStatus struct {
	Active    bool
	Muted     bool
	Frequency float64
	Volume    uint8
	Note      string
}

type AudioData struct {
	Powered      bool
	MasterLeft   uint8
	MasterRight  uint8
	Channels     [4]ChannelStatus
	SampleRate   int
	Buffered     int
	DroppedTotal uint64
}

// noiseBase is the LFSR clock for divisor code 1 and shift 0.
const noiseBase = 262144.0

// ExtractAudioData reads the sound unit's channel state.
func ExtractAudioData(a *audio.APU) *AudioData {
	if a == nil {
		return nil
	}
	nr50 := a.ReadRegister(addr.NR50)
	data := &AudioData{
		Powered:      a.Powered(),
		MasterLeft:   (nr50 >> 4) & 0x07,
		MasterRight:  nr50 & 0x07,
		SampleRate:   a.SampleRate(),
		Buffered:     a.Samples().Len() / 2,
		DroppedTotal: a.Samples().Dropped(),
	}

	audible := [4]bool{}
	audible[0], audible[1], audible[2], audible[3] = a.GetChannelStatus()
	for i := range data.Channels {
		ch := a.Channel(i + 1)
		st := &data.Channels[i]
		st.Active = ch.Active()
		st.Muted = !audible[i]
		st.Volume = ch.Output()

		switch c := ch.(type) {
		case *audio.SquareChannel:
			st.Frequency = 131072.0 / float64(2048-int(c.Period))
			st.Note = frequencyToNote(st.Frequency)
		case *audio.WaveChannel:
			st.Frequency = 65536.0 / float64(2048-int(c.Period))
			st.Note = frequencyToNote(st.Frequency)
		case *audio.NoiseChannel:
			divisor := float64(c.Divisor)
			if divisor == 0 {
				divisor = 0.5
			}
			st.Frequency = noiseBase / divisor / float64(uint(1)<<c.Shift)
			st.Note = "Noise"
		}
	}
	return data
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// frequencyToNote names the equal-tempered note nearest freq (A4 = 440 Hz).
func frequencyToNote(freq float64) string {
	if freq < 20 || freq > 20000 {
		return "--"
	}
	midi := int(math.Round(12*math.Log2(freq/440) + 69))
	octave := midi/12 - 1
	if octave < 0 || octave > 9 {
		return "--"
	}
	return noteNames[midi%12] + string(rune('0'+octave))
}
