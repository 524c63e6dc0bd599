package audio

// Provider is what audio backends consume.
type Provider interface {
	// ReadSamples drains interleaved stereo samples into dst.
	ReadSamples(dst []int16) int
	SampleRate() int

	// Audio debugging controls

	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var _ Provider = (*APU)(nil)

// ReadSamples drains buffered output into dst and returns the sample count.
func (a *APU) ReadSamples(dst []int16) int {
	return a.ring.Read(dst)
}

// MuteChannel silences channel (1-4) in the mix without affecting emulation.
func (a *APU) MuteChannel(channel int, muted bool) {
	if channel < 1 || channel > 4 {
		return
	}
	a.muted[channel-1] = muted
}

// ToggleChannel flips the mute state of channel (1-4).
func (a *APU) ToggleChannel(channel int) {
	if channel < 1 || channel > 4 {
		return
	}
	a.muted[channel-1] = !a.muted[channel-1]
}

// SoloChannel mutes every channel except channel (1-4).
func (a *APU) SoloChannel(channel int) {
	if channel < 1 || channel > 4 {
		return
	}
	for i := range a.muted {
		a.muted[i] = i != channel-1
	}
}

// UnmuteAll clears every debug mute.
func (a *APU) UnmuteAll() {
	a.muted = [4]bool{}
}

// GetChannelStatus reports which channels are audible (not muted).
func (a *APU) GetChannelStatus() (ch1, ch2, ch3, ch4 bool) {
	return !a.muted[0], !a.muted[1], !a.muted[2], !a.muted[3]
}

// GetChannelVolumes returns each channel's current digital output.
func (a *APU) GetChannelVolumes() (ch1, ch2, ch3, ch4 uint8) {
	return a.ch1.Output(), a.ch2.Output(), a.ch3.Output(), a.ch4.Output()
}
