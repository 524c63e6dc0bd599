package memory

import "github.com/valerio/jeebie-core/jeebie/bit"

// RTC register selectors, written to 0x4000-0x5FFF on MBC3.
const (
	rtcSeconds  uint8 = 0x08
	rtcMinutes  uint8 = 0x09
	rtcHours    uint8 = 0x0A
	rtcDaysLow  uint8 = 0x0B
	rtcDaysHigh uint8 = 0x0C
)

const (
	rtcClocksPerSecond = 4194304

	daysHighBit  = 0
	haltBit      = 6
	dayCarryBit  = 7
	daysHighMask = 0xC1
)

// RTCState is the serializable clock state.
type RTCState struct {
	Live      [5]uint8
	Latched   [5]uint8
	SubSecond int
}

// RTC is the MBC3 real-time clock. It counts emulated time, not wall-clock
// time, so runs are reproducible: one second passes every 4194304 clocks
// unless the halt bit is set.
//
// Registers are indexed by selector minus 0x08: seconds, minutes, hours,
// low 8 bits of the day counter, and the high byte holding day bit 8,
// the halt flag (bit 6) and the day-counter carry (bit 7).
type RTC struct {
	live      [5]uint8
	latched   [5]uint8
	subSecond int
}

// Tick advances the clock by the given number of clocks.
func (r *RTC) Tick(cycles int) {
	if r.Halted() {
		return
	}
	r.subSecond += cycles
	for r.subSecond >= rtcClocksPerSecond {
		r.subSecond -= rtcClocksPerSecond
		r.advanceSecond()
	}
}

// Halted reports whether the clock is stopped.
func (r *RTC) Halted() bool {
	return bit.IsSet(haltBit, r.live[4])
}

// Latch copies the running counters into the readable registers.
func (r *RTC) Latch() {
	r.latched = r.live
}

// Read returns a latched register, selected by 0x08-0x0C.
func (r *RTC) Read(selector uint8) uint8 {
	return r.latched[selector-rtcSeconds]
}

// Write sets a running register. Writing seconds restarts the current second.
func (r *RTC) Write(selector uint8, value uint8) {
	switch selector {
	case rtcSeconds:
		r.live[0] = value & 0x3F
		r.subSecond = 0
	case rtcMinutes:
		r.live[1] = value & 0x3F
	case rtcHours:
		r.live[2] = value & 0x1F
	case rtcDaysLow:
		r.live[3] = value
	case rtcDaysHigh:
		r.live[4] = value & daysHighMask
	}
}

// Days returns the 9-bit day counter.
func (r *RTC) Days() int {
	return int(bit.Value(daysHighBit, r.live[4]))<<8 | int(r.live[3])
}

func (r *RTC) advanceSecond() {
	r.live[0] = (r.live[0] + 1) & 0x3F
	if r.live[0] != 60 {
		return
	}
	r.live[0] = 0

	r.live[1] = (r.live[1] + 1) & 0x3F
	if r.live[1] != 60 {
		return
	}
	r.live[1] = 0

	r.live[2] = (r.live[2] + 1) & 0x1F
	if r.live[2] != 24 {
		return
	}
	r.live[2] = 0

	days := r.Days() + 1
	if days > 0x1FF {
		days = 0
		r.live[4] = bit.Set(dayCarryBit, r.live[4])
	}
	r.live[3] = uint8(days)
	r.live[4] = bit.SetTo(daysHighBit, r.live[4], days > 0xFF)
}

// State returns the clock state for snapshots.
func (r *RTC) State() RTCState {
	return RTCState{Live: r.live, Latched: r.latched, SubSecond: r.subSecond}
}

// SetState restores the clock from a snapshot.
func (r *RTC) SetState(s RTCState) {
	r.live = s.Live
	r.latched = s.Latched
	r.subSecond = s.SubSecond
}
