package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// tacLookup maps TAC input clock select (bits 1-0) to the bit position
// of the 16-bit internal divider used as the timer's clock source. TIMA
// increments on falling edges of the selected bit ANDed with the enable
// bit (TAC bit 2).
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacLookup = [4]uint8{9, 3, 5, 7}

// timaReloadDelay is the number of clocks TIMA reads 0x00 after overflowing,
// before TMA is loaded and the interrupt is raised.
const timaReloadDelay = 4

// TimerState is the serializable timer state.
type TimerState struct {
	Counter     uint16
	TIMA        uint8
	TMA         uint8
	TAC         uint8
	ReloadDelay int
}

// Timer implements DIV/TIMA/TMA/TAC on top of the internal divider.
type Timer struct {
	counter     uint16 // DIV is the upper 8 bits
	tima        uint8
	tma         uint8
	tac         uint8
	reloadDelay int

	// TimerInterruptHandler is called when TIMA is reloaded after an overflow.
	TimerInterruptHandler func()
}

// SetSeed sets the internal divider, used to reproduce the post-boot DIV value.
func (t *Timer) SetSeed(seed uint16) {
	t.counter = seed
	t.reloadDelay = 0
}

// Tick advances the divider by the given number of clocks.
func (t *Timer) Tick(cycles int) {
	for range cycles {
		if t.reloadDelay > 0 {
			t.reloadDelay--
			if t.reloadDelay == 0 {
				t.tima = t.tma
				if t.TimerInterruptHandler != nil {
					t.TimerInterruptHandler()
				}
			}
		}
		t.setCounter(t.counter + 1)
	}
}

// input is the signal whose falling edge clocks TIMA.
func (t *Timer) input(counter uint16, tac uint8) bool {
	return bit.IsSet(2, tac) && bit.IsSet16(tacLookup[tac&0x03], counter)
}

func (t *Timer) setCounter(value uint16) {
	before := t.input(t.counter, t.tac)
	t.counter = value
	if before && !t.input(t.counter, t.tac) {
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.reloadDelay = timaReloadDelay
	}
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

// Write handles writes to the timer registers. Resetting DIV or changing
// TAC can itself produce a falling edge and increment TIMA.
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.setCounter(0)
	case addr.TIMA:
		// a write during the reload window cancels the reload
		t.tima = value
		t.reloadDelay = 0
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		before := t.input(t.counter, t.tac)
		t.tac = value & 0x07
		if before && !t.input(t.counter, t.tac) {
			t.incrementTIMA()
		}
	}
}

// State returns the timer state for snapshots.
func (t *Timer) State() TimerState {
	return TimerState{Counter: t.counter, TIMA: t.tima, TMA: t.tma, TAC: t.tac, ReloadDelay: t.reloadDelay}
}

// SetState restores the timer from a snapshot.
func (t *Timer) SetState(s TimerState) {
	t.counter = s.Counter
	t.tima = s.TIMA
	t.tma = s.TMA
	t.tac = s.TAC
	t.reloadDelay = s.ReloadDelay
}
