package memory

import "github.com/valerio/jeebie-core/jeebie/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Buttons is a bit set of pressed keys, one bit per JoypadKey.
type Buttons uint8

// Of returns the set containing only key.
func Of(keys ...JoypadKey) Buttons {
	var b Buttons
	for _, k := range keys {
		b |= 1 << k
	}
	return b
}

// Pressed reports whether key is in the set.
func (b Buttons) Pressed(key JoypadKey) bool { return b&(1<<key) != 0 }

// dpad returns the active-low nibble for right/left/up/down.
func (b Buttons) dpad() uint8 { return ^uint8(b) & 0x0F }

// actions returns the active-low nibble for A/B/select/start.
func (b Buttons) actions() uint8 { return ^uint8(b>>4) & 0x0F }

// Joypad models P1: the program selects the d-pad (bit 4 low) and/or the
// action buttons (bit 5 low), and bits 0-3 read the selected keys with 0
// meaning pressed. Selecting both ANDs the two groups; selecting neither
// reads 0x0F. Bits 6-7 always read as 1.
type Joypad struct {
	held      Buttons
	selection uint8
}

// NewJoypad creates a joypad with no keys held and no group selected.
func NewJoypad() *Joypad {
	return &Joypad{selection: 0x30}
}

// Read returns the P1 register value.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.selection
	low := uint8(0x0F)
	if !bit.IsSet(4, j.selection) {
		low &= j.held.dpad()
	}
	if !bit.IsSet(5, j.selection) {
		low &= j.held.actions()
	}
	return result | low
}

// Write stores the selection bits; the rest of P1 is read-only.
func (j *Joypad) Write(value uint8) {
	j.selection = value & 0x30
}

// Set replaces the held keys and reports whether any key went from
// released to pressed, which is what raises the joypad interrupt.
func (j *Joypad) Set(held Buttons) bool {
	pressed := held &^ j.held
	j.held = held
	return pressed != 0
}

// Press adds key to the held set.
func (j *Joypad) Press(key JoypadKey) bool {
	return j.Set(j.held | Of(key))
}

// Release removes key from the held set.
func (j *Joypad) Release(key JoypadKey) {
	j.Set(j.held &^ Of(key))
}

// Held returns the currently held keys.
func (j *Joypad) Held() Buttons { return j.held }

// JoypadState is the serializable joypad state.
type JoypadState struct {
	Held   Buttons
	Select uint8
}

// State returns the joypad state for snapshots.
func (j *Joypad) State() JoypadState { return JoypadState{Held: j.held, Select: j.selection} }

// SetState restores the joypad from a snapshot.
func (j *Joypad) SetState(s JoypadState) {
	j.held = s.Held
	j.selection = s.Select
}
