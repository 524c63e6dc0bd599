// Package input turns backend key events into Game Boy button state and
// emulator commands.
package input

import (
	"time"

	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Event is one input occurrence reported by a backend.
type Event struct {
	Action action.Action
	Type   event.Type
}

// ButtonSink receives the full set of held Game Boy buttons.
type ButtonSink interface {
	SetButtons(held memory.Buttons)
}

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	held          memory.Buttons
	sink          ButtonSink
	now           func() time.Time
}

func NewManager(sink ButtonSink) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		sink:          sink,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Dispatch triggers every event in order.
func (m *Manager) Dispatch(events []Event) {
	for _, e := range events {
		m.Trigger(e.Action, e.Type)
	}
}

// Trigger handles the given action and event type. Game Boy buttons update
// the held set immediately; everything else runs its callbacks, with Press
// and Release debounced.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if key, ok := joypadKey(act); ok {
		m.setButton(key, evt != event.Release)
		return
	}

	if evt == event.Press || evt == event.Release {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if last, ok := m.lastTriggered[act][evt]; ok && now.Sub(last) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// Held returns the buttons currently held.
func (m *Manager) Held() memory.Buttons { return m.held }

func (m *Manager) setButton(key memory.JoypadKey, down bool) {
	held := m.held
	if down {
		held |= memory.Of(key)
	} else {
		held &^= memory.Of(key)
	}
	if held == m.held {
		return
	}
	m.held = held
	if m.sink != nil {
		m.sink.SetButtons(held)
	}
}

// joypadKey maps Game Boy actions to joypad keys
func joypadKey(act action.Action) (memory.JoypadKey, bool) {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	}
	return 0, false
}
