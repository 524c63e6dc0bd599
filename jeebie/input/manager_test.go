package input

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

type recordingSink struct {
	calls []memory.Buttons
}

func (r *recordingSink) SetButtons(held memory.Buttons) { r.calls = append(r.calls, held) }

func newTestManager(sink ButtonSink) (*Manager, *time.Time) {
	clock := time.Unix(1000, 0)
	m := NewManager(sink)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestManager_Debouncing(t *testing.T) {
	tests := []struct {
		name           string
		action         action.Action
		eventType      event.Type
		timeBetween    time.Duration
		expectDebounce bool
	}{
		{
			name:           "UI action rapid press - should debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    100 * time.Millisecond,
			expectDebounce: true,
		},
		{
			name:           "UI action slow press - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    400 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Hold event type - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Hold,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clock := newTestManager(nil)
			calls := 0
			m.On(tt.action, tt.eventType, func() { calls++ })

			m.Trigger(tt.action, tt.eventType)
			*clock = clock.Add(tt.timeBetween)
			m.Trigger(tt.action, tt.eventType)

			if tt.expectDebounce {
				assert.Equal(t, 1, calls, "Second event should be debounced")
			} else {
				assert.Equal(t, 2, calls, "Second event should not be debounced")
			}
		})
	}
}

func TestManager_ActionsDebounceIndependently(t *testing.T) {
	m, _ := newTestManager(nil)
	var toggles, snapshots int
	m.On(action.EmulatorDebugToggle, event.Press, func() { toggles++ })
	m.On(action.EmulatorSnapshot, event.Press, func() { snapshots++ })

	m.Trigger(action.EmulatorDebugToggle, event.Press)
	m.Trigger(action.EmulatorSnapshot, event.Press)
	m.Trigger(action.EmulatorDebugToggle, event.Press)

	assert.Equal(t, 1, toggles)
	assert.Equal(t, 1, snapshots)
}

func TestManager_GameButtonsTrackHeldSet(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(sink)

	m.Dispatch([]Event{
		{action.GBButtonA, event.Press},
		{action.GBDPadLeft, event.Press},
		{action.GBButtonA, event.Hold},
		{action.GBButtonA, event.Release},
		{action.GBButtonA, event.Press},
	})

	a, left := memory.Of(memory.JoypadA), memory.Of(memory.JoypadLeft)
	assert.Equal(t, []memory.Buttons{a, a | left, left, a | left}, sink.calls,
		"buttons are never debounced and unchanged state is not re-sent")
	assert.Equal(t, a|left, m.Held())
}

func TestManager_GameButtonsSkipCallbacks(t *testing.T) {
	m, _ := newTestManager(nil)
	called := false
	m.On(action.GBButtonStart, event.Press, func() { called = true })

	m.Trigger(action.GBButtonStart, event.Press)
	assert.False(t, called)
	assert.True(t, m.Held().Pressed(memory.JoypadStart))
}

func TestDefaultKeyMap(t *testing.T) {
	act, ok := GetDefaultMapping("z")
	assert.True(t, ok)
	assert.Equal(t, action.GBButtonA, act)
	assert.True(t, act.IsGameInput())

	act, ok = GetDefaultMapping("Escape")
	assert.True(t, ok)
	assert.Equal(t, action.EmulatorQuit, act)
	assert.Equal(t, "quit", act.String())

	_, ok = GetDefaultMapping("F13")
	assert.False(t, ok)
}

func TestDefaultBindingsAreUnique(t *testing.T) {
	assert.Len(t, DefaultKeyMap, len(DefaultBindings), "a key is bound twice")
}

func TestHelpGroupsKeysByAction(t *testing.T) {
	help := Help()
	assert.Contains(t, help, "Game Boy:\n")
	assert.Contains(t, help, "Up, w")
	assert.Contains(t, help, "Escape, q")
	assert.Regexp(t, `F5\s+save state`, help)
	assert.Less(t, strings.Index(help, "Audio:"), strings.Index(help, "Debug:"))
}
