package input

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/input/action"
)

// Binding ties a backend-neutral key name to an action. Backends translate
// their native key codes to these names.
type Binding struct {
	Key    string
	Action action.Action
}

// DefaultBindings lists the stock bindings in help order.
var DefaultBindings = []Binding{
	{"z", action.GBButtonA},
	{"x", action.GBButtonB},
	{"Enter", action.GBButtonStart},
	{"Shift", action.GBButtonSelect},
	{"Select", action.GBButtonSelect},
	{"Up", action.GBDPadUp},
	{"w", action.GBDPadUp},
	{"Down", action.GBDPadDown},
	{"s", action.GBDPadDown},
	{"Left", action.GBDPadLeft},
	{"a", action.GBDPadLeft},
	{"Right", action.GBDPadRight},
	{"d", action.GBDPadRight},

	{"Space", action.EmulatorPauseToggle},
	{"p", action.EmulatorPauseToggle},
	{"f", action.EmulatorStepFrame},
	{"n", action.EmulatorStepInstruction},
	{"F5", action.EmulatorSaveState},
	{"F8", action.EmulatorLoadState},
	{"F10", action.EmulatorDebugToggle},
	{"F12", action.EmulatorSnapshot},
	{"Escape", action.EmulatorQuit},
	{"q", action.EmulatorQuit},

	{"F1", action.AudioToggleChannel1},
	{"F2", action.AudioToggleChannel2},
	{"F3", action.AudioToggleChannel3},
	{"F4", action.AudioToggleChannel4},
	{"1", action.AudioSoloChannel1},
	{"2", action.AudioSoloChannel2},
	{"3", action.AudioSoloChannel3},
	{"4", action.AudioSoloChannel4},
	{"0", action.AudioUnmuteAll},

	{"+", action.DebugLogLevelIncrease},
	{"=", action.DebugLogLevelIncrease},
	{"-", action.DebugLogLevelDecrease},
	{"_", action.DebugLogLevelDecrease},
}

// DefaultKeyMap indexes DefaultBindings by key name.
var DefaultKeyMap = func() map[string]action.Action {
	m := make(map[string]action.Action, len(DefaultBindings))
	for _, b := range DefaultBindings {
		m[b.Key] = b.Action
	}
	return m
}()

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}

var categoryTitles = []struct {
	cat   action.Category
	title string
}{
	{action.CategoryGameInput, "Game Boy"},
	{action.CategoryEmulator, "Emulator"},
	{action.CategoryAudio, "Audio"},
	{action.CategoryDebug, "Debug"},
}

// Help renders the default bindings grouped by category, one action per
// line with every key bound to it.
func Help() string {
	var sb strings.Builder
	for i, c := range categoryTitles {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s:\n", c.title)

		var order []action.Action
		keys := make(map[action.Action][]string)
		for _, b := range DefaultBindings {
			if action.GetInfo(b.Action).Category != c.cat {
				continue
			}
			if _, seen := keys[b.Action]; !seen {
				order = append(order, b.Action)
			}
			keys[b.Action] = append(keys[b.Action], b.Key)
		}
		for _, act := range order {
			fmt.Fprintf(&sb, "  %-14s %s\n", strings.Join(keys[act], ", "), act)
		}
	}
	return sb.String()
}
