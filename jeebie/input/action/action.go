package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorSnapshot
	EmulatorSaveState
	EmulatorLoadState
	EmulatorDebugToggle
	EmulatorQuit

	// Audio debugging
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	AudioSoloChannel1
	AudioSoloChannel2
	AudioSoloChannel3
	AudioSoloChannel4
	AudioUnmuteAll

	// Log filtering
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryAudio
	CategoryDebug
)

// Info describes an action for logs and help text.
type Info struct {
	Category    Category
	Description string
}

var infos = map[Action]Info{
	GBButtonA:      {CategoryGameInput, "A"},
	GBButtonB:      {CategoryGameInput, "B"},
	GBButtonStart:  {CategoryGameInput, "Start"},
	GBButtonSelect: {CategoryGameInput, "Select"},
	GBDPadUp:       {CategoryGameInput, "Up"},
	GBDPadDown:     {CategoryGameInput, "Down"},
	GBDPadLeft:     {CategoryGameInput, "Left"},
	GBDPadRight:    {CategoryGameInput, "Right"},

	EmulatorPauseToggle:     {CategoryEmulator, "pause/resume"},
	EmulatorStepFrame:       {CategoryEmulator, "step frame"},
	EmulatorStepInstruction: {CategoryEmulator, "step instruction"},
	EmulatorSnapshot:        {CategoryEmulator, "save PNG snapshot"},
	EmulatorSaveState:       {CategoryEmulator, "save state"},
	EmulatorLoadState:       {CategoryEmulator, "load state"},
	EmulatorDebugToggle:     {CategoryEmulator, "toggle debug panel"},
	EmulatorQuit:            {CategoryEmulator, "quit"},

	AudioToggleChannel1: {CategoryAudio, "toggle channel 1"},
	AudioToggleChannel2: {CategoryAudio, "toggle channel 2"},
	AudioToggleChannel3: {CategoryAudio, "toggle channel 3"},
	AudioToggleChannel4: {CategoryAudio, "toggle channel 4"},
	AudioSoloChannel1:   {CategoryAudio, "solo channel 1"},
	AudioSoloChannel2:   {CategoryAudio, "solo channel 2"},
	AudioSoloChannel3:   {CategoryAudio, "solo channel 3"},
	AudioSoloChannel4:   {CategoryAudio, "solo channel 4"},
	AudioUnmuteAll:      {CategoryAudio, "unmute all channels"},

	DebugLogLevelIncrease: {CategoryDebug, "more log output"},
	DebugLogLevelDecrease: {CategoryDebug, "less log output"},
}

// GetInfo returns the description of act.
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Category: CategoryDebug, Description: "unknown"}
}

func (a Action) String() string { return GetInfo(a).Description }

// IsGameInput reports whether act is a Game Boy button.
func (a Action) IsGameInput() bool { return GetInfo(a).Category == CategoryGameInput }
