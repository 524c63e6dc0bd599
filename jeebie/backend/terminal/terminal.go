package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/terminal/render"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	registerHeight = 10
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24

	// Terminals report key presses only; a key counts as held until it
	// stops repeating for this long.
	keyTimeout = 100 * time.Millisecond
)

var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

// Backend renders to the terminal with tcell, two pixels per cell.
type Backend struct {
	screen     tcell.Screen
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	prevLogger *slog.Logger
	config     backend.Config
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	now        func() time.Time

	keyStates  map[action.Action]time.Time // Last time each key was seen
	activeKeys map[action.Action]bool      // Keys active in previous frame
}

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.ActionHandler = (*Backend)(nil)
)

// New creates a terminal backend on the process's terminal.
func New() *Backend {
	return &Backend{logLevel: slog.LevelInfo, now: time.Now}
}

// NewWithScreen creates a terminal backend drawing to screen, which Init
// initializes.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the screen and routes logging into the on-screen buffer.
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = render.NewLogBuffer(100)
	t.prevLogger = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	return nil
}

// Update renders a frame and returns the input collected since the last call.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal", "signal", sig)
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.buttonEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	t.render(frame)
	t.screen.Show()
	return events, nil
}

// buttonEvents turns key timestamps into Press, Hold and Release events.
func (t *Backend) buttonEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	current := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		current[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !current[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = current
	return events
}

// Cleanup restores the terminal and the previous logger.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	if t.prevLogger != nil {
		slog.SetDefault(t.prevLogger)
		slog.Info("Terminal backend closed")
	}
	return nil
}

// HandleAction processes actions the terminal reacts to itself.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if !act.IsGameInput() {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	// Terminals cannot report two held arrows, so a new direction replaces
	// the old one.
	if isDirection(act) {
		delete(t.keyStates, action.GBDPadUp)
		delete(t.keyStates, action.GBDPadDown)
		delete(t.keyStates, action.GBDPadLeft)
		delete(t.keyStates, action.GBDPadRight)
	}
	t.keyStates[act] = now
}

func isDirection(act action.Action) bool {
	switch act {
	case action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight:
		return true
	}
	return false
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF3:     "F3",
	tcell.KeyF4:     "F4",
	tcell.KeyF5:     "F5",
	tcell.KeyF8:     "F8",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, name := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	// Shift alone never reaches a terminal; backspace stands in for Select.
	mapping[tcell.KeyBackspace] = action.GBButtonSelect
	mapping[tcell.KeyBackspace2] = action.GBButtonSelect
	return mapping
}

// buildRuneMapping maps every single-character default key name.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for name, act := range input.DefaultKeyMap {
		if r := []rune(name); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	mapping[' '] = input.DefaultKeyMap["Space"]
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) changeLogLevel(direction int) {
	old := t.logLevel
	next := t.logLevel - slog.Level(4*direction)
	if next >= slog.LevelDebug && next <= slog.LevelError {
		t.logLevel = next
	}
	if old != t.logLevel {
		slog.Info("Log filter changed", "from", old, "to", t.logLevel)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := width + 1
	panelX := dividerX + 2
	panelWidth := termWidth - panelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawGameBoy(frame)

	logsY := 1
	if t.config.ShowDebug && t.config.Debug != nil {
		data := debug.Extract(t.config.Debug, disasmHeight)
		t.drawRegisters(panelX, 1, panelWidth, data)
		t.drawDisassembly(panelX, registerHeight+2, panelWidth, data)
		logsY = registerHeight + disasmHeight + 3
	}
	t.drawLogs(panelX, logsY, panelWidth, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " Game Boy "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	startX := dividerX + 2
	logTitleY := 0
	if t.config.ShowDebug && t.config.Debug != nil {
		registerEndY := registerHeight + 1
		disasmEndY := registerEndY + disasmHeight + 1
		for _, y := range []int{registerEndY, disasmEndY} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}
		t.drawText(startX, 0, termWidth-startX, " CPU Registers ", titleStyle)
		t.drawText(startX, registerEndY, termWidth-startX, " Disassembly ", titleStyle)
		logTitleY = disasmEndY
	}
	logTitle := fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel)
	t.drawText(startX, logTitleY, termWidth-startX, logTitle, titleStyle)

	help := " F10=debug SPACE=pause N=step F=frame F5/F8=save/load F12=snapshot Q=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			bottom := uint8(0)
			if y+1 < height {
				bottom = frame.Shade(x, y+1)
			}
			glyph, fg, bg := render.HalfBlock(frame.Shade(x, y), bottom)
			style := tcell.StyleDefault.Foreground(shadeColors[fg]).Background(shadeColors[bg])
			t.screen.SetContent(x, y/2+1, glyph, nil, style)
		}
	}
}

func (t *Backend) drawRegisters(x, y, w int, data *debug.Data) {
	r := data.Registers
	onOff := map[bool]string{true: "ON", false: "OFF"}
	lines := []string{
		fmt.Sprintf("Status: %s", data.DebuggerState),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  %s", r.A, r.F, r.Flags()),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", r.B, r.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", r.D, r.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", r.H, r.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", r.SP, r.PC),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", onOff[data.IME], data.InterruptEnable, data.InterruptFlags),
		fmt.Sprintf("Halted: %s", onOff[data.Halted]),
		fmt.Sprintf("Cycles: %d", data.Cycles),
	}
	if a := data.Audio; a != nil {
		lines = append(lines, fmt.Sprintf("Audio: %s  buf=%d dropped=%d", onOff[a.Powered], a.Buffered, a.DroppedTotal))
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines[:min(len(lines), registerHeight)] {
		t.drawText(x, y+i, w, line, style)
	}
}

func (t *Backend) drawDisassembly(x, y, w int, data *debug.Data) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, l := range data.Disassembly {
		if i >= disasmHeight {
			break
		}
		marker, s := ' ', style
		if l.Current {
			marker, s = '→', currentStyle
		}
		t.drawText(x, y+i, w, fmt.Sprintf("%c0x%04X: %s", marker, l.Address, l.Instruction), s)
	}
}

func (t *Backend) drawLogs(x, y, w, termHeight int) {
	available := termHeight - y - 1
	if w <= 0 || available <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	for row, entry := range t.logBuffer.Recent(available, t.logLevel) {
		t.drawText(x, y+row, w, render.FormatLogEntry(entry), styles[entry.Level])
	}
}

func (t *Backend) drawText(x, y, w int, text string, style tcell.Style) {
	for i, ch := range []rune(render.Clip(text, w)) {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}
