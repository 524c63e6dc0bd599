//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Backend implements the Backend interface using SDL2 bindings.
// Building it requires the SDL2 development libraries; default builds use
// the stub instead (see the sdl2 build tag).
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	config   backend.Config

	audio       *audioOut
	debugWindow *DebugWindow
}

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.ActionHandler = (*Backend)(nil)
)

func New() *Backend {
	return &Backend{
		pixels:      make([]byte, video.FramebufferSize*bytesPerPixel),
		debugWindow: NewDebugWindow(),
	}
}

// Init opens the window and, when the emulator has sound, the audio device.
func (s *Backend) Init(config backend.Config) error {
	s.config = config
	scale := config.Scale
	if scale <= 0 {
		scale = backend.DefaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	if config.Audio != nil {
		out, err := openAudio(config.Audio)
		if err != nil {
			slog.Warn("Audio disabled", "error", err)
		} else {
			s.audio = out
		}
	}

	if config.ShowDebug {
		s.toggleDebugWindow()
	}

	slog.Info("SDL2 backend initialized", "scale", scale, "audio", s.audio != nil)
	return nil
}

// Update queues audio, renders the frame and returns the input events that
// arrived since the last call.
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		events = s.handleEvent(e, events)
	}

	if s.audio != nil {
		if err := s.audio.pump(); err != nil {
			return events, err
		}
	}

	if err := s.renderFrame(frame); err != nil {
		return events, err
	}
	if s.config.Debug != nil {
		if err := s.debugWindow.Render(s.config.Debug.MMU()); err != nil {
			slog.Warn("Debug window render failed", "error", err)
		}
	}
	return events, nil
}

// Cleanup releases SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.audio != nil {
		s.audio.close()
	}
	s.debugWindow.Cleanup()
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// HandleAction processes actions the window reacts to itself.
func (s *Backend) HandleAction(act action.Action) {
	if act == action.EmulatorDebugToggle {
		s.toggleDebugWindow()
	}
}

func (s *Backend) handleEvent(e sdl.Event, events []backend.InputEvent) []backend.InputEvent {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		return append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_CLOSE && s.debugWindow.Owns(e.WindowID) {
			s.debugWindow.SetVisible(false)
		}

	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return events
		}
		switch {
		case e.Type == sdl.KEYUP:
			if act.IsGameInput() {
				events = append(events, backend.InputEvent{Action: act, Type: event.Release})
			}
		case e.Repeat != 0:
			if act.IsGameInput() {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		default:
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}
	return events
}

// sdlKeyNames maps SDL keys to the names used in input.DefaultKeyMap.
var sdlKeyNames = map[sdl.Keycode]string{
	sdl.K_RETURN: "Enter",
	sdl.K_RSHIFT: "Shift",
	sdl.K_LSHIFT: "Shift",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_SPACE:  "Space",
	sdl.K_ESCAPE: "Escape",
	sdl.K_F1:     "F1",
	sdl.K_F2:     "F2",
	sdl.K_F3:     "F3",
	sdl.K_F4:     "F4",
	sdl.K_F5:     "F5",
	sdl.K_F8:     "F8",
	sdl.K_F10:    "F10",
	sdl.K_F12:    "F12",
}

func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)
	for key, name := range sdlKeyNames {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	// printable keys: SDL keycodes of ASCII keys are the characters themselves
	for name, act := range input.DefaultKeyMap {
		if r := []rune(name); len(r) == 1 && r[0] < 0x80 {
			mapping[sdl.Keycode(r[0])] = act
		}
	}
	return mapping
}

var keyMapping = buildKeyMapping()

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	fillPixels(s.pixels, frame)
	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*bytesPerPixel); err != nil {
		return fmt.Errorf("texture update: %w", err)
	}

	_ = s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	_ = s.renderer.Clear()
	_ = s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

func (s *Backend) toggleDebugWindow() {
	if !s.debugWindow.IsInitialized() {
		if err := s.debugWindow.Init(); err != nil {
			slog.Warn("Failed to initialize debug window", "error", err)
			return
		}
	}
	visible := !s.debugWindow.IsVisible()
	s.debugWindow.SetVisible(visible)
	slog.Debug("Debug window visibility changed", "visible", visible)
}
