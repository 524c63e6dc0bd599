package video

import (
	"fmt"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
)

const (
	lineCycles        = 456
	oamScanCycles     = 80
	minTransferCycles = 172
	maxTransferCycles = 289
	windowPenalty     = 6
	visibleLines      = 144
	totalLines        = 154

	// FrameCycles is the length of a frame in clocks.
	FrameCycles = lineCycles * totalLines
)

// Bus is the PPU's view of the memory bus.
type Bus interface {
	Read(address uint16) byte
	VRAMReader
	OAMReader
	SetLY(line uint8)
	SetLCDMode(mode uint8)
	SetCoincidence(on bool)
	RequestInterrupt(interrupt addr.Interrupt)
}

// GPU is the DMG pixel pipeline: a per-scanline mode state machine that
// renders a line when it enters pixel transfer and raises the VBlank and STAT
// interrupts.
type GPU struct {
	bus         Bus
	oam         *OAM
	framebuffer *FrameBuffer

	mode           Mode
	line           int
	cycles         int // clocks into the current line
	transferCycles int

	windowLine      int
	windowTriggered bool

	// statLine is the OR of the enabled STAT sources; the interrupt fires on
	// its rising edge.
	statLine bool

	lcdOn     bool
	offCycles int

	frameReady bool
	frames     uint64
	debug      bool

	bgIndex [FramebufferWidth]uint8
}

type Option func(*GPU)

// WithDebug logs mode and frame events at debug level.
func WithDebug(on bool) Option { return func(g *GPU) { g.debug = on } }

func NewGpu(bus Bus, opts ...Option) *GPU {
	g := &GPU{
		bus:         bus,
		oam:         NewOAM(bus),
		framebuffer: NewFrameBuffer(),
		mode:        HBlank,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FrameBuffer returns the buffer the PPU renders into; it is overwritten in
// place every frame.
func (g *GPU) FrameBuffer() *FrameBuffer { return g.framebuffer }

// TakeFrame reports whether a frame completed since the last call.
func (g *GPU) TakeFrame() bool {
	ready := g.frameReady
	g.frameReady = false
	return ready
}

func (g *GPU) Frames() uint64 { return g.frames }
func (g *GPU) Line() int      { return g.line }
func (g *GPU) Mode() Mode     { return g.mode }

// Tick advances the PPU by the given number of clocks.
func (g *GPU) Tick(cycles int) {
	lcdc := LCDControl(g.bus.Read(addr.LCDC))
	if !lcdc.Enabled() {
		g.tickOff(cycles)
		return
	}
	if !g.lcdOn {
		g.switchOn()
	}

	// LYC and the STAT enables may have been written since the last tick.
	g.updateStat()

	for cycles > 0 {
		step := min(cycles, g.untilNextEvent())
		g.cycles += step
		cycles -= step
		if g.untilNextEvent() <= 0 {
			g.advance()
		}
	}
}

func (g *GPU) untilNextEvent() int {
	switch g.mode {
	case OAMScan:
		return oamScanCycles - g.cycles
	case PixelTransfer:
		return oamScanCycles + g.transferCycles - g.cycles
	}
	return lineCycles - g.cycles
}

func (g *GPU) advance() {
	switch g.mode {
	case OAMScan:
		g.enterTransfer()
	case PixelTransfer:
		g.setMode(HBlank)
	case HBlank, VBlank:
		g.cycles -= lineCycles
		g.nextLine()
	}
}

func (g *GPU) nextLine() {
	g.line++
	if g.line == totalLines {
		g.line = 0
		g.windowLine = 0
		g.windowTriggered = false
	}
	g.bus.SetLY(uint8(g.line))

	switch {
	case g.line < visibleLines:
		g.setMode(OAMScan)
	case g.line == visibleLines:
		g.setMode(VBlank)
		g.bus.RequestInterrupt(addr.VBlankInterrupt)
		g.frameReady = true
		g.frames++
		if g.debug {
			slog.Debug("gpu", "frame", g.frames)
		}
	default:
		g.updateStat()
	}
}

func (g *GPU) setMode(mode Mode) {
	g.mode = mode
	g.bus.SetLCDMode(uint8(mode))
	g.updateStat()
}

func (g *GPU) updateStat() {
	coincidence := g.line == int(g.bus.Read(addr.LYC))
	g.bus.SetCoincidence(coincidence)

	stat := LCDStatus(g.bus.Read(addr.STAT))
	line := stat.ModeIRQ(g.mode) || (coincidence && stat.LYCIRQ())
	if line && !g.statLine {
		g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	g.statLine = line
}

func (g *GPU) enterTransfer() {
	lcdc := LCDControl(g.bus.Read(addr.LCDC))
	if lcdc.WindowOn() && g.line == int(g.bus.Read(addr.WY)) {
		g.windowTriggered = true
	}

	window, sprites := g.renderLine(lcdc)
	g.transferCycles = transferLength(g.bus.Read(addr.SCX), window, sprites)
	g.setMode(PixelTransfer)
}

// transferLength is the mode 3 duration: 172 clocks plus the fine scroll
// discard, the window restart and the per-sprite fetch stalls, capped at 289.
func transferLength(scx uint8, window bool, sprites []Sprite) int {
	n := minTransferCycles + int(scx%8)
	if window {
		n += windowPenalty
	}
	for _, s := range sprites {
		offset := ((s.X+int(scx))%8 + 8) % 8
		n += 6 + max(0, 5-offset)
	}
	return min(n, maxTransferCycles)
}

// renderLine draws the current line into the frame buffer.
func (g *GPU) renderLine(lcdc LCDControl) (window bool, sprites []Sprite) {
	ly := g.line
	clear(g.bgIndex[:])

	// On DMG, LCDC bit 0 blanks both background and window to white,
	// whatever BGP says.
	if lcdc.BackgroundOn() {
		g.drawBackground(lcdc)
		window = g.drawWindow(lcdc)

		bgp := g.bus.Read(addr.BGP)
		for x := range FramebufferWidth {
			g.framebuffer.SetShade(x, ly, paletteShade(bgp, g.bgIndex[x]))
		}
	} else {
		for x := range FramebufferWidth {
			g.framebuffer.SetShade(x, ly, 0)
		}
	}

	if lcdc.SpritesOn() {
		sprites = g.oam.GetSpritesForScanline(ly, lcdc.SpriteHeight())
		g.drawSprites(sprites)
	}
	return window, sprites
}

func (g *GPU) drawBackground(lcdc LCDControl) {
	scx := g.bus.Read(addr.SCX)
	y := uint8(g.line) + g.bus.Read(addr.SCY)
	mapRow := lcdc.BackgroundMap() + uint16(y/8)*32

	for x := range FramebufferWidth {
		px := uint8(x) + scx
		tile := g.bus.VRAM(mapRow + uint16(px/8))
		row := FetchTileRow(g.bus, lcdc.TileAddress(tile), int(y%8))
		g.bgIndex[x] = row.GetPixel(int(px % 8))
	}
}

func (g *GPU) drawWindow(lcdc LCDControl) bool {
	wx := int(g.bus.Read(addr.WX)) - 7
	if !lcdc.WindowOn() || !g.windowTriggered || wx >= FramebufferWidth {
		return false
	}

	y := g.windowLine
	mapRow := lcdc.WindowMap() + uint16(y/8)*32
	for x := max(wx, 0); x < FramebufferWidth; x++ {
		px := x - wx
		tile := g.bus.VRAM(mapRow + uint16(px/8))
		row := FetchTileRow(g.bus, lcdc.TileAddress(tile), y%8)
		g.bgIndex[x] = row.GetPixel(px % 8)
	}
	g.windowLine++
	return true
}

func (g *GPU) drawSprites(sprites []Sprite) {
	obp0 := g.bus.Read(addr.OBP0)
	obp1 := g.bus.Read(addr.OBP1)

	for i := range sprites {
		s := &sprites[i]
		palette := obp0
		if s.PaletteOBP1 {
			palette = obp1
		}
		for px := range 8 {
			x := s.X + px
			if x < 0 || x >= FramebufferWidth || !s.HasPriorityForPixel(px) {
				continue
			}
			if s.BehindBG && g.bgIndex[x] != 0 {
				continue
			}
			g.framebuffer.SetShade(x, g.line, paletteShade(palette, s.ColorAt(px)))
		}
	}
}

// paletteShade maps a color index through a BGP/OBP register.
func paletteShade(palette, index uint8) uint8 {
	return (palette >> (index * 2)) & 0x03
}

// tickOff keeps frame pacing while the LCD is off, presenting blank frames.
func (g *GPU) tickOff(cycles int) {
	if g.lcdOn {
		g.lcdOn = false
		g.line = 0
		g.cycles = 0
		g.mode = HBlank
		g.statLine = false
		g.bus.SetLY(0)
		g.bus.SetLCDMode(uint8(HBlank))
		g.framebuffer.Clear()
		if g.debug {
			slog.Debug("gpu", "lcd", "off")
		}
	}

	g.offCycles += cycles
	if g.offCycles >= FrameCycles {
		g.offCycles -= FrameCycles
		g.frameReady = true
		g.frames++
	}
}

func (g *GPU) switchOn() {
	g.lcdOn = true
	g.line = 0
	g.cycles = 0
	g.offCycles = 0
	g.windowLine = 0
	g.windowTriggered = false
	g.bus.SetLY(0)
	g.setMode(OAMScan)
	if g.debug {
		slog.Debug("gpu", "lcd", "on")
	}
}

// State is the serializable PPU state.
type State struct {
	Mode            Mode
	Line            int
	Cycles          int
	TransferCycles  int
	WindowLine      int
	WindowTriggered bool
	StatLine        bool
	LCDOn           bool
	OffCycles       int
	FrameReady      bool
	Frames          uint64
	Frame           []uint8
}

// Validate checks that s can be restored.
func (s State) Validate() error {
	if len(s.Frame) != FramebufferSize {
		return fmt.Errorf("gpu state: frame has %d pixels, want %d", len(s.Frame), FramebufferSize)
	}
	if s.Line < 0 || s.Line >= totalLines {
		return fmt.Errorf("gpu state: line %d out of range", s.Line)
	}
	return nil
}

func (g *GPU) State() State {
	return State{
		Mode:            g.mode,
		Line:            g.line,
		Cycles:          g.cycles,
		TransferCycles:  g.transferCycles,
		WindowLine:      g.windowLine,
		WindowTriggered: g.windowTriggered,
		StatLine:        g.statLine,
		LCDOn:           g.lcdOn,
		OffCycles:       g.offCycles,
		FrameReady:      g.frameReady,
		Frames:          g.frames,
		Frame:           g.framebuffer.Snapshot(),
	}
}

func (g *GPU) SetState(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	g.mode = s.Mode
	g.line = s.Line
	g.cycles = s.Cycles
	g.transferCycles = s.TransferCycles
	g.windowLine = s.WindowLine
	g.windowTriggered = s.WindowTriggered
	g.statLine = s.StatLine
	g.lcdOn = s.LCDOn
	g.offCycles = s.OffCycles
	g.frameReady = s.FrameReady
	g.frames = s.Frames
	g.framebuffer.Restore(s.Frame)
	return nil
}
