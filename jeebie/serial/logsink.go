// Package serial provides the devices that can sit on the other end of the
// link port.
package serial

import (
	"log/slog"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// dmgTransferClocks is how long one byte takes with the internal 8192 Hz clock.
const dmgTransferClocks = 4096

// disconnectedRX is what SB holds after a transfer with nothing plugged in.
const disconnectedRX = 0xFF

// LogSink is a serial device with nothing connected that logs every byte the
// program sends as text. Test ROMs report their results this way.
type LogSink struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool

	line []byte
	sent strings.Builder
}

// LogSinkOption configures a LogSink.
type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after the DMG's 4096 clocks per byte
// instead of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger sends the text lines to logger instead of slog.Default().
func WithLogger(logger *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = logger } }

// NewLogSink creates a new logging serial device. irq is called when a
// transfer completes and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Write accepts SB and SC; other addresses are ignored.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

// Read returns SB or SC. Unused SC bits read as 1.
func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | 0x7E
	}
	return 0xFF
}

func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
	s.sent.Reset()
}

// Output returns every byte sent since the last Reset.
func (s *LogSink) Output() string {
	return s.sent.String()
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// only the internal clock (bit 0) drives a transfer with nothing connected
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	s.sent.WriteByte(b)
	if b == 0 || b == '\n' || b == '\r' {
		s.flushLine()
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = dmgTransferClocks
}

func (s *LogSink) flushLine() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

func (s *LogSink) completeTransfer() {
	s.sb = disconnectedRX
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}

// State is the serializable link port state.
type State struct {
	SB, SC         byte
	TransferActive bool
	Countdown      int
}

// State returns the port state for snapshots.
func (s *LogSink) State() State {
	return State{SB: s.sb, SC: s.sc, TransferActive: s.transferActive, Countdown: s.countdown}
}

// SetState restores the port from a snapshot.
func (s *LogSink) SetState(st State) {
	s.sb = st.SB
	s.sc = st.SC
	s.transferActive = st.TransferActive
	s.countdown = st.Countdown
}
