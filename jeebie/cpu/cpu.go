package cpu

import (
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/emuerr"
)

// Bus provides the interface for component communication
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
	DMAActive() bool
}

const (
	// interruptDispatchCycles is the cost of pushing PC and jumping to a vector.
	interruptDispatchCycles = 20
	// idleCycles is what a step costs while halted, stopped or stalled by DMA.
	idleCycles = 4
)

// CPU is the main struct holding SM83 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	eiPending         bool // EI delay: interrupts enable after next instruction
	currentOpcode     uint16
	stopped           bool
	cycles            uint64
	halted            bool

	// haltBug makes the next fetch skip the PC increment, so the byte after
	// HALT is read twice. Set by HALT with IME clear and an interrupt pending.
	haltBug bool

	// fault is set by an opcode that cannot continue, and returned by Step.
	fault error

	trace       bool
	exitOpcodes bool

	bus Bus
}

// Option configures a CPU at construction.
type Option func(*CPU)

// WithTrace logs every executed instruction at debug level.
func WithTrace(on bool) Option { return func(c *CPU) { c.trace = on } }

// WithExitOpcodes makes 0xFC and 0xFD report a passed or failed test run
// instead of being undefined.
func WithExitOpcodes(on bool) Option { return func(c *CPU) { c.exitOpcodes = on } }

// initializeMemory writes the I/O registers as the boot ROM leaves them.
// The sound unit sets its own power-up values.
func initializeMemory(bus Bus) {
	bus.Write(addr.P1, 0xCF)
	bus.Write(addr.TIMA, 0x00)
	bus.Write(addr.TMA, 0x00)
	bus.Write(addr.TAC, 0x00)
	bus.Write(addr.LCDC, 0x91)
	bus.Write(addr.SCY, 0x00)
	bus.Write(addr.SCX, 0x00)
	bus.Write(addr.LYC, 0x00)
	bus.Write(addr.BGP, 0xFC)
	bus.Write(addr.OBP0, 0xFF)
	bus.Write(addr.OBP1, 0xFF)
	bus.Write(addr.WY, 0x00)
	bus.Write(addr.WX, 0x00)
	bus.Write(addr.IE, 0x00)
}

// New returns a CPU in the state the boot ROM hands over to the cartridge.
func New(bus Bus, opts ...Option) *CPU {
	initializeMemory(bus)

	cpu := &CPU{
		bus: bus,
	}
	for _, opt := range opts {
		opt(cpu)
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	return cpu
}

// Step runs one unit of work: an interrupt dispatch, one instruction, or an
// idle slot while halted, stopped or stalled by OAM DMA. It returns the
// clocks consumed. The error is non-nil for an undefined opcode and for the
// test exit opcodes; the CPU state is left as it was before the fetch.
func (c *CPU) Step() (int, error) {
	if c.bus.DMAActive() {
		return c.idle()
	}

	pending := c.pendingInterrupts()

	if c.stopped {
		if c.bus.Read(addr.IF)&uint8(addr.JoypadInterrupt) == 0 {
			return c.idle()
		}
		c.stopped = false
		pending = c.pendingInterrupts()
	}

	if c.halted {
		if pending == 0 {
			return c.idle()
		}
		c.halted = false
	}

	if c.interruptsEnabled && pending != 0 {
		c.dispatch(pending.Highest())
		c.cycles += interruptDispatchCycles
		return interruptDispatchCycles, nil
	}

	if c.trace {
		slog.Debug("cpu", "trace", c.TraceLine())
	}

	start := c.pc
	instruction := Decode(c)

	// After HALT with the bug, the opcode byte is read again as the next
	// instruction's first byte: skip the first PC increment.
	skipFirstPCInc := c.haltBug
	c.haltBug = false
	if !skipFirstPCInc {
		c.pc++
	}
	if bit.High(c.currentOpcode) == 0xCB {
		c.pc++
	}

	enableInterrupts := c.eiPending
	cycles := instruction(c)

	if c.fault != nil {
		err := c.fault
		c.fault = nil
		c.pc = start
		return cycles, err
	}
	c.cycles += uint64(cycles)

	// EI takes effect after the instruction that follows it, unless that
	// instruction was DI.
	if enableInterrupts && c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	return cycles, nil
}

func (c *CPU) idle() (int, error) {
	c.cycles += idleCycles
	return idleCycles, nil
}

// pendingInterrupts returns the interrupts that are both requested and enabled.
func (c *CPU) pendingInterrupts() addr.Interrupt {
	return addr.Interrupt(c.bus.Read(addr.IE)&c.bus.Read(addr.IF)) & addr.AllInterrupts
}

// dispatch services an interrupt: IME is cleared, the IF bit is cleared, PC
// is pushed and execution continues at the vector. A pending halt bug (EI
// directly before HALT) returns to the HALT itself.
func (c *CPU) dispatch(interrupt addr.Interrupt) {
	c.interruptsEnabled = false
	c.eiPending = false
	c.bus.Write(addr.IF, c.bus.Read(addr.IF)&^uint8(interrupt))
	ret := c.pc
	if c.haltBug {
		c.haltBug = false
		ret--
	}
	c.pushStack(ret)
	c.pc = interrupt.Vector()
}

// halt enters low power mode. With IME clear and an interrupt already
// pending, the CPU does not halt and the halt bug triggers instead.
func (c *CPU) halt() {
	if !c.interruptsEnabled && c.pendingInterrupts() != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}

// stop enters STOP mode. The divider is reset and stays frozen until a new
// joypad press wakes the CPU; a press requested before STOP does not count.
func (c *CPU) stop() {
	c.bus.Write(addr.DIV, 0)
	c.bus.Write(addr.IF, c.bus.Read(addr.IF)&^uint8(addr.JoypadInterrupt))
	c.stopped = true
}

func (c *CPU) undefined() int {
	op := uint8(c.currentOpcode)
	if c.exitOpcodes {
		switch op {
		case 0xFC:
			c.fault = emuerr.New(emuerr.UnitTestPassed, "test passed at 0x%04X", c.pc-1)
			return idleCycles
		case 0xFD:
			c.fault = emuerr.New(emuerr.UnitTestFailed, "test failed at 0x%04X", c.pc-1)
			return idleCycles
		}
	}
	c.fault = emuerr.New(emuerr.InvalidOpcode, "opcode 0x%02X at 0x%04X", op, c.pc-1)
	return idleCycles
}

// peekImmediate returns the byte at the memory address pointed by the PC
// this value is known as immediate ('n' in mnemonics), some opcodes use it as a parameter
func (c *CPU) peekImmediate() uint8 {
	return c.bus.Read(c.pc)
}

// peekImmediateWord returns the two bytes at the memory address pointed by PC and PC+1
// this value is known as immediate ('nn' in mnemonics), some opcodes use it as a parameter
func (c *CPU) peekImmediateWord() uint16 {
	low := c.bus.Read(c.pc)
	high := c.bus.Read(c.pc + 1)
	return bit.Combine(high, low)
}

// readImmediate acts similarly as its peek counterpart, but increments the PC once after reading
func (c *CPU) readImmediate() uint8 {
	n := c.peekImmediate()
	c.pc++
	return n
}

// readImmediateWord acts similarly as its peek counterpart, but increments the PC twice after reading
func (c *CPU) readImmediateWord() uint16 {
	nn := c.peekImmediateWord()
	c.pc += 2
	return nn
}

// readSignedImmediate reads a two's complement offset ('e' in mnemonics).
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }

// Cycles returns the clocks consumed since power on.
func (c *CPU) Cycles() uint64 { return c.cycles }

// IME reports the interrupt master enable.
func (c *CPU) IME() bool { return c.interruptsEnabled }

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU is in STOP mode.
func (c *CPU) Stopped() bool { return c.stopped }

// State is the serializable CPU state.
type State struct {
	Registers Registers
	IME       bool
	EIPending bool
	Halted    bool
	Stopped   bool
	HaltBug   bool
	Cycles    uint64
}

// State captures registers and execution mode.
func (c *CPU) State() State {
	return State{
		Registers: c.Registers(),
		IME:       c.interruptsEnabled,
		EIPending: c.eiPending,
		Halted:    c.halted,
		Stopped:   c.stopped,
		HaltBug:   c.haltBug,
		Cycles:    c.cycles,
	}
}

// SetState restores a snapshot taken with State.
func (c *CPU) SetState(s State) {
	c.SetRegisters(s.Registers)
	c.interruptsEnabled = s.IME
	c.eiPending = s.EIPending
	c.halted = s.Halted
	c.stopped = s.Stopped
	c.haltBug = s.HaltBug
	c.cycles = s.Cycles
}
