// Package debug extracts emulator state for on-screen debug panels and
// writes PNG snapshots of the screen and of video memory.
package debug

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// Source is the emulator as seen by debug displays.
type Source interface {
	CPU() *cpu.CPU
	MMU() *memory.MMU
	APU() *audio.APU
	Paused() bool
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
)

func (s DebuggerState) String() string {
	if s == DebuggerPaused {
		return "PAUSED"
	}
	return "RUNNING"
}

// DisasmLine is one decoded instruction.
type DisasmLine struct {
	Address     uint16
	Instruction string
	Current     bool
}

// Data contains all debug information needed by debug displays
type Data struct {
	Registers       cpu.Registers
	IME             bool
	Halted          bool
	Cycles          uint64
	InterruptEnable uint8
	InterruptFlags  uint8
	DebuggerState   DebuggerState
	Disassembly     []DisasmLine
	Audio           *AudioData
}

// Extract snapshots src, disassembling n instructions starting at PC.
func Extract(src Source, n int) *Data {
	c, mem := src.CPU(), src.MMU()
	d := &Data{
		Registers:       c.Registers(),
		IME:             c.IME(),
		Halted:          c.Halted(),
		Cycles:          c.Cycles(),
		InterruptEnable: mem.Read(addr.IE),
		InterruptFlags:  mem.Read(addr.IF),
		Disassembly:     Disassemble(mem, c.PC(), n),
		Audio:           ExtractAudioData(src.APU()),
	}
	if src.Paused() {
		d.DebuggerState = DebuggerPaused
	}
	return d
}

// Disassemble decodes n instructions forward from pc.
func Disassemble(bus cpu.Reader, pc uint16, n int) []DisasmLine {
	lines := make([]DisasmLine, 0, n)
	at := pc
	for range n {
		text, length := cpu.Disassemble(bus, at)
		lines = append(lines, DisasmLine{Address: at, Instruction: text, Current: at == pc})
		at += uint16(length)
	}
	return lines
}
