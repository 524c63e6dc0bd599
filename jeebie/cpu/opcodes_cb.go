package cpu

import "github.com/valerio/jeebie-core/jeebie/bit"

// opcodesCB is the 0xCB-prefixed table. Every row applies one operation to
// the operand selected by the low 3 bits.
var opcodesCB = buildCBTable()

// cbShifts are the operations of rows 0x00-0x3F, by bits 3-5.
var cbShifts = [8]func(*CPU, uint8) uint8{
	(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
	(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
}

func buildCBTable() [256]Opcode {
	var table [256]Opcode
	for op := range 256 {
		table[op] = cbOpcode(uint8(op))
	}
	return table
}

func cbOpcode(op uint8) Opcode {
	reg := op & 0x07
	n := (op >> 3) & 0x07

	cycles := 8
	if reg == 6 {
		cycles = 16
	}

	switch op >> 6 {
	case 0:
		shift := cbShifts[n]
		return func(c *CPU) int {
			c.setReg8(reg, shift(c, c.reg8(reg)))
			return cycles
		}
	case 1:
		if reg == 6 {
			// BIT only reads (HL)
			cycles = 12
		}
		return func(c *CPU) int {
			c.testBit(n, c.reg8(reg))
			return cycles
		}
	case 2:
		return func(c *CPU) int {
			c.setReg8(reg, bit.Reset(n, c.reg8(reg)))
			return cycles
		}
	default:
		return func(c *CPU) int {
			c.setReg8(reg, bit.Set(n, c.reg8(reg)))
			return cycles
		}
	}
}
