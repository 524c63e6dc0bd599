package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Opcode represents a function that executes an opcode and returns the
// clocks it took.
type Opcode func(*CPU) int

// opcodes is the base instruction table. The irregular rows are listed by
// hand; 0x40-0xBF (LD r,r' and the ALU block) are generated.
var opcodes = [256]Opcode{
	0x00: opcode0x00, 0x01: opcode0x01, 0x02: opcode0x02, 0x03: opcode0x03,
	0x04: opcode0x04, 0x05: opcode0x05, 0x06: opcode0x06, 0x07: opcode0x07,
	0x08: opcode0x08, 0x09: opcode0x09, 0x0A: opcode0x0A, 0x0B: opcode0x0B,
	0x0C: opcode0x0C, 0x0D: opcode0x0D, 0x0E: opcode0x0E, 0x0F: opcode0x0F,
	0x10: opcode0x10, 0x11: opcode0x11, 0x12: opcode0x12, 0x13: opcode0x13,
	0x14: opcode0x14, 0x15: opcode0x15, 0x16: opcode0x16, 0x17: opcode0x17,
	0x18: opcode0x18, 0x19: opcode0x19, 0x1A: opcode0x1A, 0x1B: opcode0x1B,
	0x1C: opcode0x1C, 0x1D: opcode0x1D, 0x1E: opcode0x1E, 0x1F: opcode0x1F,
	0x20: opcode0x20, 0x21: opcode0x21, 0x22: opcode0x22, 0x23: opcode0x23,
	0x24: opcode0x24, 0x25: opcode0x25, 0x26: opcode0x26, 0x27: opcode0x27,
	0x28: opcode0x28, 0x29: opcode0x29, 0x2A: opcode0x2A, 0x2B: opcode0x2B,
	0x2C: opcode0x2C, 0x2D: opcode0x2D, 0x2E: opcode0x2E, 0x2F: opcode0x2F,
	0x30: opcode0x30, 0x31: opcode0x31, 0x32: opcode0x32, 0x33: opcode0x33,
	0x34: opcode0x34, 0x35: opcode0x35, 0x36: opcode0x36, 0x37: opcode0x37,
	0x38: opcode0x38, 0x39: opcode0x39, 0x3A: opcode0x3A, 0x3B: opcode0x3B,
	0x3C: opcode0x3C, 0x3D: opcode0x3D, 0x3E: opcode0x3E, 0x3F: opcode0x3F,
	0x76: opcode0x76,
	0xC0: opcode0xC0, 0xC1: opcode0xC1, 0xC2: opcode0xC2, 0xC3: opcode0xC3,
	0xC4: opcode0xC4, 0xC5: opcode0xC5, 0xC6: opcode0xC6, 0xC7: opcode0xC7,
	0xC8: opcode0xC8, 0xC9: opcode0xC9, 0xCA: opcode0xCA, 0xCB: undefinedOpcode,
	0xCC: opcode0xCC, 0xCD: opcode0xCD, 0xCE: opcode0xCE, 0xCF: opcode0xCF,
	0xD0: opcode0xD0, 0xD1: opcode0xD1, 0xD2: opcode0xD2, 0xD3: undefinedOpcode,
	0xD4: opcode0xD4, 0xD5: opcode0xD5, 0xD6: opcode0xD6, 0xD7: opcode0xD7,
	0xD8: opcode0xD8, 0xD9: opcode0xD9, 0xDA: opcode0xDA, 0xDB: undefinedOpcode,
	0xDC: opcode0xDC, 0xDD: undefinedOpcode, 0xDE: opcode0xDE, 0xDF: opcode0xDF,
	0xE0: opcode0xE0, 0xE1: opcode0xE1, 0xE2: opcode0xE2, 0xE3: undefinedOpcode,
	0xE4: undefinedOpcode, 0xE5: opcode0xE5, 0xE6: opcode0xE6, 0xE7: opcode0xE7,
	0xE8: opcode0xE8, 0xE9: opcode0xE9, 0xEA: opcode0xEA, 0xEB: undefinedOpcode,
	0xEC: undefinedOpcode, 0xED: undefinedOpcode, 0xEE: opcode0xEE, 0xEF: opcode0xEF,
	0xF0: opcode0xF0, 0xF1: opcode0xF1, 0xF2: opcode0xF2, 0xF3: opcode0xF3,
	0xF4: undefinedOpcode, 0xF5: opcode0xF5, 0xF6: opcode0xF6, 0xF7: opcode0xF7,
	0xF8: opcode0xF8, 0xF9: opcode0xF9, 0xFA: opcode0xFA, 0xFB: opcode0xFB,
	0xFC: undefinedOpcode, 0xFD: undefinedOpcode, 0xFE: opcode0xFE, 0xFF: opcode0xFF,
}

func init() {
	for op := 0x40; op <= 0xBF; op++ {
		if op == 0x76 {
			continue
		}
		opcodes[op] = blockOpcode(uint8(op))
	}
}

// blockOpcode builds LD r,r' (0x40-0x7F) and ALU A,r (0x80-0xBF). Operand
// index 6 is (HL), which costs an extra memory access.
func blockOpcode(op uint8) Opcode {
	src := op & 0x07
	dst := (op >> 3) & 0x07
	cycles := 4
	if src == 6 || (op < 0x80 && dst == 6) {
		cycles = 8
	}

	if op < 0x80 {
		return func(c *CPU) int {
			c.setReg8(dst, c.reg8(src))
			return cycles
		}
	}
	return func(c *CPU) int {
		c.alu(dst, c.reg8(src))
		return cycles
	}
}

func undefinedOpcode(c *CPU) int {
	return c.undefined()
}

// NOP
// #0x00:
func opcode0x00(_ *CPU) int {
	return 4
}

// LD BC, nn
// #0x01:
func opcode0x01(c *CPU) int {
	c.setBC(c.readImmediateWord())
	return 12
}

// LD (BC), A
// #0x02:
func opcode0x02(c *CPU) int {
	c.bus.Write(c.getBC(), c.a)
	return 8
}

// INC BC
// #0x03:
func opcode0x03(c *CPU) int {
	c.setBC(c.getBC() + 1)
	return 8
}

// INC B
// #0x04:
func opcode0x04(c *CPU) int {
	c.inc(&c.b)
	return 4
}

// DEC B
// #0x05:
func opcode0x05(c *CPU) int {
	c.dec(&c.b)
	return 4
}

// LD B, n
// #0x06:
func opcode0x06(c *CPU) int {
	c.b = c.readImmediate()
	return 8
}

// RLCA
// #0x07:
func opcode0x07(c *CPU) int {
	c.a = c.rlc(c.a)
	c.resetFlag(zeroFlag)
	return 4
}

// LD (nn), SP
// #0x08:
func opcode0x08(c *CPU) int {
	address := c.readImmediateWord()
	c.bus.Write(address, bit.Low(c.sp))
	c.bus.Write(address+1, bit.High(c.sp))
	return 20
}

// ADD HL, BC
// #0x09:
func opcode0x09(c *CPU) int {
	c.addToHL(c.getBC())
	return 8
}

// LD A, (BC)
// #0x0A:
func opcode0x0A(c *CPU) int {
	c.a = c.bus.Read(c.getBC())
	return 8
}

// DEC BC
// #0x0B:
func opcode0x0B(c *CPU) int {
	c.setBC(c.getBC() - 1)
	return 8
}

// INC C
// #0x0C:
func opcode0x0C(c *CPU) int {
	c.inc(&c.c)
	return 4
}

// DEC C
// #0x0D:
func opcode0x0D(c *CPU) int {
	c.dec(&c.c)
	return 4
}

// LD C, n
// #0x0E:
func opcode0x0E(c *CPU) int {
	c.c = c.readImmediate()
	return 8
}

// RRCA
// #0x0F:
func opcode0x0F(c *CPU) int {
	c.a = c.rrc(c.a)
	c.resetFlag(zeroFlag)
	return 4
}

// STOP
// #0x10:
func opcode0x10(c *CPU) int {
	c.readImmediate()
	c.stop()
	return 4
}

// LD DE, nn
// #0x11:
func opcode0x11(c *CPU) int {
	c.setDE(c.readImmediateWord())
	return 12
}

// LD (DE), A
// #0x12:
func opcode0x12(c *CPU) int {
	c.bus.Write(c.getDE(), c.a)
	return 8
}

// INC DE
// #0x13:
func opcode0x13(c *CPU) int {
	c.setDE(c.getDE() + 1)
	return 8
}

// INC D
// #0x14:
func opcode0x14(c *CPU) int {
	c.inc(&c.d)
	return 4
}

// DEC D
// #0x15:
func opcode0x15(c *CPU) int {
	c.dec(&c.d)
	return 4
}

// LD D, n
// #0x16:
func opcode0x16(c *CPU) int {
	c.d = c.readImmediate()
	return 8
}

// RLA
// #0x17:
func opcode0x17(c *CPU) int {
	c.a = c.rl(c.a)
	c.resetFlag(zeroFlag)
	return 4
}

// JR n
// #0x18:
func opcode0x18(c *CPU) int {
	c.jr()
	return 12
}

// ADD HL, DE
// #0x19:
func opcode0x19(c *CPU) int {
	c.addToHL(c.getDE())
	return 8
}

// LD A, (DE)
// #0x1A:
func opcode0x1A(c *CPU) int {
	c.a = c.bus.Read(c.getDE())
	return 8
}

// DEC DE
// #0x1B:
func opcode0x1B(c *CPU) int {
	c.setDE(c.getDE() - 1)
	return 8
}

// INC E
// #0x1C:
func opcode0x1C(c *CPU) int {
	c.inc(&c.e)
	return 4
}

// DEC E
// #0x1D:
func opcode0x1D(c *CPU) int {
	c.dec(&c.e)
	return 4
}

// LD E, n
// #0x1E:
func opcode0x1E(c *CPU) int {
	c.e = c.readImmediate()
	return 8
}

// RRA
// #0x1F:
func opcode0x1F(c *CPU) int {
	c.a = c.rr(c.a)
	c.resetFlag(zeroFlag)
	return 4
}

// JR NZ, n
// #0x20:
func opcode0x20(c *CPU) int {
	return c.jrIf(!c.isSetFlag(zeroFlag))
}

// LD HL, nn
// #0x21:
func opcode0x21(c *CPU) int {
	c.setHL(c.readImmediateWord())
	return 12
}

// LDI (HL), A
// #0x22:
func opcode0x22(c *CPU) int {
	c.bus.Write(c.getHL(), c.a)
	c.setHL(c.getHL() + 1)
	return 8
}

// INC HL
// #0x23:
func opcode0x23(c *CPU) int {
	c.setHL(c.getHL() + 1)
	return 8
}

// INC H
// #0x24:
func opcode0x24(c *CPU) int {
	c.inc(&c.h)
	return 4
}

// DEC H
// #0x25:
func opcode0x25(c *CPU) int {
	c.dec(&c.h)
	return 4
}

// LD H, n
// #0x26:
func opcode0x26(c *CPU) int {
	c.h = c.readImmediate()
	return 8
}

// DAA
// #0x27:
func opcode0x27(c *CPU) int {
	c.daa()
	return 4
}

// JR Z, n
// #0x28:
func opcode0x28(c *CPU) int {
	return c.jrIf(c.isSetFlag(zeroFlag))
}

// ADD HL, HL
// #0x29:
func opcode0x29(c *CPU) int {
	c.addToHL(c.getHL())
	return 8
}

// LDI A, (HL)
// #0x2A:
func opcode0x2A(c *CPU) int {
	c.a = c.bus.Read(c.getHL())
	c.setHL(c.getHL() + 1)
	return 8
}

// DEC HL
// #0x2B:
func opcode0x2B(c *CPU) int {
	c.setHL(c.getHL() - 1)
	return 8
}

// INC L
// #0x2C:
func opcode0x2C(c *CPU) int {
	c.inc(&c.l)
	return 4
}

// DEC L
// #0x2D:
func opcode0x2D(c *CPU) int {
	c.dec(&c.l)
	return 4
}

// LD L, n
// #0x2E:
func opcode0x2E(c *CPU) int {
	c.l = c.readImmediate()
	return 8
}

// CPL
// #0x2F:
func opcode0x2F(c *CPU) int {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
	return 4
}

// JR NC, n
// #0x30:
func opcode0x30(c *CPU) int {
	return c.jrIf(!c.isSetFlag(carryFlag))
}

// LD SP, nn
// #0x31:
func opcode0x31(c *CPU) int {
	c.sp = c.readImmediateWord()
	return 12
}

// LDD (HL), A
// #0x32:
func opcode0x32(c *CPU) int {
	c.bus.Write(c.getHL(), c.a)
	c.setHL(c.getHL() - 1)
	return 8
}

// INC SP
// #0x33:
func opcode0x33(c *CPU) int {
	c.sp++
	return 8
}

// INC (HL)
// #0x34:
func opcode0x34(c *CPU) int {
	c.incMem()
	return 12
}

// DEC (HL)
// #0x35:
func opcode0x35(c *CPU) int {
	c.decMem()
	return 12
}

// LD (HL), n
// #0x36:
func opcode0x36(c *CPU) int {
	c.bus.Write(c.getHL(), c.readImmediate())
	return 12
}

// SCF
// #0x37:
func opcode0x37(c *CPU) int {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
	return 4
}

// JR C, n
// #0x38:
func opcode0x38(c *CPU) int {
	return c.jrIf(c.isSetFlag(carryFlag))
}

// ADD HL, SP
// #0x39:
func opcode0x39(c *CPU) int {
	c.addToHL(c.sp)
	return 8
}

// LDD A, (HL)
// #0x3A:
func opcode0x3A(c *CPU) int {
	c.a = c.bus.Read(c.getHL())
	c.setHL(c.getHL() - 1)
	return 8
}

// DEC SP
// #0x3B:
func opcode0x3B(c *CPU) int {
	c.sp--
	return 8
}

// INC A
// #0x3C:
func opcode0x3C(c *CPU) int {
	c.inc(&c.a)
	return 4
}

// DEC A
// #0x3D:
func opcode0x3D(c *CPU) int {
	c.dec(&c.a)
	return 4
}

// LD A, n
// #0x3E:
func opcode0x3E(c *CPU) int {
	c.a = c.readImmediate()
	return 8
}

// CCF
// #0x3F:
func opcode0x3F(c *CPU) int {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
	return 4
}

// HALT
// #0x76:
func opcode0x76(c *CPU) int {
	c.halt()
	return 4
}

// RET NZ
// #0xC0:
func opcode0xC0(c *CPU) int {
	return c.retIf(!c.isSetFlag(zeroFlag))
}

// POP BC
// #0xC1:
func opcode0xC1(c *CPU) int {
	c.setBC(c.popStack())
	return 12
}

// JP NZ, nn
// #0xC2:
func opcode0xC2(c *CPU) int {
	return c.jpIf(!c.isSetFlag(zeroFlag))
}

// JP nn
// #0xC3:
func opcode0xC3(c *CPU) int {
	c.pc = c.readImmediateWord()
	return 16
}

// CALL NZ, nn
// #0xC4:
func opcode0xC4(c *CPU) int {
	return c.callIf(!c.isSetFlag(zeroFlag))
}

// PUSH BC
// #0xC5:
func opcode0xC5(c *CPU) int {
	c.pushStack(c.getBC())
	return 16
}

// ADD A, n
// #0xC6:
func opcode0xC6(c *CPU) int {
	c.addToA(c.readImmediate(), false)
	return 8
}

// RST 0x00
// #0xC7:
func opcode0xC7(c *CPU) int {
	return c.rst(0x00)
}

// RET Z
// #0xC8:
func opcode0xC8(c *CPU) int {
	return c.retIf(c.isSetFlag(zeroFlag))
}

// RET
// #0xC9:
func opcode0xC9(c *CPU) int {
	c.pc = c.popStack()
	return 16
}

// JP Z, nn
// #0xCA:
func opcode0xCA(c *CPU) int {
	return c.jpIf(c.isSetFlag(zeroFlag))
}

// CALL Z, nn
// #0xCC:
func opcode0xCC(c *CPU) int {
	return c.callIf(c.isSetFlag(zeroFlag))
}

// CALL nn
// #0xCD:
func opcode0xCD(c *CPU) int {
	c.call(c.readImmediateWord())
	return 24
}

// ADC A, n
// #0xCE:
func opcode0xCE(c *CPU) int {
	c.addToA(c.readImmediate(), true)
	return 8
}

// RST 0x08
// #0xCF:
func opcode0xCF(c *CPU) int {
	return c.rst(0x08)
}

// RET NC
// #0xD0:
func opcode0xD0(c *CPU) int {
	return c.retIf(!c.isSetFlag(carryFlag))
}

// POP DE
// #0xD1:
func opcode0xD1(c *CPU) int {
	c.setDE(c.popStack())
	return 12
}

// JP NC, nn
// #0xD2:
func opcode0xD2(c *CPU) int {
	return c.jpIf(!c.isSetFlag(carryFlag))
}

// CALL NC, nn
// #0xD4:
func opcode0xD4(c *CPU) int {
	return c.callIf(!c.isSetFlag(carryFlag))
}

// PUSH DE
// #0xD5:
func opcode0xD5(c *CPU) int {
	c.pushStack(c.getDE())
	return 16
}

// SUB n
// #0xD6:
func opcode0xD6(c *CPU) int {
	c.sub(c.readImmediate(), false)
	return 8
}

// RST 0x10
// #0xD7:
func opcode0xD7(c *CPU) int {
	return c.rst(0x10)
}

// RET C
// #0xD8:
func opcode0xD8(c *CPU) int {
	return c.retIf(c.isSetFlag(carryFlag))
}

// RETI
// #0xD9:
func opcode0xD9(c *CPU) int {
	c.pc = c.popStack()
	c.interruptsEnabled = true
	return 16
}

// JP C, nn
// #0xDA:
func opcode0xDA(c *CPU) int {
	return c.jpIf(c.isSetFlag(carryFlag))
}

// CALL C, nn
// #0xDC:
func opcode0xDC(c *CPU) int {
	return c.callIf(c.isSetFlag(carryFlag))
}

// SBC A, n
// #0xDE:
func opcode0xDE(c *CPU) int {
	c.sub(c.readImmediate(), true)
	return 8
}

// RST 0x18
// #0xDF:
func opcode0xDF(c *CPU) int {
	return c.rst(0x18)
}

// LD (0xFF00+n), A
// #0xE0:
func opcode0xE0(c *CPU) int {
	c.bus.Write(addr.IOStart+uint16(c.readImmediate()), c.a)
	return 12
}

// POP HL
// #0xE1:
func opcode0xE1(c *CPU) int {
	c.setHL(c.popStack())
	return 12
}

// LD (0xFF00+C), A
// #0xE2:
func opcode0xE2(c *CPU) int {
	c.bus.Write(addr.IOStart+uint16(c.c), c.a)
	return 8
}

// PUSH HL
// #0xE5:
func opcode0xE5(c *CPU) int {
	c.pushStack(c.getHL())
	return 16
}

// AND n
// #0xE6:
func opcode0xE6(c *CPU) int {
	c.and(c.readImmediate())
	return 8
}

// RST 0x20
// #0xE7:
func opcode0xE7(c *CPU) int {
	return c.rst(0x20)
}

// ADD SP, n
// #0xE8:
func opcode0xE8(c *CPU) int {
	c.sp = c.offsetSP()
	return 16
}

// JP (HL)
// #0xE9:
func opcode0xE9(c *CPU) int {
	c.pc = c.getHL()
	return 4
}

// LD (nn), A
// #0xEA:
func opcode0xEA(c *CPU) int {
	c.bus.Write(c.readImmediateWord(), c.a)
	return 16
}

// XOR n
// #0xEE:
func opcode0xEE(c *CPU) int {
	c.xor(c.readImmediate())
	return 8
}

// RST 0x28
// #0xEF:
func opcode0xEF(c *CPU) int {
	return c.rst(0x28)
}

// LD A, (0xFF00+n)
// #0xF0:
func opcode0xF0(c *CPU) int {
	c.a = c.bus.Read(addr.IOStart + uint16(c.readImmediate()))
	return 12
}

// POP AF
// #0xF1:
func opcode0xF1(c *CPU) int {
	c.setAF(c.popStack())
	return 12
}

// LD A, (0xFF00+C)
// #0xF2:
func opcode0xF2(c *CPU) int {
	c.a = c.bus.Read(addr.IOStart + uint16(c.c))
	return 8
}

// DI
// #0xF3:
func opcode0xF3(c *CPU) int {
	c.interruptsEnabled = false
	c.eiPending = false
	return 4
}

// PUSH AF
// #0xF5:
func opcode0xF5(c *CPU) int {
	c.pushStack(c.getAF())
	return 16
}

// OR n
// #0xF6:
func opcode0xF6(c *CPU) int {
	c.or(c.readImmediate())
	return 8
}

// RST 0x30
// #0xF7:
func opcode0xF7(c *CPU) int {
	return c.rst(0x30)
}

// LD HL, SP+n
// #0xF8:
func opcode0xF8(c *CPU) int {
	c.setHL(c.offsetSP())
	return 12
}

// LD SP, HL
// #0xF9:
func opcode0xF9(c *CPU) int {
	c.sp = c.getHL()
	return 8
}

// LD A, (nn)
// #0xFA:
func opcode0xFA(c *CPU) int {
	c.a = c.bus.Read(c.readImmediateWord())
	return 16
}

// EI
// #0xFB:
func opcode0xFB(c *CPU) int {
	c.eiPending = true
	return 4
}

// CP n
// #0xFE:
func opcode0xFE(c *CPU) int {
	c.compare(c.readImmediate(), false)
	return 8
}

// RST 0x38
// #0xFF:
func opcode0xFF(c *CPU) int {
	return c.rst(0x38)
}
