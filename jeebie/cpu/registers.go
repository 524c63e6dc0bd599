package cpu

import "github.com/valerio/jeebie-core/jeebie/bit"

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// Flags is the F register viewed as a bit set. The low nibble is always zero.
type Flags uint8

func (f Flags) Zero() bool      { return f&Flags(zeroFlag) != 0 }
func (f Flags) Subtract() bool  { return f&Flags(subFlag) != 0 }
func (f Flags) HalfCarry() bool { return f&Flags(halfCarryFlag) != 0 }
func (f Flags) Carry() bool     { return f&Flags(carryFlag) != 0 }

// String renders the flags as ZNHC, upper-case when set.
func (f Flags) String() string {
	out := []byte("znhc")
	for i, flag := range []Flag{zeroFlag, subFlag, halfCarryFlag, carryFlag} {
		if f&Flags(flag) != 0 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
		return
	}
	c.resetFlag(flag)
}

// setFlags replaces all four flags at once.
func (c *CPU) setFlags(z, n, h, carry bool) {
	var f uint8
	f = bit.SetTo(7, f, z)
	f = bit.SetTo(6, f, n)
	f = bit.SetTo(5, f, h)
	f = bit.SetTo(4, f, carry)
	c.f = f
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// reg8 returns the operand selected by the 3-bit register field used
// throughout the opcode table: B C D E H L (HL) A.
func (c *CPU) reg8(index uint8) uint8 {
	switch index & 0x07 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setReg8(index uint8, value uint8) {
	switch index & 0x07 {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// Registers is a copy of the register file.
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
}

func (r Registers) AF() uint16   { return bit.Combine(r.A, r.F) }
func (r Registers) BC() uint16   { return bit.Combine(r.B, r.C) }
func (r Registers) DE() uint16   { return bit.Combine(r.D, r.E) }
func (r Registers) HL() uint16   { return bit.Combine(r.H, r.L) }
func (r Registers) Flags() Flags { return Flags(r.F) }

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return Registers{A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l, SP: c.sp, PC: c.pc}
}

// SetRegisters replaces the register file. The low nibble of F is cleared.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.f = r.A, r.F&0xF0
	c.b, c.c, c.d, c.e, c.h, c.l = r.B, r.C, r.D, r.E, r.H, r.L
	c.sp, c.pc = r.SP, r.PC
}
