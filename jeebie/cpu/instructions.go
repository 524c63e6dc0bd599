package cpu

import "github.com/valerio/jeebie-core/jeebie/bit"

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0)
	c.resetFlag(subFlag)
}

func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0x0F)
	c.setFlag(subFlag)
}

// incMem and decMem apply inc/dec to the byte at HL.
func (c *CPU) incMem() {
	value := c.bus.Read(c.getHL())
	c.inc(&value)
	c.bus.Write(c.getHL(), value)
}

func (c *CPU) decMem() {
	value := c.bus.Read(c.getHL())
	c.dec(&value)
	c.bus.Write(c.getHL(), value)
}

// The rotate and shift helpers return the result and set Z from it; the
// accumulator-only forms (RLCA, RLA, RRCA, RRA) clear Z afterwards.

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

// testBit tests bit b of value: Z is set when the bit is clear, C is untouched.
func (c *CPU) testBit(b uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(b, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// addToA sets the result of adding value (and the carry, for ADC) to A.
func (c *CPU) addToA(value uint8, withCarry bool) {
	var carryIn uint8
	if withCarry {
		carryIn = c.flagToBit(carryFlag)
	}
	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carryIn)
	result := uint8(sum)

	c.setFlags(result == 0, false, (a&0x0F)+(value&0x0F)+carryIn > 0x0F, sum > 0xFF)
	c.a = result
}

// sub subtracts value (and the carry, for SBC) from A and sets all flags.
func (c *CPU) sub(value uint8, withCarry bool) {
	c.a = c.compare(value, withCarry)
}

// compare computes A - value and sets flags without storing the result.
func (c *CPU) compare(value uint8, withCarry bool) uint8 {
	var carryIn uint8
	if withCarry {
		carryIn = c.flagToBit(carryFlag)
	}
	a := c.a
	result := a - value - carryIn

	c.setFlags(result == 0, true,
		int(a&0x0F)-int(value&0x0F)-int(carryIn) < 0,
		int(a)-int(value)-int(carryIn) < 0)
	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// alu runs one of the eight accumulator operations selected by bits 3-5 of
// the opcode: ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(op uint8, value uint8) {
	switch op & 0x07 {
	case 0:
		c.addToA(value, false)
	case 1:
		c.addToA(value, true)
	case 2:
		c.sub(value, false)
	case 3:
		c.sub(value, true)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	case 7:
		c.compare(value, false)
	}
}

// addToHL sets the result of adding a 16 bit value to HL. Z is untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)

	c.setHL(uint16(sum))
}

// offsetSP returns SP plus a signed immediate, with H and C computed on the
// low byte as an unsigned addition. Used by ADD SP,e and LD HL,SP+e.
func (c *CPU) offsetSP() uint16 {
	n := c.readImmediate()
	sp := c.sp
	c.setFlags(false, false, (sp&0x0F)+uint16(n&0x0F) > 0x0F, (sp&0xFF)+uint16(n) > 0xFF)
	return sp + uint16(int16(int8(n)))
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)

	if !c.isSetFlag(subFlag) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// jr performs a relative jump using the signed immediate.
func (c *CPU) jr() {
	e := c.readSignedImmediate()
	c.pc = uint16(int32(c.pc) + int32(e))
}

// jrIf reads the offset and jumps when the condition holds.
func (c *CPU) jrIf(condition bool) int {
	if condition {
		c.jr()
		return 12
	}
	c.pc++
	return 8
}

func (c *CPU) jpIf(condition bool) int {
	nn := c.readImmediateWord()
	if condition {
		c.pc = nn
		return 16
	}
	return 12
}

func (c *CPU) call(address uint16) {
	c.pushStack(c.pc)
	c.pc = address
}

func (c *CPU) callIf(condition bool) int {
	nn := c.readImmediateWord()
	if condition {
		c.call(nn)
		return 24
	}
	return 12
}

func (c *CPU) retIf(condition bool) int {
	if condition {
		c.pc = c.popStack()
		return 20
	}
	return 8
}

func (c *CPU) rst(vector uint16) int {
	c.call(vector)
	return 16
}
