package cpu

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/addr"
)

var interruptLetters = [5]byte{'v', 'l', 't', 's', 'j'}

// interruptString renders IE/IF as vltsj: upper-case when enabled and
// requested, lower-case when only enabled, '_' when disabled.
func interruptString(ie, iflag uint8) string {
	out := make([]byte, len(interruptLetters))
	for i, letter := range interruptLetters {
		mask := uint8(1) << i
		switch {
		case ie&mask == 0:
			out[i] = '_'
		case iflag&mask != 0:
			out[i] = letter - ('a' - 'A')
		default:
			out[i] = letter
		}
	}
	return string(out)
}

// TraceLine formats the register file and the instruction at PC:
//
//	AF   BC   DE   HL   : SP   = [SP+1][SP] : ZNHC : vltsj : PC   = OP : mnemonic
func (c *CPU) TraceLine() string {
	name, _ := Disassemble(c.bus, c.pc)
	return fmt.Sprintf("%04X %04X %04X %04X : %04X = %02X%02X : %s : %s : %04X = %02X : %s",
		c.getAF(), c.getBC(), c.getDE(), c.getHL(),
		c.sp, c.bus.Read(c.sp+1), c.bus.Read(c.sp),
		Flags(c.f),
		interruptString(c.bus.Read(addr.IE), c.bus.Read(addr.IF)),
		c.pc, c.bus.Read(c.pc),
		name)
}
