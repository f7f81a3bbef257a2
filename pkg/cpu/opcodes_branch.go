// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package cpu

import "github.com/go8080/machemu/pkg/bus"

// condition evaluates one of the eight 3-bit condition codes the 8080
// attaches to conditional jumps, calls and returns.
func (c *CPU) condition(cc uint8) bool {
	switch cc & 0x7 {
	case 0:
		return !c.Flags.Zero
	case 1:
		return c.Flags.Zero
	case 2:
		return !c.Flags.Carry
	case 3:
		return c.Flags.Carry
	case 4:
		return !c.Flags.Parity
	case 5:
		return c.Flags.Parity
	case 6:
		return !c.Flags.Sign
	default:
		return c.Flags.Sign
	}
}

func opJmp(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.PC = addr
	return 10
}

func opJmpCond(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	if c.condition((c.opcode >> 3) & 0x7) {
		c.PC = addr
	}
	return 10
}

func opCall(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.push(sb, c.PC)
	c.PC = addr
	return 17
}

func opCallCond(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	if c.condition((c.opcode >> 3) & 0x7) {
		c.push(sb, c.PC)
		c.PC = addr
		return 17
	}
	return 11
}

func opRet(c *CPU, sb *bus.SystemBus) uint8 {
	c.PC = c.pop(sb)
	return 10
}

func opRetCond(c *CPU, sb *bus.SystemBus) uint8 {
	if c.condition((c.opcode >> 3) & 0x7) {
		c.PC = c.pop(sb)
		return 11
	}
	return 5
}

// opRst handles both a program-issued RST n and a synthesized interrupt
// vector; c.opcode already carries the synthesized 0xC7|(vector<<3) form
// in the latter case, so there is nothing interrupt-specific left to do
// here — Step folds both into the same billing-suppressed path.
func opRst(c *CPU, sb *bus.SystemBus) uint8 {
	addr := uint16(c.opcode & 0x38)
	c.push(sb, c.PC)
	c.PC = addr
	return 11
}
