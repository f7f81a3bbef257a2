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

func opMov(c *CPU, sb *bus.SystemBus) uint8 {
	dst := (c.opcode >> 3) & 0x7
	src := c.opcode & 0x7
	v := c.operand(sb, src)
	c.setOperand(sb, dst, v)

	if dst == 6 || src == 6 {
		return 7
	}
	return 5
}

func opMvi(c *CPU, sb *bus.SystemBus) uint8 {
	dst := (c.opcode >> 3) & 0x7
	v := c.nextByte(sb)
	c.setOperand(sb, dst, v)

	if dst == 6 {
		return 10
	}
	return 7
}

func opLxi(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextWord(sb)
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	case 3:
		c.SP = v
	}
	return 10
}

func opStax(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.BC()
	if c.opcode&0x10 != 0 {
		addr = c.DE()
	}
	c.writeByte(sb, addr, c.A)
	return 7
}

func opLdax(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.BC()
	if c.opcode&0x10 != 0 {
		addr = c.DE()
	}
	c.A = c.readByte(sb, addr)
	return 7
}

func opSta(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.writeByte(sb, addr, c.A)
	return 13
}

func opLda(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.A = c.readByte(sb, addr)
	return 13
}

func opShld(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.writeByte(sb, addr, c.L)
	c.writeByte(sb, addr+1, c.H)
	return 16
}

func opLhld(c *CPU, sb *bus.SystemBus) uint8 {
	addr := c.nextWord(sb)
	c.L = c.readByte(sb, addr)
	c.H = c.readByte(sb, addr+1)
	return 16
}

func opPush(c *CPU, sb *bus.SystemBus) uint8 {
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		c.push(sb, c.BC())
	case 1:
		c.push(sb, c.DE())
	case 2:
		c.push(sb, c.HL())
	case 3:
		c.push(sb, uint16(c.A)<<8|uint16(c.Flags.PSW()))
	}
	return 11
}

func opPop(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.pop(sb)
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	case 3:
		c.A = uint8(v >> 8)
		c.Flags.SetPSW(uint8(v))
	}
	return 10
}

func opXchg(c *CPU, sb *bus.SystemBus) uint8 {
	c.H, c.L, c.D, c.E = c.D, c.E, c.H, c.L
	return 4
}

func opXthl(c *CPU, sb *bus.SystemBus) uint8 {
	hl := c.HL()
	top := c.pop(sb)
	c.push(sb, hl)
	c.SetHL(top)
	return 18
}

func opSphl(c *CPU, sb *bus.SystemBus) uint8 {
	c.SP = c.HL()
	return 5
}

func opPchl(c *CPU, sb *bus.SystemBus) uint8 {
	c.PC = c.HL()
	return 5
}
