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

func carryIn(c *CPU) uint8 {
	if c.Flags.Carry {
		return 1
	}
	return 0
}

func opAdd(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A, c.Flags = Add(c.A, v, 0)
	return costALU(c.opcode)
}

func opAdc(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A, c.Flags = Add(c.A, v, carryIn(c))
	return costALU(c.opcode)
}

func opSub(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A, c.Flags = Sub(c.A, v, 0)
	return costALU(c.opcode)
}

func opSbb(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A, c.Flags = Sub(c.A, v, carryIn(c))
	return costALU(c.opcode)
}

func opAna(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	// The 8080/8085 manual documents AC as unaffected, but real silicon
	// (and the test ROMs written against it) sets it to bit 3 of A OR'd
	// with the operand, computed before the AND.
	auxCarry := (c.A|v)&0x08 != 0
	c.A &= v
	c.setLogicFlags()
	c.Flags.AuxCarry = auxCarry
	return costALU(c.opcode)
}

func opXra(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A ^= v
	c.setLogicFlags()
	c.Flags.AuxCarry = false
	return costALU(c.opcode)
}

func opOra(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	c.A |= v
	c.setLogicFlags()
	c.Flags.AuxCarry = false
	return costALU(c.opcode)
}

func opCmp(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.operand(sb, c.opcode&0x7)
	_, c.Flags = Sub(c.A, v, 0)
	return costALU(c.opcode)
}

// setLogicFlags applies the zero/sign/parity/carry rule shared by ANA, XRA
// and ORA: carry always clears. Auxiliary carry is left to the caller:
// ANA/ANI set it to the OR of bit 3 of the two operands, XRA/ORA and their
// immediates clear it.
func (c *CPU) setLogicFlags() {
	c.Flags.Zero = c.A == 0
	c.Flags.Sign = c.A&0x80 != 0
	c.Flags.Parity = Parity(c.A)
	c.Flags.Carry = false
}

func costALU(opcode uint8) uint8 {
	if opcode&0x7 == 6 {
		return 7
	}
	return 4
}

func opAdi(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A, c.Flags = Add(c.A, v, 0)
	return 7
}

func opAci(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A, c.Flags = Add(c.A, v, carryIn(c))
	return 7
}

func opSui(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A, c.Flags = Sub(c.A, v, 0)
	return 7
}

func opSbi(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A, c.Flags = Sub(c.A, v, carryIn(c))
	return 7
}

func opAni(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	auxCarry := (c.A|v)&0x08 != 0
	c.A &= v
	c.setLogicFlags()
	c.Flags.AuxCarry = auxCarry
	return 7
}

func opXri(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A ^= v
	c.setLogicFlags()
	c.Flags.AuxCarry = false
	return 7
}

func opOri(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	c.A |= v
	c.setLogicFlags()
	c.Flags.AuxCarry = false
	return 7
}

func opCpi(c *CPU, sb *bus.SystemBus) uint8 {
	v := c.nextByte(sb)
	_, c.Flags = Sub(c.A, v, 0)
	return 7
}

func opInr(c *CPU, sb *bus.SystemBus) uint8 {
	dst := (c.opcode >> 3) & 0x7
	v := c.operand(sb, dst)
	result, flags := Add(v, 1, 0)
	flags.Carry = c.Flags.Carry // INR/DCR never touch carry
	c.Flags = flags
	c.setOperand(sb, dst, result)

	if dst == 6 {
		return 10
	}
	return 5
}

func opDcr(c *CPU, sb *bus.SystemBus) uint8 {
	dst := (c.opcode >> 3) & 0x7
	v := c.operand(sb, dst)
	result, flags := Sub(v, 1, 0)
	flags.Carry = c.Flags.Carry
	c.Flags = flags
	c.setOperand(sb, dst, result)

	if dst == 6 {
		return 10
	}
	return 5
}

func opInx(c *CPU, sb *bus.SystemBus) uint8 {
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		c.SetBC(c.BC() + 1)
	case 1:
		c.SetDE(c.DE() + 1)
	case 2:
		c.SetHL(c.HL() + 1)
	case 3:
		c.SP++
	}
	return 5
}

func opDcx(c *CPU, sb *bus.SystemBus) uint8 {
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		c.SetBC(c.BC() - 1)
	case 1:
		c.SetDE(c.DE() - 1)
	case 2:
		c.SetHL(c.HL() - 1)
	case 3:
		c.SP--
	}
	return 5
}

func opDad(c *CPU, sb *bus.SystemBus) uint8 {
	var v uint16
	switch (c.opcode >> 4) & 0x3 {
	case 0:
		v = c.BC()
	case 1:
		v = c.DE()
	case 2:
		v = c.HL()
	case 3:
		v = c.SP
	}

	sum := uint32(c.HL()) + uint32(v)
	c.Flags.Carry = sum&0x10000 != 0
	c.SetHL(uint16(sum))
	return 10
}

func opDaa(c *CPU, sb *bus.SystemBus) uint8 {
	add, forceCarry := daaAdjustment(c.A, c.Flags.AuxCarry, c.Flags.Carry)
	carry := c.Flags.Carry || forceCarry
	c.A, c.Flags = Add(c.A, add, 0)
	c.Flags.Carry = carry
	return 4
}
