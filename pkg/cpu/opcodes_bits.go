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

func opRlc(c *CPU, sb *bus.SystemBus) uint8 {
	carry := c.A&0x80 != 0
	c.A = c.A<<1 | c.A>>7
	c.Flags.Carry = carry
	return 4
}

func opRrc(c *CPU, sb *bus.SystemBus) uint8 {
	carry := c.A&0x01 != 0
	c.A = c.A>>1 | c.A<<7
	c.Flags.Carry = carry
	return 4
}

func opRal(c *CPU, sb *bus.SystemBus) uint8 {
	carry := c.A&0x80 != 0
	var in uint8
	if c.Flags.Carry {
		in = 1
	}
	c.A = c.A<<1 | in
	c.Flags.Carry = carry
	return 4
}

func opRar(c *CPU, sb *bus.SystemBus) uint8 {
	carry := c.A&0x01 != 0
	var in uint8
	if c.Flags.Carry {
		in = 0x80
	}
	c.A = c.A>>1 | in
	c.Flags.Carry = carry
	return 4
}

func opCma(c *CPU, sb *bus.SystemBus) uint8 {
	c.A = ^c.A
	return 4
}

func opCmc(c *CPU, sb *bus.SystemBus) uint8 {
	c.Flags.Carry = !c.Flags.Carry
	return 4
}

func opStc(c *CPU, sb *bus.SystemBus) uint8 {
	c.Flags.Carry = true
	return 4
}
