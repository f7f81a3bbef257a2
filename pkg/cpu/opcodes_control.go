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

func opHlt(c *CPU, sb *bus.SystemBus) uint8 {
	c.halted = true
	return 7
}

func opDi(c *CPU, sb *bus.SystemBus) uint8 {
	c.IFF = false
	return 4
}

// opEi enables interrupts immediately. The real 8080 defers the effect by
// one instruction so that EI immediately before a RET from an interrupt
// handler is safe; this engine does not model that delay (spec.md §9).
func opEi(c *CPU, sb *bus.SystemBus) uint8 {
	c.IFF = true
	return 4
}

func opIn(c *CPU, sb *bus.SystemBus) uint8 {
	port := c.nextByte(sb)
	c.A = c.readIO(sb, port)
	return 10
}

func opOut(c *CPU, sb *bus.SystemBus) uint8 {
	port := c.nextByte(sb)
	c.writeIO(sb, port, c.A)
	return 10
}
