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

import (
	"github.com/go8080/machemu/pkg/bus"
	"github.com/go8080/machemu/pkg/isr"
)

// New returns a CPU wired to dispatch, the function the machine supplies to
// service one pending bus transaction against its memory/IO controllers.
func New(dispatch func(*bus.SystemBus)) *CPU {
	c := &CPU{dispatch: dispatch}
	c.Reset(0)
	return c
}

// Reset clears every register and flag to its power-on value and sets PC.
// SP, IFF and the halted/pending-interrupt state are always cleared,
// matching the reference core's Reset — only PC is caller-supplied.
func (c *CPU) Reset(pc uint16) {
	dispatch := c.dispatch
	*c = CPU{dispatch: dispatch, PC: pc}
	c.Flags.SetPSW(0x02)
}

// Halted reports whether the CPU executed HLT and is spinning on bus idle,
// waiting for RESET or an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// ProgramCounter returns PC. The machine run loop reads this after a retired
// instruction to feed a debugger's per-instruction hook.
func (c *CPU) ProgramCounter() uint16 { return c.PC }

// Retiring reports whether the next call to Step will retire an instruction
// (decode and execute it, including a synthesized interrupt RST) rather than
// merely issuing the opcode fetch or idling on a halt. Callers that drive an
// instruction-granularity hook — a debugger's Step, or the machine loop's
// interrupt-polling cadence — call this before Step to know whether the
// upcoming call is the one to fire on.
//
// sb must be the same bus the caller is about to pass to Step: an interrupt
// signaled on the control bus but not yet latched into pendingISR still
// causes the upcoming Step call to retire a synthesized RST, so Retiring
// has to look at both.
func (c *CPU) Retiring(sb *bus.SystemBus) bool {
	if c.fetch == fetchAwaitingOpcode {
		return true
	}

	if c.fetch != fetchIdle {
		return false
	}

	if c.pendingISR != isr.NoInterrupt {
		return true
	}

	return c.IFF && sb.Control.Peek(bus.Interrupt)
}

// Step advances the CPU state machine by one call of the two-call
// fetch/retire protocol and returns the T-states retired during the call.
//
// An interrupt pending on the control bus is acknowledged unconditionally,
// on every call, mirroring the reference core's top-of-Execute check: if IFF
// is set, the delivered ISR is latched and IFF is cleared regardless of
// what the CPU is otherwise doing.
//
// Step then either issues a memory read for the opcode at PC and returns 0
// (the instruction has not been fetched yet), or — if the previous call did
// that — collects the opcode, decodes and executes the instruction fully,
// and returns its T-state cost. RST and RST-shaped synthesized interrupt
// vectors never contribute to the returned total; this reproduces a billing
// quirk in the reference core rather than an 8080 hardware behavior.
func (c *CPU) Step(sb *bus.SystemBus) uint8 {
	if sb.Control.Receive(bus.Interrupt) {
		isrByte := sb.Data.Receive()
		if c.IFF {
			c.pendingISR = isr.ISR(isrByte)
			c.IFF = false
		}
	}

	if c.fetch == fetchIdle {
		if c.halted && c.pendingISR == isr.NoInterrupt {
			return 0
		}
		c.halted = false

		if c.pendingISR != isr.NoInterrupt {
			vector, _ := c.pendingISR.Vector()
			c.pendingISR = isr.NoInterrupt
			c.execute(sb, 0xC7|(vector<<3))
			return 0
		}

		sb.Address.Send(c.PC)
		sb.Control.Send(bus.MemoryRead)
		c.fetch = fetchAwaitingOpcode
		return 0
	}

	c.dispatch(sb)
	opcode := sb.Data.Receive()
	c.fetch = fetchIdle
	c.PC++

	tstates := c.execute(sb, opcode)
	if opcode&0xC7 == 0xC7 {
		return 0
	}
	return tstates
}

// readByte issues a memory read for addr and blocks, in the sense that it
// synchronously invokes dispatch, until the data bus carries the response.
func (c *CPU) readByte(sb *bus.SystemBus, addr uint16) uint8 {
	sb.Address.Send(addr)
	sb.Control.Send(bus.MemoryRead)
	c.dispatch(sb)
	return sb.Data.Receive()
}

func (c *CPU) writeByte(sb *bus.SystemBus, addr uint16, value uint8) {
	sb.Address.Send(addr)
	sb.Data.Send(value)
	sb.Control.Send(bus.MemoryWrite)
	c.dispatch(sb)
}

func (c *CPU) readIO(sb *bus.SystemBus, port uint8) uint8 {
	sb.Address.Send(uint16(port))
	sb.Control.Send(bus.IoRead)
	c.dispatch(sb)
	return sb.Data.Receive()
}

func (c *CPU) writeIO(sb *bus.SystemBus, port, value uint8) {
	sb.Address.Send(uint16(port))
	sb.Data.Send(value)
	sb.Control.Send(bus.IoWrite)
	c.dispatch(sb)
}

// nextByte reads the byte at PC and advances PC, the pattern every
// immediate-operand and displacement fetch in the opcode table uses.
func (c *CPU) nextByte(sb *bus.SystemBus) uint8 {
	b := c.readByte(sb, c.PC)
	c.PC++
	return b
}

// nextWord reads the little-endian 16-bit operand following an opcode.
func (c *CPU) nextWord(sb *bus.SystemBus) uint16 {
	lo := c.nextByte(sb)
	hi := c.nextByte(sb)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *CPU) SetBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) SetDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) SetHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }

// push writes a 16-bit value to the stack, high byte first, and decrements
// SP by two — the 8080 grows its stack downward.
func (c *CPU) push(sb *bus.SystemBus, v uint16) {
	c.SP--
	c.writeByte(sb, c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(sb, c.SP, uint8(v))
}

func (c *CPU) pop(sb *bus.SystemBus) uint16 {
	lo := c.readByte(sb, c.SP)
	c.SP++
	hi := c.readByte(sb, c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// regPtr returns the working register addressed by a 3-bit field in the
// B,C,D,E,H,L,M,A encoding the 8080 uses throughout its opcode space. ok is
// false for index 6 (the "M" memory-reference encoding), which callers must
// special-case through HL() instead.
func (c *CPU) regPtr(index uint8) (reg *uint8, ok bool) {
	switch index & 0x7 {
	case 0:
		return &c.B, true
	case 1:
		return &c.C, true
	case 2:
		return &c.D, true
	case 3:
		return &c.E, true
	case 4:
		return &c.H, true
	case 5:
		return &c.L, true
	case 6:
		return nil, false
	default:
		return &c.A, true
	}
}

// operand reads the value addressed by a 3-bit register-or-memory field.
func (c *CPU) operand(sb *bus.SystemBus, index uint8) uint8 {
	if r, ok := c.regPtr(index); ok {
		return *r
	}
	return c.readByte(sb, c.HL())
}

// setOperand writes value to the location addressed by a 3-bit
// register-or-memory field.
func (c *CPU) setOperand(sb *bus.SystemBus, index, value uint8) {
	if r, ok := c.regPtr(index); ok {
		*r = value
		return
	}
	c.writeByte(sb, c.HL(), value)
}
