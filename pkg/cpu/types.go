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

// Flags holds the five condition bits the 8080 exposes (spec.md §3). Bits 1,
// 3 and 5 of the packed status byte never vary with program state — bit 1
// is always set, bits 3 and 5 are always clear — and are reconstructed by
// PSW/SetPSW rather than stored.
type Flags struct {
	Sign     bool
	Zero     bool
	AuxCarry bool
	Parity   bool
	Carry    bool
}

// PSW packs the flags into the processor status word the 8080 pushes to the
// stack and restores from it, including the fixed bit pattern.
func (f Flags) PSW() uint8 {
	var p uint8 = 0x02
	if f.Sign {
		p |= 1 << 7
	}
	if f.Zero {
		p |= 1 << 6
	}
	if f.AuxCarry {
		p |= 1 << 4
	}
	if f.Parity {
		p |= 1 << 2
	}
	if f.Carry {
		p |= 1 << 0
	}
	return p
}

// SetPSW unpacks a processor status word into Flags. Bits 1, 3 and 5 are
// ignored on the way in, same as the fixed bits they always read as.
func (f *Flags) SetPSW(p uint8) {
	f.Sign = p&(1<<7) != 0
	f.Zero = p&(1<<6) != 0
	f.AuxCarry = p&(1<<4) != 0
	f.Parity = p&(1<<2) != 0
	f.Carry = p&(1<<0) != 0
}

// fetchState tracks where Step is within the two-call fetch protocol
// described in spec.md §4.D: idle instructs the caller to issue the opcode
// read, awaitingOpcode instructs it to collect and decode it.
type fetchState uint8

const (
	fetchIdle fetchState = iota
	fetchAwaitingOpcode
)

// CPU is the Intel 8080 execution core. It never touches memory or I/O
// directly: every byte it needs crosses the injected dispatch function over
// a *bus.SystemBus, matching the teacher's bus-mediated controller pattern.
type CPU struct {
	B, C, D, E, H, L, A uint8
	Flags               Flags

	PC uint16
	SP uint16

	IFF    bool
	halted bool

	pendingISR isr.ISR
	fetch      fetchState
	opcode     uint8

	// dispatch services whatever the CPU most recently signaled on the
	// control bus (one memory or I/O transaction) by delegating to the
	// machine's memory/IO controllers, then returns. It is injected by
	// the machine rather than imported, so this package has no
	// knowledge of the Controller interface.
	dispatch func(*bus.SystemBus)
}
