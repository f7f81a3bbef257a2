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

package bus

// Send overwrites the address currently held on the bus.
func (b *AddressBus) Send(addr uint16) {
	b.value = addr
}

// Receive reads the address non-destructively.
func (b *AddressBus) Receive() uint16 {
	return b.value
}

// Send overwrites the data byte currently held on the bus.
func (b *DataBus) Send(data uint8) {
	b.value = data
}

// Receive reads the data byte non-destructively.
func (b *DataBus) Receive() uint8 {
	return b.value
}

// Send ORs signal into the set of pending control signals.
func (b *ControlBus) Send(signal Signal) {
	b.signals |= signal
}

// Receive reports whether signal is pending and clears it. Unlike the
// address and data buses, a control signal is consumed on read: two
// consecutive Receive calls for the same signal only see it once.
func (b *ControlBus) Receive(signal Signal) bool {
	pending := b.signals&signal != 0
	b.signals &^= signal
	return pending
}

// Peek reports whether signal is pending without clearing it.
func (b *ControlBus) Peek(signal Signal) bool {
	return b.signals&signal != 0
}

// SystemBus bundles the three channels the CPU and the machine run loop
// rendezvous on for every bus transaction. No buffering and no ordering
// is implied between the three channels; the machine loop observes them
// in a fixed sequence.
type SystemBus struct {
	Address AddressBus
	Data    DataBus
	Control ControlBus
}
