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

package bus_test

import (
	"testing"

	"github.com/go8080/machemu/pkg/bus"
)

func TestAddressBusNonDestructiveRead(t *testing.T) {
	var b bus.AddressBus

	b.Send(0x1234)

	if got := b.Receive(); got != 0x1234 {
		t.Fatalf("Receive() = %#04x, want 0x1234", got)
	}

	if got := b.Receive(); got != 0x1234 {
		t.Fatalf("second Receive() = %#04x, want 0x1234 (non-destructive)", got)
	}
}

func TestDataBusOverwrite(t *testing.T) {
	var b bus.DataBus

	b.Send(0x11)
	b.Send(0x22)

	if got := b.Receive(); got != 0x22 {
		t.Fatalf("Receive() = %#02x, want 0x22", got)
	}
}

func TestControlBusReceiveClears(t *testing.T) {
	var b bus.ControlBus

	b.Send(bus.MemoryRead)
	b.Send(bus.Interrupt)

	if !b.Receive(bus.MemoryRead) {
		t.Fatal("expected MemoryRead pending")
	}

	if b.Receive(bus.MemoryRead) {
		t.Fatal("MemoryRead should have been cleared by the first Receive")
	}

	if !b.Peek(bus.Interrupt) {
		t.Fatal("expected Interrupt still pending")
	}

	if !b.Receive(bus.Interrupt) {
		t.Fatal("expected Interrupt pending")
	}
}

func TestControlBusIndependentSignals(t *testing.T) {
	var b bus.ControlBus

	b.Send(bus.MemoryWrite)
	b.Send(bus.IoWrite)

	if !b.Receive(bus.IoWrite) {
		t.Fatal("expected IoWrite pending")
	}

	if !b.Peek(bus.MemoryWrite) {
		t.Fatal("MemoryWrite should be unaffected by clearing IoWrite")
	}
}
