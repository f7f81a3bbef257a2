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

package machine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go8080/machemu/pkg/bus"
	"github.com/go8080/machemu/pkg/clock"
	"github.com/go8080/machemu/pkg/codec"
	"github.com/go8080/machemu/pkg/cpu"
	"github.com/go8080/machemu/pkg/debug"
	"github.com/go8080/machemu/pkg/isr"
	"github.com/go8080/machemu/pkg/options"
)

// nominalFrequencyHz is the 8080's rated clock speed; the pacing clock and
// the interrupt-service cadence are both derived from it.
const nominalFrequencyHz = 2_000_000

// Controller is the capability the engine requires of a memory or I/O
// device: reads and writes must be non-blocking, ServiceInterrupts is polled
// only on the I/O controller at the interrupt-service cadence, and Uuid
// supplies the stable identity used to validate save/load compatibility.
type Controller interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	ServiceInterrupts(nowNs int64, cycles int64) isr.ISR
	Uuid() [16]byte
}

// pendingOp tracks one in-flight load or save handler invocation. done is
// closed by the goroutine (or, for a synchronous handler, the caller itself)
// once the handler returns; result/err are only meaningful for a load.
type pendingOp struct {
	done   chan struct{}
	result string
	err    error
}

// Machine wires the bus, clock, CPU, option store and codec together into
// the host-facing façade described by the engine's external interfaces: it
// drives the CPU, paces it against the clock, polls the I/O controller for
// interrupts, and orchestrates save/load checkpoints.
type Machine struct {
	mu sync.Mutex

	bus   bus.SystemBus
	cpu   *cpu.CPU
	clock *clock.Clock
	opts  *options.Store
	codec *codec.Registry
	debug *debug.Debugger
	log   *slog.Logger

	memCtl Controller
	ioCtl  Controller

	onSave func(json string)
	onLoad func() (string, error)

	running     bool
	ticksPerIsr int64
	completion  chan time.Duration

	saveOp *pendingOp
	loadOp *pendingOp
}
