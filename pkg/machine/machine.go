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
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/go8080/machemu/pkg/bus"
	"github.com/go8080/machemu/pkg/clock"
	"github.com/go8080/machemu/pkg/codec"
	"github.com/go8080/machemu/pkg/cpu"
	"github.com/go8080/machemu/pkg/debug"
	"github.com/go8080/machemu/pkg/isr"
	"github.com/go8080/machemu/pkg/mcerr"
	"github.com/go8080/machemu/pkg/options"
)

// New returns a Machine for the i8080, with its option store, clock and
// codec registry defaulted and its CPU wired to dispatch bus transactions
// against whatever controllers are later set. A nil logger disables
// logging; otherwise run-time recoverable conditions are logged through it.
func New(logger *slog.Logger) *Machine {
	m := &Machine{
		opts:  options.New(),
		clock: clock.New(nominalFrequencyHz),
		codec: codec.NewRegistry(),
		log:   logger,
	}
	m.cpu = cpu.New(m.dispatch)
	return m
}

// SetDebugger installs a debugger hook, or clears it if dbg is nil. Like
// every other configuration setter, it fails fast while the machine is
// running.
func (m *Machine) SetDebugger(dbg *debug.Debugger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.Busy, "cannot set a debugger while the machine is running")
	}

	m.debug = dbg
	return nil
}

// SetMemoryController installs the controller backing the CPU's memory
// address space. controller must not be nil.
func (m *Machine) SetMemoryController(controller Controller) error {
	if controller == nil {
		return mcerr.New(mcerr.InvalidArgument, "memory controller must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.Busy, "cannot set the memory controller while the machine is running")
	}

	m.memCtl = controller
	return nil
}

// SetIoController installs the controller servicing IN/OUT and interrupt
// polling. controller must not be nil.
func (m *Machine) SetIoController(controller Controller) error {
	if controller == nil {
		return mcerr.New(mcerr.InvalidArgument, "io controller must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.Busy, "cannot set the io controller while the machine is running")
	}

	m.ioCtl = controller
	return nil
}

// SetOptions parses opts (a JSON document or "file://path" reference) and
// merges it into the option store. It fails fast while the machine is
// running, matching every other configuration setter.
func (m *Machine) SetOptions(opts string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opts.SetOptions(opts, m.running)
}

// SetClockResolution re-derives the pacing clock's tick granularity and the
// interrupt-service cadence from it, bypassing a full SetOptions call — the
// reference implementation exposes this as a standalone setter alongside
// the "clockResolution" option key.
func (m *Machine) SetClockResolution(ns int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.ClockResolution, "cannot change clock resolution while the machine is running")
	}

	if err := m.opts.SetOptions(fmt.Sprintf(`{"clockResolution":%d}`, ns), false); err != nil {
		return err
	}

	return m.applyClockResolution()
}

// OnSave installs the handler invoked when the I/O controller requests a
// checkpoint. A nil fn clears it. Fails fast while running.
func (m *Machine) OnSave(fn func(json string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.Busy, "cannot set the save handler while the machine is running")
	}

	m.onSave = fn
	return nil
}

// OnLoad installs the handler invoked when the I/O controller requests a
// restore. A nil fn clears it. Fails fast while running.
func (m *Machine) OnLoad(fn func() (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return mcerr.New(mcerr.Busy, "cannot set the load handler while the machine is running")
	}

	m.onLoad = fn
	return nil
}

// Save builds and returns the full save document for the current state.
// Unlike the checkpoints an ISR::Save request triggers mid-run, this runs
// synchronously against a machine that is not running.
func (m *Machine) Save() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return "", mcerr.New(mcerr.Busy, "cannot save while the machine is running")
	}

	return m.buildSaveDocument()
}

// GetState returns the CPU's own save fragment — registers, PC and SP — as
// JSON, without the memory controller's ROM/RAM payload Save embeds it in.
func (m *Machine) GetState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return "", mcerr.New(mcerr.Busy, "cannot read state while the machine is running")
	}

	if m.memCtl == nil {
		return m.cpu.Save("")
	}

	uuid := m.memCtl.Uuid()
	return m.cpu.Save(base64.StdEncoding.EncodeToString(uuid[:]))
}

// Run resets the CPU to pc and drives the machine loop until the I/O
// controller requests Quit. In synchronous mode (the default) Run blocks
// and returns the simulated run duration; when the "runAsync" option is
// set it launches the loop on a background worker and returns 0
// immediately — WaitForCompletion blocks for the real result.
func (m *Machine) Run(pc uint16) (time.Duration, error) {
	m.mu.Lock()

	if m.memCtl == nil {
		m.mu.Unlock()
		return 0, mcerr.New(mcerr.InvalidArgument, "no memory controller has been set")
	}

	if m.ioCtl == nil {
		m.mu.Unlock()
		return 0, mcerr.New(mcerr.InvalidArgument, "no io controller has been set")
	}

	if m.running {
		m.mu.Unlock()
		return 0, mcerr.New(mcerr.Busy, "the machine is already running")
	}

	m.cpu.Reset(pc)
	m.bus = bus.SystemBus{}
	m.clock.Reset()

	resErr := m.applyClockResolution()

	m.running = true
	async := m.opts.RunAsync()
	m.mu.Unlock()

	if async {
		completion := make(chan time.Duration, 1)
		m.completion = completion

		go func() {
			d := m.runLoop()

			m.mu.Lock()
			m.running = false
			m.mu.Unlock()

			completion <- d
		}()

		return 0, resErr
	}

	d := m.runLoop()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	return d, resErr
}

// WaitForCompletion blocks until an asynchronous Run's loop exits and
// returns the simulated run duration. It returns 0 immediately if no async
// run is outstanding.
func (m *Machine) WaitForCompletion() time.Duration {
	m.mu.Lock()
	completion := m.completion
	m.completion = nil
	m.mu.Unlock()

	if completion == nil {
		return 0
	}

	return <-completion
}

// applyClockResolution pushes the option store's clockResolution into the
// pacing clock and re-derives ticksPerIsr from the achieved resolution and
// the configured isrFreq multiplier, mirroring the reference
// implementation's SetClockResolution.
func (m *Machine) applyClockResolution() error {
	achieved, err := m.clock.SetTickResolution(m.opts.ClockResolution())

	ticks := achieved
	if ticks < 0 {
		ticks = 0
	}

	m.ticksPerIsr = int64(m.opts.IsrFreq() * float64(ticks) * float64(m.clock.FrequencyHz()) / 1e9)

	if err != nil {
		m.warn("clock resolution reduced", "err", err)
		return mcerr.New(mcerr.ClockResolution, err.Error())
	}

	return nil
}

// runLoop is the machine's own thread of execution: it never runs
// concurrently with itself, and it is the only code that touches the bus,
// the CPU, or a save/load pendingOp once Run has started it.
func (m *Machine) runLoop() time.Duration {
	sb := &m.bus

	var total, lastIsrTotal int64
	var elapsed time.Duration

	for !sb.Control.Peek(bus.PowerOff) {
		retiring := m.cpu.Retiring(sb)

		tstates := m.cpu.Step(sb)
		elapsed = m.clock.Tick(tstates)
		total += int64(tstates)

		if !retiring {
			continue
		}

		if m.debug != nil {
			m.debug.Step(m.cpu.ProgramCounter())
		}

		// total only advances on a retiring Step call, so gating the
		// cadence check here (rather than on every call of the two-call
		// fetch protocol) polls once per instruction as spec.md §4.E
		// intends, not once per bus transaction.
		if m.opts.IsrFreq() > 0 && total-lastIsrTotal >= m.ticksPerIsr {
			result := m.ioCtl.ServiceInterrupts(elapsed.Nanoseconds(), total)
			m.dispatchIsr(sb, result)
			lastIsrTotal = total
		}
	}

	return elapsed
}

// dispatchIsr translates one ServiceInterrupts reply into bus signals or
// save/load/power-off bookkeeping, per spec.md §4.E.
func (m *Machine) dispatchIsr(sb *bus.SystemBus, result isr.ISR) {
	// The CPU reads the data byte back as an isr.ISR value and derives the
	// RST vector from it, so the ISR value itself goes on the data bus.
	if _, ok := result.Vector(); ok {
		sb.Data.Send(uint8(result))
		sb.Control.Send(bus.Interrupt)
		return
	}

	switch result {
	case isr.Load:
		m.startLoad()
		m.reapLoad()
	case isr.Save:
		m.startSave()
		m.reapSave()
	case isr.Quit:
		m.drainPending()
		sb.Control.Send(bus.PowerOff)
	case isr.NoInterrupt:
		m.reapLoad()
		m.reapSave()
	}
}

// startSave kicks off one onSave invocation if a handler is installed and
// neither a save nor a load is already outstanding — the backpressure
// policy spec.md §5 requires.
func (m *Machine) startSave() {
	if m.onSave == nil || m.saveOp != nil || m.loadOp != nil {
		return
	}

	doc, err := m.buildSaveDocument()
	if err != nil {
		m.warn("save request dropped", "err", err)
		return
	}

	op := &pendingOp{done: make(chan struct{})}
	m.saveOp = op

	run := func() {
		m.onSave(doc)
		close(op.done)
	}

	if m.opts.SaveAsync() {
		go run()
	} else {
		run()
	}
}

// reapSave clears a completed save without blocking.
func (m *Machine) reapSave() {
	if m.saveOp == nil {
		return
	}

	select {
	case <-m.saveOp.done:
		m.saveOp = nil
	default:
	}
}

// startLoad kicks off one onLoad invocation under the same backpressure
// policy as startSave. It does not apply the result itself; dispatchIsr
// calls reapLoad right after it, which applies a result that is already
// available (the synchronous, and the already-resolved async, case).
func (m *Machine) startLoad() {
	if m.onLoad == nil || m.saveOp != nil || m.loadOp != nil {
		return
	}

	op := &pendingOp{done: make(chan struct{})}
	m.loadOp = op

	run := func() {
		op.result, op.err = m.onLoad()
		close(op.done)
	}

	if m.opts.LoadAsync() {
		go run()
	} else {
		run()
	}
}

// reapLoad applies a completed load without blocking, logging a dropped
// load on mismatched UUID/ROM/RAM or a malformed document.
func (m *Machine) reapLoad() {
	if m.loadOp == nil {
		return
	}

	select {
	case <-m.loadOp.done:
		op := m.loadOp
		m.loadOp = nil

		if op.err != nil {
			m.warn("load handler failed", "err", op.err)
			return
		}

		if err := m.applyLoadDocument(op.result); err != nil {
			m.warn("load rejected", "err", err)
		}
	default:
	}
}

// drainPending blocks for at most one outstanding save and one outstanding
// load to finish, applying the load if it succeeds, then returns. Quit
// always waits for at most one of each, per spec.md §8.
func (m *Machine) drainPending() {
	if m.loadOp != nil {
		<-m.loadOp.done
		op := m.loadOp
		m.loadOp = nil

		if op.err != nil {
			m.warn("load handler failed", "err", op.err)
		} else if err := m.applyLoadDocument(op.result); err != nil {
			m.warn("load rejected", "err", err)
		}
	}

	if m.saveOp != nil {
		<-m.saveOp.done
		m.saveOp = nil
	}
}

// dispatch services exactly one bus transaction the CPU has signaled,
// against whichever controller owns that address space, mirroring the
// reference implementation's ProcessControllers.
func (m *Machine) dispatch(sb *bus.SystemBus) {
	if sb.Control.Receive(bus.MemoryRead) {
		addr := sb.Address.Receive()
		if m.debug != nil {
			m.debug.Read(addr)
		}
		sb.Data.Send(m.memCtl.Read(addr))
		return
	}

	if sb.Control.Receive(bus.MemoryWrite) {
		addr := sb.Address.Receive()
		value := sb.Data.Receive()
		if m.debug != nil {
			m.debug.Write(addr)
		}
		m.memCtl.Write(addr, value)
		return
	}

	if sb.Control.Receive(bus.IoRead) {
		port := sb.Address.Receive()
		sb.Data.Send(m.ioCtl.Read(port))
		return
	}

	if sb.Control.Receive(bus.IoWrite) {
		port := sb.Address.Receive()
		value := sb.Data.Receive()
		m.ioCtl.Write(port, value)
	}
}

func (m *Machine) warn(msg string, args ...any) {
	if m.log != nil {
		m.log.Warn(msg, args...)
	}
}
