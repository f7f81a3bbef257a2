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

package machine_test

import (
	"encoding/json"
	"testing"

	"github.com/go8080/machemu/pkg/isr"
	"github.com/go8080/machemu/pkg/machine"
)

// memController is a flat 64K address space standing in for a real memory
// device, with a fixed identity for save/load compatibility checks.
type memController struct {
	mem  [65536]uint8
	uuid [16]byte
}

func (c *memController) Read(addr uint16) uint8    { return c.mem[addr] }
func (c *memController) Write(addr uint16, v uint8) { c.mem[addr] = v }
func (c *memController) ServiceInterrupts(nowNs, cycles int64) isr.ISR {
	return isr.NoInterrupt
}
func (c *memController) Uuid() [16]byte { return c.uuid }

// scriptedIo answers ServiceInterrupts with one entry from script per call,
// falling back to Quit once the script is exhausted so a test can never
// hang the run loop by under-provisioning it.
type scriptedIo struct {
	script []isr.ISR
	i      int
}

func (c *scriptedIo) Read(addr uint16) uint8     { return 0 }
func (c *scriptedIo) Write(addr uint16, v uint8) {}
func (c *scriptedIo) Uuid() [16]byte             { return [16]byte{} }

func (c *scriptedIo) ServiceInterrupts(nowNs, cycles int64) isr.ISR {
	if c.i >= len(c.script) {
		return isr.Quit
	}
	v := c.script[c.i]
	c.i++
	return v
}

// cpuState mirrors the "cpu" fragment of a save document, just enough to
// assert on PC/SP/registers from GetState and Save output in tests.
type cpuState struct {
	Registers struct {
		A, B, C, D, E, H, L, S uint8
	} `json:"registers"`
	PC uint16 `json:"pc"`
	SP uint16 `json:"sp"`
}

func mustSetOptions(t *testing.T, m *machine.Machine, opts string) {
	t.Helper()
	if err := m.SetOptions(opts); err != nil {
		t.Fatalf("SetOptions(%s): %v", opts, err)
	}
}

func TestRunRequiresControllers(t *testing.T) {
	m := machine.New(nil)

	if _, err := m.Run(0); err == nil {
		t.Fatal("expected an error running without any controllers set")
	}

	if err := m.SetMemoryController(&memController{}); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}

	if _, err := m.Run(0); err == nil {
		t.Fatal("expected an error running without an io controller set")
	}
}

func TestRunResetAndSingleNop(t *testing.T) {
	mem := &memController{}
	mem.mem[0] = 0x00 // NOP

	io := &scriptedIo{script: []isr.ISR{isr.Quit}}

	m := machine.New(nil)
	if err := m.SetMemoryController(mem); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := m.SetIoController(io); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	// ticksPerIsr derives to 0 with the default clockResolution (-1), so any
	// positive isrFreq polls the io controller after every retired
	// instruction.
	mustSetOptions(t, m, `{"isrFreq":1}`)

	if _, err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, err := m.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}

	var got cpuState
	if err := json.Unmarshal([]byte(state), &got); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	if got.PC != 1 {
		t.Fatalf("PC = %d, want 1", got.PC)
	}
	if got.Registers.S != 0b00000010 {
		t.Fatalf("PSW = %#08b, want 0b00000010", got.Registers.S)
	}
}

func TestRunAcknowledgesInterruptBetweenInstructions(t *testing.T) {
	mem := &memController{}
	mem.mem[0] = 0xFB // EI
	mem.mem[1] = 0x00 // NOP

	// Polled once after EI retires (nothing to do), once after NOP retires
	// (deliver interrupt vector 2), once after the synthesized RST retires
	// (quit) — matching one poll per retired instruction regardless of how
	// many raw bus transactions that instruction took.
	io := &scriptedIo{script: []isr.ISR{isr.NoInterrupt, isr.Two, isr.Quit}}

	m := machine.New(nil)
	if err := m.SetMemoryController(mem); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := m.SetIoController(io); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, m, `{"isrFreq":1}`)

	if _, err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, err := m.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}

	var got cpuState
	if err := json.Unmarshal([]byte(state), &got); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	if got.PC != 0x0010 {
		t.Fatalf("PC = 0x%04X, want 0x0010", got.PC)
	}

	pushedLo := mem.mem[got.SP]
	pushedHi := mem.mem[got.SP+1]
	returnAddr := uint16(pushedHi)<<8 | uint16(pushedLo)
	if returnAddr != 2 {
		t.Fatalf("pushed return address = %d, want 2 (PC after the NOP)", returnAddr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	const optsTemplate = `{"isrFreq":1,"encoder":"base64","ram":{"block":[{"offset":100,"size":4}]}}`

	source := &memController{uuid: [16]byte{9, 9, 9}}
	source.mem[0] = 0x3E // MVI A, 0x42
	source.mem[1] = 0x42
	source.mem[100] = 0xAB

	saver := machine.New(nil)
	if err := saver.SetMemoryController(source); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := saver.SetIoController(&scriptedIo{script: []isr.ISR{isr.Quit}}); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, saver, optsTemplate)

	if _, err := saver.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc, err := saver.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	dest := &memController{uuid: [16]byte{9, 9, 9}}
	loadIo := &scriptedIo{script: []isr.ISR{isr.Load, isr.Quit}}

	loader := machine.New(nil)
	if err := loader.SetMemoryController(dest); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := loader.SetIoController(loadIo); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, loader, optsTemplate)
	if err := loader.OnLoad(func() (string, error) { return doc, nil }); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}

	if _, err := loader.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, err := loader.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}

	var got cpuState
	if err := json.Unmarshal([]byte(state), &got); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	if got.Registers.A != 0x42 {
		t.Fatalf("A = %#02x after load, want 0x42", got.Registers.A)
	}
	if dest.mem[100] != 0xAB {
		t.Fatalf("ram[100] = %#02x after load, want 0xAB", dest.mem[100])
	}
}

func TestLoadRejectsMismatchedUuid(t *testing.T) {
	const optsTemplate = `{"isrFreq":1,"encoder":"base64","ram":{"block":[{"offset":100,"size":4}]}}`

	source := &memController{uuid: [16]byte{9, 9, 9}}
	source.mem[100] = 0xAB

	saver := machine.New(nil)
	if err := saver.SetMemoryController(source); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := saver.SetIoController(&scriptedIo{script: []isr.ISR{isr.Quit}}); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, saver, optsTemplate)

	if _, err := saver.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc, err := saver.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A different memory controller identity; the load must be rejected and
	// must leave the destination's ram untouched.
	other := &memController{uuid: [16]byte{7, 7, 7}}
	loadIo := &scriptedIo{script: []isr.ISR{isr.Load, isr.Quit}}

	loader := machine.New(nil)
	if err := loader.SetMemoryController(other); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := loader.SetIoController(loadIo); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, loader, optsTemplate)
	if err := loader.OnLoad(func() (string, error) { return doc, nil }); err != nil {
		t.Fatalf("OnLoad: %v", err)
	}

	if _, err := loader.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if other.mem[100] != 0 {
		t.Fatalf("rejected load mutated ram: got %#02x, want 0", other.mem[100])
	}
}

func TestAsyncRunCompletesAndAllowsSaveAfterward(t *testing.T) {
	// Save needs a non-empty memory identity and the base64 encoder.
	mem := &memController{uuid: [16]byte{1}}
	// An empty script answers Quit on its very first poll.
	io := &scriptedIo{}

	m := machine.New(nil)
	if err := m.SetMemoryController(mem); err != nil {
		t.Fatalf("SetMemoryController: %v", err)
	}
	if err := m.SetIoController(io); err != nil {
		t.Fatalf("SetIoController: %v", err)
	}
	mustSetOptions(t, m, `{"isrFreq":1,"runAsync":true,"encoder":"base64"}`)

	if _, err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The async loop quits almost immediately (scriptedIo's empty script
	// answers Quit on its first poll); give it a chance to settle before
	// asserting Save succeeds on the now-idle machine.
	m.WaitForCompletion()

	if _, err := m.Save(); err != nil {
		t.Fatalf("Save after completion: %v", err)
	}
}
