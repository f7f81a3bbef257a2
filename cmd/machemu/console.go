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

package main

import (
	"crypto/md5"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/go8080/machemu/pkg/isr"
)

// memoryImage is the flat 64K address space backing the demo binding: a ROM
// image loaded at address 0, RAM everywhere above it. Its identity is the
// MD5 of the ROM bytes, so a save taken against one ROM is rejected against
// another.
type memoryImage struct {
	mem     [65536]uint8
	romSize int
	uuid    [16]byte
}

func newMemoryImage(rom []byte) *memoryImage {
	m := &memoryImage{romSize: len(rom), uuid: md5.Sum(rom)}
	copy(m.mem[:], rom)
	return m
}

func (m *memoryImage) Read(addr uint16) uint8 { return m.mem[addr] }

func (m *memoryImage) Write(addr uint16, v uint8) {
	if int(addr) < m.romSize {
		return
	}
	m.mem[addr] = v
}

func (m *memoryImage) ServiceInterrupts(nowNs, cycles int64) isr.ISR { return isr.NoInterrupt }

func (m *memoryImage) Uuid() [16]byte { return m.uuid }

// consoleIO is a minimal memory-mapped UART for the demo: port 0 is status
// (bit 0 set when a byte is waiting), port 1 is data. Ctrl-C still reaches
// the process as SIGINT (term.go leaves ISIG set), and interrupted is
// flipped by the signal handler main installs; ServiceInterrupts turns that
// into a clean isr.Quit rather than letting the process die mid-instruction.
type consoleIO struct {
	pending     byte
	hasPending  bool
	interrupted atomic.Bool
}

func (c *consoleIO) Read(port uint16) uint8 {
	switch port {
	case 0:
		if !c.hasPending {
			c.poll()
		}
		if c.hasPending {
			return 0x01
		}
		return 0x00
	case 1:
		if !c.hasPending {
			c.poll()
		}
		if !c.hasPending {
			return 0
		}
		b := c.pending
		c.hasPending = false
		return b
	default:
		return 0
	}
}

func (c *consoleIO) Write(port uint16, v uint8) {
	if port == 1 {
		os.Stdout.Write([]byte{v})
	}
}

func (c *consoleIO) ServiceInterrupts(nowNs, cycles int64) isr.ISR {
	if c.interrupted.CompareAndSwap(true, false) {
		return isr.Quit
	}
	return isr.NoInterrupt
}

func (c *consoleIO) Uuid() [16]byte { return [16]byte{} }

// poll performs a non-blocking read of one byte from stdin; the terminal is
// already in raw, non-canonical mode with VMIN=0/VTIME=0 (term.go), so this
// never blocks.
func (c *consoleIO) poll() {
	var buf [1]byte
	n, err := unix.Read(int(os.Stdin.Fd()), buf[:])
	if err != nil || n != 1 {
		return
	}
	c.pending = buf[0]
	c.hasPending = true
}
