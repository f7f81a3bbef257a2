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

package debug_test

import (
	"testing"

	"github.com/go8080/machemu/pkg/debug"
)

func TestStepFiresOnMatchingBreakpoint(t *testing.T) {
	var hit uint16
	dbg := &debug.Debugger{
		Breakpoints: []debug.Breakpoint{{Addr: 0x0100}},
		HandleBreak: func(d *debug.Debugger, pc uint16) { hit = pc },
	}

	dbg.Step(0x0050)
	if hit != 0 {
		t.Fatalf("HandleBreak fired at unrelated PC, hit=%#04x", hit)
	}

	dbg.Step(0x0100)
	if hit != 0x0100 {
		t.Fatalf("hit = %#04x, want 0x0100", hit)
	}
}

func TestStepRespectsBreakFlag(t *testing.T) {
	calls := 0
	dbg := &debug.Debugger{
		Break:       true,
		HandleBreak: func(d *debug.Debugger, pc uint16) { calls++ },
	}

	dbg.Step(0x1234)
	if calls != 1 {
		t.Fatalf("HandleBreak called %d times, want 1", calls)
	}
}

func TestWatchpointTypeFiltersReadVsWrite(t *testing.T) {
	var reads, writes int
	dbg := &debug.Debugger{
		Watchpoints: []debug.Watchpoint{
			{Addr: 0x2000, Type: debug.ReadWatch},
			{Addr: 0x2001, Type: debug.WriteWatch},
		},
		HandleRead:  func(addr uint16, d *debug.Debugger) { reads++ },
		HandleWrite: func(addr uint16, d *debug.Debugger) { writes++ },
	}

	dbg.Read(0x2000)
	dbg.Write(0x2000) // write watchpoint is on 0x2001, so this must not fire
	dbg.Write(0x2001)
	dbg.Read(0x2001) // read watchpoint is on 0x2000, so this must not fire

	if reads != 1 || writes != 1 {
		t.Fatalf("reads=%d writes=%d, want 1/1", reads, writes)
	}
}
