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

package debug

// Step is called by the machine run loop once an instruction retires, with
// PC already pointing at the next instruction to fetch. A Break already in
// effect, or a breakpoint matching PC, invokes HandleBreak.
func (dbg *Debugger) Step(pc uint16) {
	if dbg.Break {
		if dbg.HandleBreak != nil {
			dbg.HandleBreak(dbg, pc)
		}
		return
	}

	for _, bp := range dbg.Breakpoints {
		if bp.Addr == pc {
			if dbg.HandleBreak != nil {
				dbg.HandleBreak(dbg, pc)
			}
			break
		}
	}
}

// Read is called by the machine's bus dispatcher before a memory read
// reaches the controller.
func (dbg *Debugger) Read(addr uint16) {
	for _, wp := range dbg.Watchpoints {
		if wp.Type == WriteWatch {
			continue
		}
		if wp.Addr == addr {
			if dbg.HandleRead != nil {
				dbg.HandleRead(addr, dbg)
			}
			break
		}
	}
}

// Write is called by the machine's bus dispatcher before a memory write
// reaches the controller.
func (dbg *Debugger) Write(addr uint16) {
	for _, wp := range dbg.Watchpoints {
		if wp.Type == ReadWatch {
			continue
		}
		if wp.Addr == addr {
			if dbg.HandleWrite != nil {
				dbg.HandleWrite(addr, dbg)
			}
			break
		}
	}
}
