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

type WatchpointType uint

const (
	ReadWatch WatchpointType = iota
	WriteWatch
	AccessWatch
)

type Breakpoint struct {
	Addr uint16
}

type Watchpoint struct {
	Addr uint16
	Type WatchpointType
}

// Debugger observes a running machine without being part of its execution
// path: the machine run loop calls Step once per retired instruction and
// Read/Write once per bus transaction, and the Debugger decides whether to
// invoke a handler.
type Debugger struct {
	Break bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	HandleBreak func(dbg *Debugger, pc uint16)
	HandleRead  func(addr uint16, dbg *Debugger)
	HandleWrite func(addr uint16, dbg *Debugger)
}
