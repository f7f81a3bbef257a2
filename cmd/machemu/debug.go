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
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go8080/machemu/pkg/debug"
	"github.com/go8080/machemu/pkg/machine"
)

type cpuState struct {
	Registers struct {
		A, B, C, D, E, H, L, S uint8
	} `json:"registers"`
	PC uint16 `json:"pc"`
	SP uint16 `json:"sp"`
}

func handleBreak(m *machine.Machine) func(dbg *debug.Debugger, pc uint16) {
	return func(dbg *debug.Debugger, pc uint16) {
		fmt.Printf("\nstopped at %#04x\n", pc)
		debugREPL(dbg, m)
	}
}

func handleRead(m *machine.Machine) func(addr uint16, dbg *debug.Debugger) {
	return func(addr uint16, dbg *debug.Debugger) {
		fmt.Printf("\nwatchpoint: read %#04x\n", addr)
		debugREPL(dbg, m)
	}
}

func handleWrite(m *machine.Machine) func(addr uint16, dbg *debug.Debugger) {
	return func(addr uint16, dbg *debug.Debugger) {
		fmt.Printf("\nwatchpoint: write %#04x\n", addr)
		debugREPL(dbg, m)
	}
}

func debugRegisters(m *machine.Machine) {
	raw, err := m.GetState()
	if err != nil {
		fmt.Println(err)
		return
	}

	var st cpuState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("A:%#02x B:%#02x C:%#02x D:%#02x E:%#02x H:%#02x L:%#02x\n",
		st.Registers.A, st.Registers.B, st.Registers.C, st.Registers.D,
		st.Registers.E, st.Registers.H, st.Registers.L)
	fmt.Printf("PC:%#04x SP:%#04x PSW:%#08b\n", st.PC, st.SP, st.Registers.S)
}

func debugBreak(dbg *debug.Debugger, args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			fmt.Println("break add [0x####]")
			return
		}

		addr, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 16)
		if err != nil {
			fmt.Println(err)
			return
		}

		dbg.Breakpoints = append(dbg.Breakpoints, debug.Breakpoint{Addr: uint16(addr)})
		fmt.Printf("breakpoint added %#04x\n", addr)

	case "list":
		for i, bp := range dbg.Breakpoints {
			fmt.Printf("#%d: %#04x\n", i, bp.Addr)
		}

	case "remove":
		if len(args) != 2 {
			fmt.Println("break remove [#]")
			return
		}

		i, err := strconv.Atoi(args[1])
		if err != nil || i < 0 || i >= len(dbg.Breakpoints) {
			fmt.Println("invalid breakpoint number")
			return
		}

		dbg.Breakpoints = append(dbg.Breakpoints[:i], dbg.Breakpoints[i+1:]...)

	default:
		fmt.Printf("break: %q is not a valid command\n", args[0])
	}
}

func watchTypeName(t debug.WatchpointType) string {
	switch t {
	case debug.ReadWatch:
		return "read"
	case debug.WriteWatch:
		return "write"
	default:
		return "access"
	}
}

func debugWatch(dbg *debug.Debugger, args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			fmt.Println("watch add [0x####] [read|write|access]")
			return
		}

		addr, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 16)
		if err != nil {
			fmt.Println(err)
			return
		}

		var wtype debug.WatchpointType
		switch args[2] {
		case "r", "read":
			wtype = debug.ReadWatch
		case "w", "write":
			wtype = debug.WriteWatch
		case "a", "access":
			wtype = debug.AccessWatch
		default:
			fmt.Println("watch add [0x####] [read|write|access]")
			return
		}

		dbg.Watchpoints = append(dbg.Watchpoints, debug.Watchpoint{Addr: uint16(addr), Type: wtype})
		fmt.Printf("watchpoint added %#04x (%s)\n", addr, watchTypeName(wtype))

	case "list":
		for i, wp := range dbg.Watchpoints {
			fmt.Printf("#%d: %#04x %s\n", i, wp.Addr, watchTypeName(wp.Type))
		}

	case "remove":
		if len(args) != 2 {
			fmt.Println("watch remove [#]")
			return
		}

		i, err := strconv.Atoi(args[1])
		if err != nil || i < 0 || i >= len(dbg.Watchpoints) {
			fmt.Println("invalid watchpoint number")
			return
		}

		dbg.Watchpoints = append(dbg.Watchpoints[:i], dbg.Watchpoints[i+1:]...)

	default:
		fmt.Printf("watch: %q is not a valid command\n", args[0])
	}
}

func debugREPL(dbg *debug.Debugger, m *machine.Machine) {
	exitRawTerm()
	defer enterRawTerm()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(dbg) ")

		if !scanner.Scan() {
			fmt.Println()
			os.Exit(0)
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "break":
			debugBreak(dbg, args)
		case "w", "watch":
			debugWatch(dbg, args)
		case "r", "reg", "registers":
			debugRegisters(m)
		case "c", "continue":
			dbg.Break = false
			return
		case "n", "next":
			dbg.Break = true
			return
		case "q", "quit":
			exitRawTerm()
			os.Exit(0)
		default:
			fmt.Printf("%q is not a valid command\n", cmd)
		}
	}
}
