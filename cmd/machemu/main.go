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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/go8080/machemu/pkg/debug"
	"github.com/go8080/machemu/pkg/machine"
)

type runCmd struct {
	Rom     string `arg:"" type:"existingfile" help:"path to an 8080 ROM image, loaded at address 0"`
	Options string `help:"options JSON document, or a file:// reference" default:""`
	Start   uint16 `help:"initial program counter" default:"0"`
	Debug   bool   `help:"break immediately and enter the debug REPL"`
}

var cli struct {
	Run runCmd `cmd:"" default:"1" help:"run a ROM image on the 8080 engine"`
}

func main() {
	ctx := kong.Parse(&cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (r *runCmd) Run() error {
	rom, err := os.ReadFile(r.Rom)
	if err != nil {
		return err
	}

	mem := newMemoryImage(rom)
	io := &consoleIO{}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT)
	go func() {
		for range c {
			io.interrupted.Store(true)
		}
	}()
	defer signal.Stop(c)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	m := machine.New(logger)
	if err := m.SetMemoryController(mem); err != nil {
		return err
	}
	if err := m.SetIoController(io); err != nil {
		return err
	}

	// isrFreq must be positive for the run loop to ever poll the io
	// controller; default it so Ctrl-C works out of the box, then let the
	// caller's own options override it.
	if err := m.SetOptions(`{"isrFreq":60}`); err != nil {
		return err
	}

	if r.Options != "" {
		if err := m.SetOptions(r.Options); err != nil {
			return err
		}
	}

	if r.Debug {
		dbg := &debug.Debugger{Break: true}
		dbg.HandleBreak = handleBreak(m)
		dbg.HandleRead = handleRead(m)
		dbg.HandleWrite = handleWrite(m)

		if err := m.SetDebugger(dbg); err != nil {
			return err
		}
	}

	enterRawTerm()
	defer exitRawTerm()

	_, err = m.Run(r.Start)
	return err
}
