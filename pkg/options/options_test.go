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

package options_test

import (
	"errors"
	"testing"

	"github.com/go8080/machemu/pkg/mcerr"
	"github.com/go8080/machemu/pkg/options"
)

func TestDefaults(t *testing.T) {
	s := options.New()

	if got := s.ClockResolution(); got != -1 {
		t.Fatalf("ClockResolution() = %d, want -1", got)
	}

	if got := s.IsrFreq(); got != 0 {
		t.Fatalf("IsrFreq() = %v, want 0", got)
	}

	if s.RunAsync() {
		t.Fatal("RunAsync() should default to false")
	}
}

func TestSetOptionsMergesKeys(t *testing.T) {
	s := options.New()

	if err := s.SetOptions(`{"cpu":"i8080","isrFreq":2}`, false); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}

	if err := s.SetOptions(`{"clockResolution":25000000}`, false); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}

	if got := s.CpuType(); got != "i8080" {
		t.Fatalf("CpuType() = %q, want i8080", got)
	}

	if got := s.IsrFreq(); got != 2 {
		t.Fatalf("IsrFreq() = %v, want 2 (should survive the second SetOptions call)", got)
	}

	if got := s.ClockResolution(); got != 25_000_000 {
		t.Fatalf("ClockResolution() = %d, want 25000000", got)
	}
}

func TestSetCpuTwiceFails(t *testing.T) {
	s := options.New()

	if err := s.SetOptions(`{"cpu":"i8080"}`, false); err != nil {
		t.Fatalf("first SetOptions: %v", err)
	}

	err := s.SetOptions(`{"cpu":"i8080"}`, false)

	var mcErr *mcerr.Error
	if !errors.As(err, &mcErr) || mcErr.Code != mcerr.JsonConfig {
		t.Fatalf("SetOptions second cpu = %v, want mcerr.JsonConfig", err)
	}
}

func TestSetOptionsWhileRunningFails(t *testing.T) {
	s := options.New()

	err := s.SetOptions(`{"isrFreq":1}`, true)

	var mcErr *mcerr.Error
	if !errors.As(err, &mcErr) || mcErr.Code != mcerr.Busy {
		t.Fatalf("SetOptions while running = %v, want mcerr.Busy", err)
	}
}

func TestClockResolutionOutOfRange(t *testing.T) {
	s := options.New()

	if err := s.SetOptions(`{"clockResolution":-2}`, false); err == nil {
		t.Fatal("expected an error for clockResolution < -1")
	}

	if err := s.SetOptions(`{"clockResolution":10000000001}`, false); err == nil {
		t.Fatal("expected an error for clockResolution above the ceiling")
	}
}

func TestRomRamRegions(t *testing.T) {
	s := options.New()

	doc := `{"rom":{"file":[{"offset":0,"size":2048}]},"ram":{"block":[{"offset":2048,"size":16384}]}}`

	if err := s.SetOptions(doc, false); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}

	rom := s.RomRegions()
	if len(rom) != 1 || rom[0].Size != 2048 {
		t.Fatalf("RomRegions() = %+v, want one 2048-byte region", rom)
	}

	ram := s.RamRegions()
	if len(ram) != 1 || ram[0].Offset != 2048 {
		t.Fatalf("RamRegions() = %+v, want one region at offset 2048", ram)
	}
}

func TestInvalidEncoderRejected(t *testing.T) {
	s := options.New()

	if err := s.SetOptions(`{"encoder":"rot13"}`, false); err == nil {
		t.Fatal("expected an error for a non-base64 encoder")
	}
}
