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

package options

import (
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/go8080/machemu/pkg/mcerr"
)

const maxClockResolution = 10_000_000_000

// SetOptions parses opts — either a raw JSON document or a "file://path"
// reference to one — and merges it into the store. running must be true
// only when the machine is currently executing; SetOptions fails fast in
// that case, matching every other configuration setter in the engine.
//
// Setting "cpu" a second time, or supplying an out-of-range value, returns
// an error and leaves the store unchanged.
func (s *Store) SetOptions(opts string, running bool) error {
	if running {
		return mcerr.New(mcerr.Busy, "cannot set options while the machine is running")
	}

	raw := opts

	if after, ok := strings.CutPrefix(opts, "file://"); ok {
		data, err := os.ReadFile(after)
		if err != nil {
			return mcerr.New(mcerr.JsonParse, err.Error())
		}

		raw = string(data)
	}

	var doc document

	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return mcerr.New(mcerr.JsonParse, err.Error())
	}

	return s.apply(&doc)
}

func (s *Store) apply(doc *document) error {
	if doc.Cpu != nil {
		if s.cpuSet {
			return mcerr.New(mcerr.JsonConfig, "cpu type has already been set")
		}

		if *doc.Cpu != "i8080" {
			return mcerr.New(mcerr.InvalidArgument, "unsupported cpu type "+*doc.Cpu)
		}
	}

	if doc.ClockResolution != nil {
		if *doc.ClockResolution < -1 || *doc.ClockResolution > maxClockResolution {
			return mcerr.New(mcerr.InvalidArgument, "clockResolution out of range")
		}
	}

	if doc.IsrFreq != nil && *doc.IsrFreq < 0 {
		return mcerr.New(mcerr.InvalidArgument, "isrFreq must be >= 0")
	}

	if doc.Encoder != nil && *doc.Encoder != "base64" {
		return mcerr.New(mcerr.InvalidArgument, "encoder must be \"base64\"")
	}

	// Everything validated; merge like-for-like, matching the original
	// implementation's json::update semantics (last SetOptions wins per
	// key, keys absent from doc are left untouched).
	if doc.Cpu != nil {
		s.cpu = *doc.Cpu
		s.cpuSet = true
	}

	if doc.ClockResolution != nil {
		s.clockResolution = *doc.ClockResolution
	}

	if doc.IsrFreq != nil {
		s.isrFreq = *doc.IsrFreq
	}

	if doc.RunAsync != nil {
		s.runAsync = *doc.RunAsync
	}

	if doc.LoadAsync != nil {
		s.loadAsync = *doc.LoadAsync
	}

	if doc.SaveAsync != nil {
		s.saveAsync = *doc.SaveAsync
	}

	if doc.Compressor != nil {
		s.compressor = *doc.Compressor
	}

	if doc.Encoder != nil {
		s.encoder = *doc.Encoder
	}

	if doc.Rom != nil {
		s.rom = doc.Rom.File
	}

	if doc.Ram != nil {
		s.ram = doc.Ram.Block
	}

	return nil
}

// CpuType returns the configured CPU model, or "" if it was never set.
// Run does not consult it; the machine always emulates an i8080.
func (s *Store) CpuType() string { return s.cpu }

func (s *Store) ClockResolution() int64 { return s.clockResolution }

func (s *Store) IsrFreq() float64 { return s.isrFreq }

func (s *Store) RunAsync() bool { return s.runAsync }

func (s *Store) LoadAsync() bool { return s.loadAsync }

func (s *Store) SaveAsync() bool { return s.saveAsync }

func (s *Store) Compressor() string {
	if s.compressor == "" {
		return "none"
	}

	return s.compressor
}

func (s *Store) Encoder() string { return s.encoder }

func (s *Store) RomRegions() []Region { return s.rom }

func (s *Store) RamRegions() []Region { return s.ram }
