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

// Region is a caller-declared byte range within the memory controller's
// address space — a ROM region contributing to the MD5 identity, or a RAM
// region serialized into save states.
type Region struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

// romDoc and ramDoc mirror the "rom"/"ram" option keys: a list of named
// regions grouped under "file"/"block" respectively.
type romDoc struct {
	File []Region `json:"file"`
}

type ramDoc struct {
	Block []Region `json:"block"`
}

// document is the JSON shape accepted by SetOptions. Every field is a
// pointer so the decoder can tell "absent" from "zero value", which is
// required to implement JSON-merge-update semantics across repeated
// SetOptions calls.
type document struct {
	Cpu             *string  `json:"cpu"`
	ClockResolution *int64   `json:"clockResolution"`
	IsrFreq         *float64 `json:"isrFreq"`
	RunAsync        *bool    `json:"runAsync"`
	LoadAsync       *bool    `json:"loadAsync"`
	SaveAsync       *bool    `json:"saveAsync"`
	Compressor      *string  `json:"compressor"`
	Encoder         *string  `json:"encoder"`
	Rom             *romDoc  `json:"rom"`
	Ram             *ramDoc  `json:"ram"`
}

// Store holds the merged configuration document plus the subset of
// defaults spec.md §4.C/Appendix and the original implementation's
// bootstrap apply when a key was never set.
type Store struct {
	cpu             string
	cpuSet          bool
	clockResolution int64
	isrFreq         float64
	runAsync        bool
	loadAsync       bool
	saveAsync       bool
	compressor      string
	encoder         string
	rom             []Region
	ram             []Region
}

// New returns a Store pre-populated with the engine's defaults:
// clockResolution -1 (pacing disabled), isrFreq 0 (interrupt polling off),
// runAsync/loadAsync/saveAsync false, compressor "none", no rom/ram
// regions declared.
func New() *Store {
	return &Store{
		clockResolution: -1,
		isrFreq:         0,
		compressor:      "none",
	}
}
