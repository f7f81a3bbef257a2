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

package cpu

import (
	json "github.com/goccy/go-json"

	"github.com/go8080/machemu/pkg/mcerr"
)

// registersDoc mirrors the "registers" object in the save document's "cpu"
// field (spec.md §4.D): seven working registers plus the packed status
// byte, under their single-letter names.
type registersDoc struct {
	A uint8 `json:"a"`
	B uint8 `json:"b"`
	C uint8 `json:"c"`
	D uint8 `json:"d"`
	E uint8 `json:"e"`
	H uint8 `json:"h"`
	L uint8 `json:"l"`
	S uint8 `json:"s"`
}

// snapshotDoc is the "cpu" field of a machine save document. uuid is
// supplied by the caller (the machine's memory controller identity) rather
// than owned by the CPU, so a save can be checked for compatibility against
// the memory it was taken with on load.
type snapshotDoc struct {
	Uuid      string       `json:"uuid"`
	Registers registersDoc `json:"registers"`
	PC        uint16       `json:"pc"`
	SP        uint16       `json:"sp"`
}

// Save serializes register state into the JSON fragment the machine embeds
// under its "cpu" key. uuid ties the snapshot to the memory it was taken
// alongside; Load rejects a snapshot whose uuid does not match.
func (c *CPU) Save(uuid string) (string, error) {
	doc := snapshotDoc{
		Uuid: uuid,
		Registers: registersDoc{
			A: c.A, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
			S: c.Flags.PSW(),
		},
		PC: c.PC,
		SP: c.SP,
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", mcerr.New(mcerr.JsonParse, err.Error())
	}
	return string(b), nil
}

// Load restores register state from a JSON fragment produced by Save.
// wantUuid is the identity the caller expects the snapshot to carry
// (typically the current memory controller's UUID); a mismatch leaves the
// CPU state untouched and returns mcerr.IncompatibleUuid.
func (c *CPU) Load(data, wantUuid string) error {
	var doc snapshotDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return mcerr.New(mcerr.JsonParse, err.Error())
	}

	if doc.Uuid != wantUuid {
		return mcerr.New(mcerr.IncompatibleUuid, "save state was taken against a different memory image")
	}

	c.A, c.B, c.C, c.D, c.E, c.H, c.L = doc.Registers.A, doc.Registers.B, doc.Registers.C, doc.Registers.D, doc.Registers.E, doc.Registers.H, doc.Registers.L
	c.Flags.SetPSW(doc.Registers.S)
	c.PC = doc.PC
	c.SP = doc.SP
	return nil
}
