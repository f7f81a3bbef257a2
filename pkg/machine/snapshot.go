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

package machine

import (
	"encoding/base64"

	json "github.com/goccy/go-json"

	"github.com/go8080/machemu/pkg/codec"
	"github.com/go8080/machemu/pkg/mcerr"
	"github.com/go8080/machemu/pkg/options"
)

// ramDoc mirrors the "ram" object nested under "memory" in the save
// document (spec.md §6): the encoder/compressor pair the bytes were written
// with, the decoded byte count, and the encoded text itself.
type ramDoc struct {
	Encoder    string `json:"encoder"`
	Compressor string `json:"compressor"`
	Size       uint32 `json:"size"`
	Bytes      string `json:"bytes"`
}

// memoryDoc mirrors the "memory" object of the save document: the memory
// controller's identity, the MD5 of its declared ROM regions, and the
// encoded RAM payload.
type memoryDoc struct {
	Uuid string `json:"uuid"`
	Rom  string `json:"rom"`
	Ram  ramDoc `json:"ram"`
}

// saveDoc is the top-level save document: the CPU's own save fragment
// verbatim, plus the memory controller's identity and contents.
type saveDoc struct {
	Cpu    json.RawMessage `json:"cpu"`
	Memory memoryDoc       `json:"memory"`
}

// readRegions concatenates the bytes a memory controller holds across a
// list of caller-declared offset/size regions, in the order given.
func (m *Machine) readRegions(regions []options.Region) []byte {
	var out []byte
	for _, r := range regions {
		for addr := r.Offset; addr < r.Offset+r.Size; addr++ {
			out = append(out, m.memCtl.Read(uint16(addr)))
		}
	}
	return out
}

func (m *Machine) writeRegions(regions []options.Region, data []byte) {
	i := 0
	for _, r := range regions {
		for addr := r.Offset; addr < r.Offset+r.Size; addr++ {
			m.memCtl.Write(uint16(addr), data[i])
			i++
		}
	}
}

func regionsSize(regions []options.Region) int {
	n := 0
	for _, r := range regions {
		n += int(r.Size)
	}
	return n
}

// buildSaveDocument assembles the full save document from the current CPU
// and memory controller state. The ROM/RAM regions, encoder and compressor
// come from the option store; the ROM identity and the memory controller's
// UUID are always carried as plain base64 of raw bytes, matching the
// reference implementation's fixed use of "base64"/"none" for those two
// fields regardless of the configured encoder.
func (m *Machine) buildSaveDocument() (string, error) {
	if m.memCtl == nil {
		return "", mcerr.New(mcerr.InvalidArgument, "no memory controller set")
	}

	if m.opts.Encoder() != "base64" {
		return "", mcerr.New(mcerr.JsonConfig, "encoder must be \"base64\" to save")
	}

	uuid := m.memCtl.Uuid()
	if uuid == [16]byte{} {
		return "", mcerr.New(mcerr.IncompatibleUuid, "memory controller uuid is empty")
	}

	uuidText := base64.StdEncoding.EncodeToString(uuid[:])

	cpuJson, err := m.cpu.Save(uuidText)
	if err != nil {
		return "", err
	}

	rom := m.readRegions(m.opts.RomRegions())
	romMd5 := codec.MD5(rom)

	ram := m.readRegions(m.opts.RamRegions())
	ramText, err := m.codec.EncodeBytes(m.opts.Encoder(), m.opts.Compressor(), ram)
	if err != nil {
		return "", mcerr.New(mcerr.JsonConfig, err.Error())
	}

	doc := saveDoc{
		Cpu: json.RawMessage(cpuJson),
		Memory: memoryDoc{
			Uuid: uuidText,
			Rom:  base64.StdEncoding.EncodeToString(romMd5[:]),
			Ram: ramDoc{
				Encoder:    m.opts.Encoder(),
				Compressor: m.opts.Compressor(),
				Size:       uint32(len(ram)),
				Bytes:      ramText,
			},
		},
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", mcerr.New(mcerr.JsonParse, err.Error())
	}

	return string(b), nil
}

// applyLoadDocument validates data against the current memory controller
// and ROM contents, then restores CPU and RAM state from it. Validation
// failures leave all state untouched; data == "" is a no-op, matching the
// reference implementation's handling of an onLoad handler that has
// nothing to offer yet.
func (m *Machine) applyLoadDocument(data string) error {
	if data == "" {
		return nil
	}

	var doc saveDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return mcerr.New(mcerr.JsonParse, err.Error())
	}

	if m.memCtl == nil {
		return mcerr.New(mcerr.InvalidArgument, "no memory controller set")
	}

	uuid := m.memCtl.Uuid()
	if uuid == [16]byte{} {
		return mcerr.New(mcerr.IncompatibleUuid, "memory controller uuid is empty")
	}

	uuidText := base64.StdEncoding.EncodeToString(uuid[:])
	if doc.Memory.Uuid != uuidText {
		return mcerr.New(mcerr.IncompatibleUuid, "save state was taken against a different memory controller")
	}

	rom := m.readRegions(m.opts.RomRegions())
	romMd5 := codec.MD5(rom)
	if doc.Memory.Rom != base64.StdEncoding.EncodeToString(romMd5[:]) {
		return mcerr.New(mcerr.IncompatibleRom, "rom contents differ from the saved snapshot")
	}

	if doc.Memory.Ram.Encoder != "base64" {
		return mcerr.New(mcerr.JsonConfig, "ram encoder must be \"base64\"")
	}

	ram, err := m.codec.DecodeBytes(doc.Memory.Ram.Encoder, doc.Memory.Ram.Compressor, doc.Memory.Ram.Bytes)
	if err != nil {
		return mcerr.New(mcerr.JsonParse, err.Error())
	}

	if len(ram) != regionsSize(m.opts.RamRegions()) {
		return mcerr.New(mcerr.IncompatibleRam, "ram size does not match the configured layout")
	}

	if err := m.cpu.Load(string(doc.Cpu), uuidText); err != nil {
		return err
	}

	m.writeRegions(m.opts.RamRegions(), ram)
	return nil
}
