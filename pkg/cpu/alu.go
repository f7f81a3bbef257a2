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

// addHalfCarryTable and subHalfCarryTable reproduce the KR580VM80A's actual
// auxiliary-carry behavior, which is not simply "carry out of bit 3" — it is
// computed from a 3-bit index built out of bit 3 of both operands and of the
// result. Ported from the reference core's half-carry table.
var addHalfCarryTable = [8]bool{false, false, true, false, true, false, true, true}
var subHalfCarryTable = [8]bool{true, false, false, false, true, true, true, false}

// Parity reports whether value has an even number of set bits.
func Parity(value uint8) bool {
	even := true
	for i := uint8(0); i < 8; i++ {
		if (value>>i)&0x1 == 0x1 {
			even = !even
		}
	}
	return even
}

// Add computes a+b+carryIn as the 8080's ALU does, returning the wrapped
// 8-bit result and the Flags it produces. It is a pure function so it can be
// exercised directly by table-driven tests without a CPU instance.
func Add(a, b, carryIn uint8) (uint8, Flags) {
	sum := uint16(a) + uint16(b) + uint16(carryIn)
	result := uint8(sum)

	index := (((a & 0x88) >> 1) | ((b & 0x88) >> 2) | ((result & 0x88) >> 3)) & 0x7

	return result, Flags{
		Zero:     result == 0,
		Sign:     result&0x80 != 0,
		Parity:   Parity(result),
		Carry:    sum&0x100 != 0,
		AuxCarry: addHalfCarryTable[index],
	}
}

// Sub computes a-b-borrowIn directly. Carry reports a borrow out of bit 7,
// as the 8080 does for subtraction, and AuxCarry comes from
// subHalfCarryTable (above), the borrow variant of Add's index calculation.
func Sub(a, b, borrowIn uint8) (uint8, Flags) {
	diff := uint16(a) - uint16(b) - uint16(borrowIn)
	result := uint8(diff)

	index := (((a & 0x88) >> 1) | ((b & 0x88) >> 2) | ((result & 0x88) >> 3)) & 0x7

	return result, Flags{
		Zero:     result == 0,
		Sign:     result&0x80 != 0,
		Parity:   Parity(result),
		Carry:    diff&0x100 != 0,
		AuxCarry: subHalfCarryTable[index],
	}
}

// daaAdjustment returns the amount to add to A and whether the carry flag
// must be forced, given the current accumulator and flags. It isolates the
// decimal-adjust rule from register mutation so it can be tested in
// isolation.
func daaAdjustment(a uint8, auxCarry, carry bool) (add uint8, forceCarry bool) {
	if a&0xF > 9 || auxCarry {
		add += 0x06
	}

	if (((a>>4) >= 9) && (a&0xF > 9)) || carry || (a>>4) > 9 {
		add += 0x60
		forceCarry = true
	}

	return add, forceCarry
}
