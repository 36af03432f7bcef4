// Copyright (C) 2025  The lc3sim Authors

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
	"github.com/lc3sim/lc3sim/pkg/encoding"
)

// stepExtended decodes an LC-3e two-word instruction. The first word has
// already been fetched; the extended opcode combines its low two bits
// with the top nibble of the second word. Only MUL and DIV ever had
// their semantics fixed; the rest raise ILL. Extended operations do not
// touch the condition codes.
func (mc *Machine) stepExtended(first uint16) {
	second := mc.State.Memory[mc.State.Program]
	mc.State.Program++

	op := (first&0x3)<<4 | second>>12

	dest := encoding.DR(second)
	src1 := encoding.SR1(second)

	switch op {
	// MUL  |1101  |00|0000    |DR   |SR1  |0|00 |SR2   | Signed multiply
	// MUL  |1101  |00|0000    |DR   |SR1  |1|imm5      |
	case EXT_MUL:
		if (second>>5)&0x1 == 1 {
			mc.State.Registers[dest] = mc.State.Registers[src1] *
				encoding.Imm5(second)
		} else {
			mc.State.Registers[dest] = uint16(
				int16(mc.State.Registers[src1]) *
					int16(mc.State.Registers[encoding.SR2(second)]),
			)
		}

	// DIV  |1101  |00|0001    |DR   |SR1  |0|00 |SR2   | Signed divide
	// DIV  |1101  |00|0001    |DR   |SR1  |1|imm5      |
	case EXT_DIV:
		// A zero divisor is masked to one rather than trapping
		if (second>>5)&0x1 == 1 {
			divisor := int16(encoding.Imm5(second))
			if divisor == 0 {
				divisor = 1
			}

			mc.State.Registers[dest] = uint16(
				int16(mc.State.Registers[src1]) / divisor,
			)
		} else {
			divisor := int16(mc.State.Registers[encoding.SR2(second)])
			if divisor == 0 {
				divisor = 1
			}

			mc.State.Registers[dest] = uint16(
				int16(mc.State.Registers[src1]) / divisor,
			)
		}

	default:
		// RSHIFT, XCHG, OR, XOR were never given semantics
		mc.raiseException(EXC_ILL)
	}
}
