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

// Package disasm renders single LC-3 instruction words as assembly-like
// text for the debugger.
package disasm

import (
	"fmt"

	"github.com/lc3sim/lc3sim/pkg/encoding"
	"github.com/lc3sim/lc3sim/pkg/machine"
)

var registerNames = [8]string{
	"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7",
}

var trapNames = map[uint16]string{
	machine.TRAP_GETC:  "GETC",
	machine.TRAP_OUT:   "OUT",
	machine.TRAP_PUTS:  "PUTS",
	machine.TRAP_IN:    "IN",
	machine.TRAP_PUTSP: "PUTSP",
	machine.TRAP_HALT:  "HALT",
}

// Instruction formats a 16-bit word as human-readable LC-3 assembly.
// Loads and stores render as pointer expressions relative to pc, the
// value of the program counter after the instruction's fetch.
func Instruction(instruction uint16) string {
	dr := registerNames[encoding.DR(instruction)]
	sr1 := registerNames[encoding.SR1(instruction)]
	sr2 := registerNames[encoding.SR2(instruction)]

	imm5 := int16(encoding.Imm5(instruction))
	off6 := int16(encoding.Offset6(instruction))
	off9 := int16(encoding.Offset9(instruction))
	off11 := int16(encoding.Offset11(instruction))

	switch encoding.Opcode(instruction) {
	case machine.OP_ADD:
		if (instruction>>5)&0x1 == 1 {
			return fmt.Sprintf("%s = %s + %d", dr, sr1, imm5)
		}
		return fmt.Sprintf("%s = %s + %s", dr, sr1, sr2)

	case machine.OP_AND:
		if (instruction>>5)&0x1 == 1 {
			return fmt.Sprintf("%s = %s & %d", dr, sr1, imm5)
		}
		return fmt.Sprintf("%s = %s & %s", dr, sr1, sr2)

	case machine.OP_NOT:
		return fmt.Sprintf("%s = ~%s", dr, sr1)

	case machine.OP_BR:
		nzp := encoding.CondMask(instruction)

		flags := ""
		if nzp&0x4 != 0 {
			flags += "n"
		}
		if nzp&0x2 != 0 {
			flags += "z"
		}
		if nzp&0x1 != 0 {
			flags += "p"
		}

		return fmt.Sprintf("BR%s %d", flags, off9)

	case machine.OP_JMP:
		return fmt.Sprintf("JMP %s", sr1)

	case machine.OP_JSR:
		if (instruction>>11)&0x1 == 1 {
			return fmt.Sprintf("JSR %d", off11)
		}
		return fmt.Sprintf("JSRR %s", sr1)

	case machine.OP_LD:
		return fmt.Sprintf("%s = *(pc + (%d))", dr, off9)

	case machine.OP_LDI:
		return fmt.Sprintf("%s = **(pc + (%d))", dr, off9)

	case machine.OP_LDR:
		return fmt.Sprintf("%s = *(%s + (%d))", dr, sr1, off6)

	case machine.OP_LEA:
		return fmt.Sprintf("%s = pc + %d", dr, off9)

	case machine.OP_ST:
		return fmt.Sprintf("*(pc + (%d)) = %s", off9, dr)

	case machine.OP_STI:
		return fmt.Sprintf("**(pc + (%d)) = %s", off9, dr)

	case machine.OP_STR:
		return fmt.Sprintf("*(%s + (%d)) = %s", sr1, off6, dr)

	case machine.OP_RTI:
		return "RTI"

	case machine.OP_TRAP:
		vector := encoding.TrapVector(instruction)

		if name, ok := trapNames[vector]; ok {
			return name
		}

		return fmt.Sprintf("TRAP %#02x", vector)

	case machine.OP_RES:
		return "RES"
	}

	return fmt.Sprintf(".FILL %#04x", instruction)
}
