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
	"fmt"

	"github.com/lc3sim/lc3sim/pkg/encoding"
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x0000
	}

	for i := range mc.Memory {
		mc.Memory[i] = 0x0000
	}

	// Execution begins at the OS bootstrap with supervisor privilege;
	// the bootstrap loads R6 from the ROM stack-base word and RTIs into
	// the user program
	mc.Program = ROM_OS_START
	mc.Procstat = 0x0000
	mc.Instr = 0x0000
	mc.Stack = 0x0000
}

// Boot resets the machine, installs the supervisor ROM and starts the
// clock. The loader may deposit user programs afterwards.
func (mc *Machine) Boot() {
	mc.State.Reset()
	mc.Output = nil

	copy(mc.State.Memory[:ROM_SIZE], osImage())

	mc.State.Memory[DEV_MCR] |= MCR_CLOCK
	mc.State.Memory[DEV_DSR] |= 1 << 15
	mc.State.Memory[DEV_DDR] = 0
}

func (mc *Machine) push(value uint16) {
	mc.State.Registers[6]--
	mc.Write(mc.State.Registers[6], value)
}

func (mc *Machine) pop() uint16 {
	result := mc.Read(mc.State.Registers[6])
	mc.State.Registers[6]++
	return result
}

// Read returns the word at addr through the MMIO path: KBDR reads
// consume the pending key and clear KBSR, PSR reads return the live
// processor status.
func (mc *Machine) Read(addr uint16) uint16 {
	switch addr {
	case DEV_KBDR:
		// Reading the data register consumes the pending key
		mc.State.Memory[DEV_KBSR] = 0
		if mc.Devices != nil && mc.Devices.Keyboard != nil {
			mc.Devices.Keyboard.ReadByte()
		}
	case DEV_PSR:
		return mc.State.Procstat
	}

	return mc.State.Memory[addr]
}

// Write stores a word through the MMIO path: DDR writes emit the low
// byte to the display, PSR writes set the live processor status.
func (mc *Machine) Write(addr uint16, value uint16) {
	switch addr {
	case DEV_DDR:
		key := byte(value & 0xFF)

		mc.Output = append(mc.Output, key)

		if mc.Devices != nil && mc.Devices.Display != nil {
			if err := mc.Devices.Display.WriteByte(key); err != nil {
				panic(err)
			}

			if err := mc.Devices.Display.Flush(); err != nil {
				panic(err)
			}
		}
	case DEV_PSR:
		mc.State.Procstat = value
		return
	case DEV_KBDR:
		// The keyboard data register is read-only
		return
	}

	mc.State.Memory[addr] = value
}

// pumpKeyboard latches the next pending key into KBSR/KBDR without
// consuming it. KBSR reflects whether input remains.
func (mc *Machine) pumpKeyboard() {
	if mc.Devices == nil || mc.Devices.Keyboard == nil {
		return
	}

	if key, err := mc.Devices.Keyboard.Peek(1); err == nil && len(key) == 1 {
		mc.State.Memory[DEV_KBSR] = 1 << 15
		mc.State.Memory[DEV_KBDR] = uint16(key[0])
	} else {
		mc.State.Memory[DEV_KBSR] = 0
	}
}

func (mc *Machine) userMode() bool {
	return mc.State.Procstat&PSR_USER != 0
}

// accessViolation reports whether a data access to addr must raise ACV:
// user mode may only touch [0x3000, 0xFE00).
func (mc *Machine) accessViolation(addr uint16) bool {
	return mc.userMode() && (addr < MEMSPACE_USER || addr >= MEMSPACE_DEVICES)
}

// dispatch enters a trap or exception handler: switch to the supervisor
// stack, push the interrupted PSR and PC, and jump through the vector
// table entry at vector.
func (mc *Machine) dispatch(vector uint16) {
	psr := mc.State.Procstat

	if mc.userMode() {
		mc.State.Registers[6], mc.State.Stack =
			mc.State.Stack, mc.State.Registers[6]
		mc.State.Procstat &^= PSR_USER
	}

	mc.push(psr)
	mc.push(mc.State.Program)

	mc.State.Program = mc.Read(vector)
}

func (mc *Machine) raiseException(code uint16) {
	mc.dispatch(MEMSPACE_INT_TABLE | code)
}

func (mc *Machine) setFlags(value uint16) {
	// Reset condition flags, but preserve the privilege bit
	mc.State.Procstat &= ^uint16(0x7)

	if value == 0 {
		mc.State.Procstat |= FLAG_ZERO
	} else if value>>15 == 1 {
		mc.State.Procstat |= FLAG_NEG
	} else {
		mc.State.Procstat |= FLAG_POS
	}
}

// Step fetches and executes a single instruction. Architectural faults
// are dispatched through the vector table and are not errors; only the
// defensive unimplemented-opcode path reports one.
func (mc *Machine) Step() error {
	instruction := mc.State.Memory[mc.State.Program]

	mc.State.Instr = instruction
	mc.State.Program++

	switch encoding.Opcode(instruction) {
	// ADD  |0001    |DR   |SR1  |0|00 |SR2   | Register  addition
	// ADD  |0001    |DR   |SR1  |1|imm5      | Immediate addition
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD:
		dest := encoding.DR(instruction)
		src1 := encoding.SR1(instruction)

		if (instruction>>5)&0x1 == 1 {
			mc.State.Registers[dest] = mc.State.Registers[src1] +
				encoding.Imm5(instruction)
		} else {
			mc.State.Registers[dest] = mc.State.Registers[src1] +
				mc.State.Registers[encoding.SR2(instruction)]
		}

		mc.setFlags(mc.State.Registers[dest])

	// AND  |0101    |DR   |SR1  |0|00 |SR2   | Register  bitwise
	// AND  |0101    |DR   |SR1  |1|imm5      | Immediate bitwise
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_AND:
		dest := encoding.DR(instruction)
		src1 := encoding.SR1(instruction)

		if (instruction>>5)&0x1 == 1 {
			mc.State.Registers[dest] = mc.State.Registers[src1] &
				encoding.Imm5(instruction)
		} else {
			mc.State.Registers[dest] = mc.State.Registers[src1] &
				mc.State.Registers[encoding.SR2(instruction)]
		}

		mc.setFlags(mc.State.Registers[dest])

	// NOT  |1001    |DR   |SR   |1|11111     | Bitwise complement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_NOT:
		dest := encoding.DR(instruction)

		mc.State.Registers[dest] = ^mc.State.Registers[encoding.SR1(instruction)]

		mc.setFlags(mc.State.Registers[dest])

	// BR   |0000    |N|Z|P|PCoffset9         | Conditional branch
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BR:
		if encoding.CondMask(instruction)&(mc.State.Procstat&0x7) != 0 {
			mc.State.Program += encoding.Offset9(instruction)
		}

	// JMP  |1100    |000  |BaseR|000000      | Jump
	// RET  |1100    |000  |111  |000000      | Return
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JMP:
		mc.State.Program = mc.State.Registers[encoding.SR1(instruction)]

	// JSR  |0100    |1|PCoffset11            | Jump to subroutine
	// JSRR |0100    |0|00 |BaseR|000000      | Jump to subroutine register
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JSR:
		mc.State.Registers[7] = mc.State.Program

		if (instruction>>11)&0x1 == 1 {
			mc.State.Program += encoding.Offset11(instruction)
		} else {
			mc.State.Program = mc.State.Registers[encoding.SR1(instruction)]
		}

	// LD   |0010    |DR   |PCoffset9         | Load
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD:
		addr := mc.State.Program + encoding.Offset9(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		dest := encoding.DR(instruction)

		mc.State.Registers[dest] = mc.Read(addr)

		mc.setFlags(mc.State.Registers[dest])

	// LDI  |1010    |DR   |PCoffset9         | Load indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDI:
		addr := mc.State.Program + encoding.Offset9(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		target := mc.Read(addr)

		if mc.accessViolation(target) {
			mc.raiseException(EXC_ACV)
			break
		}

		dest := encoding.DR(instruction)

		mc.State.Registers[dest] = mc.Read(target)

		mc.setFlags(mc.State.Registers[dest])

	// LDR  |0110    |DR   |BaseR|offset6     | Load base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDR:
		addr := mc.State.Registers[encoding.SR1(instruction)] +
			encoding.Offset6(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		dest := encoding.DR(instruction)

		mc.State.Registers[dest] = mc.Read(addr)

		mc.setFlags(mc.State.Registers[dest])

	// LEA  |1110    |DR   |PCoffset9         | Load effective address
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LEA:
		dest := encoding.DR(instruction)

		mc.State.Registers[dest] = mc.State.Program +
			encoding.Offset9(instruction)

		mc.setFlags(mc.State.Registers[dest])

	// ST   |0011    |SR   |PCoffset9         | Store
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ST:
		addr := mc.State.Program + encoding.Offset9(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		mc.Write(addr, mc.State.Registers[encoding.DR(instruction)])

	// STI  |1011    |SR   |PCoffset9         | Store indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STI:
		addr := mc.State.Program + encoding.Offset9(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		target := mc.Read(addr)

		if mc.accessViolation(target) {
			mc.raiseException(EXC_ACV)
			break
		}

		mc.Write(target, mc.State.Registers[encoding.DR(instruction)])

	// STR  |0111    |SR   |BaseR|offset6     | Store base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STR:
		addr := mc.State.Registers[encoding.SR1(instruction)] +
			encoding.Offset6(instruction)

		if mc.accessViolation(addr) {
			mc.raiseException(EXC_ACV)
			break
		}

		mc.Write(addr, mc.State.Registers[encoding.DR(instruction)])

	// RTI  |1000    |000000000000            | Return from trap/interrupt
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RTI:
		if mc.userMode() {
			mc.raiseException(EXC_PRIV)
			break
		}

		mc.State.Program = mc.pop()
		mc.State.Procstat = mc.pop()

		if mc.userMode() {
			// Dropping back to user code; R6 becomes the user stack
			mc.State.Registers[6], mc.State.Stack =
				mc.State.Stack, mc.State.Registers[6]
		}

	// TRAP |1111    |0000 |trapvect8         | System call
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_TRAP:
		mc.dispatch(MEMSPACE_TRAP_TABLE | encoding.TrapVector(instruction))

	// RES  |1101    |                        | Reserved (LC-3e prefix)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RES:
		if mc.Extended {
			mc.stepExtended(instruction)
		} else {
			mc.raiseException(EXC_ILL)
		}

	default:
		return fmt.Errorf("unimplemented instruction %#04x", instruction)
	}

	return nil
}

// Run drives the fetch-execute loop until the machine clock is cleared,
// servicing the keyboard latch and the debugger between instructions.
func (mc *Machine) Run() error {
	for mc.State.Memory[DEV_MCR]&MCR_CLOCK != 0 {
		mc.pumpKeyboard()

		if mc.Debugger != nil {
			mc.Debugger.Step(mc)
		}

		if err := mc.Step(); err != nil {
			return err
		}

		mc.State.Memory[DEV_MCC]++
	}

	return nil
}
