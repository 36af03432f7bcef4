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
)

// Supervisor ROM layout. Handler entry addresses are part of the machine
// contract: user programs observe them through the vector tables and
// through return addresses on the supervisor stack.
const (
	ROM_SIZE = 0x0320

	ROM_BAD_TRAP   uint16 = 0x0200
	ROM_HALT       uint16 = 0x021A
	ROM_OS_START   uint16 = 0x0230
	ROM_USER_PSR   uint16 = 0x0238
	ROM_STACK_BASE uint16 = 0x0239
	ROM_USER_PC    uint16 = 0x023A
	ROM_PUTS       uint16 = 0x023B
	ROM_OUT        uint16 = 0x024A
	ROM_GETC       uint16 = 0x0254
	ROM_IN         uint16 = 0x025A
	ROM_PUTSP      uint16 = 0x027A
	ROM_PRIV       uint16 = 0x02A9
	ROM_ILL        uint16 = 0x02CA
	ROM_ACV        uint16 = 0x02F0
	ROM_BAD_INT    uint16 = 0x0313
)

// Hand-assembly helpers for the ROM image, one per encoding used by the
// handlers. Offsets are pre-sign-extension two's complement.

func asmAddReg(dr, sr1, sr2 uint16) uint16 {
	return OP_ADD<<12 | dr<<9 | sr1<<6 | sr2
}

func asmAddImm(dr, sr1 uint16, imm int16) uint16 {
	return OP_ADD<<12 | dr<<9 | sr1<<6 | 1<<5 | uint16(imm)&0x1F
}

func asmAndReg(dr, sr1, sr2 uint16) uint16 {
	return OP_AND<<12 | dr<<9 | sr1<<6 | sr2
}

func asmAndImm(dr, sr1 uint16, imm int16) uint16 {
	return OP_AND<<12 | dr<<9 | sr1<<6 | 1<<5 | uint16(imm)&0x1F
}

func asmLea(dr uint16, offset int16) uint16 {
	return OP_LEA<<12 | dr<<9 | uint16(offset)&0x1FF
}

func asmLd(dr uint16, offset int16) uint16 {
	return OP_LD<<12 | dr<<9 | uint16(offset)&0x1FF
}

func asmLdi(dr uint16, offset int16) uint16 {
	return OP_LDI<<12 | dr<<9 | uint16(offset)&0x1FF
}

func asmLdr(dr, base uint16, offset int16) uint16 {
	return OP_LDR<<12 | dr<<9 | base<<6 | uint16(offset)&0x3F
}

func asmSti(sr uint16, offset int16) uint16 {
	return OP_STI<<12 | sr<<9 | uint16(offset)&0x1FF
}

func asmStr(sr, base uint16, offset int16) uint16 {
	return OP_STR<<12 | sr<<9 | base<<6 | uint16(offset)&0x3F
}

func asmBr(nzp uint16, offset int16) uint16 {
	return OP_BR<<12 | nzp<<9 | uint16(offset)&0x1FF
}

func asmTrap(vector uint16) uint16 {
	return OP_TRAP<<12 | vector&0xFF
}

func asmRti() uint16 {
	return OP_RTI << 12
}

type romAssembler struct {
	image []uint16
	addr  uint16
}

func (a *romAssembler) orig(addr uint16) {
	if addr < a.addr {
		panic(fmt.Sprintf("rom layout overlap at %#04x", addr))
	}

	a.addr = addr
}

func (a *romAssembler) emit(words ...uint16) {
	for _, word := range words {
		a.image[a.addr] = word
		a.addr++
	}
}

// text emits one character per word plus a zero terminator, the PUTS
// string layout.
func (a *romAssembler) text(s string) {
	for _, c := range []byte(s) {
		a.emit(uint16(c))
	}

	a.emit(0)
}

// packed emits two characters per word, low byte first, plus a zero
// terminator, the PUTSP string layout.
func (a *romAssembler) packed(s string) {
	b := []byte(s)

	for i := 0; i < len(b); i += 2 {
		word := uint16(b[i])
		if i+1 < len(b) {
			word |= uint16(b[i+1]) << 8
		}
		a.emit(word)
	}

	a.emit(0)
}

// osImage assembles the supervisor ROM: both vector tables and the trap,
// bootstrap and exception handlers.
func osImage() []uint16 {
	a := &romAssembler{image: make([]uint16, ROM_SIZE)}

	// Trap vector table: everything traps "bad" except the six standard
	// services
	for vector := 0x00; vector <= 0xFF; vector++ {
		a.image[vector] = ROM_BAD_TRAP
	}

	a.image[TRAP_GETC] = ROM_GETC
	a.image[TRAP_OUT] = ROM_OUT
	a.image[TRAP_PUTS] = ROM_PUTS
	a.image[TRAP_IN] = ROM_IN
	a.image[TRAP_PUTSP] = ROM_PUTSP
	a.image[TRAP_HALT] = ROM_HALT

	// Interrupt/exception vector table
	for vector := 0x00; vector <= 0xFF; vector++ {
		a.image[int(MEMSPACE_INT_TABLE)+vector] = ROM_BAD_INT
	}

	a.image[MEMSPACE_INT_TABLE|EXC_PRIV] = ROM_PRIV
	a.image[MEMSPACE_INT_TABLE|EXC_ILL] = ROM_ILL
	a.image[MEMSPACE_INT_TABLE|EXC_ACV] = ROM_ACV

	// Bad trap: complain and halt
	a.orig(ROM_BAD_TRAP)
	a.emit(
		asmLea(0, 2),
		asmTrap(TRAP_PUTS),
		asmTrap(TRAP_HALT),
	)
	a.text("\n\nBad Trap Executed!\n\n")

	// Halt: print the banner, then clear the clock bit in MCR. The
	// store is retried forever in case something turns it back on.
	a.orig(ROM_HALT)
	a.emit(
		asmLea(0, 8),
		asmTrap(TRAP_PUTS),
		asmLdi(0, 4), // R0 = MCR
		asmLd(1, 4),  // R1 = 0x7FFF
		asmAndReg(0, 0, 1),
		asmSti(0, 1), // MCR = R0
		asmBr(0x7, -5),
		DEV_MCR,
		0x7FFF,
	)
	a.text("\n\nHalting!\n\n")

	// OS bootstrap: build the initial supervisor stack frame (user PSR,
	// then user PC) and RTI into the user program
	a.orig(ROM_OS_START)
	a.emit(
		asmLd(6, 8), // R6 = supervisor stack base
		asmLd(0, 6), // R0 = initial user PSR
		asmAddImm(6, 6, -1),
		asmStr(0, 6, 0),
		asmLd(0, 5), // R0 = user PC
		asmAddImm(6, 6, -1),
		asmStr(0, 6, 0),
		asmRti(),
		USER_PSR,
		MEMSPACE_USER, // supervisor stack base
		MEMSPACE_USER, // user PC, patched by the loader
	)

	// PUTS: stream words at R0 through OUT until a zero word
	a.orig(ROM_PUTS)
	a.emit(
		asmAddImm(6, 6, -1),
		asmStr(0, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(1, 6, 0),
		asmAddImm(1, 0, 0), // R1 = R0
		asmLdr(0, 1, 0),    // R0 = *R1
		asmBr(0x2, 3),      // zero terminator ends the string
		asmTrap(TRAP_OUT),
		asmAddImm(1, 1, 1),
		asmBr(0x7, -5),
		asmLdr(1, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(0, 6, 0),
		asmAddImm(6, 6, 1),
		asmRti(),
	)

	// OUT: spin on DSR, then store R0 to DDR
	a.orig(ROM_OUT)
	a.emit(
		asmAddImm(6, 6, -1),
		asmStr(1, 6, 0),
		asmLdi(1, 5),   // R1 = DSR
		asmBr(0x3, -2), // wait for ready
		asmSti(0, 4),   // DDR = R0
		asmLdr(1, 6, 0),
		asmAddImm(6, 6, 1),
		asmRti(),
		DEV_DSR,
		DEV_DDR,
	)

	// GETC: spin on KBSR, then load KBDR into R0
	a.orig(ROM_GETC)
	a.emit(
		asmLdi(0, 3),   // R0 = KBSR
		asmBr(0x3, -2), // wait for a key
		asmLdi(0, 2),   // R0 = KBDR
		asmRti(),
		DEV_KBSR,
		DEV_KBDR,
	)

	// IN: prompt, echo one key, newline
	a.orig(ROM_IN)
	a.emit(
		asmLea(0, 11),
		asmTrap(TRAP_PUTS),
		asmTrap(TRAP_GETC),
		asmTrap(TRAP_OUT),
		asmAddImm(6, 6, -1),
		asmStr(0, 6, 0),
		asmAndImm(0, 0, 0),
		asmAddImm(0, 0, 10), // R0 = '\n'
		asmTrap(TRAP_OUT),
		asmLdr(0, 6, 0),
		asmAddImm(6, 6, 1),
		asmRti(),
	)
	a.text("Enter a Character: ")

	// PUTSP: packed strings, low byte first. The high byte is recovered
	// by repeated subtraction of 0x100; R3 takes a lookahead copy so the
	// loop test does not clobber the remainder.
	a.orig(ROM_PUTSP)
	a.emit(
		asmAddImm(6, 6, -1),
		asmStr(0, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(1, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(2, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(3, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(4, 6, 0),
		asmAddImm(6, 6, -1),
		asmStr(5, 6, 0),
		asmAddImm(1, 0, 0), // R1 = R0
		asmLd(4, 0x20),     // R4 = -0x100
		asmLd(2, 0x1D),     // R2 = 0x00FF
		asmLdr(0, 1, 0),    // R0 = *R1
		asmBr(0x2, 14),     // zero word ends the string
		asmAndReg(0, 0, 2),
		asmTrap(TRAP_OUT), // low byte
		asmLd(2, 0x19),    // R2 = 0xFF00
		asmLdr(5, 1, 0),
		asmAndReg(5, 5, 2),
		asmBr(0x2, 8), // no high byte: done
		asmAndImm(0, 0, 0),
		asmAddReg(5, 5, 4),
		asmAddImm(0, 0, 1),
		asmAddReg(3, 5, 4), // lookahead: remainder - 0x100
		asmBr(0x3, -4),
		asmTrap(TRAP_OUT), // high byte
		asmAddImm(1, 1, 1),
		asmBr(0x7, -0x11),
		asmLdr(5, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(4, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(3, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(2, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(1, 6, 0),
		asmAddImm(6, 6, 1),
		asmLdr(0, 6, 0),
		asmAddImm(6, 6, 1),
		asmRti(),
		0x00FF,
		0xFF00,
		0xFF00, // -0x100
	)

	// Exception handlers: print a diagnostic and halt
	a.orig(ROM_PRIV)
	a.emit(
		asmLea(0, 2),
		asmTrap(TRAP_PUTS),
		asmTrap(TRAP_HALT),
	)
	a.text("\n\nPrivilege mode exception!\n\n")

	a.orig(ROM_ILL)
	a.emit(
		asmLea(0, 2),
		asmTrap(TRAP_PUTS),
		asmTrap(TRAP_HALT),
	)
	a.text("\n\nIllegal instruction exception!\n\n")

	a.orig(ROM_ACV)
	a.emit(
		asmLea(0, 2),
		asmTrap(TRAP_PUTS),
		asmTrap(TRAP_HALT),
	)
	a.text("\n\nAccess Violation Exception!\n\n")

	// Bad interrupt: the banner doubles as PUTSP coverage
	a.orig(ROM_BAD_INT)
	a.emit(
		asmLea(0, 2),
		asmTrap(TRAP_PUTSP),
		asmTrap(TRAP_HALT),
	)
	a.packed("\n\nBad Interrupt!\n\n")

	if a.addr != ROM_SIZE {
		panic(fmt.Sprintf("rom layout ends at %#04x, want %#04x", a.addr, ROM_SIZE))
	}

	return a.image
}
