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

package machine_test

import (
	"testing"

	"github.com/lc3sim/lc3sim/pkg/machine"
)

func bootMachine() *machine.Machine {
	var mc machine.Machine
	mc.Boot()
	return &mc
}

// romText reads a PUTS-layout string out of memory.
func romText(mc *machine.Machine, addr uint16) string {
	var out []byte

	for ; mc.State.Memory[addr] != 0; addr++ {
		out = append(out, byte(mc.State.Memory[addr]))
	}

	return string(out)
}

// romPacked reads a PUTSP-layout string out of memory, low byte first.
func romPacked(mc *machine.Machine, addr uint16) string {
	var out []byte

	for ; mc.State.Memory[addr] != 0; addr++ {
		word := mc.State.Memory[addr]

		out = append(out, byte(word))

		if word>>8 != 0 {
			out = append(out, byte(word>>8))
		}
	}

	return string(out)
}

func TestRomTrapVectors(t *testing.T) {
	mc := bootMachine()

	standard := map[uint16]uint16{
		machine.TRAP_GETC:  machine.ROM_GETC,
		machine.TRAP_OUT:   machine.ROM_OUT,
		machine.TRAP_PUTS:  machine.ROM_PUTS,
		machine.TRAP_IN:    machine.ROM_IN,
		machine.TRAP_PUTSP: machine.ROM_PUTSP,
		machine.TRAP_HALT:  machine.ROM_HALT,
	}

	for vector := uint16(0x00); vector <= 0xFF; vector++ {
		want, ok := standard[vector]

		if !ok {
			want = machine.ROM_BAD_TRAP
		}

		if have := mc.State.Memory[vector]; have != want {
			t.Errorf("trap vector %#02x want:%#04x have:%#04x",
				vector, want, have)
		}
	}
}

func TestRomInterruptVectors(t *testing.T) {
	mc := bootMachine()

	exceptions := map[uint16]uint16{
		machine.EXC_PRIV: machine.ROM_PRIV,
		machine.EXC_ILL:  machine.ROM_ILL,
		machine.EXC_ACV:  machine.ROM_ACV,
	}

	for code := uint16(0x00); code <= 0xFF; code++ {
		want, ok := exceptions[code]

		if !ok {
			want = machine.ROM_BAD_INT
		}

		have := mc.State.Memory[machine.MEMSPACE_INT_TABLE|code]

		if have != want {
			t.Errorf("interrupt vector %#02x want:%#04x have:%#04x",
				code, want, have)
		}
	}
}

func TestRomBootWords(t *testing.T) {
	mc := bootMachine()

	if have := mc.State.Memory[machine.ROM_USER_PSR]; have != 0x8002 {
		t.Errorf("user PSR word want:%#04x have:%#04x", 0x8002, have)
	}

	if have := mc.State.Memory[machine.ROM_STACK_BASE]; have != 0x3000 {
		t.Errorf("stack base word want:%#04x have:%#04x", 0x3000, have)
	}

	if have := mc.State.Memory[machine.ROM_USER_PC]; have != 0x3000 {
		t.Errorf("default user PC word want:%#04x have:%#04x", 0x3000, have)
	}

	if mc.State.Memory[machine.DEV_MCR]&machine.MCR_CLOCK == 0 {
		t.Error("machine clock not enabled at boot")
	}

	if mc.State.Memory[machine.DEV_DSR]&(1<<15) == 0 {
		t.Error("display not ready at boot")
	}

	if mc.State.Memory[machine.DEV_DDR] != 0 {
		t.Error("display data register not cleared at boot")
	}

	if mc.State.Program != machine.ROM_OS_START {
		t.Errorf("boot PC want:%#04x have:%#04x",
			machine.ROM_OS_START, mc.State.Program)
	}
}

func TestRomHandlerLayout(t *testing.T) {
	mc := bootMachine()

	// Handler entry words
	entries := map[uint16]uint16{
		machine.ROM_BAD_TRAP: 0xE002, // LEA R0, #2
		machine.ROM_HALT:     0xE008, // LEA R0, #8
		machine.ROM_OS_START: 0x2C08, // LD R6, #8
		machine.ROM_GETC:     0xA003, // LDI R0, #3
		machine.ROM_IN:       0xE00B, // LEA R0, #11
		machine.ROM_PRIV:     0xE002,
		machine.ROM_ILL:      0xE002,
		machine.ROM_ACV:      0xE002,
		machine.ROM_BAD_INT:  0xE002,
	}

	for addr, want := range entries {
		if have := mc.State.Memory[addr]; have != want {
			t.Errorf("handler word at %#04x want:%#04x have:%#04x",
				addr, want, have)
		}
	}

	// Handlers return with RTI flush against their successors
	rtis := []uint16{
		0x0237, // bootstrap
		0x0249, // PUTS
		0x0251, // OUT
		0x0257, // GETC
		0x0265, // IN
		0x02A5, // PUTSP
	}

	for _, addr := range rtis {
		if have := mc.State.Memory[addr]; have != 0x8000 {
			t.Errorf("expected RTI at %#04x, have:%#04x", addr, have)
		}
	}

	// Device address words inside OUT and GETC
	words := map[uint16]uint16{
		0x0252: machine.DEV_DSR,
		0x0253: machine.DEV_DDR,
		0x0258: machine.DEV_KBSR,
		0x0259: machine.DEV_KBDR,
		0x0221: machine.DEV_MCR,
		0x0222: 0x7FFF,
	}

	for addr, want := range words {
		if have := mc.State.Memory[addr]; have != want {
			t.Errorf("rom word at %#04x want:%#04x have:%#04x",
				addr, want, have)
		}
	}

	// Nothing is placed past the end of the image
	if have := mc.State.Memory[machine.ROM_SIZE]; have != 0 {
		t.Errorf("rom overruns its image: memory[%#04x]=%#04x",
			machine.ROM_SIZE, have)
	}
}

func TestRomStrings(t *testing.T) {
	mc := bootMachine()

	tests := []struct {
		Name     string
		Addr     uint16
		Packed   bool
		Expected string
	}{
		{"Bad Trap", 0x0203, false, "\n\nBad Trap Executed!\n\n"},
		{"Halting", 0x0223, false, "\n\nHalting!\n\n"},
		{"Enter Prompt", 0x0266, false, "Enter a Character: "},
		{"Privilege", 0x02AC, false, "\n\nPrivilege mode exception!\n\n"},
		{"Illegal", 0x02CD, false, "\n\nIllegal instruction exception!\n\n"},
		{"Access", 0x02F3, false, "\n\nAccess Violation Exception!\n\n"},
		{"Bad Interrupt", 0x0316, true, "\n\nBad Interrupt!\n\n"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var have string

			if test.Packed {
				have = romPacked(mc, test.Addr)
			} else {
				have = romText(mc, test.Addr)
			}

			if have != test.Expected {
				t.Errorf("want:%q have:%q", test.Expected, have)
			}
		})
	}
}
