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

package encoding_test

import (
	"testing"

	"github.com/lc3sim/lc3sim/pkg/encoding"
)

func TestSignExtend(t *testing.T) {
	tests := []struct {
		Name     string
		Value    uint16
		Bits     uint16
		Expected uint16
	}{
		{"Imm5 Positive", 0b01111, 5, 0x000F},
		{"Imm5 Negative", 0b11101, 5, 0xFFFD},
		{"Imm5 MostNegative", 0b10000, 5, 0xFFF0},
		{"Offset6 Positive", 0b011111, 6, 0x001F},
		{"Offset6 Negative", 0b111111, 6, 0xFFFF},
		{"Offset9 Positive", 0b011111111, 9, 0x00FF},
		{"Offset9 Negative", 0b100000000, 9, 0xFF00},
		{"Offset11 Positive", 0b01111111111, 11, 0x03FF},
		{"Offset11 Negative", 0b11111111111, 11, 0xFFFF},
		{"Zero", 0, 9, 0x0000},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if have := encoding.SignExtend(test.Value, test.Bits); have != test.Expected {
				t.Errorf("want:%#04x have:%#04x", test.Expected, have)
			}
		})
	}
}

func TestFields(t *testing.T) {
	// ADD R3, R5, R1
	instruction := uint16(0b0001_011_101_000_001)

	if have := encoding.Opcode(instruction); have != 0b0001 {
		t.Errorf("Opcode want:%#x have:%#x", 0b0001, have)
	}

	if have := encoding.DR(instruction); have != 3 {
		t.Errorf("DR want:3 have:%d", have)
	}

	if have := encoding.SR1(instruction); have != 5 {
		t.Errorf("SR1 want:5 have:%d", have)
	}

	if have := encoding.SR2(instruction); have != 1 {
		t.Errorf("SR2 want:1 have:%d", have)
	}

	// ADD R0, R0, #-3
	if have := encoding.Imm5(0b0001_000_000_1_11101); have != 0xFFFD {
		t.Errorf("Imm5 want:%#04x have:%#04x", 0xFFFD, have)
	}

	// LDR R0, R1, #-1
	if have := encoding.Offset6(0b0110_000_001_111111); have != 0xFFFF {
		t.Errorf("Offset6 want:%#04x have:%#04x", 0xFFFF, have)
	}

	// LD R0, #255
	if have := encoding.Offset9(0b0010_000_011111111); have != 0x00FF {
		t.Errorf("Offset9 want:%#04x have:%#04x", 0x00FF, have)
	}

	// JSR #-1
	if have := encoding.Offset11(0b0100_1_11111111111); have != 0xFFFF {
		t.Errorf("Offset11 want:%#04x have:%#04x", 0xFFFF, have)
	}

	// TRAP x25
	if have := encoding.TrapVector(0b1111_0000_00100101); have != 0x25 {
		t.Errorf("TrapVector want:%#02x have:%#02x", 0x25, have)
	}

	// BRnp
	if have := encoding.CondMask(0b0000_101_000000001); have != 0b101 {
		t.Errorf("CondMask want:%#03b have:%#03b", 0b101, have)
	}
}

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		Input    string
		Expected uint16
		Invalid  bool
	}{
		{Input: "0xFFFF", Expected: 0xFFFF},
		{Input: "xFFFF", Expected: 0xFFFF},
		{Input: "0x3000", Expected: 0x3000},
		{Input: "xFF", Expected: 0x00FF},
		{Input: "0X1a2B", Expected: 0x1A2B},
		{Input: "1234", Invalid: true},
		{Input: "0x10000", Invalid: true},
		{Input: "zz", Invalid: true},
		{Input: "", Invalid: true},
	}

	for _, test := range tests {
		have, err := encoding.DecodeHex(test.Input)

		if test.Invalid {
			if err == nil {
				t.Errorf("DecodeHex(%q) expected error", test.Input)
			}
			continue
		}

		if err != nil {
			t.Errorf("DecodeHex(%q) unexpected error: %v", test.Input, err)
		} else if have != test.Expected {
			t.Errorf("DecodeHex(%q) want:%#04x have:%#04x",
				test.Input, test.Expected, have)
		}
	}
}

func TestDecodeInt(t *testing.T) {
	tests := []struct {
		Input    string
		Expected int16
		Invalid  bool
	}{
		{Input: "#123", Expected: 123},
		{Input: "123", Expected: 123},
		{Input: "#-3", Expected: -3},
		{Input: "-32768", Expected: -32768},
		{Input: "32768", Invalid: true},
		{Input: "abc", Invalid: true},
	}

	for _, test := range tests {
		have, err := encoding.DecodeInt(test.Input)

		if test.Invalid {
			if err == nil {
				t.Errorf("DecodeInt(%q) expected error", test.Input)
			}
			continue
		}

		if err != nil {
			t.Errorf("DecodeInt(%q) unexpected error: %v", test.Input, err)
		} else if have != test.Expected {
			t.Errorf("DecodeInt(%q) want:%d have:%d",
				test.Input, test.Expected, have)
		}
	}
}

func TestSwapEndian(t *testing.T) {
	if have := encoding.SwapEndian(0x1234); have != 0x3412 {
		t.Errorf("want:%#04x have:%#04x", 0x3412, have)
	}

	if have := encoding.SwapEndian(0x00FF); have != 0xFF00 {
		t.Errorf("want:%#04x have:%#04x", 0xFF00, have)
	}
}
