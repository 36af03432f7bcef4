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
	"encoding/binary"
	"errors"
	"io"
)

var errShortObject = errors.New("object file too short")
var errOddObject = errors.New("object file has a trailing odd byte")

// LoadObj deposits a big-endian object image into memory: the first word
// is the origin, the remaining words are placed contiguously from there.
// Words past the top of memory are discarded. Returns the origin.
func (mc *Machine) LoadObj(reader io.Reader) (uint16, error) {
	var scratch [2]byte

	if _, err := io.ReadFull(reader, scratch[:]); err != nil {
		return 0, errShortObject
	}

	origin := binary.BigEndian.Uint16(scratch[:])
	addr := uint32(origin)

	for {
		_, err := io.ReadFull(reader, scratch[:])

		if err == io.EOF {
			return origin, nil
		} else if err == io.ErrUnexpectedEOF {
			return 0, errOddObject
		} else if err != nil {
			return 0, err
		}

		if addr < 1<<16 {
			mc.State.Memory[addr] = binary.BigEndian.Uint16(scratch[:])
			addr++
		}
	}
}

// SetEntry records the user program entry point in the ROM word the OS
// bootstrap RTIs through.
func (mc *Machine) SetEntry(origin uint16) {
	mc.State.Memory[ROM_USER_PC] = origin
}
