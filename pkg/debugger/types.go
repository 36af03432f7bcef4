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

package debugger

import (
	"github.com/lc3sim/lc3sim/pkg/machine"
)

// MaxBreakpoints caps the breakpoint list, including the automatic entry
// breakpoint.
const MaxBreakpoints = 64

type Breakpoint struct {
	Addr uint16
}

type Debugger struct {
	// Run freely until a breakpoint clears this
	Continue bool

	// One-shot step-over target; breakpoints are suppressed until it is
	// reached. -1 when unset.
	NextBreak int32

	Breakpoints []Breakpoint

	// Called with the machine paused, before the next fetch; released
	// when it returns
	HandleBreak func(*Debugger, *machine.Machine)
}
