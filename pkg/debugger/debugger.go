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
	"errors"

	"github.com/lc3sim/lc3sim/pkg/machine"
)

var ErrBreakpointExists = errors.New("breakpoint already set")
var ErrBreakpointLimit = errors.New("breakpoint list full")

// New returns a debugger with an automatic breakpoint at the user
// program entry, running in continue mode so the machine pauses the
// first time control reaches user code.
func New(entry uint16) *Debugger {
	return &Debugger{
		Continue:    true,
		NextBreak:   -1,
		Breakpoints: []Breakpoint{{Addr: entry}},
	}
}

// Step interposes before an instruction fetch: resolves a reached
// step-over target, drops out of continue mode on a breakpoint, and
// hands control to HandleBreak while paused.
func (dbg *Debugger) Step(mc *machine.Machine) {
	pc := mc.State.Program

	if dbg.NextBreak >= 0 && int32(pc) == dbg.NextBreak {
		dbg.NextBreak = -1
	}

	for _, breakpoint := range dbg.Breakpoints {
		if pc == breakpoint.Addr {
			dbg.Continue = false
			break
		}
	}

	if dbg.Continue || dbg.NextBreak >= 0 {
		return
	}

	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

func (dbg *Debugger) AddBreakpoint(addr uint16) error {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return ErrBreakpointExists
		}
	}

	if len(dbg.Breakpoints) >= MaxBreakpoints {
		return ErrBreakpointLimit
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{Addr: addr})

	return nil
}

func (dbg *Debugger) RemoveBreakpoint(addr uint16) bool {
	for i, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			dbg.Breakpoints = append(
				dbg.Breakpoints[:i], dbg.Breakpoints[i+1:]...,
			)
			return true
		}
	}

	return false
}

// PopBreakpoint removes the most recently added breakpoint.
func (dbg *Debugger) PopBreakpoint() (uint16, bool) {
	if len(dbg.Breakpoints) == 0 {
		return 0, false
	}

	last := dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]

	return last.Addr, true
}

func (dbg *Debugger) ClearBreakpoints() {
	dbg.Breakpoints = dbg.Breakpoints[:0]
}
