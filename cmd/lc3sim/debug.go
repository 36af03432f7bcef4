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

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lc3sim/lc3sim/pkg/debugger"
	"github.com/lc3sim/lc3sim/pkg/disasm"
	"github.com/lc3sim/lc3sim/pkg/encoding"
	"github.com/lc3sim/lc3sim/pkg/machine"
)

var lastcmd []string
var stdin = bufio.NewScanner(os.Stdin)

func dumpRegisters(st *machine.MachineState) {
	fmt.Printf("R0=%#x R1=%#x R2=%#x R3=%#x R4=%#x R5=%#x R6=%#x R7=%#x\n",
		st.Registers[0], st.Registers[1], st.Registers[2], st.Registers[3],
		st.Registers[4], st.Registers[5], st.Registers[6], st.Registers[7])
	fmt.Printf("PSR=%#x PC=%#x IR=%#x\n\n",
		st.Procstat, st.Program, st.Memory[st.Program])
}

// handleBreak runs while the machine is paused before its next fetch;
// returning releases one instruction.
func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Printf("instr: %s\n", disasm.Instruction(mc.State.Memory[mc.State.Program]))
	dumpRegisters(&mc.State)
	debugREPL(dbg, mc)
}

func debugHelp(args []string) {
	if len(args) > 0 && args[0] == "break" {
		fmt.Println("add <address>: Adds a breakpoint for some address")
		fmt.Println("push <address>: Same as add")
		fmt.Println("list: Lists all breakpoints")
		fmt.Println("remove <address>: Removes a breakpoint for some address")
		fmt.Println("pop: Removes the previously added breakpoint")
		fmt.Println("clear: Removes all breakpoints")
		fmt.Println()
		fmt.Println("NOTE: One breakpoint is automatically placed at the user program entry!")
		return
	}

	if len(args) > 0 && args[0] == "reg" {
		fmt.Println("set R# <value>: Sets a register to a value")
		fmt.Println("list: Lists all registers")
		fmt.Println("clear: Zeroes R0..R7")
		return
	}

	fmt.Println("help: Prints this menu")
	fmt.Println("step: Steps forward one instruction")
	fmt.Println("continue: Continues execution until breakpoint")
	fmt.Println("next: Continues until the return of a subroutine/trap")
	fmt.Println("break ...: Family of breakpoint management commands")
	fmt.Println("reg ...: Family of register management commands")
	fmt.Println("quit: Quits the emulator")
	fmt.Println("read <address>: Read a memory address")
	fmt.Println("write <address> <value>: Write memory to an address")
	fmt.Println("decode <address|PC>: Translate data at an address into an instruction")
	fmt.Println("decode-i <instr>: Translate parameter into an instruction")
	fmt.Println("goto <address>: Set PC to some address")
	fmt.Println("\tNOTE: PSR and stack pointers will not be switched unless RTI is executed!")
}

func debugReg(mc *machine.Machine, args []string) {
	if len(args) == 0 {
		fmt.Println("Invalid parameter!")
		return
	}

	switch args[0] {
	case "list", "show":
		dumpRegisters(&mc.State)

	case "clear":
		for i := range mc.State.Registers {
			mc.State.Registers[i] = 0
		}

	case "set":
		if len(args) != 3 {
			fmt.Println("Invalid parameter!")
			return
		}

		name := strings.ToUpper(args[1])

		if len(name) != 2 || name[0] != 'R' {
			fmt.Println("Invalid register!")
			return
		}

		num, err := strconv.Atoi(name[1:])

		if err != nil || num < 0 || num > 7 {
			fmt.Println("Invalid register!")
			return
		}

		value, err := parseHex(args[2])

		if err != nil {
			fmt.Println("Invalid parameter!")
			return
		}

		mc.State.Registers[num] = value

	default:
		fmt.Println("Invalid parameter!")
	}
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		fmt.Println("Invalid parameter!")
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "add", "push":
		if len(args) != 1 {
			fmt.Println("Invalid parameter!")
			return
		}

		addr, err := parseHex(args[0])

		if err != nil {
			fmt.Println("Invalid parameter!")
			return
		}

		switch err := dbg.AddBreakpoint(addr); err {
		case debugger.ErrBreakpointExists:
			fmt.Printf("breakpoint already set at %#x\n", addr)
		case debugger.ErrBreakpointLimit:
			fmt.Println("breakpoint list full!")
		default:
			fmt.Printf("breakpoint set at %#x\n", addr)
		}

	case "rm", "remove":
		if len(args) != 1 {
			fmt.Println("Invalid parameter!")
			return
		}

		addr, err := parseHex(args[0])

		if err != nil {
			fmt.Println("Invalid parameter!")
			return
		}

		if dbg.RemoveBreakpoint(addr) {
			fmt.Printf("breakpoint removed at %#x\n", addr)
		} else {
			fmt.Println("breakpoint not found!")
		}

	case "pop":
		if addr, ok := dbg.PopBreakpoint(); ok {
			fmt.Printf("breakpoint removed at %#x\n", addr)
		} else {
			fmt.Println("no breakpoints available to remove!")
		}

	case "list", "show":
		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf("breakpoint[%d] = %#x\n", i, breakpoint.Addr)
		}

	case "clear":
		dbg.ClearBreakpoints()

	default:
		fmt.Println("Invalid parameter!")
	}
}

// debugREPL reads commands until one releases execution. An empty line
// repeats the previous command.
func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	for {
		fmt.Print(">>> ")

		if !stdin.Scan() {
			fmt.Println()
			os.Exit(0)
		}

		args := strings.Fields(strings.TrimSpace(stdin.Text()))

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "s", "step":
			return

		case "c", "continue":
			dbg.Continue = true
			return

		case "n", "next":
			// Step over subroutine calls and traps with a one-shot
			// breakpoint at the return address
			opcode := encoding.Opcode(mc.State.Memory[mc.State.Program])

			if opcode == machine.OP_JSR || opcode == machine.OP_TRAP {
				dbg.NextBreak = int32(mc.State.Program + 1)
			}
			return

		case "q", "quit", "exit":
			exitRawTerm()
			os.Exit(0)

		case "clear":
			fmt.Print("\033[1;1H\033[2J")

		case "h", "help":
			debugHelp(args)

		case "read":
			if len(args) != 1 {
				fmt.Println("Invalid parameter!")
				continue
			}

			addr, err := parseHex(args[0])

			if err != nil {
				fmt.Println("Invalid parameter!")
				continue
			}

			fmt.Printf("memory[%#x]=%#x\n", addr, mc.Read(addr))

		case "write":
			if len(args) != 2 {
				fmt.Println("Invalid parameter!")
				continue
			}

			addr, err := parseHex(args[0])

			if err != nil {
				fmt.Println("Invalid parameter!")
				continue
			}

			value, err := parseHex(args[1])

			if err != nil {
				fmt.Println("Invalid parameter!")
				continue
			}

			mc.Write(addr, value)
			fmt.Printf("memory[%#x]=%#x\n", addr, value)

		case "decode":
			if len(args) != 1 {
				fmt.Println("Invalid parameter!")
				continue
			}

			var addr uint16

			if args[0] == "PC" {
				addr = mc.State.Program
			} else {
				var err error
				addr, err = parseHex(args[0])

				if err != nil {
					fmt.Println("Invalid parameter!")
					continue
				}
			}

			fmt.Printf("instr: %s\n", disasm.Instruction(mc.Read(addr)))

		case "decode-i":
			if len(args) != 1 {
				fmt.Println("Invalid parameter!")
				continue
			}

			instruction, err := parseHex(args[0])

			if err != nil {
				fmt.Println("Invalid parameter!")
				continue
			}

			fmt.Printf("instr: %s\n", disasm.Instruction(instruction))

		case "goto":
			if len(args) != 1 {
				fmt.Println("Invalid parameter!")
				continue
			}

			addr, err := parseHex(args[0])

			if err != nil {
				fmt.Println("Invalid parameter!")
				continue
			}

			mc.State.Program = addr
			return

		case "r", "reg":
			debugReg(mc, args)

		case "b", "break":
			debugBreak(dbg, args)

		default:
			fmt.Printf("invalid command: %s\n", cmd)
		}
	}
}
