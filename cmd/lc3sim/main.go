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
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lc3sim/lc3sim/pkg/debugger"
	"github.com/lc3sim/lc3sim/pkg/encoding"
	"github.com/lc3sim/lc3sim/pkg/machine"
)

var helpvar bool
var debugvar bool
var silentvar bool
var randomizevar bool
var lc3evar bool
var inputvar string
var dumpvar string
var memoryvar string

const usage = "lc3sim [flags] objfile..."

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Enables the debugger")
	flag.BoolVar(&silentvar, "silent", false, "Suppresses the output buffer dump and banners")
	flag.BoolVar(&randomizevar, "randomize", false, "Randomizes R0..R7 before running")
	flag.BoolVar(&lc3evar, "lc3e", false, "Enables the LC-3e extended instructions")
	flag.StringVar(&inputvar, "input", "", "Provides the keyboard input stream")
	flag.StringVar(&dumpvar, "dump", "", "Comma-separated addresses to print on exit")
	flag.StringVar(&memoryvar, "memory", "", "Comma-separated addr,value pairs to pre-initialise")
	flag.Parse()
}

// parseHex accepts 0x####, x#### and bare hex.
func parseHex(s string) (uint16, error) {
	if value, err := encoding.DecodeHex(s); err == nil {
		return value, nil
	}

	value, err := strconv.ParseUint(s, 16, 16)

	if err != nil {
		return 0, err
	}

	return uint16(value), nil
}

func printUsage() {
	fmt.Println("Welcome to the LC-3 simulator!")
	fmt.Println("Here are the supported command line flags:")
	fmt.Println()
	fmt.Println("--help: Prints this menu")
	fmt.Println("--debug: Enables the debugger")
	fmt.Println("--randomize: Randomizes R0..R7 before the run")
	fmt.Println("--silent: Suppresses the output buffer dump and banners")
	fmt.Println("--lc3e: Enables the LC-3e extended instructions")
	fmt.Println("--input=STR: Provides STR as the keyboard input stream")
	fmt.Println("--dump=0xeceb,0xbeef,etc: Dump specified memory addresses on simulator exit")
	fmt.Println("--memory=ADDR,VAL,etc: Pre-initialise memory addresses before the run")
	fmt.Println()
	fmt.Println("NOTE: The last specified object file is assumed to be the main program!")
}

func loadPrograms(mc *machine.Machine, paths []string) (uint16, error) {
	var entry uint16

	for i, path := range paths {
		final := i == len(paths)-1

		file, err := os.Open(path)

		if err == nil {
			var origin uint16
			origin, err = mc.LoadObj(file)
			file.Close()

			if err == nil && final {
				entry = origin
			}
		}

		if err != nil {
			if final {
				return 0, fmt.Errorf("failed to load %s: %w", path, err)
			}

			log.Printf("Failed to load %s: %v", path, err)
		}
	}

	return entry, nil
}

func lc3sim() int {
	if helpvar {
		printUsage()
		return 0
	}

	args := flag.Args()

	if len(args) == 0 {
		log.Println("No program specified!")
		log.Println(usage)
		return 1
	}

	var mc machine.Machine
	mc.Extended = lc3evar
	mc.Boot()

	var dh machine.DeviceHandler
	dh.Display = bufio.NewWriter(os.Stdout)
	mc.Devices = &dh

	if inputvar != "" {
		dh.Keyboard = bufio.NewReader(strings.NewReader(inputvar))
	} else if !debugvar && term.IsTerminal(int(os.Stdin.Fd())) {
		// Interactive keyboard: raw, non-blocking stdin so the input
		// pump can poll between instructions
		if err := enterRawTerm(); err != nil {
			log.Println(err)
			return 1
		}
		defer exitRawTerm()

		dh.Keyboard = bufio.NewReader(os.Stdin)
	}

	entry, err := loadPrograms(&mc, args)

	if err != nil {
		log.Println(err)
		return 1
	}

	mc.SetEntry(entry)

	if randomizevar {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		for i := range mc.State.Registers {
			mc.State.Registers[i] = uint16(rng.Intn(1 << 16))
		}
	}

	if memoryvar != "" {
		fields := strings.Split(memoryvar, ",")

		if len(fields)%2 != 0 {
			log.Println("--memory requires addr,value pairs")
			return 1
		}

		for i := 0; i < len(fields); i += 2 {
			addr, err := parseHex(fields[i])

			if err != nil {
				log.Println(err)
				return 1
			}

			value, err := parseHex(fields[i+1])

			if err != nil {
				log.Println(err)
				return 1
			}

			mc.Write(addr, value)
		}
	}

	var dumpAddrs []uint16

	if dumpvar != "" {
		for _, field := range strings.Split(dumpvar, ",") {
			addr, err := parseHex(field)

			if err != nil {
				log.Println(err)
				return 1
			}

			dumpAddrs = append(dumpAddrs, addr)
		}
	}

	if debugvar {
		dbg := debugger.New(mc.State.Memory[machine.ROM_USER_PC])
		dbg.HandleBreak = handleBreak
		mc.Debugger = dbg
	}

	if err := mc.Run(); err != nil {
		log.Println(err)
		return 1
	}

	dh.Display.Flush()

	if !silentvar {
		fmt.Printf(" --- buffer begin ---\n%s\n --- buffer end --- \n\n", mc.Output)
		fmt.Print("\n\n")
	}

	if debugvar {
		dumpRegisters(&mc.State)
	}

	for _, addr := range dumpAddrs {
		fmt.Printf("memory[%#x]=%#x\n", addr, mc.Read(addr))
	}

	if !silentvar {
		fmt.Print("\n\nThe clock was disabled!\n\n")
	}

	return 0
}

func main() {
	os.Exit(lc3sim())
}
