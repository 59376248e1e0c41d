// main.go - CLI launcher for the CHIP-8 host kernel
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	root := fs.String("root", ".", "sandboxed filesystem root for spawn()/fs_*")
	pages := fs.Int("pages", 1, "page count for the initial process")
	console := fs.Bool("console", false, "start the interactive kernel console")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: run <rom_path> [--root <dir>] [--pages <n>] [--console]")
		os.Exit(1)
	}
	if os.Args[1] != "run" {
		fmt.Fprintf(os.Stderr, "unknown command %q; usage: run <rom_path> [--root <dir>] [--pages <n>]\n", os.Args[1])
		os.Exit(1)
	}
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "run: missing rom_path")
		os.Exit(1)
	}
	romPath := fs.Arg(0)
	// Flags may also follow the rom path, as in the usage line.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		os.Exit(1)
	}

	k, err := NewKernel(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chip8kernel: %v\n", err)
		os.Exit(1)
	}

	rootPid, err := k.SpawnRoot(romPath, *pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chip8kernel: %v\n", err)
		os.Exit(1)
	}

	if *console {
		// The inspector REPL owns stdin in cooked mode; no host input is
		// ingested for process read() syscalls for the duration of this
		// run (documented design decision, not a spec requirement).
		c := newInspector(k)
		go c.run()
	} else {
		hc := newHostConsole()
		if err := hc.Start(); err != nil {
			logBoot("stdin ingestion disabled: %v", err)
		} else {
			k.console = hc
			defer hc.Stop()
		}
	}

	k.Run()
	os.Exit(int(k.ExitCode(rootPid)))
}
