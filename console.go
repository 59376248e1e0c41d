// console.go - Interactive kernel inspector (ps/uptime REPL)
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
)

// inspector is the optional --console REPL. It never touches scheduling
// state directly: ps reads a copy of the process table that
// Kernel.Snapshot builds under the kernel lock when the command runs.
type inspector struct {
	k *Kernel
}

func newInspector(k *Kernel) *inspector {
	return &inspector{k: k}
}

func (c *inspector) run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(s string) []string {
		var out []string
		for _, cmd := range []string{"ps", "uptime", "help", "quit"} {
			if strings.HasPrefix(cmd, s) {
				out = append(out, cmd)
			}
		}
		return out
	})

	for {
		cmd, err := line.Prompt("chip8k> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			return
		}
		line.AppendHistory(cmd)
		if c.dispatch(strings.TrimSpace(cmd)) {
			return
		}
	}
}

func (c *inspector) dispatch(cmd string) (quit bool) {
	switch {
	case cmd == "":
		return false
	case cmd == "quit" || cmd == "exit":
		return true
	case cmd == "help":
		fmt.Println("commands: ps, uptime, help, quit")
	case cmd == "ps":
		c.ps()
	case cmd == "uptime":
		fmt.Println(time.Since(c.k.bootTime).Round(time.Second))
	default:
		fmt.Printf("unknown command %q\n", cmd)
	}
	return false
}

func (c *inspector) ps() {
	fmt.Printf("%-6s %-8s %-6s %s\n", "PID", "STATE", "PC", "NAME")
	for _, snap := range c.k.Snapshot() {
		state := "running"
		switch snap.State {
		case StateBlocked:
			state = "blocked:" + blockKindString(snap.Block)
		case StateExited:
			state = "exited"
		}
		fmt.Printf("%-6d %-8s %-6s %s\n", snap.Pid, state, "0x"+strconv.FormatUint(uint64(snap.PC), 16), snap.Name)
	}
}

func blockKindString(k BlockKind) string {
	switch k {
	case BlockWaitPid:
		return "wait"
	case BlockRead:
		return "read"
	case BlockKeyWait:
		return "keywait"
	default:
		return "none"
	}
}
