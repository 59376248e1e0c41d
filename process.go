// process.go - One CHIP-8 virtual machine: registers, paged memory, timers, FDs
package main

import (
	"math/rand"
	"time"
)

// ProcState is the kernel-visible lifecycle state of a Process.
type ProcState int

const (
	StateRunning ProcState = iota
	StateBlocked
	StateExited
)

// BlockKind enumerates the events a blocked process can be woken by.
type BlockKind int

const (
	BlockNone BlockKind = iota
	BlockWaitPid
	BlockRead
	BlockKeyWait
)

// BlockReason records why a process is Blocked and what will wake it
// (spec.md §3).
type BlockReason struct {
	Kind BlockKind

	TargetPid uint32 // BlockWaitPid

	BufVaddr int // BlockRead
	Length   int // BlockRead

	DestReg byte // BlockKeyWait
}

// StepKind is the transient result of a single Process.step call.
type StepKind int

const (
	StepCompleted StepKind = iota
	StepBlocked
	StepYielded
)

// StepOutcome is returned by Process.step and by syscall dispatch.
// Exited/ExitCode are orthogonal to Kind: a process can complete the step
// that called exit() (Kind==StepCompleted) while also having transitioned
// to StateExited (spec.md §4.3, §9).
type StepOutcome struct {
	Kind  StepKind
	Block BlockReason

	Exited   bool
	ExitCode byte
}

// Dispatcher forwards a 0nnn syscall in [0x100,0x200) to the kernel and
// returns the outcome of handling it.
type Dispatcher func(id uint16, p *Process) StepOutcome

// Process is one CHIP-8 VM hosted by the kernel.
type Process struct {
	regs Registers

	pageTable []int
	vmSize    int

	display Display
	mem     *PhysicalMemory

	timersLastTick time.Time

	inputMode   InputMode
	consoleMode ConsoleMode
	stdinBuffer []byte
	textOverlay []byte // bytes written while console_mode=Display, kept in order; not laid out on a character grid or drawn on the display

	fds fdTable

	pid   uint32
	name  string
	state ProcState
	block BlockReason

	rng *rand.Rand
}

// NewProcess builds a freshly loaded VM: PC=0x200, SP=0 (empty call stack,
// which grows downward from vm_size — see pushWord/popWord in opcodes.go),
// all other registers zero, font table resident at virtual 0x000 (spec.md
// §3, §4.6).
func NewProcess(pid uint32, name string, pageTable []int, mem *PhysicalMemory, display Display, rom []byte) (*Process, error) {
	vmSize := len(pageTable) * PageSize

	p := &Process{
		pageTable: pageTable,
		vmSize:    vmSize,
		display:   display,
		mem:       mem,
		pid:       pid,
		name:      name,
		state:     StateRunning,
		rng:       rand.New(rand.NewSource(int64(pid)*2654435761 + time.Now().UnixNano())),
	}
	p.regs.PC = ProgramBase
	p.regs.SP = 0

	if err := p.writeBytes(FontBase, fontSet[:]); err != nil {
		return nil, err
	}
	if err := p.writeBytes(ProgramBase, rom); err != nil {
		return nil, err
	}
	return p, nil
}

// step runs exactly one fetch/decode/execute cycle (spec.md §4.3).
func (p *Process) step(ticks uint32, dispatch Dispatcher) StepOutcome {
	p.display.PollInput()
	p.tickTimers(ticks)

	opcode, err := p.readWord(int(p.regs.PC))
	if err != nil {
		return p.fatal()
	}

	return p.execute(opcode, dispatch)
}

// tickTimers decrements DT/ST by min(ticks, value), saturating at zero. A
// zero ticks count falls back to a wall-clock-derived tick estimate.
func (p *Process) tickTimers(ticks uint32) {
	if ticks == 0 {
		now := time.Now()
		if p.timersLastTick.IsZero() {
			p.timersLastTick = now
			return
		}
		elapsed := now.Sub(p.timersLastTick)
		ticks = uint32(elapsed * 60 / time.Second)
		if ticks == 0 {
			return
		}
		p.timersLastTick = now
	} else {
		p.timersLastTick = time.Now()
	}

	if uint32(p.regs.DT) < ticks {
		p.regs.DT = 0
	} else {
		p.regs.DT -= byte(ticks)
	}
	if uint32(p.regs.ST) < ticks {
		p.regs.ST = 0
	} else {
		p.regs.ST -= byte(ticks)
	}
	p.display.SetBeeping(p.regs.ST > 0)
}

// fatal transitions the process to Exited(0xFF), the contract for unknown
// opcodes and repeated PC translation failure (spec.md §4.4, §7).
func (p *Process) fatal() StepOutcome {
	p.state = StateExited
	p.fds.closeAll()
	return StepOutcome{Kind: StepCompleted, Exited: true, ExitCode: 0xFF}
}

// exit is invoked by the exit() syscall handler.
func (p *Process) exit(code byte) {
	p.state = StateExited
	p.fds.closeAll()
}
