// syscalls.go - Base syscall surface (spec.md §4.7)
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

func baseSyscallTable() map[uint16]SyscallHandler {
	return map[uint16]SyscallHandler{
		SysSpawn:       sysSpawn,
		SysExit:        sysExit,
		SysWait:        sysWait,
		SysYield:       sysYield,
		SysWrite:       sysWrite,
		SysRead:        sysRead,
		SysInputMode:   sysInputMode,
		SysConsoleMode: sysConsoleMode,
		SysFSList:      sysFSList,
		SysFSOpen:      sysFSOpen,
		SysFSRead:      sysFSRead,
		SysFSClose:     sysFSClose,
	}
}

func sysSpawn(k *Kernel, pid uint32, p *Process) StepOutcome {
	namePtr, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	nameLen, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	pageCount := 1
	if pc, err := syscallArg(p, 2); err == nil {
		pageCount = int(pc)
	}

	nameBytes, err := p.readBytes(int(namePtr), int(nameLen))
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	fullPath, serr := resolvePath(k.rootDir, string(nameBytes))
	if serr != nil {
		return syscallErr(p, serr.(errSandbox).code)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return syscallErr(p, ErrNotFound)
	}
	if info.IsDir() {
		return syscallErr(p, ErrIsADir)
	}

	rom, err := os.ReadFile(fullPath)
	if err != nil {
		return syscallErr(p, ErrIOFailure)
	}

	childPid, err := k.spawnProcess(fullPath, rom, pageCount)
	if err != nil {
		return syscallErr(p, ErrIOFailure)
	}
	return syscallOK(p, byte(childPid&0xFF))
}

func sysExit(k *Kernel, pid uint32, p *Process) StepOutcome {
	code, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	exitCode := byte(code & 0xFF)
	p.exit(exitCode)
	out := syscallOK(p, 0)
	out.Exited = true
	out.ExitCode = exitCode
	return out
}

func sysWait(k *Kernel, pid uint32, p *Process) StepOutcome {
	target, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	if code, ok := k.exitCodeOf(uint32(target)); ok {
		return syscallOK(p, code)
	}
	p.state = StateBlocked
	p.block = BlockReason{Kind: BlockWaitPid, TargetPid: uint32(target)}
	return StepOutcome{Kind: StepBlocked, Block: p.block}
}

func sysYield(k *Kernel, pid uint32, p *Process) StepOutcome {
	return StepOutcome{Kind: StepYielded}
}

func sysWrite(k *Kernel, pid uint32, p *Process) StepOutcome {
	bufPtr, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	length, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	n := int(length)
	if n > 255 {
		n = 255
	}
	data, err := p.readBytes(int(bufPtr), n)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	switch p.consoleMode {
	case ConsoleHost:
		fmt.Print(string(data))
	case ConsoleDisplay:
		p.textOverlay = append(p.textOverlay, data...)
	}
	return syscallOK(p, byte(n))
}

func sysRead(k *Kernel, pid uint32, p *Process) StepOutcome {
	bufPtr, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	length, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	if n, ok := p.serveRead(int(bufPtr), int(length)); ok {
		return syscallOK(p, byte(n))
	}

	p.state = StateBlocked
	p.block = BlockReason{Kind: BlockRead, BufVaddr: int(bufPtr), Length: int(length)}
	return StepOutcome{Kind: StepBlocked, Block: p.block}
}

func sysInputMode(k *Kernel, pid uint32, p *Process) StepOutcome {
	m, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	if m == 0 {
		p.inputMode = InputLine
	} else {
		p.inputMode = InputByte
	}
	return syscallOK(p, 0)
}

func sysConsoleMode(k *Kernel, pid uint32, p *Process) StepOutcome {
	m, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	if m == 0 {
		p.consoleMode = ConsoleHost
	} else {
		p.consoleMode = ConsoleDisplay
	}
	return syscallOK(p, 0)
}

func sysFSList(k *Kernel, pid uint32, p *Process) StepOutcome {
	pathPtr, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	pathLen, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	outPtr, err := syscallArg(p, 2)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	maxEntries, err := syscallArg(p, 3)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	pathBytes, err := p.readBytes(int(pathPtr), int(pathLen))
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	fullPath, serr := resolvePath(k.rootDir, string(pathBytes))
	if serr != nil {
		return syscallErr(p, serr.(errSandbox).code)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return syscallErr(p, ErrNotFound)
	}
	if !info.IsDir() {
		return syscallErr(p, ErrNotADir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return syscallErr(p, ErrIOFailure)
	}

	limit := int(maxEntries)
	if limit > MaxDirEntries {
		limit = MaxDirEntries
	}
	count := 0
	for i, ent := range entries {
		if i >= limit {
			break
		}
		record, err := buildDirEntryRecord(ent)
		if err != nil {
			return syscallErr(p, ErrIOFailure)
		}
		if err := p.writeBytes(int(outPtr)+count*DirEntrySize, record); err != nil {
			return syscallErr(p, ErrInvalidArgument)
		}
		count++
	}
	return syscallOK(p, byte(count&0xFF))
}

func buildDirEntryRecord(ent os.DirEntry) ([]byte, error) {
	record := make([]byte, DirEntrySize)
	name := ent.Name()
	nameLen := len(name)
	if nameLen > MaxFilenameLen {
		nameLen = MaxFilenameLen
	}
	record[0] = byte(nameLen)
	copy(record[1:1+MaxFilenameLen], name[:nameLen])

	var kind byte
	var size uint32
	if ent.IsDir() {
		kind = 1
	} else {
		info, err := ent.Info()
		if err != nil {
			return nil, err
		}
		size = uint32(info.Size())
	}
	record[1+MaxFilenameLen] = kind
	binary.BigEndian.PutUint32(record[1+MaxFilenameLen+1:], size)
	return record, nil
}

func sysFSOpen(k *Kernel, pid uint32, p *Process) StepOutcome {
	pathPtr, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	pathLen, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	pathBytes, err := p.readBytes(int(pathPtr), int(pathLen))
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}

	fullPath, serr := resolvePath(k.rootDir, string(pathBytes))
	if serr != nil {
		return syscallErr(p, serr.(errSandbox).code)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return syscallErr(p, ErrNotFound)
	}
	if info.IsDir() {
		return syscallErr(p, ErrIsADir)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return syscallErr(p, ErrIOFailure)
	}
	fd, ok := p.fds.allocate(f)
	if !ok {
		f.Close()
		return syscallErr(p, ErrTooManyOpen)
	}
	return syscallOK(p, fd)
}

func sysFSRead(k *Kernel, pid uint32, p *Process) StepOutcome {
	fdArg, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	bufPtr, err := syscallArg(p, 1)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	length, err := syscallArg(p, 2)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	if length > 255 {
		length = 255
	}

	of, ok := p.fds.get(byte(fdArg))
	if !ok {
		return syscallErr(p, ErrInvalidArgument)
	}

	buf := make([]byte, length)
	n, err := of.f.ReadAt(buf, of.offset)
	if n > 0 {
		of.offset += int64(n)
		if werr := p.writeBytes(int(bufPtr), buf[:n]); werr != nil {
			return syscallErr(p, ErrInvalidArgument)
		}
	}
	if err != nil && n == 0 {
		return syscallOK(p, 0) // EOF
	}
	return syscallOK(p, byte(n))
}

func sysFSClose(k *Kernel, pid uint32, p *Process) StepOutcome {
	fdArg, err := syscallArg(p, 0)
	if err != nil {
		return syscallErr(p, ErrInvalidArgument)
	}
	if !p.fds.close(byte(fdArg)) {
		return syscallErr(p, ErrInvalidArgument)
	}
	return syscallOK(p, 0)
}

// serveRead attempts to satisfy a read() syscall from the process's
// already-buffered stdin bytes, per input_mode (spec.md §4.7). It returns
// the number of bytes delivered and whether the read could be completed.
func (p *Process) serveRead(bufVaddr, length int) (int, bool) {
	switch p.inputMode {
	case InputLine:
		idx := bytes.IndexByte(p.stdinBuffer, '\n')
		if idx < 0 {
			return 0, false
		}
		lineLen := idx + 1
		n := lineLen
		if n > length {
			n = length
		}
		if err := p.writeBytes(bufVaddr, p.stdinBuffer[:n]); err != nil {
			return 0, false
		}
		p.stdinBuffer = p.stdinBuffer[lineLen:]
		return n, true

	default: // InputByte
		if len(p.stdinBuffer) == 0 {
			return 0, false
		}
		n := len(p.stdinBuffer)
		if n > length {
			n = length
		}
		if err := p.writeBytes(bufVaddr, p.stdinBuffer[:n]); err != nil {
			return 0, false
		}
		p.stdinBuffer = p.stdinBuffer[n:]
		return n, true
	}
}
