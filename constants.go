// constants.go - Shared size limits and addresses for the CHIP-8 host kernel
package main

// Physical arena and paging.
const (
	PhysSize = 1 << 20             // 1 MiB physical arena
	PageSize = 4096                // bytes per page
	NumPages = PhysSize / PageSize // 256
)

// Virtual memory layout.
const (
	FontBase    = 0x000 // font table lives at virtual 0x000
	FontSize    = 80    // 16 glyphs * 5 bytes
	ProgramBase = 0x200 // ROM bytes are copied here
)

// Display geometry.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Kernel / syscall limits (spec.md §6).
const (
	MaxFilenameLen = 64
	MaxDirEntries  = 256
	MaxFileSize    = 65536
	MaxOpenFiles   = 32
	DirEntrySize   = 70 // 1 + 64 + 1 + 4

	SyscallRangeLo = 0x0100
	SyscallRangeHi = 0x0200 // exclusive
)

// Syscall error codes (spec.md §4.7).
const (
	ErrInvalidSyscall  = 0x01
	ErrInvalidArgument = 0x02
	ErrIOFailure       = 0x03
	ErrNotFound        = 0x04
	ErrNotADir         = 0x05
	ErrIsADir          = 0x06
	ErrNameTooLong     = 0x07
	ErrTooManyOpen     = 0x08
	ErrInvalidPath     = 0x09
)

// Syscall IDs (spec.md §4.7).
const (
	SysSpawn       = 0x0101
	SysExit        = 0x0102
	SysWait        = 0x0103
	SysYield       = 0x0104
	SysWrite       = 0x0110
	SysRead        = 0x0111
	SysInputMode   = 0x0112
	SysConsoleMode = 0x0113
	SysFSList      = 0x0120
	SysFSOpen      = 0x0121
	SysFSRead      = 0x0122
	SysFSClose     = 0x0123
)

// InputMode selects how the read() syscall gathers bytes.
type InputMode int

const (
	InputLine InputMode = iota
	InputByte
)

// ConsoleMode selects the destination of the write() syscall.
type ConsoleMode int

const (
	ConsoleHost ConsoleMode = iota
	ConsoleDisplay
)
