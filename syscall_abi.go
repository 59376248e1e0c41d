// syscall_abi.go - Syscall frame reader and register-return helpers (spec.md §3, §4.6)
package main

// errSyscallArg signals a malformed or out-of-range frame argument read.
type errSyscallArg struct{}

func (errSyscallArg) Error() string { return "syscall argument out of range" }

// syscallArg reads 16-bit argument k from the frame pointed to by I: byte 0
// is total frame length, argument k sits at offset 1+2k.
func syscallArg(p *Process, k int) (uint16, error) {
	length, err := p.readByte(int(p.regs.I))
	if err != nil {
		return 0, err
	}
	if 1+2*(k+1) > int(length) {
		return 0, errSyscallArg{}
	}
	return p.readWord(int(p.regs.I) + 1 + 2*k)
}

// syscallOK sets VF=0 and V0 to the success value.
func syscallOK(p *Process, v0 byte) StepOutcome {
	p.regs.setVF(0)
	p.regs.V[0] = v0
	return completed()
}

// syscallErr sets VF=1 and V0 to the given error code.
func syscallErr(p *Process, code byte) StepOutcome {
	p.regs.setVF(1)
	p.regs.V[0] = code
	return completed()
}
