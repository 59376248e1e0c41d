// vm_registers.go - CHIP-8 register file
package main

// Registers holds the sixteen general-purpose registers plus the index,
// program counter, stack pointer and timers of one CHIP-8 VM (spec.md §3).
type Registers struct {
	V  [16]byte
	I  uint16
	PC uint16
	SP uint16
	DT byte
	ST byte
}

// VF is register V[15], conventionally used as the ALU flags register.
func (r *Registers) VF() byte {
	return r.V[0xF]
}

func (r *Registers) setVF(v byte) {
	r.V[0xF] = v
}
