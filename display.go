// display.go - Display contract for the CHIP-8 host kernel
package main

// Display is the 64x32 monochrome grid and 16-key keypad backing one
// Process. Every spawned process gets its own Display instance (spec.md
// §4.2): there is no shared framebuffer across the process table.
type Display interface {
	// DrawSprite XORs an n-byte sprite read from sprite onto the grid at
	// (x, y), wrapping both axes, and reports whether any previously-set
	// pixel was cleared (the CHIP-8 collision flag).
	DrawSprite(x, y int, sprite []byte) (collision bool)

	// Clear blanks the entire grid.
	Clear()

	// KeyDown reports whether the given CHIP-8 key (0x0-0xF) is currently
	// held.
	KeyDown(key byte) bool

	// TakeLastReleasedKey returns the most recently released key and true,
	// or (0, false) if no key has been released since the last call. This
	// is the one-shot latch Fx0A blocks on.
	TakeLastReleasedKey() (key byte, ok bool)

	// PollInput lets the backend process pending host input (window
	// events, simulated key taps). Called once per Process.step.
	PollInput()

	// SetBeeping drives the host audio side effect tracking the sound
	// timer's ST > 0 / ST == 0 transitions. Never observed by CHIP-8
	// register state.
	SetBeeping(active bool)
}
