//go:build headless

// display_ctor_headless.go - Headless-only NewDisplay for -tags headless builds

package main

// NewDisplay always returns the headless backend in a -tags headless build;
// CHIP8_HEADLESS is irrelevant here since no windowed backend was compiled in.
func NewDisplay() Display {
	return newHeadlessDisplay()
}
