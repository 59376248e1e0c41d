// beeper_noop.go - Silent beeper used by the headless Display and -tags headless builds

package main

// noopBeeper discards SetActive calls. It backs headlessDisplay directly so
// tests and headless kernel runs never touch real audio hardware.
type noopBeeper struct{ active bool }

func newNoopBeeper() *noopBeeper {
	return &noopBeeper{}
}

func (b *noopBeeper) SetActive(active bool) {
	b.active = active
}
