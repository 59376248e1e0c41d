// display_headless.go - No-window Display backend for the CHIP-8 host kernel

package main

import "sync"

// headlessDisplay implements Display without any host window. It is always
// compiled (tests exercise it directly) and is also what NewDisplay returns
// whenever CHIP8_HEADLESS is set or the binary is built with -tags headless.
type headlessDisplay struct {
	mu   sync.Mutex
	grid [DisplayHeight][DisplayWidth]bool

	keys        [16]bool
	lastRelease byte
	hasRelease  bool

	beeper *noopBeeper
}

func newHeadlessDisplay() *headlessDisplay {
	return &headlessDisplay{beeper: newNoopBeeper()}
}

func (d *headlessDisplay) DrawSprite(x, y int, sprite []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	collision := false
	for row, b := range sprite {
		py := (y + row) % DisplayHeight
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>uint(bit)) == 0 {
				continue
			}
			px := (x + bit) % DisplayWidth
			if d.grid[py][px] {
				collision = true
			}
			d.grid[py][px] = !d.grid[py][px]
		}
	}
	return collision
}

func (d *headlessDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grid = [DisplayHeight][DisplayWidth]bool{}
}

func (d *headlessDisplay) KeyDown(key byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if key > 0xF {
		return false
	}
	return d.keys[key]
}

func (d *headlessDisplay) TakeLastReleasedKey() (byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasRelease {
		return 0, false
	}
	d.hasRelease = false
	return d.lastRelease, true
}

// PollInput is a no-op: the headless backend has no host events to drain.
// Tests drive key state directly via pressKey/releaseKey.
func (d *headlessDisplay) PollInput() {}

func (d *headlessDisplay) SetBeeping(active bool) {
	d.beeper.SetActive(active)
}

// pressKey and releaseKey are test hooks simulating keypad events;
// the headless backend has no physical keyboard to read.
func (d *headlessDisplay) pressKey(key byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if key > 0xF {
		return
	}
	d.keys[key] = true
}

func (d *headlessDisplay) releaseKey(key byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if key > 0xF {
		return
	}
	d.keys[key] = false
	d.lastRelease = key
	d.hasRelease = true
}
