//go:build !headless

// display_ebiten.go - Windowed Display backend for the CHIP-8 host kernel

package main

import (
	"log"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// keypadLayout maps the physical QWERTY rows used by CHIP-8 emulators since
// the COSMAC VIP era onto the 4x4 hex keypad.
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var keypadLayout = [16]ebiten.Key{
	0x1: ebiten.Key1, 0x2: ebiten.Key2, 0x3: ebiten.Key3, 0xC: ebiten.Key4,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0xD: ebiten.KeyR,
	0x7: ebiten.KeyA, 0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xE: ebiten.KeyF,
	0xA: ebiten.KeyZ, 0x0: ebiten.KeyX, 0xB: ebiten.KeyC, 0xF: ebiten.KeyV,
}

const ebitenScale = 10

// ebitenDisplay renders the 64x32 grid through ebiten and samples the
// keypad each frame. It implements ebiten.Game directly: one struct is
// both the video output and the game loop.
type ebitenDisplay struct {
	mu   sync.Mutex
	grid [DisplayHeight][DisplayWidth]bool

	keys        [16]bool
	lastRelease byte
	hasRelease  bool

	beeper *otoBeeper
	img    *ebiten.Image
	closed bool
}

// NewDisplay returns the windowed backend unless CHIP8_HEADLESS is set, in
// which case it falls back to the no-window backend (spec.md §6).
func NewDisplay() Display {
	if os.Getenv("CHIP8_HEADLESS") != "" {
		return newHeadlessDisplay()
	}

	d := &ebitenDisplay{}
	beeper, err := newOtoBeeper()
	if err != nil {
		log.Printf("display: audio init failed, running muted: %v", err)
	} else {
		d.beeper = beeper
	}

	ebiten.SetWindowSize(DisplayWidth*ebitenScale, DisplayHeight*ebitenScale)
	ebiten.SetWindowTitle("chip8kernel")
	go func() {
		if err := ebiten.RunGame(d); err != nil {
			log.Printf("display: window closed: %v", err)
		}
	}()
	return d
}

func (d *ebitenDisplay) DrawSprite(x, y int, sprite []byte) bool {
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

func (d *ebitenDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grid = [DisplayHeight][DisplayWidth]bool{}
}

func (d *ebitenDisplay) KeyDown(key byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if key > 0xF {
		return false
	}
	return d.keys[key]
}

func (d *ebitenDisplay) TakeLastReleasedKey() (byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasRelease {
		return 0, false
	}
	d.hasRelease = false
	return d.lastRelease, true
}

// PollInput is a no-op on this backend: ebiten's Update callback already
// samples the keypad once per host frame.
func (d *ebitenDisplay) PollInput() {}

func (d *ebitenDisplay) SetBeeping(active bool) {
	if d.beeper != nil {
		d.beeper.SetActive(active)
	}
}

// Update implements ebiten.Game. It runs on ebiten's own goroutine and
// samples the host keyboard into the latch the scheduler goroutine reads.
func (d *ebitenDisplay) Update() error {
	if ebiten.IsWindowBeingClosed() {
		d.closed = true
		return ebiten.Termination
	}

	d.mu.Lock()
	for key, ebitenKey := range keypadLayout {
		down := ebiten.IsKeyPressed(ebitenKey)
		was := d.keys[key]
		if was && !down {
			d.lastRelease = byte(key)
			d.hasRelease = true
		}
		d.keys[key] = down
	}
	d.mu.Unlock()
	return nil
}

func (d *ebitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	if d.img == nil {
		d.img = ebiten.NewImage(DisplayWidth, DisplayHeight)
	}
	pixels := make([]byte, DisplayWidth*DisplayHeight*4)
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if !d.grid[y][x] {
				continue
			}
			i := (y*DisplayWidth + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 0xFF, 0xFF, 0xFF, 0xFF
		}
	}
	d.img.WritePixels(pixels)
	d.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(ebitenScale, ebitenScale)
	screen.DrawImage(d.img, op)
}

func (d *ebitenDisplay) Layout(_, _ int) (int, int) {
	return DisplayWidth, DisplayHeight
}
