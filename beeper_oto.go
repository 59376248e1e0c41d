//go:build !headless

// beeper_oto.go - Host audio beeper backing a process's sound timer

package main

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const beepSampleRate = 44100
const beepFrequency = 440.0 // standard CHIP-8 buzzer pitch

// otoBeeper plays a continuous square wave through oto whenever the sound
// timer is non-zero, and silences it the instant ST reaches 0. It implements
// the oto.Player source interface (Read) directly as a streaming generator.
type otoBeeper struct {
	ctx    *oto.Context
	player *oto.Player
	active atomic.Bool
	phase  float64

	mu sync.Mutex
}

func newOtoBeeper() (*otoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	b := &otoBeeper{ctx: ctx}
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return b, nil
}

// Read is invoked by oto's mixer to pull the next chunk of samples.
func (b *otoBeeper) Read(p []byte) (int, error) {
	if !b.active.Load() {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	const step = beepFrequency / beepSampleRate
	n := len(p) / 4
	for i := 0; i < n; i++ {
		var sample float32 = -0.25
		if b.phase < 0.5 {
			sample = 0.25
		}
		b.phase += step
		if b.phase >= 1 {
			b.phase -= 1
		}
		putFloat32LE(p[i*4:], sample)
	}
	return len(p), nil
}

func (b *otoBeeper) SetActive(active bool) {
	b.active.Store(active)
}

func putFloat32LE(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
