// host_console.go - Raw-mode stdin ingestion feeding the kernel's stdin ingress
package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// hostConsole puts the controlling terminal into raw mode and streams bytes
// into a byte buffer the scheduler drains once per pass. The launcher
// constructs one for runs without --console; tests that exercise ingestion
// build one without calling Start and fill its buffer directly.
type hostConsole struct {
	fd           int
	oldState     *term.State
	nonblockSet  bool
	stopCh       chan struct{}
	done         chan struct{}
	stopOnce     sync.Once

	mu  sync.Mutex
	buf []byte
}

func newHostConsole() *hostConsole {
	return &hostConsole{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start enters raw mode and begins reading stdin in a background goroutine.
func (h *hostConsole) Start() error {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return fmt.Errorf("host_console: failed to set raw mode: %w", err)
	}
	h.oldState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
		close(h.done)
		return fmt.Errorf("host_console: failed to set nonblocking stdin: %w", err)
	}
	h.nonblockSet = true

	go h.readLoop()
	return nil
}

func (h *hostConsole) readLoop() {
	defer close(h.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-h.stopCh:
			return
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		if n > 0 {
			b := buf[0]
			if b == '\r' {
				b = '\n'
			}
			h.mu.Lock()
			h.buf = append(h.buf, b)
			h.mu.Unlock()
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
	}
}

// Drain returns and clears all bytes accumulated since the last call.
func (h *hostConsole) Drain() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) == 0 {
		return nil
	}
	out := h.buf
	h.buf = nil
	return out
}

// Stop restores the terminal and halts the reader goroutine.
func (h *hostConsole) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
	}
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
	}
}
