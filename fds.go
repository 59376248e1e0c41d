// fds.go - Per-process open file descriptor table
package main

import "os"

// openFile is one entry in a process's FD table: a read-only host file
// handle and its current byte offset, tracked independently of the OS
// file cursor so fs_read's length cap never races a concurrent seek.
type openFile struct {
	f      *os.File
	offset int64
}

// fdTable is a process's sandboxed, fixed-capacity descriptor table
// (MAX_OPEN_FILES=32, spec.md §3).
type fdTable struct {
	files [MaxOpenFiles]*openFile
}

// allocate reserves the lowest free FD slot and returns it, or false if
// the table is full.
func (t *fdTable) allocate(f *os.File) (byte, bool) {
	for i := range t.files {
		if t.files[i] == nil {
			t.files[i] = &openFile{f: f}
			return byte(i), true
		}
	}
	return 0, false
}

func (t *fdTable) get(fd byte) (*openFile, bool) {
	if int(fd) >= len(t.files) || t.files[fd] == nil {
		return nil, false
	}
	return t.files[fd], true
}

// close releases the FD slot, closing the underlying host handle.
func (t *fdTable) close(fd byte) bool {
	of, ok := t.get(fd)
	if !ok {
		return false
	}
	of.f.Close()
	t.files[fd] = nil
	return true
}

// closeAll releases every open FD; called on process exit (spec.md §3).
func (t *fdTable) closeAll() {
	for i := range t.files {
		if t.files[i] != nil {
			t.files[i].f.Close()
			t.files[i] = nil
		}
	}
}

// count reports the number of FDs currently in use (testable property §8.3).
func (t *fdTable) count() int {
	n := 0
	for _, of := range t.files {
		if of != nil {
			n++
		}
	}
	return n
}
