// sandbox.go - Filesystem path jail under the kernel's root_dir (spec.md §4.7)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// errSandbox carries one of the path-related syscall error codes.
type errSandbox struct{ code byte }

func (e errSandbox) Error() string { return fmt.Sprintf("sandbox violation: code=%#x", e.code) }

// resolvePath interprets path relative to root, rejecting absolute
// components, ".." segments, and any segment longer than MAX_FILENAME_LEN.
// It returns the joined host-absolute path.
func resolvePath(root, path string) (string, error) {
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return "", errSandbox{ErrInvalidPath}
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", errSandbox{ErrInvalidPath}
		}
		if len(seg) > MaxFilenameLen {
			return "", errSandbox{ErrNameTooLong}
		}
	}

	full := filepath.Join(root, path)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errSandbox{ErrInvalidPath}
	}
	return full, nil
}

// validateRootTree walks root once at boot, aborting startup if any file
// exceeds MAX_FILE_SIZE or any directory holds more than MAX_DIR_ENTRIES
// entries (spec.md §4.7).
func validateRootTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return err
			}
			if len(entries) > MaxDirEntries {
				return fmt.Errorf("sandbox: %s exceeds %d entries", path, MaxDirEntries)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > MaxFileSize {
			return fmt.Errorf("sandbox: %s exceeds %d bytes", path, MaxFileSize)
		}
		return nil
	})
}
