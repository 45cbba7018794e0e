package storage

import (
	"fmt"
	"io"
	"os"
)

// Manager handles the local mirror tree under a base directory. All paths
// it touches are produced by the planner; a run owns the tree exclusively,
// so no locking is needed.
type Manager struct {
	baseDir string
}

// NewManager creates a storage manager rooted at baseDir, creating the
// directory if it does not exist.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the mirror tree's base directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// EnsureDir creates a section or album directory, parents included. It is
// a no-op when the directory already exists.
func (m *Manager) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Exists reports whether something is already present at path. Presence is
// judged by the path alone; contents are never inspected, so a truncated
// file from an interrupted run counts as present.
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteStream copies the reader's contents directly to path and returns
// the number of bytes written. The write is not atomic: a failure mid-copy
// leaves a truncated file at the final path, which later runs see as
// present.
func (m *Manager) WriteStream(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		return written, fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		return written, fmt.Errorf("failed to close file: %w", closeErr)
	}

	return written, nil
}
