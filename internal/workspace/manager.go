// Package workspace stages knowledge-base inputs into per-source directories.
//
// Layout: <root>/<encoded key>/{tbox,abox,scratch}. The Manager is the only
// component that creates or deletes these trees. There is no locking: two
// processes staging the same input race on delete+recreate.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/logging"
)

// Manager owns the staged filesystem tree under a workspace root.
type Manager struct {
	root   string
	layout config.WorkspaceConfig
}

// NewManager creates a manager rooted at cfg.WorkspaceRoot().
func NewManager(cfg config.Config) *Manager {
	return &Manager{root: cfg.WorkspaceRoot(), layout: cfg.Workspace}
}

// Root returns the workspace root directory.
func (m *Manager) Root() string { return m.root }

// Layout returns the fixed folder names.
func (m *Manager) Layout() config.WorkspaceConfig { return m.layout }

// Dir returns the workspace directory for a key.
func (m *Manager) Dir(key Key) string {
	return filepath.Join(m.root, key.Encoded())
}

// Sub returns the path of a subfolder inside a workspace.
func (m *Manager) Sub(key Key, sub string) string {
	return filepath.Join(m.Dir(key), sub)
}

// TBox returns the staged rule folder.
func (m *Manager) TBox(key Key) string { return m.Sub(key, m.layout.TBoxFolder) }

// ABox returns the staged fact folder.
func (m *Manager) ABox(key Key) string { return m.Sub(key, m.layout.ABoxFolder) }

// Scratch returns the transient scratch folder.
func (m *Manager) Scratch(key Key) string { return m.Sub(key, m.layout.ScratchFolder) }

// EnsureClean deletes any existing subfolder contents and recreates it empty.
func (m *Manager) EnsureClean(key Key, sub string) (string, error) {
	dir := m.Sub(key, sub)
	logging.Workspace("EnsureClean %s", dir)

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureExists reuses previously staged content when the subfolder exists,
// otherwise creates it and copies inputPath's regular files verbatim.
// reused reports which branch was taken.
func (m *Manager) EnsureExists(key Key, sub, inputPath string) (dir string, reused bool, err error) {
	dir = m.Sub(key, sub)
	if isDir(dir) {
		logging.WorkspaceDebug("EnsureExists reusing %s", dir)
		return dir, true, nil
	}

	if !isDir(inputPath) {
		return "", false, failure.New(failure.KindInput, sub, "%s is not a valid folder", inputPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, fmt.Errorf("create %s: %w", dir, err)
	}
	n, err := CopyFiles(inputPath, dir)
	if err != nil {
		return "", false, err
	}
	logging.Workspace("EnsureExists staged %d files from %s into %s", n, inputPath, dir)
	return dir, false, nil
}

// HasStaged reports whether every named subfolder exists. Presence only;
// contents are not inspected.
func (m *Manager) HasStaged(key Key, subs ...string) bool {
	for _, sub := range subs {
		if !isDir(m.Sub(key, sub)) {
			return false
		}
	}
	return true
}

// Remove deletes a subfolder (used to release scratch space).
func (m *Manager) Remove(key Key, sub string) error {
	return os.RemoveAll(m.Sub(key, sub))
}

// Clear deletes the entire workspace root.
func (m *Manager) Clear() error {
	logging.Workspace("Clearing workspace root %s", m.root)
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("clear workspace: %w", err)
	}
	return nil
}

// CopyFiles copies the regular files of srcDir (non-recursive) into dstDir,
// which must exist. It returns the number of files copied.
func CopyFiles(srcDir, dstDir string) (int, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", srcDir, err)
	}
	n := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := CopyFile(filepath.Join(srcDir, entry.Name()), filepath.Join(dstDir, entry.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// CopyFile copies one file byte-for-byte, truncating dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool { return isDir(path) }
