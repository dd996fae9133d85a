// Package facts handles fact folders: one file per predicate, the file stem
// being the predicate name.
package facts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"owldlv/internal/logging"
	"owldlv/internal/workspace"
)

// Selector decides which predicates are kept.
type Selector interface {
	Contains(predicate string) bool
}

// Stem returns a file name without its last extension.
func Stem(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// List returns the sorted paths of the regular files in a fact folder.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list facts in %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Filter copies every file of srcDir whose stem is selected into dstDir,
// content unchanged, and returns the copied paths in name order. dstDir is
// created if missing. Files already in dstDir are overwritten, never removed.
func Filter(srcDir, dstDir string, sel Selector) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryFilter, "Filter")
	defer timer.Stop()

	src, err := List(srcDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dstDir, err)
	}

	var kept []string
	for _, path := range src {
		name := filepath.Base(path)
		if !sel.Contains(Stem(name)) {
			logging.FilterDebug("drop %s", name)
			continue
		}
		dst := filepath.Join(dstDir, name)
		if err := workspace.CopyFile(path, dst); err != nil {
			return kept, err
		}
		kept = append(kept, dst)
	}
	logging.Filter("Kept %d of %d fact files from %s", len(kept), len(src), srcDir)
	return kept, nil
}
