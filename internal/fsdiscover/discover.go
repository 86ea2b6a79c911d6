// Package fsdiscover walks a manufacturer data-root tree and locates the
// catalog and mapping database files within it, applying the directory
// exclusion rules shared by every loader that scans the tree.
package fsdiscover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var excludedDirNames = map[string]bool{
	"plugin": true,
	"setup":  true,
}

var excludedExtensions = []string{".zip", ".tar", ".gz", ".rar", ".7z"}

func isExcludedDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if excludedDirNames[strings.ToLower(name)] {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range excludedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindFiles returns every file named exactly filename under root, skipping
// hidden directories and plugin/setup/archive-extension directories. A
// root that does not exist yields an empty, non-error result. Results are
// sorted in lexicographic path order for deterministic downstream merging.
func FindFiles(root, filename string) ([]string, error) {
	var found []string

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return found, nil
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // a single unreadable entry is skipped, not fatal
		}
		if info.IsDir() {
			if path != root && isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() == filename {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

// Manufacturers lists the top-level manufacturer directories under root.
func Manufacturers(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !isExcludedDir(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
