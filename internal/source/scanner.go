package source

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoveredFile is a program table found on disk.
type DiscoveredFile struct {
	Path string
	Name string // base name without extension
}

// ScanDir discovers CSV and XLSX program tables under path. A path naming a single
// file is returned as-is regardless of extension. A missing path yields no files.
func ScanDir(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []DiscoveredFile{newDiscoveredFile(path)}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isTable(p) {
			return nil
		}
		files = append(files, newDiscoveredFile(p))
		return nil
	})

	return files, err
}

func newDiscoveredFile(path string) DiscoveredFile {
	base := filepath.Base(path)
	return DiscoveredFile{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

func isTable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv") || isWorkbook(path)
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
