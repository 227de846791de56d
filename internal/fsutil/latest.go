// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LatestFile returns the full path of the most recently modified regular
// file in dir. Hidden files (leading dot) and non-regular entries are
// skipped. It returns "" when dir does not exist, is not a directory, or
// contains no candidate files.
//
// Ties on the modification timestamp keep the file encountered first in
// directory-listing order; only a strictly later timestamp replaces the
// current candidate. Listing order is platform dependent, so callers must
// not rely on any particular winner for identical timestamps.
func LatestFile(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read dir %s: %w", dir, err)
	}

	var latestPath string
	var latestMod time.Time
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("failed to stat file %s: %w", name, err)
		}
		if latestPath == "" || fi.ModTime().After(latestMod) {
			latestPath = filepath.Join(dir, name)
			latestMod = fi.ModTime()
		}
	}

	return latestPath, nil
}
