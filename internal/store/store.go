// Package store persists the latest quote snapshot in a single file.
//
// The file holds the quote service response verbatim. There is one slot:
// each save replaces the previous snapshot, last writer wins.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"marketbar/internal/gate"
)

// DefaultFileName is the cache file name under the user's home directory.
const DefaultFileName = ".stocksave"

var ErrNotFound = errors.New("snapshot cache not found")

// File is a single-slot snapshot cache backed by one file.
type File struct {
	Path string
}

// DefaultPath returns <home>/.stocksave.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Stat reports whether the cache file exists and when it was last written.
func (f *File) Stat() (gate.CacheState, error) {
	fi, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return gate.CacheState{}, nil
		}
		return gate.CacheState{}, fmt.Errorf("stat cache file: %w", err)
	}
	return gate.CacheState{Exists: true, ModTime: fi.ModTime()}, nil
}

// Load returns the stored snapshot bytes.
func (f *File) Load() ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return b, nil
}

// Save replaces the stored snapshot. The data is written to a temporary file
// in the same directory and renamed over the target, so a concurrent reader
// sees either the old or the new snapshot, never a partial one.
func (f *File) Save(data []byte) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod cache file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}
