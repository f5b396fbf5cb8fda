// Package store implements the flat-file JSON stores backing the services:
// a single document per service, fully loaded on every read and fully
// rewritten on every write.
//
// There is deliberately no locking around the load-modify-store cycle.
// Concurrent writers race and the last full snapshot wins; callers depending
// on stronger guarantees must serialize writes themselves.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File is a flat JSON document holding one slice of records.
type File[T any] struct {
	path string
}

// Open creates the store file, wiping any previous contents. State never
// survives a restart.
func Open[T any](path string) (*File[T], error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}
	f := &File[T]{path: path}
	if err := f.Save(nil); err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return f, nil
}

// Load reads every record. A missing or unparsable file degrades to an
// empty store; it heals on the next successful Save.
func (f *File[T]) Load() []T {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// Save rewrites the whole document.
func (f *File[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	return nil
}
