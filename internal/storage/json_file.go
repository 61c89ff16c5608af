package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONFile replaces a single JSON document on disk.
type JSONFile struct {
	path string
}

// NewJSONFile returns a JSONFile writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Save writes v indented to a temp file and renames it over the target.
func (f *JSONFile) Save(v interface{}) error {
	if err := ensureDir(f.path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write report tmp: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
