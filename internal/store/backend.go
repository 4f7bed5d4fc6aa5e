package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend persists the task file as a header line followed by records.
// The store owns encoding; a backend only moves lines.
type Backend interface {
	// Read returns every stored line, header first. A backend with nothing
	// stored yet returns nil and no error.
	Read() ([]string, error)
	// Write replaces the stored content.
	Write(header string, records []string) error
	// Location names the storage for logs and errors.
	Location() string
}

// CSVFile stores tasks in a single delimited text file.
// Writes truncate and rewrite the file in place.
type CSVFile struct {
	Path string
}

// NewCSVFile returns a file backend at path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Location returns the file path.
func (f *CSVFile) Location() string {
	return f.Path
}

// Read returns the lines of the file, or nil when it does not exist.
func (f *CSVFile) Read() ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return SplitLines(string(data)), nil
}

// Write creates the parent directory if needed and rewrites the file.
func (f *CSVFile) Write(header string, records []string) error {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(r)
		b.WriteByte('\n')
	}

	return os.WriteFile(f.Path, []byte(b.String()), 0644)
}

// SplitLines splits text into lines, dropping a UTF-8 byte order mark, CR
// line endings and the empty tail after a final newline.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
