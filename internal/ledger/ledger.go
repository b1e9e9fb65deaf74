// Package ledger records words that produced no usable data and persists
// them as a newline-delimited file consumed by the next pass.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ledger is an append-only list of failed words. It is not safe for
// concurrent use; callers append under their own lock.
type Ledger struct {
	words []string
}

// New creates an empty Ledger.
func New() *Ledger { return &Ledger{} }

// Add records a failed word.
func (l *Ledger) Add(word string) { l.words = append(l.words, word) }

// Len returns the number of recorded words.
func (l *Ledger) Len() int { return len(l.words) }

// Words returns a copy of the recorded words in insertion order.
func (l *Ledger) Words() []string { return append([]string(nil), l.words...) }

// WriteFile writes one word per line to path, replacing any existing file.
// An empty ledger produces an empty file. The file is written to a sibling
// temp file first and renamed into place.
func (l *Ledger) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ledger: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ledger: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(l.words, "\n")); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("ledger: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ledger: rename to %s: %w", path, err)
	}
	return nil
}

// ReadFile returns the trimmed, non-blank lines of path.
// A missing file yields an error wrapping os.ErrNotExist.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", path, err)
	}
	return words, nil
}
