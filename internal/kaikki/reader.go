package kaikki

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxLineSize is the buffer size for bufio.Scanner (16 MB). Some entries
// with large translation tables exceed the default 64 KB.
const maxLineSize = 16 << 20

// Stats counts lines seen by Scan.
type Stats struct {
	Lines     int
	Entries   int
	Malformed int
}

// Scan decodes every line of r and calls fn for each entry. Blank lines are
// skipped and malformed lines are counted and skipped. An error from fn
// stops the scan and is returned.
func Scan(ctx context.Context, r io.Reader, fn func(Entry) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			stats.Malformed++
			continue
		}
		stats.Entries++

		if err := fn(e); err != nil {
			return stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan line %d: %w", stats.Lines+1, err)
	}
	return stats, nil
}

// ScanFile opens path and runs Scan over it.
func ScanFile(ctx context.Context, path string, fn func(Entry) error) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	return Scan(ctx, f, fn)
}
