package snapshots

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// ReadFile parses the canonical snapshot at path.
func ReadFile(path string) ([]inventory.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	records, err := ParseTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseTSV reads the canonical tab-separated form back into records.
// Parsing is the inverse of WriteTSV: a serialized sequence re-parses
// field for field, with only the Orphaned yes/no column changing
// representation. Any other shape, including the CSV and JSON
// projections, is rejected.
func ParseTSV(r io.Reader) ([]inventory.Record, error) {
	scanner := bufio.NewScanner(r)
	// Details fields can be long; the default token limit is too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		return nil, fmt.Errorf("%w: empty input", ErrNotCanonical)
	}
	if header := scanner.Text(); header != Header {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrNotCanonical, truncate(header, 60))
	}

	var records []inventory.Record
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != fieldCount {
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d", ErrNotCanonical, line, len(fields), fieldCount)
		}
		orphaned, err := parseOrphaned(fields[6])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrNotCanonical, line, err)
		}
		records = append(records, inventory.Record{
			Name:     fields[0],
			Type:     fields[1],
			Source:   fields[2],
			Details:  fields[3],
			Version:  fields[4],
			Size:     fields[5],
			Orphaned: orphaned,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return records, nil
}

func parseOrphaned(s string) (bool, error) {
	switch s {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid orphaned value %q", s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
