package snapshots

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// Diff compares two canonical snapshots by name only. A name present in
// after but not before is added; the reverse is removed. Version, type,
// or size changes for a surviving name are not reported. Both inputs
// must be in the canonical tab-separated schema.
func Diff(before, after io.Reader) (Delta, error) {
	oldNames, err := names(before)
	if err != nil {
		return Delta{}, fmt.Errorf("old snapshot: %w", err)
	}
	newNames, err := names(after)
	if err != nil {
		return Delta{}, fmt.Errorf("new snapshot: %w", err)
	}

	var d Delta
	for name := range newNames {
		if !oldNames[name] {
			d.Added = append(d.Added, name)
		}
	}
	for name := range oldNames {
		if !newNames[name] {
			d.Removed = append(d.Removed, name)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	return d, nil
}

// DiffFiles compares the canonical snapshots at oldPath and newPath.
func DiffFiles(oldPath, newPath string) (Delta, error) {
	before, err := os.Open(oldPath)
	if err != nil {
		return Delta{}, fmt.Errorf("failed to open old snapshot: %w", err)
	}
	defer before.Close()

	after, err := os.Open(newPath)
	if err != nil {
		return Delta{}, fmt.Errorf("failed to open new snapshot: %w", err)
	}
	defer after.Close()

	return Diff(before, after)
}

// Render writes the delta as line-delimited "+ name" additions followed
// by "- name" removals.
func (d Delta) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range d.Added {
		fmt.Fprintf(bw, "+ %s\n", name)
	}
	for _, name := range d.Removed {
		fmt.Fprintf(bw, "- %s\n", name)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write diff: %w", err)
	}
	return nil
}

func names(r io.Reader) (map[string]bool, error) {
	records, err := ParseTSV(r)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(records))
	for _, rec := range records {
		set[rec.Name] = true
	}
	return set, nil
}
