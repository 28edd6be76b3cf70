// Package snapshots defines the on-disk report formats and the diff
// between two saved inventories.
//
// The canonical form is tab-separated: one header line followed by one
// line per record. Records are sanitized before they reach this package,
// so fields never contain tabs or newlines and no escaping is needed.
// CSV and JSON are one-way projections for export; only the canonical
// form can be parsed back and diffed.
package snapshots

import (
	"errors"
	"fmt"
	"strings"
)

// Header is the first line of every canonical snapshot.
const Header = "Name\tType\tSource\tDetails\tVersion\tSize\tOrphaned"

// fieldCount is the number of columns in the canonical schema.
const fieldCount = 7

// ErrNotCanonical marks a diff or parse input that is not in the
// canonical tab-separated schema.
var ErrNotCanonical = errors.New("not a canonical tab-separated snapshot")

// Format selects an output representation.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTSV:
		return FormatTSV, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected tsv, csv, or json)", s)
}

// Delta is the result of comparing two snapshots by name.
type Delta struct {
	Added   []string
	Removed []string
}

// Empty reports whether the two snapshots contain the same names.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}
