// Package inventory defines the canonical record schema shared by every
// collector, plus the pure engines that filter, order, and summarize
// records. Nothing in this package talks to external tools.
package inventory

import (
	"fmt"
	"strings"
	"unicode"
)

// Unknown is the sentinel for a field whose value a source cannot provide.
const Unknown = "-"

// Well-known record types. The set is open: a new collector may introduce
// a new type without any change here.
const (
	TypeRepo           = "Repo"
	TypeAUR            = "AUR"
	TypeFlatpak        = "Flatpak"
	TypeFlatpakRuntime = "Flatpak Runtime"
	TypeSnap           = "Snap"
	TypeImage          = "Container Image"
	TypeContainer      = "Container"
	TypePython         = "Python Package"
	TypeNode           = "Node Package"
	TypeCrate          = "Rust Crate"
	TypeGem            = "Ruby Gem"
	TypeModel          = "LLM Model"
	TypeBinary         = "Local Binary"
)

// Record is the canonical form of one installed item, regardless of which
// source reported it. A record is immutable once accepted into a Store.
type Record struct {
	Name     string
	Type     string
	Source   string // provenance, e.g. "pacman/repo", "docker/image"
	Details  string
	Version  string // Unknown when the source cannot tell
	Size     string // human-formatted, Unknown when not applicable
	Orphaned bool   // meaningful only for orphan-capable sources
}

// Sanitize returns a copy of r safe for the tab-separated persisted form:
// control characters are stripped from every textual field, literal tabs
// and newlines become single spaces, and empty Version/Size collapse to
// Unknown. Collectors sanitize before emission; the pipeline applies this
// again defensively.
func (r Record) Sanitize() Record {
	r.Name = sanitizeField(r.Name)
	r.Type = sanitizeField(r.Type)
	r.Source = sanitizeField(r.Source)
	r.Details = sanitizeField(r.Details)
	r.Version = sanitizeField(r.Version)
	r.Size = sanitizeField(r.Size)
	if r.Version == "" {
		r.Version = Unknown
	}
	if r.Size == "" {
		r.Size = Unknown
	}
	return r
}

// Valid reports whether a sanitized record may enter the store. Name and
// Type must be non-empty; everything else may be blank or Unknown.
func (r Record) Valid() bool {
	return r.Name != "" && r.Type != ""
}

func sanitizeField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\t' || ch == '\n' || ch == '\r':
			b.WriteRune(' ')
		case unicode.IsControl(ch):
			// dropped
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}

// FormatSize renders a byte count the way reports display sizes.
// Sources that already report a human-formatted size keep their own text.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	case bytes > 0:
		return fmt.Sprintf("%d B", bytes)
	default:
		return Unknown
	}
}
