// Package output provides terminal output utilities for stocktake.
//
// This package includes:
//   - Table rendering for inventory records, run history, and summaries
//   - Progress bars for the scan pipeline
//   - Spinners for indeterminate operations
//   - Human-readable formatting for dates and durations
//
// All table rendering functions use ASCII characters and ANSI color codes for terminal output.
// Progress indicators are thread-safe and can be used from multiple goroutines.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/stocktake/internal/history"
	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// colorMode is one of "auto", "always", "never". Set once at startup
// from the --color flag or the config file.
var colorMode = "auto"

// SetColorMode selects when ANSI color codes are emitted.
func SetColorMode(mode string) error {
	switch mode {
	case "auto", "always", "never":
		colorMode = mode
		return nil
	}
	return fmt.Errorf("invalid color mode %q (expected auto, always, or never)", mode)
}

// IsColorEnabled returns true if ANSI color codes should be emitted.
// In auto mode it checks that os.Stdout is a TTY and that the NO_COLOR
// env var is not set.
func IsColorEnabled() bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRecordTable renders the inventory as an aligned table.
// Expects records to be pre-sorted by the caller.
func RenderRecordTable(records []inventory.Record) string {
	if len(records) == 0 {
		return "No packages found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-16s %-18s %-13s %-9s %s\n",
		"Name", "Type", "Source", "Version", "Size", "Details"))
	sb.WriteString(strings.Repeat("─", 110))
	sb.WriteString("\n")

	for _, r := range records {
		// Colored marker goes last so ANSI escapes cannot break the
		// column alignment.
		line := fmt.Sprintf("%-28s %-16s %-18s %-13s %-9s %s",
			truncate(r.Name, 28),
			truncate(r.Type, 16),
			truncate(r.Source, 18),
			truncate(r.Version, 13),
			r.Size,
			truncate(r.Details, 44))
		if r.Orphaned {
			line += colorize(colorYellow, "  [orphan]")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderSummary renders the per-type breakdown that follows the table.
func RenderSummary(s inventory.Summary) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("─", 44))
	sb.WriteString("\n")

	total := fmt.Sprintf("Total: %d packages", s.Total)
	if orphans := s.Orphans(); orphans > 0 {
		total += fmt.Sprintf(" (%d orphaned)", orphans)
	}
	sb.WriteString(total)
	sb.WriteString("\n")

	for _, tc := range s.Types {
		line := fmt.Sprintf("  %-18s %5d", tc.Type, tc.Count)
		if tc.Orphans > 0 {
			line += fmt.Sprintf("   %s", colorize(colorYellow, fmt.Sprintf("%d orphaned", tc.Orphans)))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderRunTable renders saved history runs, newest first.
// Expects runs to be pre-sorted by the caller.
func RenderRunTable(runs []*history.Run) string {
	if len(runs) == 0 {
		return "No saved runs. Use 'stocktake scan --save' to record one.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-17s %-9s %-9s %-9s %s\n",
		"ID", "Created", "Total", "Warnings", "Duration", "Snapshot"))
	sb.WriteString(strings.Repeat("─", 96))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-10s %-17s %-9d %-9d %-9s %s\n",
			shortID(run.ID),
			formatRelativeTime(run.CreatedAt),
			run.Total,
			run.Warnings,
			formatDuration(run.Duration),
			run.SnapshotPath))
	}

	return sb.String()
}

// RenderRunTypes renders the per-type breakdown of one saved run,
// indented to sit under its row in the run table.
func RenderRunTypes(types []history.RunType) string {
	var sb strings.Builder
	for _, rt := range types {
		line := fmt.Sprintf("    %-18s %5d", rt.Type, rt.Count)
		if rt.Orphans > 0 {
			line += fmt.Sprintf("   %d orphaned", rt.Orphans)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// shortID returns the leading segment of a run ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration renders a duration in whole-second or sub-second form.
func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Ok returns text marked green, for availability listings.
func Ok(text string) string {
	return colorize(colorGreen, text)
}

// Dim returns text marked gray, for unavailable or secondary entries.
func Dim(text string) string {
	return colorize(colorGray, text)
}

// Warn returns text marked red, for warnings and errors.
func Warn(text string) string {
	return colorize(colorRed, text)
}
