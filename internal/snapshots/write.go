package snapshots

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// Write renders records to w in the given format. The sequence is taken
// as-is: serialization never re-filters, re-sorts, or re-counts, so the
// caller decides the order once and every format agrees with it.
func Write(w io.Writer, records []inventory.Record, format Format) error {
	switch format {
	case FormatTSV:
		return WriteTSV(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// WriteFile renders records into the file at path, creating or
// truncating it.
func WriteFile(path string, records []inventory.Record, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, records, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// WriteTSV writes the canonical tab-separated form.
func WriteTSV(w io.Writer, records []inventory.Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, r := range records {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Type, r.Source, r.Details, r.Version, r.Size, orphanedString(r.Orphaned))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// WriteCSV writes the canonical columns with standard CSV quoting.
func WriteCSV(w io.Writer, records []inventory.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Type", "Source", "Details", "Version", "Size", "Orphaned"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Name, r.Type, r.Source, r.Details, r.Version, r.Size, orphanedString(r.Orphaned)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

type jsonPackage struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Details  string `json:"details"`
	Version  string `json:"version"`
	Size     string `json:"size"`
	Orphaned bool   `json:"orphaned"`
}

type jsonReport struct {
	Packages []jsonPackage `json:"packages"`
}

// WriteJSON writes an object with a single "packages" array. Orphaned
// becomes a genuine boolean here, unlike the yes/no strings on disk.
func WriteJSON(w io.Writer, records []inventory.Record) error {
	report := jsonReport{Packages: make([]jsonPackage, 0, len(records))}
	for _, r := range records {
		report.Packages = append(report.Packages, jsonPackage{
			Name:     r.Name,
			Type:     r.Type,
			Source:   r.Source,
			Details:  r.Details,
			Version:  r.Version,
			Size:     r.Size,
			Orphaned: r.Orphaned,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func orphanedString(orphaned bool) string {
	if orphaned {
		return "yes"
	}
	return "no"
}
