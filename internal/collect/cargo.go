package collect

import (
	"context"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// cargoCollector lists crates installed with `cargo install`. Output
// looks like:
//
//	ripgrep v14.1.0:
//	    rg
//	bat v0.24.0 (/home/u/src/bat):
//	    bat
//
// Top-level lines carry the crate, indented lines list its binaries.
type cargoCollector struct{}

func (c *cargoCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "cargo", "install", "--list")
	if err != nil {
		return nil, err
	}

	var records []inventory.Record
	for _, line := range strings.Split(out, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		name, version, details := parseCargoLine(line)
		if name == "" {
			continue
		}
		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeCrate,
			Source:  "cargo",
			Details: details,
			Version: version,
			Size:    inventory.Unknown,
		}.Sanitize())
	}
	return records, nil
}

func parseCargoLine(line string) (name, version, details string) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ":")
	details = inventory.Unknown

	// Local installs carry their source path in parentheses.
	if i := strings.IndexByte(line, '('); i >= 0 {
		details = strings.TrimSuffix(strings.TrimSpace(line[i+1:]), ")")
		line = strings.TrimSpace(line[:i])
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", ""
	}
	return fields[0], strings.TrimPrefix(fields[1], "v"), details
}
