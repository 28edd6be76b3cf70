package collect

import (
	"context"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// gemCollector lists locally installed Ruby gems. Lines look like
// "bigdecimal (3.1.4, 3.0.0)" or "abbrev (default: 0.1.2)"; the newest
// version is listed first.
type gemCollector struct{}

func (c *gemCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "gem", "list", "--local")
	if err != nil {
		return nil, err
	}

	var records []inventory.Record
	for _, line := range strings.Split(out, "\n") {
		name, version := parseGemLine(line)
		if name == "" {
			continue
		}
		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeGem,
			Source:  "gem",
			Details: inventory.Unknown,
			Version: version,
			Size:    inventory.Unknown,
		}.Sanitize())
	}
	return records, nil
}

func parseGemLine(line string) (name, version string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "***") {
		return "", ""
	}

	open := strings.IndexByte(line, '(')
	if open < 0 {
		return line, inventory.Unknown
	}
	name = strings.TrimSpace(line[:open])

	versions := strings.TrimSuffix(line[open+1:], ")")
	version, _, _ = strings.Cut(versions, ",")
	version = strings.TrimSpace(strings.TrimPrefix(version, "default:"))
	if version == "" {
		version = inventory.Unknown
	}
	return name, version
}
