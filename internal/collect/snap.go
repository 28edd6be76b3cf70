package collect

import (
	"context"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// snapCollector parses the `snap list` table. Snap names and versions
// never contain spaces, so whitespace splitting is safe.
type snapCollector struct{}

func (c *snapCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "snap", "list")
	if err != nil {
		return nil, err
	}
	return parseSnapList(out), nil
}

func parseSnapList(out string) []inventory.Record {
	var records []inventory.Record
	for i, line := range strings.Split(out, "\n") {
		// First line is the column header.
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		name, version, publisher := fields[0], fields[1], fields[4]

		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeSnap,
			Source:  "snap",
			Details: "publisher: " + strings.TrimRight(publisher, "✓*"),
			Version: version,
			Size:    inventory.Unknown,
		}.Sanitize())
	}
	return records
}
