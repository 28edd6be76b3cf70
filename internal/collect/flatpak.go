package collect

import (
	"context"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// flatpakCollector lists installed Flatpak applications, plus runtimes
// when AllPackages is on. When stdout is not a terminal flatpak separates
// columns with tabs, which is exactly what the parser relies on.
type flatpakCollector struct{}

const flatpakColumns = "name,application,version,origin,size"

func (c *flatpakCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	records, err := c.list(ctx, "--app", inventory.TypeFlatpak)
	if err != nil {
		return nil, err
	}
	if opts.AllPackages {
		runtimes, err := c.list(ctx, "--runtime", inventory.TypeFlatpakRuntime)
		if err != nil {
			return nil, err
		}
		records = append(records, runtimes...)
	}
	return records, nil
}

func (c *flatpakCollector) list(ctx context.Context, kind, typ string) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "flatpak", "list", kind, "--columns="+flatpakColumns)
	if err != nil {
		return nil, err
	}
	return parseFlatpakList(out, typ), nil
}

func parseFlatpakList(out, typ string) []inventory.Record {
	var records []inventory.Record
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		name, appID, version, origin, size := fields[0], fields[1], fields[2], fields[3], fields[4]
		if name == "" {
			continue
		}

		source := "flatpak"
		if origin != "" {
			source = "flatpak/" + origin
		}
		records = append(records, inventory.Record{
			Name:    name,
			Type:    typ,
			Source:  source,
			Details: appID,
			Version: version,
			Size:    size,
		}.Sanitize())
	}
	return records
}
