package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// npmCollector lists globally installed Node packages.
type npmCollector struct{}

type npmList struct {
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

func (c *npmCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "npm", "ls", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, err
	}
	return parseNpmList(out)
}

func parseNpmList(out string) ([]inventory.Record, error) {
	var list npmList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, fmt.Errorf("failed to parse npm ls output: %w", err)
	}

	// Map iteration order is random; emit in name order so repeated runs
	// hand the pipeline the same sequence.
	names := make([]string, 0, len(list.Dependencies))
	for name := range list.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []inventory.Record
	for _, name := range names {
		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeNode,
			Source:  "npm/global",
			Details: inventory.Unknown,
			Version: list.Dependencies[name].Version,
			Size:    inventory.Unknown,
		}.Sanitize())
	}
	return records, nil
}
