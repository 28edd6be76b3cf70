package collect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// pipCollector lists installed Python packages. Either pip or pip3 will
// do; modern distros often ship only the latter.
type pipCollector struct{}

type pipPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (c *pipCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	cmd := firstCommand("pip", "pip3")
	if cmd == "" {
		return nil, fmt.Errorf("pip not found")
	}

	out, err := runCommand(ctx, cmd, "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, err
	}
	return parsePipList(out)
}

func parsePipList(out string) ([]inventory.Record, error) {
	var packages []pipPackage
	if err := json.Unmarshal([]byte(out), &packages); err != nil {
		return nil, fmt.Errorf("failed to parse pip list output: %w", err)
	}

	var records []inventory.Record
	for _, p := range packages {
		records = append(records, inventory.Record{
			Name:    p.Name,
			Type:    inventory.TypePython,
			Source:  "pip",
			Details: inventory.Unknown,
			Version: p.Version,
			Size:    inventory.Unknown,
		}.Sanitize())
	}
	return records, nil
}
