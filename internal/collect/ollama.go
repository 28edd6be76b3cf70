package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// ollamaBaseURL is where a local Ollama daemon listens by default.
const ollamaBaseURL = "http://localhost:11434"

// ollamaCollector reads the model list from a local Ollama daemon over
// its HTTP API. Availability is keyed on the ollama CLI; if the daemon
// is not running the request fails and the source degrades to a warning
// like any other collector failure.
type ollamaCollector struct {
	baseURL string
	client  *http.Client
}

func newOllamaCollector() *ollamaCollector {
	return &ollamaCollector{
		baseURL: ollamaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type ollamaTags struct {
	Models []struct {
		Name    string `json:"name"`
		Size    int64  `json:"size"`
		Details struct {
			Family        string `json:"family"`
			ParameterSize string `json:"parameter_size"`
		} `json:"details"`
	} `json:"models"`
}

func (c *ollamaCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama daemon returned status %d", resp.StatusCode)
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to parse ollama response: %w", err)
	}

	var records []inventory.Record
	for _, m := range tags.Models {
		name, version := m.Name, inventory.Unknown
		if n, tag, ok := strings.Cut(m.Name, ":"); ok {
			name, version = n, tag
		}
		details := strings.TrimSpace(m.Details.Family + " " + m.Details.ParameterSize)
		if details == "" {
			details = inventory.Unknown
		}
		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeModel,
			Source:  "ollama",
			Details: details,
			Version: version,
			Size:    inventory.FormatSize(m.Size),
		}.Sanitize())
	}
	return records, nil
}
