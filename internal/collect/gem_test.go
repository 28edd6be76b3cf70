package collect

import (
	"testing"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

func TestParseGemLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantName    string
		wantVersion string
	}{
		{"single_version", "rake (13.1.0)", "rake", "13.1.0"},
		{"multiple_versions_newest_first", "bigdecimal (3.1.4, 3.0.0)", "bigdecimal", "3.1.4"},
		{"default_gem", "abbrev (default: 0.1.2)", "abbrev", "0.1.2"},
		{"header_line_skipped", "*** LOCAL GEMS ***", "", ""},
		{"blank_line_skipped", "", "", ""},
		{"no_version", "weird", "weird", inventory.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version := parseGemLine(tt.line)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
		})
	}
}
