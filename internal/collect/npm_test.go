package collect

import (
	"testing"
)

const npmFixture = `{
  "name": "lib",
  "dependencies": {
    "typescript": {"version": "5.3.3", "overridden": false},
    "corepack": {"version": "0.23.0"},
    "npm": {"version": "10.2.4"}
  }
}`

func TestParseNpmList(t *testing.T) {
	records, err := parseNpmList(npmFixture)
	if err != nil {
		t.Fatalf("parseNpmList failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Emission is name-ordered regardless of map iteration.
	wantNames := []string{"corepack", "npm", "typescript"}
	for i, want := range wantNames {
		if records[i].Name != want {
			t.Errorf("position %d: got %s, want %s", i, records[i].Name, want)
		}
	}
	if records[2].Version != "5.3.3" {
		t.Errorf("typescript version wrong: %s", records[2].Version)
	}
	if records[0].Source != "npm/global" {
		t.Errorf("wrong source: %s", records[0].Source)
	}
}

func TestParseNpmListNoDependencies(t *testing.T) {
	records, err := parseNpmList(`{"name": "empty"}`)
	if err != nil {
		t.Fatalf("parseNpmList failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseNpmListMalformed(t *testing.T) {
	if _, err := parseNpmList("npm ERR! something"); err == nil {
		t.Error("malformed output should be an error")
	}
}
