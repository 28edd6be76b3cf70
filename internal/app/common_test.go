package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/stocktake/internal/inventory"
	"github.com/blackwell-systems/stocktake/internal/snapshots"
)

func TestGetDBPathFlagOverride(t *testing.T) {
	orig := flagDB
	defer func() { flagDB = orig }()

	flagDB = "/tmp/custom.db"
	path, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath failed: %v", err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("expected flag value to win, got %s", path)
	}
}

func TestWriteReport(t *testing.T) {
	records := []inventory.Record{
		{Name: "vim", Type: "Repo", Source: "pacman/repo", Details: "editor", Version: "9.1", Size: "40 MB"},
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "report.tsv")

	path, err := writeReport(target, records, snapshots.FormatTSV)
	if err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	if path != target {
		t.Errorf("expected report at %s, got %s", target, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(data), "vim\tRepo\tpacman/repo") {
		t.Errorf("report missing record row:\n%s", data)
	}
}

func TestWriteReportFallsBackToTempDir(t *testing.T) {
	// Redirect os.TempDir so the fallback lands in the test sandbox.
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	records := []inventory.Record{
		{Name: "vim", Type: "Repo", Source: "pacman/repo", Details: "-", Version: "-", Size: "-"},
	}

	// Target directory does not exist, so the first write must fail.
	target := filepath.Join(t.TempDir(), "missing", "report.tsv")

	path, err := writeReport(target, records, snapshots.FormatTSV)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if filepath.Dir(path) != tmp {
		t.Errorf("expected fallback under %s, got %s", tmp, path)
	}
	if filepath.Base(path) != "report.tsv" {
		t.Errorf("expected fallback to keep the file name, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("fallback report not written: %v", err)
	}
}

func TestWriteReportBothPathsFail(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	t.Setenv("TMPDIR", filepath.Join(missing, "also-gone"))

	_, err := writeReport(filepath.Join(missing, "report.tsv"), nil, snapshots.FormatTSV)
	if err == nil {
		t.Fatal("expected error when target and fallback are both unwritable")
	}
}
