package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blackwell-systems/stocktake/internal/inventory"
)

// aptCollector reads the dpkg database on Debian-family systems.
type aptCollector struct{}

// dpkg-query emits one tab-separated row per package in this field order.
const dpkgFormat = "${db:Status-Abbrev}\t${binary:Package}\t${Version}\t${Installed-Size}\t${binary:Summary}\n"

func (c *aptCollector) Collect(ctx context.Context, opts Options) ([]inventory.Record, error) {
	out, err := runCommand(ctx, "dpkg-query", "-W", "-f="+dpkgFormat)
	if err != nil {
		return nil, err
	}

	// Apps-only narrows to packages the user installed on purpose.
	var manual map[string]bool
	if !opts.AllPackages {
		manual, err = aptManual(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list manual packages: %w", err)
		}
	}

	return parseDpkgList(out, manual), nil
}

// parseDpkgList turns dpkg-query rows into records. A nil manual set
// keeps everything; a non-nil set keeps only manually installed names.
func parseDpkgList(out string, manual map[string]bool) []inventory.Record {
	var records []inventory.Record
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 5)
		if len(fields) < 5 {
			continue
		}
		status, name, version, sizeKB, summary := fields[0], fields[1], fields[2], fields[3], fields[4]

		// Keep only properly installed packages ("ii" status).
		if !strings.HasPrefix(status, "ii") {
			continue
		}
		if manual != nil && !manual[baseName(name)] {
			continue
		}

		size := inventory.Unknown
		if kb, err := strconv.ParseInt(sizeKB, 10, 64); err == nil {
			size = inventory.FormatSize(kb * 1024)
		}

		records = append(records, inventory.Record{
			Name:    name,
			Type:    inventory.TypeRepo,
			Source:  "apt/dpkg",
			Details: summary,
			Version: version,
			Size:    size,
		}.Sanitize())
	}
	return records
}

// aptManual returns the set of manually installed package names.
func aptManual(ctx context.Context) (map[string]bool, error) {
	out, err := runCommand(ctx, "apt-mark", "showmanual")
	if err != nil {
		return nil, err
	}
	manual := make(map[string]bool)
	for _, name := range strings.Fields(out) {
		manual[name] = true
	}
	return manual, nil
}

// baseName strips a multi-arch suffix: "libc6:amd64" -> "libc6".
// apt-mark prints bare names while dpkg-query may qualify them.
func baseName(pkg string) string {
	if i := strings.IndexByte(pkg, ':'); i >= 0 {
		return pkg[:i]
	}
	return pkg
}
