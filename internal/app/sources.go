package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/collect"
	"github.com/blackwell-systems/stocktake/internal/output"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List known sources and their availability on this host",
	Long: `List every source in the catalog with its live availability and
capabilities.

"orphans" marks sources that can detect packages no longer required by
anything else; "apps-only" marks sources that can tell top-level
applications from dependencies and runtimes.`,
	Example: `  stocktake sources`,
	RunE:    runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	registry := collect.NewRegistry()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-10s %-11s %-9s %-11s %s\n",
		"ID", "Available", "Orphans", "Apps-only", "Description")
	fmt.Fprintln(out, strings.Repeat("─", 84))

	available := 0
	for _, def := range registry.Definitions() {
		// Pad before coloring so ANSI escapes cannot break alignment.
		avail := output.Dim(fmt.Sprintf("%-11s", "no"))
		if def.Available() {
			avail = output.Ok(fmt.Sprintf("%-11s", "yes"))
			available++
		}
		fmt.Fprintf(out, "%-10s %s %-9s %-11s %s\n",
			def.ID,
			avail,
			yesNo(def.OrphanCapable),
			yesNo(def.AppsOnlyCapable),
			def.Description)
	}

	fmt.Fprintf(out, "\n%d of %d sources available\n", available, len(registry.Definitions()))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
