package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/collect"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List source presets and what they cover on this host",
	Long: `List the built-in presets and any user presets from the config file,
with each preset resolved against the sources actually available here.

A preset source missing from this host is reported as skipped; a scan
with that preset covers the remaining sources only.`,
	Example: `  stocktake presets

  # Then scan one of them
  stocktake scan --preset dev`,
	RunE: runPresets,
}

func runPresets(cmd *cobra.Command, args []string) error {
	registry := collect.NewRegistry()
	if err := appConfig.CheckSources(registry.IDs()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, preset := range registry.Presets(appConfig.Presets) {
		if i > 0 {
			fmt.Fprintln(out)
		}

		origin := "user"
		if preset.Builtin {
			origin = "builtin"
		}
		fmt.Fprintf(out, "%s (%s): %s\n", preset.Name, origin, strings.Join(preset.Sources, ", "))

		sel, err := registry.ResolvePreset(preset.Name, appConfig.Presets)
		if err != nil {
			return err
		}
		if len(sel.Enabled) > 0 {
			fmt.Fprintf(out, "  available: %s\n", strings.Join(sel.Enabled, ", "))
		}
		for _, skip := range sel.Skipped {
			fmt.Fprintf(out, "  skipped:   %s (%s)\n", skip.ID, skip.Reason)
		}
	}
	return nil
}
