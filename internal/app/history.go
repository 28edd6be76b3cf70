package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/history"
	"github.com/blackwell-systems/stocktake/internal/output"
)

var (
	historyLimit int
	historyPrune int

	historyCmd = &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved scan runs",
		Long: `List runs recorded with 'stocktake scan --save' or by the watch daemon,
newest first. Pass a run id (or unique prefix) to see that run's
per-type breakdown.

Old runs and their snapshot files can be removed with --prune.`,
		Example: `  # Recent runs
  stocktake history

  # One run in detail
  stocktake history 3f2a81c9

  # Keep only the 20 most recent runs
  stocktake history --prune 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max runs to list (0 = all)")
	historyCmd.Flags().IntVar(&historyPrune, "prune", -1, "delete all but the N most recent runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if historyPrune >= 0 {
		removed, err := store.Prune(historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d runs\n", removed)
		return nil
	}

	if len(args) == 1 {
		return showRun(cmd, store, args[0])
	}

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprint(out, output.RenderRunTable(runs))
	return nil
}

// showRun prints one saved run with its per-type breakdown. The id may
// be a unique prefix of the full run id.
func showRun(cmd *cobra.Command, store *history.Store, id string) error {
	run, err := findRun(store, id)
	if err != nil {
		return err
	}

	types, err := store.RunTypes(run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderRunTable([]*history.Run{run}))
	fmt.Fprint(out, output.RenderRunTypes(types))
	return nil
}

// findRun resolves a full run id or unique prefix against the history.
func findRun(store *history.Store, id string) (*history.Run, error) {
	// An exact id resolves directly, without walking the whole history.
	if run, err := store.GetRun(id); err == nil {
		return run, nil
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		return nil, err
	}

	var matches []*history.Run
	for _, run := range runs {
		if strings.HasPrefix(run.ID, id) {
			matches = append(matches, run)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	}
	return nil, fmt.Errorf("run id %s is ambiguous (%d matches)", id, len(matches))
}
