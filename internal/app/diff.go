package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stocktake/internal/snapshots"
)

var (
	diffLast bool

	diffCmd = &cobra.Command{
		Use:   "diff [old] [new]",
		Short: "Compare two inventory snapshots by name",
		Long: `Compare two snapshots in the canonical tab-separated format and list
the package names that appeared or disappeared between them.

The comparison is by name only: a version, type, or size change for a
name present in both snapshots is not reported. CSV and JSON exports
cannot be diffed; re-scan with the default format instead.`,
		Example: `  # Compare two snapshot files
  stocktake diff old.tsv new.tsv

  # Compare the two most recent saved runs
  stocktake diff --last`,
		Args: func(cmd *cobra.Command, args []string) error {
			if diffLast {
				if len(args) != 0 {
					return fmt.Errorf("--last takes no snapshot arguments")
				}
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("expected two snapshot files, got %d", len(args))
			}
			return nil
		},
		RunE: runDiff,
	}
)

func init() {
	diffCmd.Flags().BoolVar(&diffLast, "last", false, "compare the two most recent saved runs")
}

func runDiff(cmd *cobra.Command, args []string) error {
	var oldPath, newPath string
	if diffLast {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		newest, previous, err := store.LastTwoRuns()
		if err != nil {
			return err
		}
		oldPath, newPath = previous.SnapshotPath, newest.SnapshotPath
	} else {
		oldPath, newPath = args[0], args[1]
	}

	delta, err := snapshots.DiffFiles(oldPath, newPath)
	if err != nil {
		return err
	}

	if delta.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No changes.")
		return nil
	}
	return delta.Render(cmd.OutOrStdout())
}
