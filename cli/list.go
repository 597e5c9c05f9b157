package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/compare"
)

// listCmd runs a dry-run reconciliation pass and prints discrepancies at
// or above --min-level, sorted by (level descending, |variance|
// descending) per §4.F's discrepancy-extraction rule.
func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time discrepancies between meetings and tracked work",
		RunE:  runList,
	}
	cmd.Flags().String("min-level", string(compare.DeviationLight), "minimum deviation level to show (none|light|moderate|high)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := a.context(cmd.Context())

	a.cfg.DryRun = true
	o, err := a.orchestrator()
	if err != nil {
		return err
	}
	params, err := runParams(cmd, a.cfg)
	if err != nil {
		return err
	}

	result := o.Run(ctx, params)
	minLevel, _ := cmd.Flags().GetString("min-level")
	discrepancies := compare.ExtractDiscrepancies(result.Comparisons, compare.DeviationLevel(minLevel))

	out := cmd.OutOrStdout()
	if len(discrepancies) == 0 {
		fmt.Fprintln(out, "No discrepancies found.")
	} else {
		fmt.Fprintf(out, "%-10s %-10s %-10s %-12s %-10s\n", "WORK_ITEM", "ACTUAL", "ESTIMATE", "VARIANCE_%", "LEVEL")
		for _, d := range discrepancies {
			fmt.Fprintf(out, "%-10d %-10.2f %-10.2f %-12.2f %-10s\n",
				d.WorkItemID, d.Comparison.ActualHours, d.Comparison.EstimateHours,
				d.Comparison.VariancePercentage, d.Comparison.Deviation)
		}
	}
	if !result.Success {
		return errRunIncomplete
	}
	return nil
}
