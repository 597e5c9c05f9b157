package cli

import (
	"github.com/spf13/cobra"
)

// summaryCmd runs a dry-run reconciliation pass and prints the Spanish
// operator summary without writing anything back.
func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the reconciliation summary without writing updates",
		RunE:  runSummary,
	}
}

func runSummary(cmd *cobra.Command, _ []string) error {
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
	printSummary(cmd.OutOrStdout(), result)
	if !result.Success {
		return errRunIncomplete
	}
	return nil
}
